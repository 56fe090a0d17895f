package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// releaseRepository hosts the release binaries
const releaseRepository = "parble/parble-go"

func newUpdateCmd(a *app) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update parble to the latest release",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			current, err := semver.ParseTolerant(version)
			if err != nil {
				return fmt.Errorf("cannot update development build %q: %w", version, err)
			}

			a.logger.Debug().Str("repository", releaseRepository).Msg("Checking for updates")

			latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(releaseRepository))
			if err != nil {
				return fmt.Errorf("detect latest release: %w", err)
			}
			if !found {
				return fmt.Errorf("no release found for %s/%s", runtime.GOOS, runtime.GOARCH)
			}

			available, err := semver.ParseTolerant(latest.Version())
			if err != nil {
				return fmt.Errorf("parse release version %q: %w", latest.Version(), err)
			}

			if !available.GT(current) {
				fmt.Fprintf(a.stdout, "parble %s is up to date\n", current)
				return nil
			}

			if checkOnly {
				fmt.Fprintf(a.stdout, "parble %s is available (current %s)\n", available, current)
				return nil
			}

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}

			a.logger.Info().
				Str("from", current.String()).
				Str("to", available.String()).
				Str("asset", latest.AssetName).
				Msg("Updating")

			if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
				return fmt.Errorf("update binary: %w", err)
			}

			fmt.Fprintf(a.stdout, "Updated parble %s -> %s\n", current, available)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")

	return cmd
}
