package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/parble/parble-go/parble"
	"github.com/parble/parble-go/spinner"
)

// fileFlags are the output flags shared by upload and get
type fileFlags struct {
	format string
	output string
	filter string
}

func (f *fileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: json, yaml, pdf or xlsx (default from config, json)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the result to this file instead of stdout")
	cmd.Flags().StringVar(&f.filter, "filter", "", "only keep documents matching this expression or named filter")
}

func newFileCmd(a *app) *cobra.Command {
	fileCmd := groupCmd(&cobra.Command{
		Use:   "file",
		Short: "Upload, retrieve and delete files",
	})

	fileCmd.AddCommand(newUploadCmd(a))
	fileCmd.AddCommand(newGetCmd(a))
	fileCmd.AddCommand(newDeleteCmd(a))

	return fileCmd
}

func newUploadCmd(a *app) *cobra.Command {
	var (
		flags   fileFlags
		inboxID string
	)

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload and process FILE",
		Long: `Upload the file FILE and wait for its processing to complete, then print its attributes.

If processing takes longer than the server is willing to wait (300s) the
server redirects to the file and the (incomplete) attributes are printed.`,
		Example: `  parble file upload invoice.pdf
  parble file upload invoice.pdf -i 636baf52b9753d4ce1e210d0 -f xlsx -o fields.xlsx
  parble file upload scan.pdf --filter 'Type == "Invoice"'`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return usageErrorf("file %q does not exist", path)
				}
				return usageErrorf("cannot access %q: %v", path, err)
			}
			if info.IsDir() {
				return usageErrorf("%q is a directory", path)
			}

			out, err := a.newOutput(flags)
			if err != nil {
				return err
			}

			if inboxID == "" {
				inboxID = a.cfg.InboxID
			}

			sdk, err := a.newSDK()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a.logger.Info().Str("path", path).Msg("Uploading file")

			var file *parble.File
			spin := spinner.New(a.stderr, spinner.WithDisabled(!a.cfg.Output.Spinner))
			err = spin.Run(func() error {
				var err error
				file, err = sdk.UploadPath(ctx, path, inboxID)
				return err
			})
			if err != nil {
				return err
			}

			a.logger.Info().
				Str("id", file.ID).
				Int("documents", file.Len()).
				Msg("File processed")

			return out.writeFile(ctx, file)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&inboxID, "inbox-id", "i", "", "inbox to upload into (24 hexadecimal characters)")

	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var flags fileFlags

	cmd := &cobra.Command{
		Use:   "get FILE_ID",
		Short: "Get the processing result of FILE_ID",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			out, err := a.newOutput(flags)
			if err != nil {
				return err
			}

			sdk, err := a.newSDK()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			// The PDF is requested directly, without fetching the attributes first
			if out.pdfOnly() {
				r, err := sdk.GetFilePDF(ctx, id)
				if err != nil {
					return err
				}
				return out.write(r)
			}

			file, err := sdk.GetFile(ctx, id)
			if err != nil {
				return err
			}
			return out.writeFile(ctx, file)
		},
	}

	flags.register(cmd)

	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete FILE_ID",
		Short: "Delete FILE_ID",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := a.newSDK()
			if err != nil {
				return err
			}

			if err := sdk.DeleteFile(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "File %s deleted\n", args[0])
			return nil
		},
	}
}
