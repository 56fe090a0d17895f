package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/parble/parble-go/export"
	"github.com/parble/parble-go/filter"
	"github.com/parble/parble-go/parble"
)

// output renders a file in the requested format to stdout or a file
type output struct {
	a      *app
	format export.Format
	path   string
	filter *filter.Filter
}

// newOutput validates the output flags before any API call is made
func (a *app) newOutput(flags fileFlags) (*output, error) {
	name := flags.format
	if name == "" {
		name = a.cfg.Output.Format
	}

	format, err := export.ParseFormat(name)
	if err != nil {
		return nil, &usageError{err: err}
	}

	o := &output{
		a:      a,
		format: format,
		path:   flags.output,
	}

	if flags.filter != "" {
		if format == export.FormatPDF {
			return nil, usageErrorf("--filter cannot be used with the pdf format")
		}
		o.filter, err = filter.Compile(a.cfg.ResolveFilter(flags.filter))
		if err != nil {
			return nil, &usageError{err: err}
		}
	}

	if format.Binary() && o.path == "" && isTerminal(a.stdout) {
		return nil, usageErrorf("refusing to write %s to a terminal, use -o PATH", format)
	}

	return o, nil
}

func (o *output) pdfOnly() bool {
	return o.format == export.FormatPDF
}

// writeFile renders file in the output format
func (o *output) writeFile(ctx context.Context, file *parble.File) error {
	file, err := o.apply(file)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch o.format {
	case export.FormatYAML:
		err = export.WriteYAML(&buf, file)
	case export.FormatPDF:
		r, err := file.PDF(ctx)
		if err != nil {
			return err
		}
		return o.write(r)
	case export.FormatXLSX:
		var data []byte
		data, err = export.HeaderFieldsXLSX(file)
		buf.Write(data)
	default:
		err = export.WriteJSON(&buf, file)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", o.format, err)
	}

	return o.write(&buf)
}

// apply keeps the documents matching the filter, if any
func (o *output) apply(file *parble.File) (*parble.File, error) {
	if o.filter == nil {
		return file, nil
	}

	docs, err := o.filter.Apply(file)
	if err != nil {
		return nil, err
	}

	o.a.logger.Debug().
		Str("filter", o.filter.String()).
		Int("documents", file.Len()).
		Int("matched", len(docs)).
		Msg("Filtered documents")

	filtered := *file
	filtered.Documents = append([]parble.Document{}, docs...)
	return &filtered, nil
}

// write copies r to the output file or stdout
func (o *output) write(r io.Reader) error {
	if o.path == "" {
		_, err := io.Copy(o.a.stdout, r)
		return err
	}

	f, err := os.Create(o.path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Fprintf(o.a.stdout, "Result saved in %s\n", o.path)
	return nil
}

// isTerminal reports whether w is attached to a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
