// variantctl inspects the attribute schema, converts attribute payloads
// between their editing and wire shapes, and imports variants from
// spreadsheets.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
)

type options struct {
	verbose    bool
	schemaFile string
	logger     zerolog.Logger
}

// registry returns the schema named by --schema, or the built-in one.
func (o *options) registry() (*catalog.Registry, error) {
	if o.schemaFile == "" {
		return catalog.Default(), nil
	}
	reg, err := catalog.LoadCUEFile(o.schemaFile)
	if err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", o.schemaFile, err)
	}
	return reg, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "variantctl",
		Short:         "Tools for the vehicle variant attribute schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if opts.verbose {
				level = zerolog.DebugLevel
			}
			opts.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
				Level(level).
				With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&opts.schemaFile, "schema", "", "CUE schema file (default: built-in schema)")

	root.AddCommand(newSchemaCmd(opts))
	root.AddCommand(newNormalizeCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newTemplateCmd(opts))
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "variantctl:", err)
		os.Exit(1)
	}
}
