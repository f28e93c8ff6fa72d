package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
)

func newSchemaCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the attribute schema",
	}
	cmd.AddCommand(newSchemaDumpCmd(opts), newSchemaCheckCmd(opts))
	return cmd
}

func newSchemaDumpCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the schema as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			doc := reg.Document()
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(doc)
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}

// newSchemaCheckCmd validates a CUE schema file and reports how it departs
// from the reference schema (--schema, or the built-in one).
func newSchemaCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE.cue",
		Short: "Validate a CUE schema and report drift from the reference schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := opts.registry()
			if err != nil {
				return err
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			candidate, err := catalog.LoadCUE(args[0], src)
			if err != nil {
				return fmt.Errorf("schema is invalid: %w", err)
			}
			out := cmd.OutOrStdout()
			diffs := ref.Diff(candidate)
			if len(diffs) == 0 {
				fmt.Fprintf(out, "%s: OK, no drift from the reference schema\n", args[0])
				return nil
			}
			for _, d := range diffs {
				fmt.Fprintln(out, "  "+d)
			}
			return fmt.Errorf("%s: %d differences from the reference schema", args[0], len(diffs))
		},
	}
}
