package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/attributes"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/client"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/importer"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/payload"
)

func newImportCmd(opts *options) *cobra.Command {
	var (
		apiURL string
		actor  string
	)
	cmd := &cobra.Command{
		Use:   "import FILE.xlsx",
		Short: "Validate a spreadsheet of variants and optionally submit it to the API",
		Long: `Reads the first sheet of FILE.xlsx. Without --api the rows are only
validated. With --api every valid row is created through the REST API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			if apiURL != "" && actor == "" {
				return errors.New("--actor is required with --api")
			}
			im := importer.New(payload.NewBuilder(reg, attributes.Normalizer{}), opts.logger)
			res, err := im.ReadFile(args[0])
			if err != nil {
				return err
			}
			if apiURL != "" {
				c := client.New(apiURL, actor)
				c.Source = "import"
				ctx := cmd.Context()
				if ctx == nil {
					ctx = context.Background()
				}
				if err := im.Submit(ctx, res, c); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, e := range res.Errors {
				fmt.Fprintln(out, e.Error())
			}
			fmt.Fprintf(out, "%d valid, %d invalid", len(res.Rows), len(res.Errors))
			if apiURL != "" {
				fmt.Fprintf(out, ", %d submitted", len(res.Submitted))
			}
			fmt.Fprintln(out)
			if !res.OK() {
				return fmt.Errorf("%d rows failed", len(res.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "", "Base URL of the variant API")
	cmd.Flags().StringVar(&actor, "actor", "", "Actor recorded on created variants")
	return cmd
}

func newTemplateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "template OUT.xlsx",
		Short: "Write an empty import spreadsheet with every known column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			f, err := importer.Template(reg)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(args[0]); err != nil {
				return fmt.Errorf("saving %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
}
