package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/attributes"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// attributeDoc is the stdin/stdout shape of the normalize commands.
type attributeDoc struct {
	Specs    types.WireSpecs    `json:"specs"`
	Features types.WireFeatures `json:"features"`
}

func newNormalizeCmd(opts *options) *cobra.Command {
	var casing string
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Convert attributes between editing state and wire shape (stdin to stdout)",
	}
	cmd.PersistentFlags().StringVar(&casing, "casing", string(attributes.KeyCasingLegacy), "Inbound spec key casing: legacy or symmetric")

	normalizer := func() (attributes.Normalizer, error) {
		kc, err := attributes.ParseKeyCasing(casing)
		if err != nil {
			return attributes.Normalizer{}, err
		}
		return attributes.Normalizer{Casing: kc}, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "outbound",
		Short: "Read editing state and print the wire shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := normalizer()
			if err != nil {
				return err
			}
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			var in attributeDoc
			if err := json.NewDecoder(cmd.InOrStdin()).Decode(&in); err != nil {
				return fmt.Errorf("decoding input: %w", err)
			}
			state := attributes.NewState()
			for k, v := range in.Specs {
				state.PutSpec(k, v)
			}
			for c, flags := range in.Features {
				state.PutFeatures(c, flags)
			}
			specs, features := n.Outbound(state, reg)
			return writeDoc(cmd, attributeDoc{Specs: specs, Features: features})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "inbound",
		Short: "Read the wire shape and print editing state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := normalizer()
			if err != nil {
				return err
			}
			var in attributeDoc
			if err := json.NewDecoder(cmd.InOrStdin()).Decode(&in); err != nil {
				return fmt.Errorf("decoding input: %w", err)
			}
			state := n.Inbound(in.Specs, in.Features)
			return writeDoc(cmd, attributeDoc{Specs: state.Specs(), Features: state.Features()})
		},
	})
	return cmd
}

func writeDoc(cmd *cobra.Command, doc attributeDoc) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
