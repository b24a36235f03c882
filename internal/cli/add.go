package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		inline string
		file   string
		fields []string
	)
	cmd := &cobra.Command{
		Use:   "add VIDEO_ID",
		Short: "Append one embedding with metadata",
		Example: `  videostore add vid-1 --embedding 0.1,0.2,0.3 --field duration=12.5 --field type=visual_asset
  videostore add vid-2 --embedding-file emb.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			emb, err := embeddingArg(inline, file)
			if err != nil {
				return err
			}
			meta, err := parseFields(fields)
			if err != nil {
				return err
			}
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Add(cmd.Context(), args[0], emb, meta); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "added %s at index %d (dim %d, %d total)\n", args[0], s.Len()-1, s.Dim(), s.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&inline, "embedding", "e", "", "comma separated embedding values")
	cmd.Flags().StringVar(&file, "embedding-file", "", "JSON file holding the embedding array")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "metadata field key=value (repeatable)")
	return cmd
}

func newPersistCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "persist",
		Short: "Rewrite the persisted store from its current content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Persist(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "persisted %d rows to %s\n", s.Len(), s.Dir())
			return nil
		},
	}
}
