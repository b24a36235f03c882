package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/viant/videostore/ingest"
	"github.com/viant/videostore/persist"
	"github.com/viant/videostore/source"
	"github.com/viant/videostore/store"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		inline string
		file   string
		text   string
		topK   int
		asJSON bool
		viaSQL bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find the stored embeddings most similar to a query",
		Example: `  videostore search --embedding 0.7,0.7,0 --top-k 2
  videostore search --text "a dog catching a frisbee" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("top-k") {
				topK = a.cfg.Store.TopK
			}
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			q, err := a.querySource(text, inline, file)
			if err != nil {
				return err
			}
			if viaSQL {
				b, ok := s.Backend().(*persist.SQLiteBackend)
				if !ok {
					return fmt.Errorf("--sql needs the sqlite backend, store uses %s", s.Backend().Name())
				}
				query, err := q.Embed(ctx, text)
				if err != nil {
					return err
				}
				ranked, err := b.Rank(ctx, query, topK)
				if err != nil {
					return err
				}
				return printRanked(cmd.OutOrStdout(), ranked, asJSON)
			}
			results, err := ingest.SearchText(ctx, q, s, text, topK)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results, s.Len(), asJSON)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&inline, "embedding", "e", "", "comma separated query embedding")
	flags.StringVar(&file, "embedding-file", "", "JSON file holding the query embedding")
	flags.StringVarP(&text, "text", "t", "", "embed this text with Twelve Labs and search with it")
	flags.IntVarP(&topK, "top-k", "k", store.DefaultTopK, "number of results")
	flags.BoolVar(&asJSON, "json", false, "print results as JSON")
	flags.BoolVar(&viaSQL, "sql", false, "rank inside SQLite (sqlite backend only)")
	return cmd
}

// querySource embeds --text with Twelve Labs, or serves the literal
// embedding given on the command line.
func (a *app) querySource(text, inline, file string) (source.QuerySource, error) {
	if text != "" {
		if inline != "" || file != "" {
			return nil, fmt.Errorf("use either --text or an embedding")
		}
		return a.twelveLabs()
	}
	emb, err := embeddingArg(inline, file)
	if err != nil {
		return nil, err
	}
	return source.EmbedFunc(func(context.Context, string) ([]float32, error) { return emb, nil }), nil
}

func printResults(w io.Writer, results []store.Result, total int, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "no results: store is empty")
		return nil
	}
	color.New(color.Bold).Fprintf(w, "top %d of %d\n", len(results), total)
	score := color.New(color.FgGreen)
	for rank, r := range results {
		fmt.Fprintf(w, "%2d. #%-4d ", rank+1, r.Index)
		score.Fprintf(w, "%.4f", r.Similarity)
		fmt.Fprintf(w, "  %s\n", formatMetadata(r.Metadata))
	}
	return nil
}

func printRanked(w io.Writer, ranked []persist.Ranked, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	}
	if len(ranked) == 0 {
		fmt.Fprintln(w, "no results: store is empty")
		return nil
	}
	for rank, r := range ranked {
		fmt.Fprintf(w, "%2d. #%-4d %.4f  video_id=%s\n", rank+1, r.Position, r.Score, r.VideoID)
	}
	return nil
}
