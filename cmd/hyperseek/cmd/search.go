package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperseek/hyperseek/internal/search"
)

func newSearchCmd() *cobra.Command {
	var (
		mode string
		page int
		size int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			query := strings.Join(args, " ")
			results, err := app.engine.Search(cmd.Context(), query, search.Mode(mode), page, size)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No results.")
				return nil
			}

			for i, r := range results {
				rank := (page-1)*size + i + 1
				fmt.Printf("%2d. %s  (%.4f)\n    %s\n    %s\n\n",
					rank, r.Document.Title, r.Score, r.Document.URL, r.Snippet)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(search.ModeHybrid), "Ranking mode: bm25, semantic, or hybrid")
	cmd.Flags().IntVar(&page, "page", 1, "Result page (1-based)")
	cmd.Flags().IntVar(&size, "size", 10, "Results per page")

	return cmd
}
