package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperseek/hyperseek/internal/store"
)

func newAskCmd() *cobra.Command {
	var (
		recursive bool
		maxDepth  int
		noStream  bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question over the indexed corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			question := strings.Join(args, " ")

			if noStream {
				resp, err := app.answerer.Answer(cmd.Context(), question, recursive, maxDepth)
				if err != nil {
					return err
				}
				fmt.Println(resp.Answer)
				printSources(resp.Generated, resp.Sources)
				return nil
			}

			resp, err := app.answerer.Stream(cmd.Context(), question, recursive, maxDepth,
				func(fragment string) error {
					_, err := fmt.Print(fragment)
					return err
				})
			if err != nil {
				return err
			}
			fmt.Println()
			printSources(resp.Generated, resp.Sources)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Let the model propose follow-up queries")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 2, "Maximum retrieval rounds when recursive")
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "Print the answer only when complete")

	return cmd
}

func printSources(generated bool, sources []*store.Document) {
	if !generated {
		fmt.Fprintln(os.Stderr, "\n(model unavailable; showing retrieved context)")
	}
	if len(sources) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, doc := range sources {
		fmt.Printf("  - %s  %s\n", doc.Title, doc.URL)
	}
}
