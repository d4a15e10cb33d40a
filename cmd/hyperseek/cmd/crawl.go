package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperseek/hyperseek/internal/store"
)

func newCrawlCmd() *cobra.Command {
	var (
		query     string
		subreddit string
		urls      []string
		maxPages  int
		maxDepth  int
		wait      bool
	)

	cmd := &cobra.Command{
		Use:   "crawl <source>",
		Short: "Submit a crawl job",
		Long: `Submit a crawl job for one source. Sources:

  encyclopedia  search an encyclopedia API (requires --query)
  forum         search forum posts and comments (requires --query)
  tech-news     search tech news stories (requires --query)
  custom-url    crawl the given pages (requires --url)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			cfg := store.JobConfig{
				Query:     query,
				Subreddit: subreddit,
				StartURLs: urls,
				MaxPages:  maxPages,
				MaxDepth:  maxDepth,
			}

			jobID, err := app.crawler.Submit(cmd.Context(), store.Source(args[0]), cfg)
			if err != nil {
				return err
			}
			fmt.Printf("submitted job %s\n", jobID)

			if wait {
				app.crawler.Wait()
				job, err := app.crawler.Status(cmd.Context(), jobID)
				if err != nil {
					return err
				}
				printJob(job)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Search query for API-backed sources")
	cmd.Flags().StringVar(&subreddit, "subreddit", "", "Restrict forum search to one subreddit")
	cmd.Flags().StringSliceVar(&urls, "url", nil, "Start URL for custom-url crawls (repeatable)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Maximum pages to fetch")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum link depth for custom-url crawls")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the job finishes")

	return cmd
}
