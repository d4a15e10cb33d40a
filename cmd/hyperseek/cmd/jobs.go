package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperseek/hyperseek/internal/store"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect crawl jobs",
	}

	cmd.AddCommand(newJobsListCmd(), newJobsStatusCmd())
	return cmd
}

func newJobsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent crawl jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			jobs, err := app.crawler.List(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Println("No jobs.")
				return nil
			}
			for _, job := range jobs {
				fmt.Printf("%s  %-12s %-10s ingested=%d\n",
					job.ID, job.Source, job.Status, job.DocumentsIngested)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum jobs to list")
	return cmd
}

func newJobsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show one crawl job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			job, err := app.crawler.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printJob(job)
			return nil
		},
	}
}

func printJob(job *store.CrawlJob) {
	fmt.Printf("job:       %s\n", job.ID)
	fmt.Printf("source:    %s\n", job.Source)
	fmt.Printf("status:    %s\n", job.Status)
	fmt.Printf("found:     %d\n", job.DocumentsFound)
	fmt.Printf("ingested:  %d\n", job.DocumentsIngested)
	fmt.Printf("created:   %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
	if job.CompletedAt != nil {
		fmt.Printf("completed: %s\n", job.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if job.Error != "" {
		fmt.Printf("error:     %s\n", job.Error)
	}
}
