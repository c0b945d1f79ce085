package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	// Missing .env is fine; env vars may come from the environment.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jabdonsani",
		Short: "Collect, translate and serve tech community trends",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(crawlCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(trendsCmd())

	return root
}

func crawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run one batch job synchronously",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl()
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start scheduler and HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the latest batch job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func trendsCmd() *cobra.Command {
	var (
		jsonOutput bool
		field      string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show stored trends",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrendsList(jsonOutput, field, limit)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&field, "field", "", "filter by field (ai, dev, robotics)")
	cmd.Flags().IntVar(&limit, "limit", 20, "max trends to show")
	return cmd
}
