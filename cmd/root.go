package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sitechat",
	Short: "AI chat assistant for CMS-backed websites",
	Long: `Sitechat serves an embeddable chat widget backend that answers
visitor questions from your site's own content: articles, pages, the
commerce catalog and operator-curated external sources.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "sitechat.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
