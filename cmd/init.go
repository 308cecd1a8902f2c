package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kwlam/sitechat/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize sitechat configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure sitechat for your site and generates a sitechat.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
