package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kwlam/sitechat/internal/config"
	"github.com/kwlam/sitechat/internal/conversation"
	"github.com/kwlam/sitechat/internal/db"
)

var purgeDays int

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete conversations older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		days := cfg.Retention.Days
		if purgeDays > 0 {
			days = purgeDays
		}

		database, err := db.Open(filepath.Join(cfg.Server.DataDir, "sitechat.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		deleted, err := conversation.NewStore(database).PurgeOlderThan(context.Background(), days)
		if err != nil {
			return fmt.Errorf("purging conversations: %w", err)
		}

		fmt.Printf("Purged %d conversations older than %d days\n", deleted, days)
		return nil
	},
}

func init() {
	purgeCmd.Flags().IntVar(&purgeDays, "days", 0, "override the configured retention window")
	rootCmd.AddCommand(purgeCmd)
}
