package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwlam/sitechat/internal/config"
	"github.com/kwlam/sitechat/internal/llm"
)

var testapiCmd = &cobra.Command{
	Use:     "test-api",
	Aliases: []string{"testapi"},
	Short: "Verify the completion provider connection",
	Long:  `Sends a minimal probe request to the configured provider and prints the reply.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		fmt.Printf("Testing %s connection...\n", cfg.AI.Provider)
		reply, err := llm.NewClient(cfg).TestConnection(ctx)
		if err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}

		fmt.Printf("OK: %s\n", reply)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testapiCmd)
}
