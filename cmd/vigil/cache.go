package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vigil/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis disk cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop all cached analysis results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenDiskCache("vigil")
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to drop cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cache dropped")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
}
