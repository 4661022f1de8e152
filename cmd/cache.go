package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cloudops/cloud-console-tool/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache management commands",
	Long:  `Manage cached data for the cloud console.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear persisted cache data",
	Long:  `Remove the persisted deployment registry and any other cached files. In-memory read caches only live for one invocation and need no clearing.`,
	RunE:  runCacheClear,
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache configuration and contents",
	RunE:  runCacheStatus,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registryPath := filepath.Join(cfg.Cache.Directory, "registry.json")
	if err := os.Remove(registryPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Printf("Cache cleared from directory: %s\n", cfg.Cache.Directory)
	return nil
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("=== Cache Status ===\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Directory: %s\n", cfg.Cache.Directory)
	fmt.Printf("  TTL Settings:\n")
	fmt.Printf("    Inventory: %d seconds\n", cfg.Cache.InventoryTTL)
	fmt.Printf("    Stacks: %d seconds\n", cfg.Cache.StacksTTL)
	fmt.Printf("    Databases: %d seconds\n", cfg.Cache.DatabasesTTL)
	fmt.Printf("    Buckets: %d seconds\n", cfg.Cache.BucketsTTL)
	fmt.Println()

	registryPath := filepath.Join(cfg.Cache.Directory, "registry.json")
	if info, err := os.Stat(registryPath); err == nil {
		fmt.Printf("Deployment registry: %s (%s)\n", registryPath, formatBytes(info.Size()))
	} else {
		fmt.Printf("Deployment registry: not present\n")
	}

	return nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
