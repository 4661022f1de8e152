package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudops/cloud-console-tool/internal/inventory"
	"github.com/cloudops/cloud-console-tool/internal/utils"
)

var (
	inventoryEnvironment string
	inventoryApplication string
	inventoryState       string
	inventoryRefresh     bool
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Browse resource inventory",
	Long:  `Browse EC2 instances, S3 buckets and RDS databases in an account and region. Results are cached for the configured freshness window.`,
}

var inventoryInstancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List EC2 instances",
	RunE:  runInventoryInstances,
}

var inventoryBucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List S3 buckets",
	RunE:  runInventoryBuckets,
}

var inventoryDatabasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List RDS databases",
	RunE:  runInventoryDatabases,
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventoryInstancesCmd)
	inventoryCmd.AddCommand(inventoryBucketsCmd)
	inventoryCmd.AddCommand(inventoryDatabasesCmd)

	inventoryCmd.PersistentFlags().BoolVar(&inventoryRefresh, "refresh", false, "Drop cached results and reload")
	inventoryInstancesCmd.Flags().StringVar(&inventoryEnvironment, "environment", "", "Filter by Environment tag")
	inventoryInstancesCmd.Flags().StringVar(&inventoryApplication, "application", "", "Filter by Application tag")
	inventoryInstancesCmd.Flags().StringVar(&inventoryState, "state", "", "Filter by instance state")
}

func runInventoryInstances(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	handle, err := resolveHandle(cmd, c, viper.GetString("default.account"), viper.GetString("default.region"))
	if err != nil {
		return err
	}
	if inventoryRefresh {
		c.Inventory().Refresh(handle)
	}

	instances, err := c.Inventory().ListInstances(cmd.Context(), handle, inventory.InstanceFilter{
		Environment: inventoryEnvironment,
		Application: inventoryApplication,
		State:       inventoryState,
	})
	if err != nil {
		return err
	}

	formatter := utils.NewFormatter(outputFormat(c))
	if err := formatter.FormatInstances(instances, os.Stdout); err != nil {
		return err
	}
	fmt.Printf("\n%d instances (account %s, region %s)\n", len(instances), handle.AccountID, handle.Region)
	return nil
}

func runInventoryBuckets(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	handle, err := resolveHandle(cmd, c, viper.GetString("default.account"), viper.GetString("default.region"))
	if err != nil {
		return err
	}
	if inventoryRefresh {
		c.Inventory().Refresh(handle)
	}

	buckets, err := c.Inventory().ListBuckets(cmd.Context(), handle)
	if err != nil {
		return err
	}

	formatter := utils.NewFormatter(outputFormat(c))
	return formatter.FormatBuckets(buckets, os.Stdout)
}

func runInventoryDatabases(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	handle, err := resolveHandle(cmd, c, viper.GetString("default.account"), viper.GetString("default.region"))
	if err != nil {
		return err
	}
	if inventoryRefresh {
		c.Inventory().Refresh(handle)
	}

	databases, err := c.Inventory().ListDatabases(cmd.Context(), handle)
	if err != nil {
		return err
	}

	formatter := utils.NewFormatter(outputFormat(c))
	return formatter.FormatDatabases(databases, os.Stdout)
}
