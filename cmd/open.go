package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudops/cloud-console-tool/internal/console"
)

var openCmd = &cobra.Command{
	Use:   "open <module>",
	Short: "Open a console module by name",
	Long:  `Open one of the console modules by name. Run without arguments to list the available modules.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func newRouter(cmd *cobra.Command) *console.Router {
	router := console.NewRouter()

	router.Register(console.ModuleAccounts, func(context.Context) error {
		return runAccounts(cmd, nil)
	})
	router.Register(console.ModuleInventory, func(context.Context) error {
		return runInventoryInstances(cmd, nil)
	})
	router.Register(console.ModuleStacks, func(context.Context) error {
		return runStacksList(cmd, nil)
	})
	router.Register(console.ModuleBuckets, func(context.Context) error {
		return runInventoryBuckets(cmd, nil)
	})
	router.Register(console.ModuleDatabases, func(context.Context) error {
		return runInventoryDatabases(cmd, nil)
	})
	router.Register(console.ModuleDeployments, func(context.Context) error {
		return runDeploymentsList(cmd, nil)
	})
	router.Register(console.ModuleApprovals, func(context.Context) error {
		return runDeploymentsPending(cmd, nil)
	})
	router.Register(console.ModuleHistory, func(context.Context) error {
		return runDeploymentsHistory(cmd, nil)
	})
	router.Register(console.ModuleCache, func(context.Context) error {
		return runCacheStatus(cmd, nil)
	})

	return router
}

func runOpen(cmd *cobra.Command, args []string) error {
	router := newRouter(cmd)

	if len(args) == 0 {
		fmt.Println("Available modules:")
		for _, module := range router.Registered() {
			fmt.Printf("  %s\n", module)
		}
		return nil
	}

	return router.RenderByName(cmd.Context(), args[0])
}
