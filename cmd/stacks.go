package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudops/cloud-console-tool/internal/utils"
)

var (
	stacksStatusFilter string
	stacksEventLimit   int
	stacksRefresh      bool
)

var stacksCmd = &cobra.Command{
	Use:   "stacks",
	Short: "Browse and manage CloudFormation stacks",
}

var stacksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stacks in an account and region",
	RunE:  runStacksList,
}

var stacksDescribeCmd = &cobra.Command{
	Use:   "describe <stack-name>",
	Short: "Show detail for one stack",
	Args:  cobra.ExactArgs(1),
	RunE:  runStacksDescribe,
}

var stacksEventsCmd = &cobra.Command{
	Use:   "events <stack-name>",
	Short: "Show recent stack events",
	Args:  cobra.ExactArgs(1),
	RunE:  runStacksEvents,
}

var stacksDeleteCmd = &cobra.Command{
	Use:   "delete <stack-name>",
	Short: "Delete a stack",
	Args:  cobra.ExactArgs(1),
	RunE:  runStacksDelete,
}

var stacksDriftCmd = &cobra.Command{
	Use:   "drift <stack-name>",
	Short: "Start drift detection for a stack",
	Args:  cobra.ExactArgs(1),
	RunE:  runStacksDrift,
}

func init() {
	rootCmd.AddCommand(stacksCmd)
	stacksCmd.AddCommand(stacksListCmd)
	stacksCmd.AddCommand(stacksDescribeCmd)
	stacksCmd.AddCommand(stacksEventsCmd)
	stacksCmd.AddCommand(stacksDeleteCmd)
	stacksCmd.AddCommand(stacksDriftCmd)

	stacksListCmd.Flags().StringVar(&stacksStatusFilter, "status", "", "Filter by stack status")
	stacksListCmd.Flags().BoolVar(&stacksRefresh, "refresh", false, "Drop cached results and reload")
	stacksEventsCmd.Flags().IntVar(&stacksEventLimit, "limit", 20, "Maximum number of events to show")
}

func runStacksList(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	handle, err := resolveHandle(cmd, c, viper.GetString("default.account"), viper.GetString("default.region"))
	if err != nil {
		return err
	}
	if stacksRefresh {
		c.Stacks().Refresh(handle)
	}

	stacks, err := c.Stacks().List(cmd.Context(), handle, stacksStatusFilter)
	if err != nil {
		return err
	}

	formatter := utils.NewFormatter(outputFormat(c))
	return formatter.FormatStacks(stacks, os.Stdout)
}

func runStacksDescribe(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	handle, err := resolveHandle(cmd, c, viper.GetString("default.account"), viper.GetString("default.region"))
	if err != nil {
		return err
	}

	stack, err := c.Stacks().Describe(cmd.Context(), handle, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Stack:       %s\n", stack.StackName)
	fmt.Printf("Status:      %s\n", stack.Status)
	fmt.Printf("Created:     %s\n", stack.CreatedAt.Local().Format("2006-01-02 15:04-0700"))
	if stack.UpdatedAt != nil {
		fmt.Printf("Updated:     %s\n", stack.UpdatedAt.Local().Format("2006-01-02 15:04-0700"))
	}
	if stack.Description != "" {
		fmt.Printf("Description: %s\n", stack.Description)
	}
	return nil
}

func runStacksEvents(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	handle, err := resolveHandle(cmd, c, viper.GetString("default.account"), viper.GetString("default.region"))
	if err != nil {
		return err
	}

	events, err := c.Stacks().Events(cmd.Context(), handle, args[0], stacksEventLimit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		_ = tw.Flush()
	}()
	if _, err := fmt.Fprintln(tw, "TIMESTAMP\tLOGICAL ID\tTYPE\tSTATUS\tREASON"); err != nil {
		return err
	}
	for _, event := range events {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			event.Timestamp.Local().Format("2006-01-02 15:04:05"),
			event.LogicalID, event.ResourceType, event.Status, event.Reason); err != nil {
			return err
		}
	}
	return nil
}

func runStacksDelete(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	handle, err := resolveHandle(cmd, c, viper.GetString("default.account"), viper.GetString("default.region"))
	if err != nil {
		return err
	}

	if err := c.Stacks().Delete(cmd.Context(), handle, args[0]); err != nil {
		return err
	}

	utils.SuccessPrintf("Deletion started for stack %s", args[0])
	return nil
}

func runStacksDrift(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	handle, err := resolveHandle(cmd, c, viper.GetString("default.account"), viper.GetString("default.region"))
	if err != nil {
		return err
	}

	detectionID, err := c.Stacks().DetectDrift(cmd.Context(), handle, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Drift detection started: %s\n", detectionID)
	return nil
}
