package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudops/cloud-console-tool/internal/deploy"
	"github.com/cloudops/cloud-console-tool/internal/models"
	"github.com/cloudops/cloud-console-tool/internal/utils"
	"github.com/cloudops/cloud-console-tool/internal/validation"
)

var (
	deployEnvironment string
	deployStatus      string
	deployOldest      bool
	deployLimit       int

	triggerRepo        string
	triggerBranch      string
	triggerEnvironment string
	triggerStack       string
	triggerParams      string
	triggerApprove     bool
	triggerNoApprove   bool
)

var deploymentsCmd = &cobra.Command{
	Use:   "deployments",
	Short: "Track and manage deployment pipelines",
	Long:  `List deployment pipeline runs, approve or reject pending production deployments and trigger new runs.`,
}

var deploymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent deployments",
	RunE:  runDeploymentsList,
}

var deploymentsPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List deployments awaiting approval",
	RunE:  runDeploymentsPending,
}

var deploymentsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show promotion history grouped by commit",
	RunE:  runDeploymentsHistory,
}

var deploymentsApproveCmd = &cobra.Command{
	Use:   "approve <pipeline-id>",
	Short: "Approve a pending deployment",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeploymentsApprove,
}

var deploymentsRejectCmd = &cobra.Command{
	Use:   "reject <pipeline-id>",
	Short: "Reject a pending deployment",
	Long:  `Reject a deployment that is awaiting approval. A reason is required and is recorded on the deployment.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDeploymentsReject,
}

var deploymentsTriggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Trigger a new deployment",
	RunE:  runDeploymentsTrigger,
}

var rejectReason string

func init() {
	rootCmd.AddCommand(deploymentsCmd)
	deploymentsCmd.AddCommand(deploymentsListCmd)
	deploymentsCmd.AddCommand(deploymentsPendingCmd)
	deploymentsCmd.AddCommand(deploymentsHistoryCmd)
	deploymentsCmd.AddCommand(deploymentsApproveCmd)
	deploymentsCmd.AddCommand(deploymentsRejectCmd)
	deploymentsCmd.AddCommand(deploymentsTriggerCmd)

	deploymentsListCmd.Flags().StringVar(&deployEnvironment, "environment", "", "Filter by environment")
	deploymentsListCmd.Flags().StringVar(&deployStatus, "status", "", "Filter by status")
	deploymentsListCmd.Flags().BoolVar(&deployOldest, "oldest-first", false, "Sort oldest first")
	deploymentsListCmd.Flags().IntVar(&deployLimit, "limit", 20, "Maximum records to fetch from the provider")

	deploymentsRejectCmd.Flags().StringVar(&rejectReason, "reason", "", "Reason for rejection (required)")

	deploymentsTriggerCmd.Flags().StringVar(&triggerRepo, "repo", "", "Repository to deploy (required)")
	deploymentsTriggerCmd.Flags().StringVar(&triggerBranch, "branch", "main", "Branch to deploy")
	deploymentsTriggerCmd.Flags().StringVar(&triggerEnvironment, "environment", "", "Target environment (required)")
	deploymentsTriggerCmd.Flags().StringVar(&triggerStack, "stack", "", "Stack the deployment manages")
	deploymentsTriggerCmd.Flags().StringVar(&triggerParams, "parameters", "", "Pipeline parameters as a JSON object")
	deploymentsTriggerCmd.Flags().BoolVar(&triggerApprove, "require-approval", false, "Require approval regardless of environment policy")
	deploymentsTriggerCmd.Flags().BoolVar(&triggerNoApprove, "no-approval", false, "Skip approval regardless of environment policy")
}

func runDeploymentsList(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStringInSlice(deployStatus,
		[]string{"running", "success", "failed", "pending_approval"}, "status"); err != nil {
		return err
	}

	registry := c.Deployments()
	if err := registry.Refresh(cmd.Context(), deployLimit); err != nil {
		return err
	}

	order := deploy.NewestFirst
	if deployOldest {
		order = deploy.OldestFirst
	}
	deployments := registry.List(deploy.Filter{
		Environment: deployEnvironment,
		Status:      models.DeploymentStatus(deployStatus),
	}, order)

	formatter := utils.NewFormatter(outputFormat(c))
	if err := formatter.FormatDeployments(deployments, os.Stdout); err != nil {
		return err
	}

	if registry.Source() == models.SourceDemo {
		fmt.Println()
		utils.WarningPrintf("Showing demo data; configure a provider for live deployments")
	}
	return nil
}

func runDeploymentsPending(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	registry := c.Deployments()
	if err := registry.Refresh(cmd.Context(), deployLimit); err != nil {
		return err
	}

	pending := registry.Pending()
	if len(pending) == 0 {
		fmt.Println("No deployments awaiting approval")
		return nil
	}

	now := time.Now()
	for _, d := range pending {
		fmt.Printf("%s  %s  %s\n", utils.Highlight(d.PipelineID), d.Environment, d.CommitHash)
		fmt.Printf("  %s by %s\n", d.CommitMessage, d.Author)
		fmt.Printf("  waiting for %s\n", d.WaitingFor(now).Round(time.Minute))
		if d.ChangeSetURL != "" {
			fmt.Printf("  change set: %s\n", d.ChangeSetURL)
		}
		fmt.Println()
	}
	return nil
}

func runDeploymentsHistory(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	registry := c.Deployments()
	if err := registry.Refresh(cmd.Context(), deployLimit); err != nil {
		return err
	}

	for _, group := range registry.GroupByCommit() {
		first := group.Deployments[0]
		fmt.Printf("%s  %s\n", utils.Highlight(group.CommitHash), first.CommitMessage)
		for _, d := range group.Deployments {
			fmt.Printf("  %s  %-12s %s  %s\n",
				d.TriggeredAt.Local().Format("2006-01-02 15:04"),
				d.Environment,
				utils.StatusColorText(d.Status),
				d.PipelineID)
		}
		fmt.Println()
	}
	return nil
}

func runDeploymentsApprove(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	d, err := c.Deployments().Approve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	utils.SuccessPrintf("Deployment %s approved; now %s", d.PipelineID, d.Status)
	return nil
}

func runDeploymentsReject(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	validator := validation.NewValidator()
	if err := validator.ValidateRejectionReason(rejectReason); err != nil {
		return err
	}

	d, err := c.Deployments().Reject(cmd.Context(), args[0], rejectReason)
	if err != nil {
		return err
	}

	utils.SuccessPrintf("Deployment %s rejected: %s", d.PipelineID, d.RejectionReason)
	return nil
}

func runDeploymentsTrigger(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	validator := validation.NewValidator()
	if err := validator.ValidateRequiredString(triggerRepo, "repo"); err != nil {
		return err
	}
	if err := validator.ValidateEnvironment(triggerEnvironment); err != nil {
		return err
	}
	parameters, err := validator.ParseTriggerParameters(triggerParams)
	if err != nil {
		return err
	}

	input := deploy.TriggerInput{
		Repository:  triggerRepo,
		Branch:      triggerBranch,
		Environment: triggerEnvironment,
		StackName:   triggerStack,
		Parameters:  parameters,
	}
	if triggerApprove {
		v := true
		input.RequireApproval = &v
	} else if triggerNoApprove {
		v := false
		input.RequireApproval = &v
	}

	d, err := c.Deployments().Trigger(cmd.Context(), input)
	if err != nil {
		return err
	}

	utils.SuccessPrintf("Triggered %s (%s)", d.PipelineID, d.Status)
	if d.PipelineURL != "" {
		fmt.Printf("Pipeline: %s\n", d.PipelineURL)
	}
	return nil
}
