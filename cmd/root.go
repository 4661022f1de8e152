package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudops/cloud-console-tool/internal/config"
	"github.com/cloudops/cloud-console-tool/internal/deploy"
	"github.com/cloudops/cloud-console-tool/internal/logger"
	"github.com/cloudops/cloud-console-tool/internal/session"
	"github.com/cloudops/cloud-console-tool/internal/utils"
	"github.com/cloudops/cloud-console-tool/internal/validation"
	"github.com/cloudops/cloud-console-tool/pkg/console"
)

var (
	cfgFile string
	debug   bool
	noColor bool
	rootCmd = &cobra.Command{
		Use:   "cloud-console",
		Short: "Operator console for multi-account cloud infrastructure",
		Long:  `A CLI console for browsing resources and managing deployment pipelines across multiple AWS accounts.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Set color output based on flag
			utils.SetColorOutput(!noColor)
			return logger.InitLogger(debug)
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cloud-console.yaml)")
	rootCmd.PersistentFlags().String("account", "", "account id or name")
	rootCmd.PersistentFlags().String("region", "", "region (a concrete region; 'all' is only valid for browse views)")
	rootCmd.PersistentFlags().String("output", "", "output format: table, json, csv")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Bind flags to viper
	if err := viper.BindPFlag("default.account", rootCmd.PersistentFlags().Lookup("account")); err != nil {
		fmt.Printf("Error binding account flag: %v\n", err)
	}
	if err := viper.BindPFlag("default.region", rootCmd.PersistentFlags().Lookup("region")); err != nil {
		fmt.Printf("Error binding region flag: %v\n", err)
	}
	if err := viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output")); err != nil {
		fmt.Printf("Error binding output flag: %v\n", err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".cloud-console" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cloud-console")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logger.GetLogger().Debug("Using config file: " + viper.ConfigFileUsed())
	}
}

// newConsole loads configuration and builds the console session with the
// configured deployment provider
func newConsole(cmd *cobra.Command) (*console.Console, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStringInSlice(cfg.Output.Format, []string{"table", "json", "csv"}, "output format"); err != nil {
		return nil, err
	}

	opts := console.Options{}
	if cfg.Provider.Name == "codepipeline" {
		provider, err := buildCodePipelineProvider(cmd, cfg)
		if err != nil {
			return nil, err
		}
		opts.Provider = provider
	}

	return console.New(cfg, opts), nil
}

// buildCodePipelineProvider resolves a session against the account that
// hosts the deployment pipeline and wires the live provider to it
func buildCodePipelineProvider(cmd *cobra.Command, cfg *config.Config) (deploy.Provider, error) {
	c := console.New(cfg, console.Options{})
	handle, err := c.Resolve(cmd.Context(), cfg.Provider.Account, cfg.Provider.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to deployment provider: %w", err)
	}
	return deploy.NewCodePipelineProvider(handle.Client.CodePipeline, cfg.Provider.Pipeline, cfg.Provider.Region), nil
}

// resolveHandle resolves the account/region pair given on the command line
func resolveHandle(cmd *cobra.Command, c *console.Console, accountFlag, regionFlag string) (*session.Handle, error) {
	if err := validation.NewValidator().ValidateRegion(regionFlag); err != nil {
		return nil, err
	}
	accountID, err := accountIDForFlag(c.Config(), accountFlag)
	if err != nil {
		return nil, err
	}
	return c.Resolve(cmd.Context(), accountID, regionFlag)
}

// accountIDForFlag maps a configured account name or id to the account id.
// Values not in the configuration must at least look like an account id
// before they reach the session layer, which reports not-found for them.
func accountIDForFlag(cfg *config.Config, flag string) (string, error) {
	if account, ok := cfg.FindAccount(flag); ok {
		return account.ID, nil
	}
	if err := validation.NewValidator().ValidateAccountID(flag); err != nil {
		return "", err
	}
	return flag, nil
}

func outputFormat(c *console.Console) string {
	format := c.Config().Output.Format
	if format == "" {
		format = "table"
	}
	return format
}
