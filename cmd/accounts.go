package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List configured accounts",
	Long:  `List the accounts this console is configured to operate on, with their enabled regions.`,
	RunE:  runAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, args []string) error {
	c, err := newConsole(cmd)
	if err != nil {
		return err
	}

	accounts := c.Accounts()
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		_ = tw.Flush()
	}()

	if _, err := fmt.Fprintln(tw, "ACCOUNT ID\tNAME\tREGIONS"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, "----------\t----\t-------"); err != nil {
		return err
	}
	for _, account := range accounts {
		regions := "all"
		if len(account.Regions) > 0 {
			regions = strings.Join(account.Regions, ",")
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", account.ID, account.Name, regions); err != nil {
			return err
		}
	}

	return nil
}
