package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/disburse/internal/accounts"
)

func newAccountsCommand() *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Reference account operations",
	}
	accountsCmd.AddCommand(newAccountsListCommand())
	return accountsCmd
}

func newAccountsListCommand() *cobra.Command {
	var (
		wd        workdir
		ownership string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List platform-fee and expense accounts by ownership",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := wd.load()
			if err != nil {
				return err
			}

			svc, err := accounts.Load(resolvePath(root, cfg.ReferenceAccounts.Path))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(svc.All()) == 0 {
				fmt.Fprintln(out, "No reference accounts configured.")
				return nil
			}

			owners := svc.Ownerships()
			if ownership != "" {
				if !svc.Exists(ownership) {
					return fmt.Errorf("no reference accounts for ownership %q", ownership)
				}
				owners = []string{ownership}
			}

			fmt.Fprintf(out, "%-16s %-13s %-20s %-26s %s\n", "OWNERSHIP", "ROLE", "ACCOUNT #", "NAME", "TYPE")
			for _, own := range owners {
				for _, e := range svc.All() {
					if e.Ownership != own {
						continue
					}
					fmt.Fprintf(out, "%-16s %-13s %-20s %-26s %s\n",
						e.Ownership, e.Role, e.Account.AccountNum, e.Account.AccountName, e.Account.AccountType)
				}
			}
			return nil
		},
	}

	wd.addFlags(cmd)
	cmd.Flags().StringVar(&ownership, "ownership", "", "only list accounts of this ownership")
	return cmd
}
