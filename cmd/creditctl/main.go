// Command creditctl is the operator CLI for the credit scoring service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "creditctl",
		Short: "Operate the credit risk scoring service",
		Long: `creditctl scores applicants offline, validates engine policy files,
mints development tokens, tails assessment events and generates TLS
certificates for local deployments.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newScoreCmd(),
		newPolicyCmd(),
		newTokenCmd(),
		newEventsCmd(),
		newCertsCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
