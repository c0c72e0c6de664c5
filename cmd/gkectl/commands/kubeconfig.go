package commands

import (
	"github.com/spf13/cobra"

	"github.com/mediagen/gkectl/cmd/gkectl/handlers"
)

// Kubeconfig returns the command for materializing cluster credentials.
func Kubeconfig() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "kubeconfig",
		Short: "Write credentials for an existing cluster",
		Long: `Fetch the endpoint and CA of an existing cluster and write its
kubeconfig plus a kubectl wrapper script.

The file names are derived from the cluster name alone, so re-running
this command always targets the same files. The cluster must already
exist; use 'gkectl apply' to create it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Kubeconfig(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: gkectl.yaml)")

	return cmd
}
