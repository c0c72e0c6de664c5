package commands

import (
	"github.com/spf13/cobra"

	"github.com/mediagen/gkectl/cmd/gkectl/handlers"
)

// Destroy returns the command for tearing down the cluster.
func Destroy() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the cluster and its node pool",
		Long: `Delete the node pool and cluster named in the configuration file,
in that order, and remove the local kubeconfig artifacts.

Resources that no longer exist are skipped, so a partially failed
destroy can simply be re-run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: gkectl.yaml)")

	return cmd
}
