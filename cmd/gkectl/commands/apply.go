package commands

import (
	"github.com/spf13/cobra"

	"github.com/mediagen/gkectl/cmd/gkectl/handlers"
)

// Apply returns the command for provisioning the cluster.
//
// Optional flags:
//
//	--config, -c: Path to the cluster variables file (default: auto-detect gkectl.yaml)
//
// Authentication uses Application Default Credentials; run
// 'gcloud auth application-default login' first.
func Apply() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update the cluster",
		Long: `Create or update your GKE cluster.

This command provisions the cluster and its autoscaling node pool, then
writes a kubeconfig and a kubectl wrapper script for it.

If no config file is specified, it looks for gkectl.yaml in the current
directory. Use 'gkectl init' to create a configuration file. A
terraform.tfvars-style file with flat key = value lines also works.

Examples:
  # Create cluster using gkectl.yaml in current directory
  gkectl apply

  # Create cluster using a specific config file
  gkectl apply -c production.yaml

  # Re-apply after configuration changes
  gkectl apply`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: gkectl.yaml)")

	return cmd
}
