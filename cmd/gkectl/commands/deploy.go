package commands

import (
	"github.com/spf13/cobra"

	"github.com/mediagen/gkectl/cmd/gkectl/handlers"
	"github.com/mediagen/gkectl/internal/deploy"
)

// Deploy returns the command for installing or upgrading the application
// release.
func Deploy() *cobra.Command {
	opts := handlers.DeployOptions{}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Install or upgrade the application release",
		Long: `Install or upgrade the media-generator chart on the cluster,
parameterized by a values file (image, replica count, service type).

The release targets the cluster whose kubeconfig was written by
'gkectl apply' or 'gkectl kubeconfig'.

Examples:
  # Deploy with values from deployment.yaml
  gkectl deploy -f deployment.yaml

  # Render the manifests locally without a cluster
  gkectl deploy -f deployment.yaml --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: gkectl.yaml)")
	cmd.Flags().StringVarP(&opts.ValuesPath, "values", "f", "deployment.yaml", "Path to the chart values file")
	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", deploy.DefaultNamespace, "Target namespace")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Render manifests locally instead of deploying")

	return cmd
}
