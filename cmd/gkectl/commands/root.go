// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated
// to handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the gkectl CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gkectl",
		Short: "Provision GKE clusters and deploy the media-generator app",
	}

	cmd.AddCommand(Init())
	cmd.AddCommand(Apply())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Kubeconfig())
	cmd.AddCommand(Image())
	cmd.AddCommand(Deploy())
	cmd.AddCommand(Version())

	return cmd
}
