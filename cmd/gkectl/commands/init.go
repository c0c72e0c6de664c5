package commands

import (
	"github.com/spf13/cobra"

	"github.com/mediagen/gkectl/cmd/gkectl/handlers"
)

// Init returns the command that generates a starter configuration file.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Long: `Walk through a short wizard and write a cluster configuration file.

Only the essentials are asked; everything else keeps its documented
default and can be edited in the generated file afterwards.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "gkectl.yaml", "Where to write the configuration file")

	return cmd
}
