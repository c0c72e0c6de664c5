package commands

import (
	"github.com/spf13/cobra"

	"github.com/mediagen/gkectl/cmd/gkectl/handlers"
	"github.com/mediagen/gkectl/internal/image"
)

// Image returns the command for building and pushing the application image.
func Image() *cobra.Command {
	opts := handlers.ImageOptions{}

	cmd := &cobra.Command{
		Use:   "image",
		Short: "Build and push the application image",
		Long: `Package a local application directory into a container image and push
it to the project registry as <registry>/<project>/media-generator:<tag>.

Registry credentials come from the default keychain (gcloud auth
configure-docker, or a docker config.json).

Examples:
  # Push gcr.io/<project>/media-generator:v1 from ./app
  gkectl image --context ./app -t v1

  # Layer on top of a base image
  gkectl image --context ./app -t v1 --base python:3.12-slim`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Image(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: gkectl.yaml)")
	cmd.Flags().StringVar(&opts.ContextDir, "context", ".", "Application directory to package")
	cmd.Flags().StringVarP(&opts.Tag, "tag", "t", "latest", "Image tag")
	cmd.Flags().StringVar(&opts.Registry, "registry", image.DefaultRegistry, "Target registry host")
	cmd.Flags().StringVar(&opts.BaseImage, "base", "", "Base image reference (default: start from scratch)")

	return cmd
}
