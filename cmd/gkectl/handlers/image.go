package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/mediagen/gkectl/internal/config"
	"github.com/mediagen/gkectl/internal/image"
)

// ImageName is the repository name the application image is pushed under.
const ImageName = "media-generator"

// buildAndPush assembles and pushes an image, for testing injection.
var buildAndPush = image.BuildAndPush

// ImageOptions are the flags of the image command.
type ImageOptions struct {
	ConfigPath string
	ContextDir string
	Tag        string
	Registry   string
	BaseImage  string
}

// Image builds the application image from a local context directory and
// pushes it to the project registry. Registry and auth errors pass
// through from the registry client.
func Image(ctx context.Context, opts ImageOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	ref := image.Reference(opts.Registry, cfg.ProjectID, ImageName, opts.Tag)
	log.Printf("Building image %s from %s", ref, opts.ContextDir)

	digest, err := buildAndPush(ctx, ref, image.BuildOptions{
		BaseImage:  opts.BaseImage,
		ContextDir: opts.ContextDir,
		Port:       config.DefaultContainerPort,
	})
	if err != nil {
		return fmt.Errorf("image build failed: %w", err)
	}

	fmt.Printf("\nPushed %s\n", ref)
	fmt.Printf("Digest: %s\n", digest)
	fmt.Printf("\nDeploy it with:\n")
	fmt.Printf("  gkectl deploy -f deployment.yaml\n")
	return nil
}
