// Package image packages the application directory as a container image
// layer and pushes the result to the project registry.
package image

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/empty"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
)

// DefaultRegistry hosts project images unless overridden.
const DefaultRegistry = "gcr.io"

// BuildOptions describe one image build.
type BuildOptions struct {
	// BaseImage is pulled and extended; empty means start from scratch.
	BaseImage string
	// ContextDir is the local directory packaged into the new layer.
	ContextDir string
	// TargetPath is where the context lands inside the image.
	TargetPath string
	// Entrypoint overrides the base image entrypoint when non-empty.
	Entrypoint []string
	// Port is exposed on the image config when non-zero.
	Port int
}

// Reference formats the canonical image reference for a project image.
func Reference(registry, project, imageName, tag string) string {
	if registry == "" {
		registry = DefaultRegistry
	}
	return fmt.Sprintf("%s/%s/%s:%s", registry, project, imageName, tag)
}

// BuildAndPush assembles the image and pushes it, returning the digest.
// Registry and auth errors pass through from the registry client.
func BuildAndPush(ctx context.Context, ref string, opts BuildOptions) (string, error) {
	img, err := Build(ctx, opts)
	if err != nil {
		return "", err
	}

	tag, err := name.ParseReference(ref)
	if err != nil {
		return "", fmt.Errorf("invalid image reference %q: %w", ref, err)
	}

	if err := remote.Write(tag, img,
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(authn.DefaultKeychain),
	); err != nil {
		return "", fmt.Errorf("failed to push %s: %w", ref, err)
	}

	digest, err := img.Digest()
	if err != nil {
		return "", fmt.Errorf("failed to compute image digest: %w", err)
	}

	return digest.String(), nil
}

// Build produces the image in memory without pushing it.
func Build(ctx context.Context, opts BuildOptions) (v1.Image, error) {
	base := empty.Image
	if opts.BaseImage != "" {
		baseRef, err := name.ParseReference(opts.BaseImage)
		if err != nil {
			return nil, fmt.Errorf("invalid base image %q: %w", opts.BaseImage, err)
		}
		base, err = remote.Image(baseRef,
			remote.WithContext(ctx),
			remote.WithAuthFromKeychain(authn.DefaultKeychain),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to pull base image %s: %w", opts.BaseImage, err)
		}
	}

	target := opts.TargetPath
	if target == "" {
		target = "/app"
	}

	layer, err := LayerFromDir(opts.ContextDir, target)
	if err != nil {
		return nil, err
	}

	img, err := mutate.AppendLayers(base, layer)
	if err != nil {
		return nil, fmt.Errorf("failed to append application layer: %w", err)
	}

	cfgFile, err := img.ConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to read image config: %w", err)
	}
	cfg := cfgFile.DeepCopy()
	cfg.Config.WorkingDir = target
	if len(opts.Entrypoint) > 0 {
		cfg.Config.Entrypoint = opts.Entrypoint
		cfg.Config.Cmd = nil
	}
	if opts.Port != 0 {
		if cfg.Config.ExposedPorts == nil {
			cfg.Config.ExposedPorts = map[string]struct{}{}
		}
		cfg.Config.ExposedPorts[fmt.Sprintf("%d/tcp", opts.Port)] = struct{}{}
	}

	img, err = mutate.ConfigFile(img, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to update image config: %w", err)
	}

	return img, nil
}

// LayerFromDir tars dir under target and wraps it as an image layer.
// Symlinks are preserved; file modes are kept as-is.
func LayerFromDir(dir, target string) (v1.Layer, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = strings.TrimPrefix(filepath.ToSlash(filepath.Join(target, rel)), "/")

		if info.Mode()&os.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			hdr.Linkname = link
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		// #nosec G304
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to package %s: %w", dir, err)
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize layer tar: %w", err)
	}

	data := buf.Bytes()
	return tarball.LayerFromOpener(func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}
