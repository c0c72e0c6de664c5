// Package deploy installs the application chart onto the cluster through
// the Helm SDK. The chart ships embedded in the binary so a deploy needs
// nothing on disk beyond the values file.
package deploy

import (
	"embed"
	"fmt"
	"io/fs"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
)

//go:embed all:chart
var chartFS embed.FS

// ReleaseName is the fixed helm release the deployer manages.
const ReleaseName = "media-generator"

// DefaultNamespace is where the application is installed.
const DefaultNamespace = "default"

// LoadChart parses the embedded application chart.
func LoadChart() (*chart.Chart, error) {
	var files []*loader.BufferedFile

	err := fs.WalkDir(chartFS, "chart", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		data, err := chartFS.ReadFile(path)
		if err != nil {
			return err
		}

		// Helm expects paths relative to the chart root.
		files = append(files, &loader.BufferedFile{
			Name: path[len("chart/"):],
			Data: data,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded chart: %w", err)
	}

	ch, err := loader.LoadFiles(files)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded chart: %w", err)
	}

	return ch, nil
}
