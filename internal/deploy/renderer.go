package deploy

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/engine"
)

// Render renders the embedded chart with the given values and returns the
// combined manifests. Used by `deploy --dry-run` and by tests that assert
// on the rendered topology.
func Render(values Values, namespace string) ([]byte, error) {
	ch, err := LoadChart()
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return renderChart(ch, values, namespace)
}

func renderChart(ch *chart.Chart, values Values, namespace string) ([]byte, error) {
	// Merge over the chart's values.yaml so partial value sets render.
	merged := deepMerge(Values(ch.Values), values)

	releaseOptions := chartutil.ReleaseOptions{
		Name:      ReleaseName,
		Namespace: namespace,
		IsInstall: true,
	}

	valuesToRender, err := chartutil.ToRenderValues(ch, chartutil.Values(merged.ToMap()), releaseOptions, chartutil.DefaultCapabilities.Copy())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare render values: %w", err)
	}

	eng := engine.Engine{}
	rendered, err := eng.Render(ch, valuesToRender)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	var combined bytes.Buffer
	for name, content := range rendered {
		if filepath.Base(name) == "NOTES.txt" {
			continue
		}
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			continue
		}
		if combined.Len() > 0 {
			combined.WriteString("\n---\n")
		}
		combined.WriteString(trimmed)
		combined.WriteString("\n")
	}

	return combined.Bytes(), nil
}

// deepMerge overlays b onto a recursively. Nested maps merge; everything
// else in b wins.
func deepMerge(a, b Values) Values {
	out := make(Values, len(a))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		bm, bok := toValues(v)
		am, aok := toValues(out[k])
		if bok && aok {
			out[k] = deepMerge(am, bm)
			continue
		}
		out[k] = v
	}
	return out
}

func toValues(v any) (Values, bool) {
	switch m := v.(type) {
	case Values:
		return m, true
	case map[string]interface{}:
		return Values(m), true
	default:
		return nil, false
	}
}
