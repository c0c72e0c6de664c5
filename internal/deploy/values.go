package deploy

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mediagen/gkectl/internal/config"
)

// Values represents helm chart values as a map.
type Values map[string]any

// ValuesFrom maps the deployment values file onto the chart's value tree.
func ValuesFrom(d *config.DeploymentConfig) Values {
	return Values{
		"image": Values{
			"repository": d.Image.Repository,
			"tag":        d.Image.Tag,
		},
		"replicaCount": d.ReplicaCount,
		"service": Values{
			"type": d.Service.Type,
			"port": d.Service.Port,
		},
		"containerPort": d.ContainerPort,
	}
}

// Merge combines value maps with later maps taking precedence.
func Merge(valueMaps ...Values) Values {
	result := make(Values)
	for _, m := range valueMaps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

// ToMap converts nested Values into plain map[string]interface{} so the
// helm engine can walk them.
func (v Values) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(v))
	for k, val := range v {
		if nested, ok := val.(Values); ok {
			out[k] = nested.ToMap()
			continue
		}
		out[k] = val
	}
	return out
}

// ToYAML serializes values for display (`deploy --dry-run` header output).
func (v Values) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode values to YAML: %w", err)
	}

	return buf.Bytes(), nil
}
