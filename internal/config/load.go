package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
	sigyaml "sigs.k8s.io/yaml"
)

// DefaultConfigFilename is the variables file looked up when no path is given.
const DefaultConfigFilename = "gkectl.yaml"

// Load reads the variables file at path, applies documented defaults, and
// validates the result. The format is detected by extension: .tfvars files
// are parsed as flat key/value assignments, everything else as YAML.
func Load(path string) (*ClusterConfig, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]interface{}
	switch filepath.Ext(path) {
	case ".tfvars":
		raw, err = parseFlatVars(data)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var cfg ClusterConfig
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindConfigFile returns the default variables file in the working
// directory, walking up the directory tree like the rest of the tooling.
func FindConfigFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := cwd
	for {
		path := filepath.Join(dir, DefaultConfigFilename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("config file %s not found", DefaultConfigFilename)
}

// parseFlatVars parses the flat `key = value` assignment format used by
// variables files. Values may be bare numbers/booleans or quoted strings.
// Comments (# and //) and blank lines are ignored.
func parseFlatVars(data []byte) (map[string]interface{}, error) {
	vars := make(map[string]interface{})

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("line %d: expected `key = value`, got %q", lineNo, line)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", lineNo)
		}

		vars[key] = parseScalar(strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan variables: %w", err)
	}

	return vars, nil
}

// parseScalar interprets a single assignment value. Quoted strings keep
// their content verbatim; bare tokens are tried as bool, int, then string.
func parseScalar(s string) interface{} {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

// LoadDeployment reads and validates a chart values file.
func LoadDeployment(path string) (*DeploymentConfig, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file: %w", err)
	}

	return ParseDeployment(data)
}

// ParseDeployment parses chart values from YAML bytes.
func ParseDeployment(data []byte) (*DeploymentConfig, error) {
	var d DeploymentConfig
	if err := sigyaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse values: %w", err)
	}

	if d.ContainerPort == 0 {
		d.ContainerPort = DefaultContainerPort
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("values validation failed: %w", err)
	}

	return &d, nil
}

// Save writes a variables file in YAML form, used by `gkectl init`.
func Save(cfg *ClusterConfig, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
