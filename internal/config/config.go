// Package config defines the declarative inputs for a provisioning run:
// the cluster variables file and the chart values file.
package config

import (
	"errors"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
)

// Defaults mirror the documented literals of the variables file. Anything
// not listed here is required and its absence is a load-time error.
const (
	DefaultRegion      = "us-central1-a"
	DefaultClusterName = "media-generator-cluster"
	DefaultNodeCount   = 3
	DefaultMinNodes    = 1
	DefaultMaxNodes    = 10
	DefaultMachineType = "e2-medium"
	DefaultDiskSizeGB  = 30
	DefaultDiskType    = "pd-standard"
)

// NodePoolName is the fixed name of the managed node pool.
const NodePoolName = "primary-node-pool"

// DefaultOAuthScopes grants nodes write access to logging/monitoring and
// read access to GCR-backed storage.
var DefaultOAuthScopes = []string{
	"https://www.googleapis.com/auth/logging.write",
	"https://www.googleapis.com/auth/monitoring",
	"https://www.googleapis.com/auth/devstorage.read_only",
	"https://www.googleapis.com/auth/servicecontrol",
	"https://www.googleapis.com/auth/service.management.readonly",
	"https://www.googleapis.com/auth/trace.append",
}

// DefaultNodeLabels are applied to every node in the pool.
var DefaultNodeLabels = map[string]string{
	"env":     "dev",
	"project": "media-generator",
}

// ClusterConfig is the desired state of one GKE cluster. Loaded once from
// the variables file and immutable for the lifetime of a provisioning run.
type ClusterConfig struct {
	ProjectID   string `mapstructure:"project_id" yaml:"project_id"`
	Region      string `mapstructure:"region" yaml:"region"`
	ClusterName string `mapstructure:"cluster_name" yaml:"cluster_name"`

	// NodeCount is the initial pool size; MinNodes/MaxNodes bound the
	// autoscaler.
	NodeCount int `mapstructure:"node_count" yaml:"node_count"`
	MinNodes  int `mapstructure:"min_nodes" yaml:"min_nodes"`
	MaxNodes  int `mapstructure:"max_nodes" yaml:"max_nodes"`

	MachineType string `mapstructure:"machine_type" yaml:"machine_type"`
	Preemptible *bool  `mapstructure:"preemptible" yaml:"preemptible,omitempty"`
	DiskSizeGB  int    `mapstructure:"disk_size_gb" yaml:"disk_size_gb"`
	DiskType    string `mapstructure:"disk_type" yaml:"disk_type"`
}

// MissingKeyError reports required variables absent from the config file.
// It is returned before any cloud client is constructed.
type MissingKeyError struct {
	Keys []string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required config keys: %s", strings.Join(e.Keys, ", "))
}

// IsMissingKey reports whether err is (or wraps) a MissingKeyError.
func IsMissingKey(err error) bool {
	var mk *MissingKeyError
	return errors.As(err, &mk)
}

// applyDefaults fills unset fields with the documented literals.
func (c *ClusterConfig) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.ClusterName == "" {
		c.ClusterName = DefaultClusterName
	}
	if c.NodeCount == 0 {
		c.NodeCount = DefaultNodeCount
	}
	if c.MinNodes == 0 {
		c.MinNodes = DefaultMinNodes
	}
	if c.MaxNodes == 0 {
		c.MaxNodes = DefaultMaxNodes
	}
	if c.MachineType == "" {
		c.MachineType = DefaultMachineType
	}
	if c.Preemptible == nil {
		t := true
		c.Preemptible = &t
	}
	if c.DiskSizeGB == 0 {
		c.DiskSizeGB = DefaultDiskSizeGB
	}
	if c.DiskType == "" {
		c.DiskType = DefaultDiskType
	}
}

// Validate checks structural consistency of the loaded config. Semantic
// correctness (region spelling, machine type availability) is left to the
// provider, which reports it on first use.
func (c *ClusterConfig) Validate() error {
	var errs []error

	var missing []string
	if c.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if len(missing) > 0 {
		return &MissingKeyError{Keys: missing}
	}

	if c.NodeCount < 1 {
		errs = append(errs, errors.New("node_count must be at least 1"))
	}
	if c.MinNodes < 1 {
		errs = append(errs, errors.New("min_nodes must be at least 1"))
	}
	if c.MaxNodes < c.MinNodes {
		errs = append(errs, fmt.Errorf("max_nodes (%d) must not be below min_nodes (%d)", c.MaxNodes, c.MinNodes))
	}
	if c.NodeCount < c.MinNodes || c.NodeCount > c.MaxNodes {
		errs = append(errs, fmt.Errorf("node_count (%d) must be within [min_nodes, max_nodes] = [%d, %d]", c.NodeCount, c.MinNodes, c.MaxNodes))
	}
	if c.DiskSizeGB < 10 {
		errs = append(errs, errors.New("disk_size_gb must be at least 10"))
	}

	return errors.Join(errs...)
}

// WorkloadPool returns the Workload Identity pool for the project.
func (c *ClusterConfig) WorkloadPool() string {
	return c.ProjectID + ".svc.id.goog"
}

// IsPreemptible reports whether the node pool uses preemptible instances.
func (c *ClusterConfig) IsPreemptible() bool {
	return c.Preemptible == nil || *c.Preemptible
}

// DeploymentConfig parameterizes one Helm release of the application
// chart. One values file maps to one release.
type DeploymentConfig struct {
	Image struct {
		Repository string `yaml:"repository" json:"repository"`
		Tag        string `yaml:"tag" json:"tag"`
	} `yaml:"image" json:"image"`

	ReplicaCount int `yaml:"replicaCount" json:"replicaCount"`

	Service struct {
		Type string `yaml:"type" json:"type"`
		Port int    `yaml:"port" json:"port"`
	} `yaml:"service" json:"service"`

	// ContainerPort is the port the application listens on inside the
	// pod. Defaults to 5001, the media-generator listen port.
	ContainerPort int `yaml:"containerPort" json:"containerPort"`
}

// DefaultContainerPort is the media-generator listen port.
const DefaultContainerPort = 5001

// validServiceTypes are the service topologies the chart supports.
var validServiceTypes = map[corev1.ServiceType]bool{
	corev1.ServiceTypeClusterIP:    true,
	corev1.ServiceTypeNodePort:     true,
	corev1.ServiceTypeLoadBalancer: true,
}

// Validate checks the values file against the chart's contract.
func (d *DeploymentConfig) Validate() error {
	var errs []error

	if d.Image.Repository == "" {
		errs = append(errs, errors.New("image.repository is required"))
	}
	if d.Image.Tag == "" {
		errs = append(errs, errors.New("image.tag is required"))
	}
	if d.ReplicaCount < 1 {
		errs = append(errs, errors.New("replicaCount must be at least 1"))
	}
	if !validServiceTypes[corev1.ServiceType(d.Service.Type)] {
		errs = append(errs, fmt.Errorf("service.type must be one of ClusterIP, NodePort, LoadBalancer (got %q)", d.Service.Type))
	}
	if d.Service.Port < 1 || d.Service.Port > 65535 {
		errs = append(errs, fmt.Errorf("service.port must be a valid port (got %d)", d.Service.Port))
	}
	if d.ContainerPort < 0 || d.ContainerPort > 65535 {
		errs = append(errs, fmt.Errorf("containerPort must be a valid port (got %d)", d.ContainerPort))
	}

	return errors.Join(errs...)
}
