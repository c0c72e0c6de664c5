// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/mediagen/gkectl/internal/config"
	"github.com/mediagen/gkectl/internal/gke"
	"github.com/mediagen/gkectl/internal/kubeconfig"
	"github.com/mediagen/gkectl/internal/provision"
)

// Reconciler interface for testing - matches provision.Reconciler.
type Reconciler interface {
	Reconcile(ctx context.Context) (*provision.State, error)
	Destroy(ctx context.Context) error
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads the cluster variables file.
	loadConfigFile = config.Load

	// findConfigFile locates the default variables file.
	findConfigFile = config.FindConfigFile

	// newClusterService creates a GKE API client with Application Default
	// Credentials.
	newClusterService = func(ctx context.Context, project, location string) (gke.ClusterService, error) {
		return gke.NewRealClient(ctx, project, location)
	}

	// newReconciler creates a provisioning reconciler.
	newReconciler = func(svc gke.ClusterService, cfg *config.ClusterConfig) Reconciler {
		return provision.NewReconciler(svc, cfg)
	}

	// buildKubeconfig renders the credentials file for a cluster.
	buildKubeconfig = kubeconfig.Build

	// writeKubeconfig persists the credentials file and kubectl wrapper.
	writeKubeconfig = kubeconfig.Write
)

// Apply provisions a GKE cluster and materializes its credentials.
//
// The workflow:
//  1. Loads and validates the cluster variables file (missing required
//     keys fail here, before any cloud client exists).
//  2. Creates a GKE client using Application Default Credentials.
//  3. Reconciles cluster and node pool; re-applying unchanged config
//     makes no mutating calls.
//  4. Writes the kubeconfig and a kubectl wrapper script next to the
//     working directory.
func Apply(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log.Printf("Applying configuration for cluster: %s", cfg.ClusterName)

	svc, err := newClusterService(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return fmt.Errorf("failed to create GKE client: %w", err)
	}

	state, err := newReconciler(svc, cfg).Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	artifact, err := materializeCredentials(cfg.ClusterName, state)
	if err != nil {
		return err
	}

	printApplySuccess(cfg, artifact)
	return nil
}

// loadConfig loads and validates the cluster variables file. If
// configPath is empty it looks for gkectl.yaml in the current directory
// and its parents.
func loadConfig(configPath string) (*config.ClusterConfig, error) {
	if configPath == "" {
		path, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w\nRun 'gkectl init' to create one", err)
		}
		configPath = path
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// materializeCredentials renders and writes the kubeconfig plus wrapper
// script from reconciliation state.
func materializeCredentials(clusterName string, state *provision.State) (*kubeconfig.Artifact, error) {
	data, err := buildKubeconfig(clusterName, state.Endpoint, state.CACert)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}

	artifact, err := writeKubeconfig(clusterName, data)
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

func printApplySuccess(cfg *config.ClusterConfig, artifact *kubeconfig.Artifact) {
	fmt.Printf("\nReconciliation complete!\n")
	fmt.Printf("Cluster: %s (%s, project %s)\n", cfg.ClusterName, cfg.Region, cfg.ProjectID)
	fmt.Printf("Kubeconfig saved to: %s\n", artifact.Path)
	fmt.Printf("\nYou can now access your cluster with:\n")
	fmt.Printf("  ./%s get nodes\n", artifact.WrapperPath)
	fmt.Printf("\nOr directly:\n")
	fmt.Printf("  kubectl --kubeconfig %s get nodes\n", artifact.Path)
	fmt.Printf("\nNext, build and deploy the application:\n")
	fmt.Printf("  gkectl image --context ./app -t v1\n")
	fmt.Printf("  gkectl deploy -f deployment.yaml\n")
}
