package handlers

import (
	"context"
	"fmt"

	"github.com/mediagen/gkectl/internal/provision"
)

// Kubeconfig materializes credentials for an existing cluster without
// touching any cloud resources. The cluster must already exist.
func Kubeconfig(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	svc, err := newClusterService(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return fmt.Errorf("failed to create GKE client: %w", err)
	}

	cluster, err := svc.GetCluster(ctx, cfg.ClusterName)
	if err != nil {
		return fmt.Errorf("failed to look up cluster: %w", err)
	}
	if cluster == nil {
		return fmt.Errorf("cluster %q does not exist; run 'gkectl apply' to create it", cfg.ClusterName)
	}

	state := &provision.State{Endpoint: cluster.Endpoint}
	if cluster.MasterAuth != nil {
		state.CACert = cluster.MasterAuth.ClusterCaCertificate
	}

	artifact, err := materializeCredentials(cfg.ClusterName, state)
	if err != nil {
		return err
	}

	fmt.Printf("Kubeconfig saved to: %s\n", artifact.Path)
	fmt.Printf("Wrapper script saved to: %s\n", artifact.WrapperPath)
	return nil
}
