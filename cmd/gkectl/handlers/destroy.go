package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mediagen/gkectl/internal/kubeconfig"
)

// removeFile deletes a file, for testing injection.
var removeFile = os.Remove

// Destroy tears down the node pool and cluster, in that order, and
// removes the local credential artifacts. Resources already absent are
// tolerated so a failed destroy can be re-run.
func Destroy(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log.Printf("Destroying cluster: %s", cfg.ClusterName)

	svc, err := newClusterService(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return fmt.Errorf("failed to create GKE client: %w", err)
	}

	if err := newReconciler(svc, cfg).Destroy(ctx); err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}

	// Best effort; the cluster is already gone.
	for _, path := range []string{kubeconfig.PathFor(cfg.ClusterName), kubeconfig.WrapperPathFor(cfg.ClusterName)} {
		if err := removeFile(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: failed to remove %s: %v", path, err)
		}
	}

	log.Printf("Cluster %s destroyed successfully", cfg.ClusterName)
	return nil
}
