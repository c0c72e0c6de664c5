package provision

import (
	"google.golang.org/api/container/v1"

	"github.com/mediagen/gkectl/internal/config"
)

// DesiredCluster translates the variables file into the cluster resource.
// The default node pool is removed so the managed pool below is the only
// one; network policy and Workload Identity are always on.
func DesiredCluster(cfg *config.ClusterConfig) *container.Cluster {
	return &container.Cluster{
		Name:     cfg.ClusterName,
		Location: cfg.Region,

		// The default pool is replaced by the managed pool; one node is
		// still required at creation time.
		RemoveDefaultNodePool: true,
		InitialNodeCount:      1,

		NetworkPolicy: &container.NetworkPolicy{
			Enabled: true,
		},

		WorkloadIdentityConfig: &container.WorkloadIdentityConfig{
			WorkloadPool: cfg.WorkloadPool(),
		},

		LoggingService:    "logging.googleapis.com/kubernetes",
		MonitoringService: "monitoring.googleapis.com/kubernetes",
	}
}

// DesiredNodePool translates the variables file into the managed node
// pool: autoscaling bounds straight from config, auto-repair and
// auto-upgrade on, GKE metadata server on every node.
func DesiredNodePool(cfg *config.ClusterConfig) *container.NodePool {
	return &container.NodePool{
		Name:             config.NodePoolName,
		InitialNodeCount: int64(cfg.NodeCount),

		Config: &container.NodeConfig{
			Preemptible: cfg.IsPreemptible(),
			MachineType: cfg.MachineType,
			DiskSizeGb:  int64(cfg.DiskSizeGB),
			DiskType:    cfg.DiskType,
			OauthScopes: config.DefaultOAuthScopes,
			Labels:      config.DefaultNodeLabels,
			WorkloadMetadataConfig: &container.WorkloadMetadataConfig{
				Mode: "GKE_METADATA",
			},
		},

		Autoscaling: &container.NodePoolAutoscaling{
			Enabled:      true,
			MinNodeCount: int64(cfg.MinNodes),
			MaxNodeCount: int64(cfg.MaxNodes),
		},

		Management: &container.NodeManagement{
			AutoRepair:  true,
			AutoUpgrade: true,
		},
	}
}

// autoscalingMatches reports whether the pool's live autoscaling bounds
// already equal the configured ones.
func autoscalingMatches(pool *container.NodePool, cfg *config.ClusterConfig) bool {
	a := pool.Autoscaling
	return a != nil &&
		a.Enabled &&
		a.MinNodeCount == int64(cfg.MinNodes) &&
		a.MaxNodeCount == int64(cfg.MaxNodes)
}
