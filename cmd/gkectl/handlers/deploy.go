package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"helm.sh/helm/v3/pkg/release"

	"github.com/mediagen/gkectl/internal/config"
	"github.com/mediagen/gkectl/internal/deploy"
	"github.com/mediagen/gkectl/internal/kubeconfig"
)

// Factory function variables for deploy - can be replaced in tests.
var (
	// loadDeploymentFile loads the chart values file.
	loadDeploymentFile = config.LoadDeployment

	// readFile reads a file from disk.
	readFile = os.ReadFile

	// newHelmClient creates a helm client bound to a kubeconfig.
	newHelmClient = func(kubeconfigBytes []byte, namespace string) (helmInstaller, error) {
		return deploy.NewClient(kubeconfigBytes, namespace)
	}

	// renderManifests renders the chart without a cluster.
	renderManifests = deploy.Render
)

// helmInstaller interface for testing - matches deploy.Client.
type helmInstaller interface {
	InstallOrUpgrade(ctx context.Context, values deploy.Values) (*release.Release, error)
}

// DeployOptions are the flags of the deploy command.
type DeployOptions struct {
	ConfigPath string
	ValuesPath string
	Namespace  string
	DryRun     bool
}

// Deploy installs or upgrades the application release on the cluster,
// parameterized by the values file. With DryRun it renders the
// manifests locally and prints them instead of contacting the cluster.
func Deploy(ctx context.Context, opts DeployOptions) error {
	dcfg, err := loadDeploymentFile(opts.ValuesPath)
	if err != nil {
		return fmt.Errorf("failed to load values file: %w", err)
	}
	values := deploy.ValuesFrom(dcfg)

	if opts.DryRun {
		manifests, err := renderManifests(values, opts.Namespace)
		if err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
		fmt.Print(string(manifests))
		return nil
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	kubeconfigPath := kubeconfig.PathFor(cfg.ClusterName)
	kubeconfigBytes, err := readFile(kubeconfigPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w\nRun 'gkectl apply' or 'gkectl kubeconfig' first", kubeconfigPath, err)
	}

	client, err := newHelmClient(kubeconfigBytes, opts.Namespace)
	if err != nil {
		return fmt.Errorf("failed to create helm client: %w", err)
	}

	log.Printf("Deploying %s:%s with %d replicas", dcfg.Image.Repository, dcfg.Image.Tag, dcfg.ReplicaCount)

	rel, err := client.InstallOrUpgrade(ctx, values)
	if err != nil {
		return fmt.Errorf("deploy failed: %w", err)
	}

	fmt.Printf("\nRelease %s (revision %d) is live.\n", rel.Name, rel.Version)
	fmt.Printf("Check it with:\n")
	fmt.Printf("  kubectl --kubeconfig %s get pods\n", kubeconfigPath)
	return nil
}
