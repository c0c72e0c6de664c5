package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/container/v1"
	"helm.sh/helm/v3/pkg/release"

	"github.com/mediagen/gkectl/internal/config"
	"github.com/mediagen/gkectl/internal/deploy"
	"github.com/mediagen/gkectl/internal/gke"
	"github.com/mediagen/gkectl/internal/image"
	"github.com/mediagen/gkectl/internal/kubeconfig"
	"github.com/mediagen/gkectl/internal/provision"
)

// fakeInstaller records the values it was asked to deploy.
type fakeInstaller struct {
	values deploy.Values
}

func (f *fakeInstaller) InstallOrUpgrade(_ context.Context, values deploy.Values) (*release.Release, error) {
	f.values = values
	return &release.Release{Name: deploy.ReleaseName, Version: 1}, nil
}

// saveAndRestoreFactories snapshots every injectable factory variable
// and restores them when the test ends.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadConfigFile := loadConfigFile
	origFindConfigFile := findConfigFile
	origNewClusterService := newClusterService
	origNewReconciler := newReconciler
	origBuildKubeconfig := buildKubeconfig
	origWriteKubeconfig := writeKubeconfig
	origRemoveFile := removeFile
	origFileExists := fileExists
	origRunWizard := runWizard
	origSaveConfig := saveConfig
	origBuildAndPush := buildAndPush
	origLoadDeploymentFile := loadDeploymentFile
	origReadFile := readFile
	origNewHelmClient := newHelmClient
	origRenderManifests := renderManifests

	t.Cleanup(func() {
		loadConfigFile = origLoadConfigFile
		findConfigFile = origFindConfigFile
		newClusterService = origNewClusterService
		newReconciler = origNewReconciler
		buildKubeconfig = origBuildKubeconfig
		writeKubeconfig = origWriteKubeconfig
		removeFile = origRemoveFile
		fileExists = origFileExists
		runWizard = origRunWizard
		saveConfig = origSaveConfig
		buildAndPush = origBuildAndPush
		loadDeploymentFile = origLoadDeploymentFile
		readFile = origReadFile
		newHelmClient = origNewHelmClient
		renderManifests = origRenderManifests
	})
}

// stubService satisfies gke.ClusterService; individual tests override
// the GetCluster response.
type stubService struct {
	cluster *container.Cluster
	getErr  error
}

func (s *stubService) GetCluster(context.Context, string) (*container.Cluster, error) {
	return s.cluster, s.getErr
}
func (s *stubService) CreateCluster(context.Context, *container.Cluster) (string, error) {
	return "", nil
}
func (s *stubService) DeleteCluster(context.Context, string) (string, error) { return "", nil }
func (s *stubService) GetNodePool(context.Context, string, string) (*container.NodePool, error) {
	return nil, nil
}
func (s *stubService) CreateNodePool(context.Context, string, *container.NodePool) (string, error) {
	return "", nil
}
func (s *stubService) DeleteNodePool(context.Context, string, string) (string, error) {
	return "", nil
}
func (s *stubService) SetNodePoolAutoscaling(context.Context, string, string, *container.NodePoolAutoscaling) (string, error) {
	return "", nil
}
func (s *stubService) WaitOperation(context.Context, string) error { return nil }

// fakeReconciler records calls and returns canned results.
type fakeReconciler struct {
	state        *provision.State
	reconcileErr error
	destroyErr   error
	reconciled   bool
	destroyed    bool
}

func (f *fakeReconciler) Reconcile(context.Context) (*provision.State, error) {
	f.reconciled = true
	return f.state, f.reconcileErr
}

func (f *fakeReconciler) Destroy(context.Context) error {
	f.destroyed = true
	return f.destroyErr
}

func testClusterConfig() *config.ClusterConfig {
	return &config.ClusterConfig{
		ProjectID:   "acme-media-dev",
		ClusterName: "media-generator-cluster",
		Region:      "us-central1-a",
	}
}

func stubLoadConfig(cfg *config.ClusterConfig) {
	loadConfigFile = func(string) (*config.ClusterConfig, error) { return cfg, nil }
}

func stubClusterService(svc gke.ClusterService) {
	newClusterService = func(context.Context, string, string) (gke.ClusterService, error) {
		return svc, nil
	}
}

func TestLoadConfig_EmptyPath_NoDefaultFile(t *testing.T) {
	saveAndRestoreFactories(t)

	findConfigFile = func() (string, error) {
		return "", errors.New("config file gkectl.yaml not found")
	}

	_, err := loadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config file found")
	assert.Contains(t, err.Error(), "gkectl init")
}

func TestLoadConfig_EmptyPath_WithDefaultFile(t *testing.T) {
	saveAndRestoreFactories(t)

	findConfigFile = func() (string, error) { return "/path/to/gkectl.yaml", nil }
	var loadedPath string
	loadConfigFile = func(path string) (*config.ClusterConfig, error) {
		loadedPath = path
		return testClusterConfig(), nil
	}

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/path/to/gkectl.yaml", loadedPath)
	assert.Equal(t, "media-generator-cluster", cfg.ClusterName)
}

func TestLoadConfig_LoadFailure(t *testing.T) {
	saveAndRestoreFactories(t)

	loadConfigFile = func(string) (*config.ClusterConfig, error) {
		return nil, &config.MissingKeyError{Keys: []string{"project_id"}}
	}

	_, err := loadConfig("vars.tfvars")
	require.Error(t, err)
	assert.True(t, config.IsMissingKey(err))
}

func TestApply_Success(t *testing.T) {
	saveAndRestoreFactories(t)

	stubLoadConfig(testClusterConfig())
	stubClusterService(&stubService{})

	rec := &fakeReconciler{state: &provision.State{Endpoint: "34.72.10.5", CACert: "Y2E="}}
	newReconciler = func(gke.ClusterService, *config.ClusterConfig) Reconciler { return rec }

	var builtEndpoint, builtCA string
	buildKubeconfig = func(_ string, endpoint, caCert string) ([]byte, error) {
		builtEndpoint, builtCA = endpoint, caCert
		return []byte("kubeconfig"), nil
	}
	var wrote []byte
	writeKubeconfig = func(clusterName string, data []byte) (*kubeconfig.Artifact, error) {
		wrote = data
		return &kubeconfig.Artifact{
			Path:        kubeconfig.PathFor(clusterName),
			WrapperPath: kubeconfig.WrapperPathFor(clusterName),
		}, nil
	}

	err := Apply(context.Background(), "gkectl.yaml")
	require.NoError(t, err)
	assert.True(t, rec.reconciled)
	assert.Equal(t, "34.72.10.5", builtEndpoint)
	assert.Equal(t, "Y2E=", builtCA)
	assert.Equal(t, []byte("kubeconfig"), wrote)
}

func TestApply_ConfigError_NoCloudCalls(t *testing.T) {
	saveAndRestoreFactories(t)

	loadConfigFile = func(string) (*config.ClusterConfig, error) {
		return nil, &config.MissingKeyError{Keys: []string{"project_id"}}
	}

	var serviceCreated bool
	newClusterService = func(context.Context, string, string) (gke.ClusterService, error) {
		serviceCreated = true
		return &stubService{}, nil
	}

	err := Apply(context.Background(), "vars.tfvars")
	require.Error(t, err)
	assert.True(t, config.IsMissingKey(err))
	assert.False(t, serviceCreated, "no cloud client may be built when config is invalid")
}

func TestApply_ReconcileFailure(t *testing.T) {
	saveAndRestoreFactories(t)

	stubLoadConfig(testClusterConfig())
	stubClusterService(&stubService{})
	newReconciler = func(gke.ClusterService, *config.ClusterConfig) Reconciler {
		return &fakeReconciler{reconcileErr: errors.New("quota exceeded")}
	}

	err := Apply(context.Background(), "gkectl.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconciliation failed")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestDestroy_Success(t *testing.T) {
	saveAndRestoreFactories(t)

	stubLoadConfig(testClusterConfig())
	stubClusterService(&stubService{})

	rec := &fakeReconciler{}
	newReconciler = func(gke.ClusterService, *config.ClusterConfig) Reconciler { return rec }

	var removed []string
	removeFile = func(path string) error {
		removed = append(removed, path)
		return nil
	}

	err := Destroy(context.Background(), "gkectl.yaml")
	require.NoError(t, err)
	assert.True(t, rec.destroyed)
	assert.Contains(t, removed, kubeconfig.PathFor("media-generator-cluster"))
	assert.Contains(t, removed, kubeconfig.WrapperPathFor("media-generator-cluster"))
}

func TestDestroy_Failure(t *testing.T) {
	saveAndRestoreFactories(t)

	stubLoadConfig(testClusterConfig())
	stubClusterService(&stubService{})
	newReconciler = func(gke.ClusterService, *config.ClusterConfig) Reconciler {
		return &fakeReconciler{destroyErr: errors.New("operation failed")}
	}

	err := Destroy(context.Background(), "gkectl.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destroy failed")
}

func TestKubeconfig_ClusterMissing(t *testing.T) {
	saveAndRestoreFactories(t)

	stubLoadConfig(testClusterConfig())
	stubClusterService(&stubService{cluster: nil})

	err := Kubeconfig(context.Background(), "gkectl.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
	assert.Contains(t, err.Error(), "gkectl apply")
}

func TestKubeconfig_Success(t *testing.T) {
	saveAndRestoreFactories(t)

	stubLoadConfig(testClusterConfig())
	stubClusterService(&stubService{cluster: &container.Cluster{
		Name:     "media-generator-cluster",
		Endpoint: "34.72.10.5",
		MasterAuth: &container.MasterAuth{
			ClusterCaCertificate: "Y2VydA==",
		},
	}})

	var builtCluster string
	buildKubeconfig = func(clusterName, endpoint, caCert string) ([]byte, error) {
		builtCluster = clusterName
		return []byte("kubeconfig"), nil
	}
	writeKubeconfig = func(clusterName string, _ []byte) (*kubeconfig.Artifact, error) {
		return &kubeconfig.Artifact{
			Path:        kubeconfig.PathFor(clusterName),
			WrapperPath: kubeconfig.WrapperPathFor(clusterName),
		}, nil
	}

	err := Kubeconfig(context.Background(), "gkectl.yaml")
	require.NoError(t, err)
	assert.Equal(t, "media-generator-cluster", builtCluster)
}

func TestInit_WritesConfig(t *testing.T) {
	saveAndRestoreFactories(t)

	fileExists = func(string) bool { return false }
	runWizard = func(context.Context) (*config.WizardResult, error) {
		return &config.WizardResult{
			ProjectID:   "acme-media-dev",
			ClusterName: "demo",
			Zone:        "europe-west1-b",
			NodeCount:   2,
			MachineType: "e2-small",
			Preemptible: true,
		}, nil
	}

	var saved *config.ClusterConfig
	var savedPath string
	saveConfig = func(cfg *config.ClusterConfig, path string) error {
		saved, savedPath = cfg, path
		return nil
	}

	err := Init(context.Background(), "gkectl.yaml")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "gkectl.yaml", savedPath)
	assert.Equal(t, "acme-media-dev", saved.ProjectID)
	assert.Equal(t, "demo", saved.ClusterName)
	// Defaults backfilled by the wizard conversion.
	assert.Equal(t, config.DefaultMinNodes, saved.MinNodes)
	assert.Equal(t, config.DefaultMaxNodes, saved.MaxNodes)
}

func TestInit_WizardCanceled(t *testing.T) {
	saveAndRestoreFactories(t)

	fileExists = func(string) bool { return false }
	runWizard = func(context.Context) (*config.WizardResult, error) {
		return nil, errors.New("wizard canceled: user aborted")
	}

	err := Init(context.Background(), "gkectl.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canceled")
}

func TestImage_BuildsReference(t *testing.T) {
	saveAndRestoreFactories(t)

	stubLoadConfig(testClusterConfig())

	var pushedRef string
	var pushedOpts image.BuildOptions
	buildAndPush = func(_ context.Context, ref string, opts image.BuildOptions) (string, error) {
		pushedRef = ref
		pushedOpts = opts
		return "sha256:abc123", nil
	}

	err := Image(context.Background(), ImageOptions{
		ConfigPath: "gkectl.yaml",
		ContextDir: "./app",
		Tag:        "v2",
	})
	require.NoError(t, err)
	assert.Equal(t, "gcr.io/acme-media-dev/media-generator:v2", pushedRef)
	assert.Equal(t, "./app", pushedOpts.ContextDir)
	assert.Equal(t, config.DefaultContainerPort, pushedOpts.Port)
}

func TestImage_PushFailurePassesThrough(t *testing.T) {
	saveAndRestoreFactories(t)

	stubLoadConfig(testClusterConfig())
	buildAndPush = func(context.Context, string, image.BuildOptions) (string, error) {
		return "", errors.New("UNAUTHORIZED: authentication required")
	}

	err := Image(context.Background(), ImageOptions{ConfigPath: "gkectl.yaml", Tag: "v1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNAUTHORIZED")
}

func TestDeploy_DryRunRendersWithoutCluster(t *testing.T) {
	saveAndRestoreFactories(t)

	dcfg := &config.DeploymentConfig{ReplicaCount: 3, ContainerPort: 5001}
	dcfg.Image.Repository = "gcr.io/acme-media-dev/media-generator"
	dcfg.Image.Tag = "v2"
	dcfg.Service.Type = "LoadBalancer"
	dcfg.Service.Port = 80
	loadDeploymentFile = func(string) (*config.DeploymentConfig, error) { return dcfg, nil }

	var helmClientCreated bool
	newHelmClient = func([]byte, string) (helmInstaller, error) {
		helmClientCreated = true
		return nil, errors.New("unreachable")
	}

	err := Deploy(context.Background(), DeployOptions{
		ValuesPath: "deployment.yaml",
		Namespace:  "default",
		DryRun:     true,
	})
	require.NoError(t, err)
	assert.False(t, helmClientCreated, "dry-run must not build a cluster client")
}

func TestDeploy_MissingKubeconfig(t *testing.T) {
	saveAndRestoreFactories(t)

	dcfg := &config.DeploymentConfig{ReplicaCount: 1, ContainerPort: 5001}
	dcfg.Image.Repository = "r"
	dcfg.Image.Tag = "t"
	dcfg.Service.Type = "ClusterIP"
	dcfg.Service.Port = 80
	loadDeploymentFile = func(string) (*config.DeploymentConfig, error) { return dcfg, nil }
	stubLoadConfig(testClusterConfig())
	readFile = func(name string) ([]byte, error) { return nil, os.ErrNotExist }

	err := Deploy(context.Background(), DeployOptions{
		ConfigPath: "gkectl.yaml",
		ValuesPath: "deployment.yaml",
		Namespace:  "default",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Base(kubeconfig.PathFor("media-generator-cluster")))
	assert.Contains(t, err.Error(), "gkectl apply")
}

func TestDeploy_InstallsRelease(t *testing.T) {
	saveAndRestoreFactories(t)

	dcfg := &config.DeploymentConfig{ReplicaCount: 2, ContainerPort: 5001}
	dcfg.Image.Repository = "gcr.io/acme-media-dev/media-generator"
	dcfg.Image.Tag = "v2"
	dcfg.Service.Type = "LoadBalancer"
	dcfg.Service.Port = 80
	loadDeploymentFile = func(string) (*config.DeploymentConfig, error) { return dcfg, nil }
	stubLoadConfig(testClusterConfig())
	readFile = func(string) ([]byte, error) { return []byte("kubeconfig"), nil }

	installer := &fakeInstaller{}
	var gotNamespace string
	newHelmClient = func(_ []byte, namespace string) (helmInstaller, error) {
		gotNamespace = namespace
		return installer, nil
	}

	err := Deploy(context.Background(), DeployOptions{
		ConfigPath: "gkectl.yaml",
		ValuesPath: "deployment.yaml",
		Namespace:  "media",
	})
	require.NoError(t, err)
	assert.Equal(t, "media", gotNamespace)
	require.NotNil(t, installer.values)
	assert.Equal(t, 2, installer.values["replicaCount"])
}
