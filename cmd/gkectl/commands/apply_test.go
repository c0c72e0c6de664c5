package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	cmd := Apply()

	require.NotNil(t, cmd)
	assert.Equal(t, "apply", cmd.Use)
	assert.Equal(t, "Create or update the cluster", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}

func TestApply_ConfigFlag(t *testing.T) {
	cmd := Apply()

	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag, "config flag should exist")
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, "", flag.DefValue)
}

func TestDestroy(t *testing.T) {
	cmd := Destroy()

	require.NotNil(t, cmd)
	assert.Equal(t, "destroy", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	require.NotNil(t, cmd.Flags().Lookup("config"))
}

func TestKubeconfig(t *testing.T) {
	cmd := Kubeconfig()

	require.NotNil(t, cmd)
	assert.Equal(t, "kubeconfig", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	require.NotNil(t, cmd.Flags().Lookup("config"))
}

func TestInit_OutputFlag(t *testing.T) {
	cmd := Init()

	flag := cmd.Flags().Lookup("output")
	require.NotNil(t, flag)
	assert.Equal(t, "o", flag.Shorthand)
	assert.Equal(t, "gkectl.yaml", flag.DefValue)
}

func TestImage_Flags(t *testing.T) {
	cmd := Image()

	tag := cmd.Flags().Lookup("tag")
	require.NotNil(t, tag)
	assert.Equal(t, "t", tag.Shorthand)
	assert.Equal(t, "latest", tag.DefValue)

	registry := cmd.Flags().Lookup("registry")
	require.NotNil(t, registry)
	assert.Equal(t, "gcr.io", registry.DefValue)

	context := cmd.Flags().Lookup("context")
	require.NotNil(t, context)
	assert.Equal(t, ".", context.DefValue)
}

func TestDeploy_Flags(t *testing.T) {
	cmd := Deploy()

	values := cmd.Flags().Lookup("values")
	require.NotNil(t, values)
	assert.Equal(t, "f", values.Shorthand)
	assert.Equal(t, "deployment.yaml", values.DefValue)

	namespace := cmd.Flags().Lookup("namespace")
	require.NotNil(t, namespace)
	assert.Equal(t, "default", namespace.DefValue)

	dryRun := cmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRun)
	assert.Equal(t, "false", dryRun.DefValue)
}
