// Package kubeconfig materializes cluster credentials: a kubeconfig file
// at a path derived from the cluster name, and a kubectl wrapper script
// bound to that file.
package kubeconfig

import (
	"encoding/base64"
	"fmt"
	"os"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// authPlugin is the exec credential helper GKE clusters authenticate with.
const authPlugin = "gke-gcloud-auth-plugin"

// Artifact is a generated credentials file plus its wrapper script.
type Artifact struct {
	Path        string
	WrapperPath string
}

// PathFor returns the credentials file path for a cluster. It is a
// deterministic function of the cluster name only.
func PathFor(clusterName string) string {
	return fmt.Sprintf("kubeconfig-%s.yaml", clusterName)
}

// WrapperPathFor returns the wrapper script path for a cluster.
func WrapperPathFor(clusterName string) string {
	return fmt.Sprintf("kubectl-%s", clusterName)
}

// Build assembles kubeconfig bytes for a cluster from its endpoint and
// base64-encoded CA certificate, using the GKE exec auth plugin for
// user credentials.
func Build(clusterName, endpoint, caCertB64 string) ([]byte, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("cluster %s has no endpoint", clusterName)
	}

	caCert, err := base64.StdEncoding.DecodeString(caCertB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cluster CA certificate: %w", err)
	}

	cfg := clientcmdapi.NewConfig()
	cfg.Clusters[clusterName] = &clientcmdapi.Cluster{
		Server:                   "https://" + endpoint,
		CertificateAuthorityData: caCert,
	}
	cfg.AuthInfos[clusterName] = &clientcmdapi.AuthInfo{
		Exec: &clientcmdapi.ExecConfig{
			APIVersion:         "client.authentication.k8s.io/v1beta1",
			Command:            authPlugin,
			InstallHint:        "Install gke-gcloud-auth-plugin for kubectl authentication against GKE",
			ProvideClusterInfo: true,
			InteractiveMode:    clientcmdapi.IfAvailableExecInteractiveMode,
		},
	}
	cfg.Contexts[clusterName] = &clientcmdapi.Context{
		Cluster:  clusterName,
		AuthInfo: clusterName,
	}
	cfg.CurrentContext = clusterName

	data, err := clientcmd.Write(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize kubeconfig: %w", err)
	}

	return data, nil
}

// Write persists kubeconfig bytes and the wrapper script for a cluster,
// returning both paths. The kubeconfig is written 0600; the wrapper 0755.
func Write(clusterName string, kubeconfig []byte) (*Artifact, error) {
	path := PathFor(clusterName)
	if err := os.WriteFile(path, kubeconfig, 0600); err != nil {
		return nil, fmt.Errorf("failed to write kubeconfig to %s: %w", path, err)
	}

	wrapperPath := WrapperPathFor(clusterName)
	if err := os.WriteFile(wrapperPath, []byte(wrapperScript(path)), 0755); err != nil {
		return nil, fmt.Errorf("failed to write wrapper script to %s: %w", wrapperPath, err)
	}

	return &Artifact{Path: path, WrapperPath: wrapperPath}, nil
}

// wrapperScript returns a fixed kubectl entry point that always targets
// the one credentials file, forwarding every argument.
func wrapperScript(kubeconfigPath string) string {
	return fmt.Sprintf("#!/bin/sh\nexec kubectl --kubeconfig %q \"$@\"\n", kubeconfigPath)
}
