package deploy

import (
	"context"
	"fmt"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/release"
)

// Client applies the application chart against a cluster identified by
// in-memory kubeconfig bytes.
type Client struct {
	namespace    string
	actionConfig *action.Configuration
}

// NewClient creates a deploy client from kubeconfig bytes.
func NewClient(kubeconfig []byte, namespace string) (*Client, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	actionConfig := new(action.Configuration)
	getter := newRESTClientGetter(kubeconfig, namespace)

	// Suppress helm's debug chatter.
	if err := actionConfig.Init(getter, namespace, "secret", func(format string, v ...interface{}) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	return &Client{
		namespace:    namespace,
		actionConfig: actionConfig,
	}, nil
}

// InstallOrUpgrade applies the embedded chart with the given values as a
// single helm operation: install when the release is absent, upgrade
// otherwise. Helm's error is returned untranslated.
func (c *Client) InstallOrUpgrade(ctx context.Context, values Values) (*release.Release, error) {
	hist := action.NewHistory(c.actionConfig)
	hist.Max = 1
	if _, err := hist.Run(ReleaseName); err != nil {
		return c.install(ctx, values)
	}
	return c.upgrade(ctx, values)
}

func (c *Client) install(ctx context.Context, values Values) (*release.Release, error) {
	ch, err := LoadChart()
	if err != nil {
		return nil, err
	}

	client := action.NewInstall(c.actionConfig)
	client.ReleaseName = ReleaseName
	client.Namespace = c.namespace
	client.CreateNamespace = true
	client.Wait = false
	client.Timeout = 10 * time.Minute

	return client.RunWithContext(ctx, ch, values.ToMap())
}

func (c *Client) upgrade(ctx context.Context, values Values) (*release.Release, error) {
	ch, err := LoadChart()
	if err != nil {
		return nil, err
	}

	client := action.NewUpgrade(c.actionConfig)
	client.Namespace = c.namespace
	client.Wait = false
	client.Timeout = 10 * time.Minute
	client.ReuseValues = false

	return client.RunWithContext(ctx, ReleaseName, ch, values.ToMap())
}
