package config

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the user's choices from the init wizard.
type WizardResult struct {
	ProjectID   string
	ClusterName string
	Zone        string
	NodeCount   int
	MachineType string
	Preemptible bool
}

// RunWizard walks the user through the questions needed for a starter
// variables file. Everything not asked keeps its documented default.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		ClusterName: DefaultClusterName,
		Zone:        DefaultRegion,
		NodeCount:   DefaultNodeCount,
		MachineType: DefaultMachineType,
		Preemptible: true,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("GCP project ID").
				Description("The project that will own the cluster and its images").
				Placeholder("my-project-123456").
				Value(&result.ProjectID).
				Validate(validateProjectID),

			huh.NewInput().
				Title("Cluster name").
				Description("DNS-safe, lowercase").
				Value(&result.ClusterName).
				Validate(validateClusterName),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Zone").
				Description("Where the cluster control plane and nodes run").
				Options(
					huh.NewOption("Iowa, US (us-central1-a)", "us-central1-a"),
					huh.NewOption("South Carolina, US (us-east1-b)", "us-east1-b"),
					huh.NewOption("Belgium, EU (europe-west1-b)", "europe-west1-b"),
					huh.NewOption("Frankfurt, EU (europe-west3-a)", "europe-west3-a"),
					huh.NewOption("Taiwan, Asia (asia-east1-a)", "asia-east1-a"),
				).
				Value(&result.Zone),
		),

		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Initial node count").
				Description("The autoscaler keeps the pool between 1 and 10 nodes").
				Options(
					huh.NewOption("1 node", 1),
					huh.NewOption("2 nodes", 2),
					huh.NewOption("3 nodes", 3),
					huh.NewOption("4 nodes", 4),
					huh.NewOption("5 nodes", 5),
				).
				Value(&result.NodeCount),

			huh.NewSelect[string]().
				Title("Machine type").
				Description("Shared-core instances are cheapest for dev workloads").
				Options(
					huh.NewOption("e2-small - 2 vCPU, 2GB RAM", "e2-small"),
					huh.NewOption("e2-medium - 2 vCPU, 4GB RAM", "e2-medium"),
					huh.NewOption("e2-standard-2 - 2 vCPU, 8GB RAM", "e2-standard-2"),
					huh.NewOption("e2-standard-4 - 4 vCPU, 16GB RAM", "e2-standard-4"),
				).
				Value(&result.MachineType),

			huh.NewConfirm().
				Title("Use preemptible nodes?").
				Description("Much cheaper, but instances can be reclaimed at any time").
				Value(&result.Preemptible),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToClusterConfig converts the wizard result to a fully defaulted config.
func (r *WizardResult) ToClusterConfig() *ClusterConfig {
	preemptible := r.Preemptible
	cfg := &ClusterConfig{
		ProjectID:   r.ProjectID,
		ClusterName: r.ClusterName,
		Region:      r.Zone,
		NodeCount:   r.NodeCount,
		MachineType: r.MachineType,
		Preemptible: &preemptible,
	}
	cfg.applyDefaults()
	return cfg
}

func validateProjectID(s string) error {
	if s == "" {
		return fmt.Errorf("project ID is required")
	}
	if len(s) < 6 || len(s) > 30 {
		return fmt.Errorf("project IDs are 6 to 30 characters")
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return fmt.Errorf("project IDs contain only lowercase letters, numbers, and hyphens")
		}
	}
	return nil
}

func validateClusterName(s string) error {
	if s == "" {
		return fmt.Errorf("cluster name is required")
	}
	if len(s) > 40 {
		return fmt.Errorf("cluster name must be 40 characters or less")
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return fmt.Errorf("cluster name can only contain lowercase letters, numbers, and hyphens")
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return fmt.Errorf("cluster name cannot start or end with a hyphen")
	}
	return nil
}
