package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/mediagen/gkectl/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the configuration wizard.
	runWizard = config.RunWizard

	// saveConfig writes the config to a file.
	saveConfig = config.Save
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return err
	}

	cfg := result.ToClusterConfig()

	if err := saveConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printWelcome() {
	fmt.Println()
	fmt.Println("gkectl - GKE clusters for the media-generator stack")
	fmt.Println("===================================================")
	fmt.Println()
	fmt.Println("This wizard creates a cluster configuration with sensible defaults.")
	fmt.Println("Anything not asked here keeps its documented default value.")
	fmt.Println()
}

func printInitSuccess(outputPath string, cfg *config.ClusterConfig) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Cluster Summary")
	fmt.Println("---------------")
	fmt.Printf("  Project:      %s\n", cfg.ProjectID)
	fmt.Printf("  Name:         %s\n", cfg.ClusterName)
	fmt.Printf("  Zone:         %s\n", cfg.Region)
	fmt.Printf("  Nodes:        %d x %s (autoscaling %d-%d)\n", cfg.NodeCount, cfg.MachineType, cfg.MinNodes, cfg.MaxNodes)
	fmt.Printf("  Preemptible:  %t\n", cfg.IsPreemptible())
	fmt.Printf("  Disk:         %dGB %s\n", cfg.DiskSizeGB, cfg.DiskType)
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Authenticate with Google Cloud:")
	fmt.Println("     gcloud auth application-default login")
	fmt.Println()
	fmt.Printf("  2. Review %s if needed\n", outputPath)
	fmt.Println()
	fmt.Println("  3. Create your cluster:")
	fmt.Println("     gkectl apply")
	fmt.Println()
}
