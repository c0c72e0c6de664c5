// Package main is the entry point for the gkectl CLI.
//
// gkectl provisions GKE clusters for the media-generator stack and
// deploys the application onto them. It covers the full path from an
// empty project to a serving release: cluster and autoscaling node
// pool, cluster credentials, the application container image, and the
// Helm release.
//
// Commands: init, apply, destroy, kubeconfig, image, deploy, version.
//
// For detailed usage information, run:
//
//	gkectl --help
package main

import (
	"fmt"
	"os"

	"github.com/mediagen/gkectl/cmd/gkectl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
