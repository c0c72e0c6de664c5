// Package main runs the media-generator demo API, the sample workload
// deployed onto the provisioned cluster.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/mediagen/gkectl/internal/api"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := api.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := api.NewGCSStore(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize storage client")
	}

	if err := api.NewServer(cfg, store, log).Run(ctx); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
