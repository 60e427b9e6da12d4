package main

import (
	"github.com/artflect/marketplace-engine/internal/config"
	"github.com/artflect/marketplace-engine/internal/config/di"
	"github.com/artflect/marketplace-engine/internal/daemon"
	"go.uber.org/zap"
)

func main() {
	config.Init()

	container, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	zap.L().With(zap.String("port", config.Get().ApiPort)).Info("Market Engine Started")

	container.Get("daemon").(*daemon.Daemon).Execute()
}
