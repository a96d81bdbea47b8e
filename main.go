package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/cli"
	"github.com/dreamdigital/landing/internal/logging"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	err := cli.Execute(version)
	_ = logging.Sync()
	if err != nil {
		logging.L().Debug("command failed", zap.Error(err))
		os.Exit(1)
	}
}
