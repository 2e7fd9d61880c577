package main

import (
	"os"

	"github.com/2sn/starfit-server/cmd/starfitctl/cmd"
	"github.com/2sn/starfit-server/internal/platform/logging"
)

func main() {
	logging.Configure(os.Getenv("LOG_LEVEL"), "text")
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
