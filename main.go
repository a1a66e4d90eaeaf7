package main

import (
	"os"

	"eventsync/core/logger"
	"eventsync/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
		os.Exit(1)
	}
}
