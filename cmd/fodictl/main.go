// Command fodictl is the back-office console: it signs in against the admin
// API and manages ingredients, semi-finished goods and products from a
// terminal.
package main

import (
	"fmt"
	"os"

	"fodi-backend/internal/logger"

	"go.uber.org/zap"
)

func main() {
	log := logger.New(os.Getenv("FODI_ENV"))
	zap.ReplaceGlobals(log)
	defer func() { _ = log.Sync() }()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		_ = log.Sync()
		os.Exit(1)
	}
}
