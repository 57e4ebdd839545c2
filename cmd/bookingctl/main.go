// Command bookingctl is the single-operator console for the booking store.
// It keeps a signed-in user in the store's session pointer, the same way a
// browser front-end does, so commands that need an identity act as that user.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cleaning-booking/internal/config"
	"github.com/iliyamo/cleaning-booking/internal/database"
	"github.com/iliyamo/cleaning-booking/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFile)
	if cfg.LogFile == "" {
		logrus.SetOutput(os.Stderr) // stdout carries command output
	}

	if err := checkBackend(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "bookingctl:", err)
		os.Exit(2)
	}

	rdb := config.NewRedisClient()
	store, closeStore, err := database.OpenStore(cfg, rdb, logrus.StandardLogger())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeStore()

	cli := newCLI(store, cfg, os.Stdout)
	if err := cli.run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "bookingctl:", err)
		closeStore()
		os.Exit(1)
	}
}
