// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/relabs-tech/imu_conditioner/internal/app"
	"github.com/relabs-tech/imu_conditioner/internal/config"
	"github.com/relabs-tech/imu_conditioner/internal/logger"
)

func main() {
	configPath := flag.String("config", "./imu_config.txt", "path to configuration file")
	staticDir := flag.String("static", "", "directory served at / (dashboard assets)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer lg.Sync()

	lg.Info("starting web server (MQTT subscriber)", zap.Int("port", cfg.WebServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunWeb(ctx, cfg, *staticDir, lg); err != nil {
		lg.Fatal("web server failed", zap.Error(err))
	}
}
