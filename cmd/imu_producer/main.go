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

	lg.Info("starting imu producer (MPU6050 -> MQTT)",
		zap.String("driver", cfg.IMUBusDriver),
		zap.Duration("interval", cfg.IMUSampleInterval))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunIMUProducer(ctx, cfg, lg); err != nil {
		lg.Fatal("imu producer failed", zap.Error(err))
	}
}
