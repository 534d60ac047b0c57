// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/relabs-tech/imu_conditioner/internal/app"
	"github.com/relabs-tech/imu_conditioner/internal/config"
	"github.com/relabs-tech/imu_conditioner/internal/logger"
)

func main() {
	configPath := flag.String("config", "./imu_config.txt", "path to configuration file")
	var opts app.RegisterDumpOptions
	flag.BoolVar(&opts.Configure, "configure", false, "write the configuration sequence before reading")
	flag.BoolVar(&opts.BitFields, "bits", false, "print bit field descriptions")
	flag.BoolVar(&opts.JSON, "json", false, "export registers as JSON")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg := logger.Must(cfg.LogLevel, cfg.LogFormat)
	defer lg.Sync()

	if err := app.RunRegisterDump(cfg, os.Stdout, opts, lg); err != nil {
		lg.Fatal("register dump failed", zap.Error(err))
	}
}
