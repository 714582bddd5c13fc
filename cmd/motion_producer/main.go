// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shake_dice/internal/app"
	"github.com/relabs-tech/shake_dice/internal/config"
)

func main() {
	configPath := flag.String("config", "./dice_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting shake-dice motion producer (motion → MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunMotionProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
