// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shake_dice/internal/config"
	"github.com/relabs-tech/shake_dice/internal/game"
	"github.com/relabs-tech/shake_dice/internal/render"
)

// RunConsoleMQTT follows a game running elsewhere: it subscribes to the
// state topic and prints the text card for every frame published there.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	console := render.NewConsole(os.Stdout)
	token := client.Subscribe(cfg.TopicState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		printState(console, msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.TopicState, token.Error())
	}
	log.Printf("console: subscribed to %s", cfg.TopicState)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	return nil
}

func printState(r game.Renderer, payload []byte) {
	var f game.Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		log.Printf("console: state unmarshal error: %v", err)
		return
	}
	if err := r.Render(f); err != nil {
		log.Printf("console: %v", err)
	}
}
