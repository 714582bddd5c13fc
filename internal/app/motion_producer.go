// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shake_dice/internal/config"
	"github.com/relabs-tech/shake_dice/internal/motion"
)

// RunMotionProducer samples the local motion source and publishes every
// sample to the motion topic, so a game on another host can run with
// DICE_MOTION_SOURCE=mqtt.
func RunMotionProducer() error {
	cfg := config.Get()
	if cfg.MotionSource == config.SourceMQTT {
		return fmt.Errorf("motion producer needs a local source, got %q", cfg.MotionSource)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancelCause(sigCtx)
	defer cancel(nil)

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	feed, wait, err := startLocalSource(ctx, cfg, func(err error) {
		cancel(fmt.Errorf("motion source: %w", err))
	})
	if err != nil {
		return err
	}
	defer func() {
		stop()
		wait()
	}()

	h := feed.Subscribe(func(s motion.Sample) {
		if err := motion.PublishMQTT(client, cfg.TopicMotion, s); err != nil {
			log.Printf("producer: %v", err)
		}
	})
	defer feed.Unsubscribe(h)

	log.Printf("publishing %s samples to %s", cfg.MotionSource, cfg.TopicMotion)
	<-ctx.Done()
	log.Println("producer: shutting down")
	return sourceFailure(ctx)
}
