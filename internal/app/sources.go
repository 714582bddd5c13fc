// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shake_dice/internal/config"
	"github.com/relabs-tech/shake_dice/internal/motion"
)

func connectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect error (%s): %w", broker, token.Error())
	}
	log.Printf("connected to MQTT broker at %s as %s", broker, clientID)
	return client, nil
}

// sourceRunner streams samples into a feed until ctx is done. A non-nil
// error means the source died on its own.
type sourceRunner func(ctx context.Context, feed *motion.Feed) error

// startLocalSource opens the sampling source named by cfg.MotionSource and
// starts streaming it into a new feed. onFail is called if the source stops
// before ctx is done. The returned wait func blocks until the streaming
// goroutine has exited.
func startLocalSource(ctx context.Context, cfg *config.Config, onFail func(error)) (*motion.Feed, func(), error) {
	var run sourceRunner

	switch cfg.MotionSource {
	case config.SourceMock:
		log.Println("using mock motion source")
		run = pumpSource(motion.NewMockSource(), cfg)

	case config.SourceIMU:
		src, err := motion.NewIMUSource(cfg.IMUSPIDevice, cfg.IMUCSPin, cfg.IMUAccelLSBPerG)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("using MPU9250 on %s (CS %s)", cfg.IMUSPIDevice, cfg.IMUCSPin)
		run = pumpSource(src, cfg)

	case config.SourceSerial:
		src, err := motion.NewSerialSource(cfg.SerialPort, cfg.SerialBaudRate)
		if err != nil {
			return nil, nil, err
		}
		run = src.Run

	default:
		return nil, nil, fmt.Errorf("motion source %q cannot be sampled locally", cfg.MotionSource)
	}

	feed, wait := superviseSource(ctx, run, onFail)
	return feed, wait, nil
}

func pumpSource(src motion.Source, cfg *config.Config) sourceRunner {
	return func(ctx context.Context, feed *motion.Feed) error {
		motion.Pump(ctx, src, cfg.SampleEvery(), feed)
		return nil
	}
}

func superviseSource(ctx context.Context, run sourceRunner, onFail func(error)) (*motion.Feed, func()) {
	feed := motion.NewFeed()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := run(ctx, feed); err != nil {
			log.Errorf("motion source stopped: %v", err)
			if onFail != nil {
				onFail(err)
			}
		}
	}()

	return feed, wg.Wait
}
