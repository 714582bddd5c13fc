// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shake_dice/internal/config"
	"github.com/relabs-tech/shake_dice/internal/game"
	"github.com/relabs-tech/shake_dice/internal/motion"
	"github.com/relabs-tech/shake_dice/internal/render"
)

// RunDice runs the game loop: samples from the configured motion source,
// frames to every configured renderer, until SIGINT or SIGTERM.
func RunDice() error {
	cfg := config.Get()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A dead local source ends the loop with its error as the cause.
	ctx, cancel := context.WithCancelCause(sigCtx)
	defer cancel(nil)

	var client mqtt.Client
	if cfg.MotionSource == config.SourceMQTT || cfg.HasRenderer(config.RendererMQTT) {
		c, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGame)
		if err != nil {
			return err
		}
		defer c.Disconnect(250)
		client = c
	}

	var provider motion.Provider
	if cfg.MotionSource == config.SourceMQTT {
		feed, err := motion.SubscribeMQTT(client, cfg.TopicMotion)
		if err != nil {
			return err
		}
		defer feed.Close()
		provider = feed
	} else {
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
		provider = feed
	}

	renderers, closers, err := buildRenderers(ctx, cfg, client, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	g := game.New(game.Options{
		Threshold:    cfg.ShakeThreshold,
		RollDuration: cfg.RollFor(),
		EaseRate:     cfg.EaseRate,
		Seed:         cfg.Seed,
	})

	loop := &game.Loop{
		Game:          g,
		Provider:      provider,
		Renderer:      renderers,
		FrameInterval: cfg.FrameEvery(),
	}

	log.Printf("dice ready: source=%s renderers=%v", cfg.MotionSource, cfg.Renderers)
	err = loop.Run(ctx)
	log.Println("dice: shutting down")
	if err != nil {
		return err
	}
	return sourceFailure(ctx)
}

// buildRenderers creates one renderer per configured name. The web server
// is started in the background and stops with ctx.
func buildRenderers(ctx context.Context, cfg *config.Config, client mqtt.Client, out io.Writer) (render.Multi, []io.Closer, error) {
	var (
		renderers render.Multi
		closers   []io.Closer
	)

	for _, name := range cfg.Renderers {
		switch name {
		case config.RendererConsole:
			renderers = append(renderers, render.NewConsole(out))

		case config.RendererOLED:
			oled, err := render.NewOLED()
			if err != nil {
				for _, c := range closers {
					c.Close()
				}
				return nil, nil, err
			}
			renderers = append(renderers, oled)
			closers = append(closers, oled)

		case config.RendererWeb:
			ws := render.NewWebSocket()
			go func() {
				if err := ws.Serve(ctx, cfg.WebServerPort); err != nil {
					log.Errorf("web server error: %v", err)
				}
			}()
			renderers = append(renderers, ws)

		case config.RendererMQTT:
			renderers = append(renderers, render.NewMQTT(client, cfg.TopicState))
		}
	}

	return renderers, closers, nil
}

// sourceFailure reports why ctx ended if it was not a plain shutdown.
func sourceFailure(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}
