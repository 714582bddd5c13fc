// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/shake_dice/internal/game"
)

// MQTT publishes a retained frame to a topic whenever a roll starts or
// resolves, so remote screens can follow the table.
type MQTT struct {
	client mqtt.Client
	topic  string
	last   *changeKey
}

// NewMQTT publishes to topic on an already connected client.
func NewMQTT(client mqtt.Client, topic string) *MQTT {
	return &MQTT{client: client, topic: topic}
}

func (m *MQTT) Render(f game.Frame) error {
	k := keyOf(f)
	if m.last != nil && *m.last == k {
		return nil
	}

	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("json marshal error (frame): %w", err)
	}
	if token := m.client.Publish(m.topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish error (%s): %w", m.topic, token.Error())
	}
	m.last = &k
	return nil
}
