// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// MQTTFeed is a Feed whose samples arrive as JSON messages on an MQTT topic.
type MQTTFeed struct {
	*Feed
	client mqtt.Client
	topic  string
}

// SubscribeMQTT subscribes to topic on an already connected client and
// republishes every decoded sample on the returned feed.
func SubscribeMQTT(client mqtt.Client, topic string) (*MQTTFeed, error) {
	f := &MQTTFeed{Feed: NewFeed(), client: client, topic: topic}

	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		f.handlePayload(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	log.Printf("motion: subscribed to MQTT topic %s", topic)
	return f, nil
}

func (f *MQTTFeed) handlePayload(payload []byte) {
	var s Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		log.Printf("motion: sample unmarshal error: %v", err)
		return
	}
	f.Publish(s)
}

// Close unsubscribes from the topic. The client stays connected.
func (f *MQTTFeed) Close() error {
	token := f.client.Unsubscribe(f.topic)
	token.Wait()
	return token.Error()
}

// PublishMQTT sends one sample to topic as JSON.
func PublishMQTT(client mqtt.Client, topic string, s Sample) error {
	payload, err := json.Marshal(s.Sanitize())
	if err != nil {
		return fmt.Errorf("json marshal error (sample): %w", err)
	}
	if token := client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish error (%s): %w", topic, token.Error())
	}
	return nil
}
