// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Publisher sends JSON telemetry to a topic.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

func connectMQTT(broker, clientID string, log *zap.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn("MQTT connection lost", zap.Error(err))
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	log.Info("connected to MQTT broker", zap.String("broker", broker), zap.String("client_id", clientID))
	return client, nil
}

// mqttPublisher publishes retained QoS 0 messages.
type mqttPublisher struct {
	client mqtt.Client
}

func (p mqttPublisher) PublishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}
	if token := p.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}

// subscribeJSON decodes every message on topic into a T and hands it to fn.
// Malformed payloads are logged and dropped.
func subscribeJSON[T any](client mqtt.Client, topic string, log *zap.Logger, fn func(T)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Warn("MQTT payload unmarshal error", zap.String("topic", msg.Topic()), zap.Error(err))
			return
		}
		fn(v)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	log.Info("subscribed", zap.String("topic", topic))
	return nil
}
