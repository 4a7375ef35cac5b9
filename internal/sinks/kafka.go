// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sinks

import (
	"context"
	"fmt"
)

// KafkaProducer is a minimal abstraction over a Kafka client, the same
// narrow interface the persistence layer's Kafka adapter uses so a log
// sink can reuse it without pulling in a Kafka client dependency.
// Implementations should enable idempotent production
// (enable.idempotence=true); ordering within one partition falls out of
// using a stable key (the device hostname here) for every message.
type KafkaProducer interface {
	Produce(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// LoggingKafkaProducer is a dependency-free demo KafkaProducer: it prints
// every produced message instead of talking to a broker, so KafkaSink
// works out of the box without a live Kafka cluster. Not for production
// use.
type LoggingKafkaProducer struct{}

func (LoggingKafkaProducer) Produce(ctx context.Context, topic string, key, value []byte, headers map[string]string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	fmt.Printf("[kafka-sink-demo] TOPIC=%s KEY=%s VALUE=%s HEADERS=%v\n", topic, key, value, headers)
	return nil
}

// KafkaSink publishes every formatted syslog line to a fixed topic,
// keyed by hostname so a downstream consumer can maintain per-device
// ordering. It is always considered live: KafkaProducer.Produce is
// expected to handle its own retry/backoff, the same assumption the
// rate-limiter's KafkaPersister makes about its producer.
type KafkaSink struct {
	producer KafkaProducer
	topic    string
	key      []byte
}

// NewKafkaSink returns a sink that publishes to topic using producer,
// keyed by hostname. If producer is nil, a LoggingKafkaProducer is used.
func NewKafkaSink(producer KafkaProducer, topic, hostname string) *KafkaSink {
	if producer == nil {
		producer = LoggingKafkaProducer{}
	}
	return &KafkaSink{producer: producer, topic: topic, key: []byte(hostname)}
}

func (k *KafkaSink) Init(context.Context) error { return nil }

func (k *KafkaSink) Poll(context.Context) bool { return true }

func (k *KafkaSink) Send(ctx context.Context, line []byte) bool {
	headers := map[string]string{"content-type": "text/plain"}
	err := k.producer.Produce(ctx, k.topic, k.key, line, headers)
	return err == nil
}
