// mqtt.go - Mirrors domain events onto an MQTT broker

package mqtt // Declares the package name

import ( // Import required packages
	"context"       // Notifier signature
	"encoding/json" // Event payloads
	"fmt"           // Error wrapping
	"log"           // Publish failures
	"strings"       // Topic building
	"time"          // Connect/publish timeouts

	"go-jobmarket-backend/events" // Domain events

	paho "github.com/eclipse/paho.mqtt.golang" // MQTT client
)

const publishTimeout = 2 * time.Second

// Publisher publishes every event as JSON to <prefix>/events/<type>.
type Publisher struct {
	client paho.Client
	prefix string
}

// Connect opens a client to broker (e.g. "tcp://localhost:1883").
func Connect(broker, prefix string) (*Publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("jobmarket-%d", time.Now().UnixNano())).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect() // Connect to broker
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("mqtt connect %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	log.Printf("[mqtt] connected to %s", broker)
	return NewPublisher(client, prefix), nil
}

// NewPublisher wraps an already configured client.
func NewPublisher(client paho.Client, prefix string) *Publisher {
	return &Publisher{client: client, prefix: strings.Trim(prefix, "/")}
}

// Topic returns the topic an event type is published on.
func (p *Publisher) Topic(eventType string) string {
	return p.prefix + "/events/" + eventType
}

// Notify implements events.Notifier. Failures are logged, never returned.
func (p *Publisher) Notify(_ context.Context, e events.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("[mqtt] marshal %s: %v", e.Type, err)
		return
	}
	token := p.client.Publish(p.Topic(e.Type), 1, false, payload) // QoS 1, not retained
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			log.Printf("[mqtt] publish %s: timed out", e.Type)
			return
		}
		if err := token.Error(); err != nil {
			log.Printf("[mqtt] publish %s: %v", e.Type, err)
		}
	}()
}

// Close disconnects, allowing in-flight messages a short grace period.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
