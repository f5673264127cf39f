package telemetry

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultBrokerURL is used when no broker is configured.
const DefaultBrokerURL = "tcp://localhost:1883"

// Publisher sends one payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	BrokerURL string
	ClientID  string
	Timeout   time.Duration
}

// MQTTClient wraps the Paho client with bounded waits.
type MQTTClient struct {
	client  paho.Client
	timeout time.Duration
	mu      sync.Mutex
}

// NewMQTTClient creates a client but does not connect.
func NewMQTTClient(opts MQTTOptions) *MQTTClient {
	if opts.BrokerURL == "" {
		opts.BrokerURL = DefaultBrokerURL
	}
	if opts.ClientID == "" {
		opts.ClientID = "hanoibench"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	clientOpts := paho.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)
	return &MQTTClient{
		client:  paho.NewClient(clientOpts),
		timeout: opts.Timeout,
	}
}

// Connect attempts to connect to the broker without blocking indefinitely.
func (c *MQTTClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := c.client.Connect()
	if !token.WaitTimeout(c.timeout) {
		return &TimeoutError{Op: "connect"}
	}
	return token.Error()
}

// Publish sends payload with QoS 1.
func (c *MQTTClient) Publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(c.timeout) {
		return &TimeoutError{Op: "publish", Topic: topic}
	}
	return token.Error()
}

// Disconnect cleanly disconnects from the broker.
func (c *MQTTClient) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client.Disconnect(1000)
}

// TimeoutError indicates a broker operation did not complete in time.
type TimeoutError struct {
	Op    string
	Topic string
}

func (e *TimeoutError) Error() string {
	if e.Topic == "" {
		return "mqtt " + e.Op + " timeout"
	}
	return "mqtt " + e.Op + " timeout: " + e.Topic
}

// MQTTSink publishes every event to <prefix>/<run id>/<event type>.
type MQTTSink struct {
	Publisher Publisher
	Prefix    string
	Logger    *slog.Logger
}

// Topic returns the topic an event is published on.
func (s MQTTSink) Topic(event Event) string {
	prefix := strings.TrimSuffix(s.Prefix, "/")
	if prefix == "" {
		prefix = "hanoibench"
	}
	runID := event.RunID
	if runID == "" {
		runID = "_"
	}
	return prefix + "/" + runID + "/" + string(event.Type)
}

// Emit publishes the event as JSON.
func (s MQTTSink) Emit(event Event) {
	if s.Publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err == nil {
		err = s.Publisher.Publish(s.Topic(event), payload)
	}
	if err != nil {
		logger := s.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("mqtt publish failed", "topic", s.Topic(event), "error", err)
	}
}
