package main

import (
	"fmt"
	"path/filepath"

	"go.opentelemetry.io/otel"

	"github.com/lexcodex/hanoibench/acceptance"
	"github.com/lexcodex/hanoibench/harness"
	"github.com/lexcodex/hanoibench/persistence"
	"github.com/lexcodex/hanoibench/queue"
	"github.com/lexcodex/hanoibench/telemetry"
)

const instrumentationName = "github.com/lexcodex/hanoibench"

// services bundles what most commands need. close releases all of it.
type services struct {
	store  persistence.RunStore
	runner *harness.Runner
	sink   telemetry.Telemetry
	closes []func()
}

func (s *services) close() {
	for i := len(s.closes) - 1; i >= 0; i-- {
		s.closes[i]()
	}
}

func openStore() (persistence.RunStore, error) {
	store, err := persistence.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s run store: %w", cfg.Store.Driver, err)
	}
	return store, nil
}

// setup opens the run store, the telemetry sinks and the runner.
func setup() (*services, error) {
	s := &services{}
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	s.store = store
	s.closes = append(s.closes, func() { _ = store.Close() })

	sinks := []telemetry.Telemetry{telemetry.LoggerTelemetry{Logger: logger}}
	if path := cfg.Telemetry.EventsFile; path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(flagWorkspace, path)
		}
		file, err := telemetry.NewJSONFileTelemetry(path)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("open events file: %w", err)
		}
		sinks = append(sinks, file)
		s.closes = append(s.closes, func() { _ = file.Close() })
	}
	if broker := cfg.Telemetry.MQTT.Broker; broker != "" {
		client := telemetry.NewMQTTClient(telemetry.MQTTOptions{
			BrokerURL: broker,
			ClientID:  cfg.Telemetry.MQTT.ClientID,
		})
		if err := client.Connect(); err != nil {
			logger.Warn("mqtt sink disabled", "broker", broker, "error", err)
		} else {
			sinks = append(sinks, telemetry.MQTTSink{Publisher: client, Prefix: cfg.Telemetry.MQTT.Topic, Logger: logger})
			s.closes = append(s.closes, client.Disconnect)
		}
	}
	s.sink = telemetry.MultiplexTelemetry{Sinks: sinks}

	criterion, err := acceptance.Compile(cfg.Acceptance.Expression)
	if err != nil {
		s.close()
		return nil, err
	}
	s.runner = &harness.Runner{
		Store:     store,
		Telemetry: s.sink,
		Criterion: criterion,
		Tracer:    otel.Tracer(instrumentationName),
		Meter:     otel.Meter(instrumentationName),
		Logger:    logger,
	}
	return s, nil
}

func openQueue() (*queue.RedisQueue, error) {
	return queue.NewRedisQueue(queue.Options{
		URL:            cfg.Queue.RedisURL,
		Name:           cfg.Queue.Name,
		ResultsChannel: cfg.Queue.ResultsChannel,
		Logger:         logger,
	})
}
