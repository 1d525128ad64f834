// Gateway Fleet Core - gateway and peripheral device management service.
//
// This is the main entry point. It loads configuration, opens the SQLite or
// PostgreSQL store, wires the domain services and audit event sinks, and
// serves the REST API until interrupted.
//
// Usage:
//
//	gatewayfleet                      serve the API
//	gatewayfleet token -role viewer   print a signed access token
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/gateway-fleet-core/migrations"

	"github.com/nerrad567/gateway-fleet-core/internal/api"
	"github.com/nerrad567/gateway-fleet-core/internal/audit"
	"github.com/nerrad567/gateway-fleet-core/internal/device"
	"github.com/nerrad567/gateway-fleet-core/internal/events"
	"github.com/nerrad567/gateway-fleet-core/internal/gateway"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/config"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/kafka"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/logging"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/metrics"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// sinkDrainTimeout bounds how long queued audit events may take to flush on shutdown.
const sinkDrainTimeout = 5 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := runToken(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gateway Fleet Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	configPath := config.Path()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database", "driver", cfg.Database.Driver)
		if closeErr := st.close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if st.location != "" {
		log.Info("database ready", "driver", cfg.Database.Driver, "path", st.location)
	} else {
		log.Info("database ready", "driver", cfg.Database.Driver)
	}

	m := metrics.New(logging.ServiceName)
	hub := api.NewHub(cfg.WebSocket, log)
	sinks := []audit.Sink{events.NewMetricsSink(m), hub}
	healthChecks := map[string]api.HealthChecker{"database": st.health}

	// Connect to MQTT broker (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		sink := events.NewAsync(events.NewMQTTSink(mqttClient, log, m), "mqtt", events.DefaultQueueSize, log, m)
		defer drainSink(sink, log)
		sinks = append(sinks, sink)
		healthChecks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// Kafka audit stream (optional)
	if cfg.Kafka.Enabled {
		producer, kafkaErr := kafka.Connect(cfg.Kafka)
		if kafkaErr != nil {
			return fmt.Errorf("creating Kafka producer: %w", kafkaErr)
		}
		defer func() {
			log.Info("closing Kafka producer")
			if closeErr := producer.Close(); closeErr != nil {
				log.Error("error closing Kafka producer", "error", closeErr)
			}
		}()
		log.Info("Kafka producer ready", "brokers", cfg.Kafka.Brokers, "topic", producer.Topic())

		sink := events.NewAsync(events.NewKafkaSink(producer, log, m), "kafka", events.DefaultQueueSize, log, m)
		defer drainSink(sink, log)
		sinks = append(sinks, sink)
		healthChecks["kafka"] = producer
	} else {
		log.Info("Kafka disabled")
	}

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
			m.IncSinkFailure("influxdb")
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		sinks = append(sinks, events.NewInfluxSink(influxClient))
		healthChecks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	recorder := audit.NewRecorder(st.logs, sinks...)
	gateways := gateway.NewService(st.gateways, st.devices, recorder, gateway.Config{
		MaxDevicesPerGateway: cfg.Fleet.MaxDevicesPerGateway,
	})
	devices := device.NewService(st.devices)

	server, err := api.New(api.Deps{
		Config:       cfg.API,
		WS:           cfg.WebSocket,
		Security:     cfg.Security,
		Logger:       log,
		Gateways:     gateways,
		Devices:      devices,
		AuditLog:     st.logs,
		Metrics:      m,
		Hub:          hub,
		HealthChecks: healthChecks,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"max_devices_per_gateway", cfg.Fleet.MaxDevicesPerGateway,
		"jwt_auth", cfg.Security.JWT.Enabled,
	)

	<-ctx.Done()

	// Deferred Close() calls run in reverse order: API server, then sink
	// queues before the clients they write to, then the database.
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// drainSink flushes a queued sink, logging anything left behind.
func drainSink(sink *events.Async, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkDrainTimeout)
	defer cancel()

	if err := sink.Close(ctx); err != nil {
		log.Warn("audit sink did not drain", "error", err)
	}
}
