// mqtt-alert - push notifications for home sensors published over MQTT.
//
// mqtt-alert keeps one session per configured broker:
//   - local: flood sensors and appliances reporting a finished program
//   - ttn: a LoRaWAN mailbox flap sensor on The Things Network
//
// Fired events are sent to Pushover. Flood alerts use high priority.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ThiefMaster/mqtt-alert/internal/api"
	"github.com/ThiefMaster/mqtt-alert/internal/dispatch"
	"github.com/ThiefMaster/mqtt-alert/internal/infrastructure/config"
	"github.com/ThiefMaster/mqtt-alert/internal/infrastructure/influxdb"
	"github.com/ThiefMaster/mqtt-alert/internal/infrastructure/logging"
	"github.com/ThiefMaster/mqtt-alert/internal/infrastructure/mqtt"
	"github.com/ThiefMaster/mqtt-alert/internal/notify"
	"github.com/ThiefMaster/mqtt-alert/internal/sensor"
	"github.com/ThiefMaster/mqtt-alert/internal/session"
	"github.com/ThiefMaster/mqtt-alert/internal/supervisor"
	"github.com/ThiefMaster/mqtt-alert/internal/topic"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "config.yaml"

// telemetry records session and notification events. Satisfied by *influxdb.Client.
type telemetry interface {
	session.Recorder
	dispatch.Recorder
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called explicitly above
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    int
	)

	cmd := &cobra.Command{
		Use:           "mqtt-alert",
		Short:         "Send push notifications for MQTT sensor events",
		Long:          "mqtt-alert subscribes to flood, appliance and mailbox sensors on one or two MQTT brokers\nand sends a Pushover notification whenever one of them reports an event.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", getConfigPath(), "path to the YAML configuration file")
	cmd.Flags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug)")

	return cmd
}

// getConfigPath returns the configuration file path.
// Uses MQTTALERT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MQTTALERT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: YAML configuration file
//   - verbose: Number of -v flags
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string, verbose int) error {
	log := logging.Default()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(logging.WithVerbosity(cfg.Logging, verbose), version)
	log.Info("starting mqtt-alert",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", configPath,
	)

	sink := newSink(cfg, log)

	var (
		rec         telemetry
		healthProbe api.TelemetryProbe
	)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			log.Warn("telemetry disabled: InfluxDB unavailable", "error", influxErr)
		} else {
			defer func() {
				log.Info("closing InfluxDB connection")
				if closeErr := influxClient.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			influxClient.SetOnError(func(err error) {
				log.Warn("InfluxDB write error", "error", err)
			})
			rec = influxClient
			healthProbe = influxClient
			log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		}
	}

	units, probes := buildUnits(cfg, sink, rec, log)

	sup, err := supervisor.New(units, log)
	if err != nil {
		return err
	}

	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:    cfg.API,
			Logger:    log,
			Brokers:   probes,
			Breaker:   sink,
			Telemetry: healthProbe,
			Version:   version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	log.Info("initialisation complete", "brokers", sup.Names())

	if err := sup.Run(ctx); err != nil {
		return err
	}

	log.Info("mqtt-alert stopped")
	return nil
}

// newSink builds the Pushover sink wrapped in its rate limiter and breaker.
func newSink(cfg *config.Config, log *logging.Logger) *notify.Guard {
	pushover := notify.NewPushover(notify.PushoverConfig{
		Token:   cfg.Pushover.Token,
		User:    cfg.Pushover.User,
		APIURL:  cfg.Pushover.APIURL,
		Timeout: cfg.PushoverTimeout(),
	})

	return notify.NewGuard(pushover, notify.GuardConfig{
		PerMinute:        cfg.Notify.RateLimit,
		Burst:            cfg.Notify.Burst,
		FailureThreshold: cfg.Notify.BreakerFailures,
		ResetTimeout:     cfg.BreakerResetDuration(),
	}, log)
}

// buildUnits creates one supervised session per configured broker, and the
// connection probes the status server reports on.
func buildUnits(cfg *config.Config, sink notify.Sink, rec telemetry, log *logging.Logger) ([]supervisor.Unit, map[string]api.BrokerProbe) {
	var units []supervisor.Unit
	probes := make(map[string]api.BrokerProbe)

	add := func(name string, broker config.BrokerConfig, routes []dispatch.Route) {
		unit, transport := newUnit(name, broker, routes, cfg, sink, rec, log)
		units = append(units, unit)
		probes[name] = transport
	}

	if cfg.MQTT.Local != nil {
		add(config.BrokerLocal, *cfg.MQTT.Local, localRoutes(cfg))
	} else {
		if cfg.Flood != nil {
			log.Warn("flood sensor configured without mqtt.local; ignoring it")
		}
		if cfg.Appliance != nil {
			log.Warn("appliance sensor configured without mqtt.local; ignoring it")
		}
	}

	if cfg.MQTT.TTN != nil {
		add(config.BrokerTTN, *cfg.MQTT.TTN, ttnRoutes(cfg))
	} else if cfg.Mailbox != nil {
		log.Warn("mailbox sensor configured without mqtt.ttn; ignoring it")
	}

	return units, probes
}

// localRoutes returns the flood route and one appliance route per topic, so
// every appliance keeps its own finished state.
func localRoutes(cfg *config.Config) []dispatch.Route {
	var routes []dispatch.Route
	if cfg.Flood != nil {
		routes = append(routes, dispatch.Route{
			Patterns: topic.NewSet(cfg.Flood.Topics),
			Policy:   sensor.NewFlood(),
		})
	}
	if cfg.Appliance != nil {
		for _, t := range cfg.Appliance.Topics {
			routes = append(routes, dispatch.Route{
				Patterns: topic.NewSet([]string{t}),
				Policy:   sensor.NewApplianceDone(),
			})
		}
	}
	return routes
}

func ttnRoutes(cfg *config.Config) []dispatch.Route {
	if cfg.Mailbox == nil {
		return nil
	}
	return []dispatch.Route{{
		Patterns: topic.NewSet(cfg.Mailbox.Topics),
		Policy:   sensor.NewMailbox(),
	}}
}

func newUnit(name string, broker config.BrokerConfig, routes []dispatch.Route, cfg *config.Config, sink notify.Sink, rec telemetry, log *logging.Logger) (supervisor.Unit, *mqtt.Client) {
	disp := dispatch.New(name, routes, sink, log)
	disp.SetRecorder(rec)

	transport := mqtt.New(broker, cfg.MQTT.Reconnect)
	transport.SetLogger(log.With("broker", name))

	sess := session.New(name, transport, disp,
		session.WithBackoff(cfg.RetryBackoffDuration()),
		session.WithLogger(log),
		session.WithRecorder(rec),
	)

	return supervisor.Unit{Name: name, Runner: sess}, transport
}
