// Package config handles loading and validating mqtt-alert configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding secrets with environment variables
//   - Validation of brokers, sensor topic patterns and credentials
//   - Default value handling
//
// Brokers and sensors are optional sections, but they depend on each other:
// mqtt.local needs flood or appliance, mqtt.ttn needs mailbox, and at least
// one broker must be present.
//
// Security Considerations:
//   - Pushover tokens and broker passwords should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.Local.Host)
package config
