package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: "sqlite"
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
fleet:
  max_devices_per_gateway: 4
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
kafka:
  enabled: true
  brokers: ["kafka-1:9092", "kafka-2:9092"]
  topic: "fleet.audit"
api:
  host: "0.0.0.0"
  port: 8080
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.Fleet.MaxDevicesPerGateway != 4 {
		t.Errorf("Fleet.MaxDevicesPerGateway = %d, want 4", cfg.Fleet.MaxDevicesPerGateway)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("Kafka.Brokers = %v, want two brokers", cfg.Kafka.Brokers)
	}
	// Unset sections keep their defaults.
	if cfg.WebSocket.Path != "/ws" {
		t.Errorf("WebSocket.Path = %q, want /ws", cfg.WebSocket.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: "postgres"
  url: ""
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error for missing database.url, got nil")
	}
	if !strings.Contains(err.Error(), "database.url") {
		t.Errorf("error = %v, want mention of database.url", err)
	}
}

func TestLoad_BadNumericOverride(t *testing.T) {
	path := writeConfig(t, "api:\n  port: 8080\n")
	t.Setenv("GATEWAYFLEET_MAX_DEVICES_PER_GATEWAY", "ten")

	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for non-numeric override, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	validJWTSecret := "test-secret-key-at-least-32-chars!"

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"postgres with url", func(c *Config) {
			c.Database.Driver = DriverPostgres
			c.Database.URL = "postgres://fleet@localhost/fleet"
		}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, true},
		{"postgres without url", func(c *Config) { c.Database.Driver = DriverPostgres }, true},
		{"zero device cap", func(c *Config) { c.Fleet.MaxDevicesPerGateway = 0 }, true},
		{"invalid QoS", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"kafka enabled without brokers", func(c *Config) { c.Kafka.Enabled = true }, true},
		{"influxdb enabled without url", func(c *Config) { c.InfluxDB.Enabled = true }, true},
		{"invalid port low", func(c *Config) { c.API.Port = 0 }, true},
		{"invalid port high", func(c *Config) { c.API.Port = 70000 }, true},
		{"jwt enabled without secret", func(c *Config) { c.Security.JWT.Enabled = true }, true},
		{"jwt secret too short", func(c *Config) {
			c.Security.JWT.Enabled = true
			c.Security.JWT.Secret = "short"
		}, true},
		{"jwt enabled with secret", func(c *Config) {
			c.Security.JWT.Enabled = true
			c.Security.JWT.Secret = validJWTSecret
		}, false},
		{"short secret ignored when jwt disabled", func(c *Config) { c.Security.JWT.Secret = "short" }, false},
		{"rate limit without budget", func(c *Config) { c.Security.RateLimit.RequestsPerMinute = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_ReportsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Path = ""
	cfg.API.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"database.path", "api.port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:     30,
				Write:    45,
				Idle:     60,
				Shutdown: 10,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
	if got := cfg.GetShutdownTimeout().Seconds(); got != 10 {
		t.Errorf("GetShutdownTimeout() = %v, want 10", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("GATEWAYFLEET_DATABASE_DRIVER", "postgres")
	t.Setenv("GATEWAYFLEET_DATABASE_URL", "postgres://fleet@db/fleet")
	t.Setenv("GATEWAYFLEET_MAX_DEVICES_PER_GATEWAY", "25")
	t.Setenv("GATEWAYFLEET_MQTT_HOST", "mqtt.example.com")
	t.Setenv("GATEWAYFLEET_MQTT_USERNAME", "testuser")
	t.Setenv("GATEWAYFLEET_MQTT_PASSWORD", "testpass")
	t.Setenv("GATEWAYFLEET_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("GATEWAYFLEET_API_HOST", "192.168.1.1")
	t.Setenv("GATEWAYFLEET_API_PORT", "9090")
	t.Setenv("GATEWAYFLEET_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("GATEWAYFLEET_JWT_SECRET", "jwt-secret")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	checks := []struct {
		field string
		got   any
		want  any
	}{
		{"Database.Driver", cfg.Database.Driver, "postgres"},
		{"Database.URL", cfg.Database.URL, "postgres://fleet@db/fleet"},
		{"Fleet.MaxDevicesPerGateway", cfg.Fleet.MaxDevicesPerGateway, 25},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"len(Kafka.Brokers)", len(cfg.Kafka.Brokers), 2},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"API.Port", cfg.API.Port, 9090},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Security.JWT.Secret", cfg.Security.JWT.Secret, "jwt-secret"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverSQLite)
	}
	if cfg.Fleet.MaxDevicesPerGateway != 10 {
		t.Errorf("Fleet.MaxDevicesPerGateway = %d, want 10", cfg.Fleet.MaxDevicesPerGateway)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.API.Timeouts.Shutdown != 10 {
		t.Errorf("API.Timeouts.Shutdown = %d, want 10", cfg.API.Timeouts.Shutdown)
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	if got := Path(); got != DefaultPath {
		t.Errorf("Path() = %q, want %q", got, DefaultPath)
	}

	t.Setenv(EnvConfigPath, "/etc/gatewayfleet.yaml")
	if got := Path(); got != "/etc/gatewayfleet.yaml" {
		t.Errorf("Path() = %q, want override", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("LoadDotEnv() error = %v", err)
		}
	})

	t.Run("variables are exported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("GATEWAYFLEET_DOTENV_PROBE=loaded\n"), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("GATEWAYFLEET_DOTENV_PROBE", "")
		os.Unsetenv("GATEWAYFLEET_DOTENV_PROBE")

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv() error = %v", err)
		}
		if got := os.Getenv("GATEWAYFLEET_DOTENV_PROBE"); got != "loaded" {
			t.Errorf("GATEWAYFLEET_DOTENV_PROBE = %q, want loaded", got)
		}
	})
}
