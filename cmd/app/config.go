package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
	"github.com/Agrid-Dev/thermocomfort/internal/zone"
)

const EnvPrefix = "THERMOCOMFORT_"

type Config struct {
	DeviceID    string            `koanf:"device_id"`
	Log         LogConfig         `koanf:"log"`
	Controllers ControllersConfig `koanf:"controllers"`
	Zone        ZoneConfig        `koanf:"zone"`
	Drift       DriftConfig       `koanf:"drift"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `koanf:"format"` // "json" | "console"
}

type ControllersConfig struct {
	HTTP   HTTPConfig   `koanf:"http"`
	MQTT   MQTTConfig   `koanf:"mqtt"`
	Modbus ModbusConfig `koanf:"modbus"`
	Kafka  KafkaConfig  `koanf:"kafka"`
}

// ZoneConfig holds the initial zone state. Unset values fall back to the
// defaults in Snapshot.
type ZoneConfig struct {
	AirTemperature         *float64 `koanf:"air_temperature"`
	MeanRadiantTemperature *float64 `koanf:"mean_radiant_temperature"`
	AirVelocity            *float64 `koanf:"air_velocity"`
	RelativeHumidity       *float64 `koanf:"relative_humidity"`
	VaporPressure          *float64 `koanf:"vapor_pressure"`

	Clothing      *float64 `koanf:"clothing"`
	MetabolicRate *float64 `koanf:"metabolic_rate"`
	Activity      *string  `koanf:"activity"` // "reclining" | "seated" | "sedentary" | "standing" | "walking"
	ExternalWork  *float64 `koanf:"external_work"`
}

type DriftConfig struct {
	Interval           time.Duration `koanf:"interval"` // 0 disables the drift runner
	OutdoorTemperature float64       `koanf:"outdoor_temperature"`
	Coefficient        float64       `koanf:"coefficient"`
}

type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

type MQTTConfig struct {
	Enabled         bool          `koanf:"enabled"`
	BrokerURL       string        `koanf:"broker_url"`
	ClientID        string        `koanf:"client_id"`
	BaseTopic       string        `koanf:"base_topic"`
	QoS             byte          `koanf:"qos"`
	RetainSnapshot  bool          `koanf:"retain_snapshot"`
	PublishInterval time.Duration `koanf:"publish_interval"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
}

type ModbusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
	UnitID  byte   `koanf:"unit_id"`
}

type KafkaConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Brokers         []string      `koanf:"brokers"`
	Topic           string        `koanf:"topic"`
	PublishInterval time.Duration `koanf:"publish_interval"`
}

func defaultConfig() Config {
	return Config{
		DeviceID: "default",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Controllers: ControllersConfig{
			HTTP: HTTPConfig{
				Enabled: true,
				Addr:    ":8080",
			},
			MQTT: MQTTConfig{
				BrokerURL:       "tcp://localhost:1883",
				PublishInterval: 1 * time.Second,
			},
			Modbus: ModbusConfig{
				Addr:   "127.0.0.1:1502",
				UnitID: 1,
			},
			Kafka: KafkaConfig{
				Brokers:         []string{"localhost:9092"},
				Topic:           "thermocomfort.evaluations",
				PublishInterval: 10 * time.Second,
			},
		},
		Drift: DriftConfig{
			OutdoorTemperature: 10,
		},
	}
}

// LoadConfig layers defaults, the optional config file and THERMOCOMFORT_*
// environment variables, in that order. A missing file falls back to
// defaults.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			parser, err := parserFor(path)
			if err != nil {
				return Config{}, err
			}
			if err := k.Load(file.Provider(path), parser); err != nil {
				return Config{}, fmt.Errorf("load config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envTransform,
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return TOMLParser(), nil
	default:
		return nil, fmt.Errorf("unsupported config extension %q", ext)
	}
}

func envTransform(k, v string) (string, any) {
	key := envKeyTransform(strings.TrimPrefix(k, EnvPrefix))
	if strings.HasSuffix(key, ".brokers") {
		return key, strings.Split(v, ",")
	}
	return key, v
}

// sections whose keys are nested one level: SECTION_FIELD_NAME -> section.field_name.
var sections = []string{"zone", "drift", "log"}

// envKeyTransform maps an environment key (prefix already removed) to a
// koanf path. CONTROLLERS_<NAME>_<FIELD> becomes controllers.<name>.<field>.
func envKeyTransform(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	if k == "" {
		return ""
	}

	if rest, ok := strings.CutPrefix(k, "controllers_"); ok {
		parts := strings.SplitN(rest, "_", 2)
		if len(parts) == 2 {
			return "controllers." + parts[0] + "." + parts[1]
		}
		return k
	}

	for _, s := range sections {
		if rest, ok := strings.CutPrefix(k, s+"_"); ok && rest != "" {
			return s + "." + rest
		}
	}
	return k
}

// Snapshot builds the initial zone state. Vapor pressure wins over relative
// humidity when both are configured.
func (c Config) Snapshot() (zone.Snapshot, error) {
	s := zone.Snapshot{
		AirTemperature:         valueOr(c.Zone.AirTemperature, 22),
		MeanRadiantTemperature: valueOr(c.Zone.MeanRadiantTemperature, 22),
		AirVelocity:            valueOr(c.Zone.AirVelocity, 0.1),
		Clothing:               valueOr(c.Zone.Clothing, 1.0),
		ExternalWork:           valueOr(c.Zone.ExternalWork, 0),
	}

	rh := c.Zone.RelativeHumidity
	if rh == nil && c.Zone.VaporPressure == nil {
		rh = ptr(50.0)
	}
	h, err := comfort.HumidityFrom(rh, c.Zone.VaporPressure)
	if err != nil {
		return zone.Snapshot{}, err
	}
	s.Humidity = h

	activity := zone.ActivitySedentary
	if c.Zone.Activity != nil {
		activity, err = zone.ParseActivity(*c.Zone.Activity)
		if err != nil {
			return zone.Snapshot{}, err
		}
	}
	s.Activity = activity
	s.MetabolicRate = activity.MetabolicRate()
	if c.Zone.MetabolicRate != nil {
		s.MetabolicRate = *c.Zone.MetabolicRate
		s.Activity = zone.ActivityCustom
	}
	return s, nil
}

func (c Config) DriftParams() zone.DriftParams {
	return zone.DriftParams{
		OutdoorTemperature: c.Drift.OutdoorTemperature,
		Coefficient:        c.Drift.Coefficient,
	}
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func ptr[T any](v T) *T { return &v }

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
