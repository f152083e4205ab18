package mqttctrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/Agrid-Dev/thermocomfort/internal/controllers/wire"
	"github.com/Agrid-Dev/thermocomfort/internal/ports"
	"github.com/Agrid-Dev/thermocomfort/internal/zone"
)

type Config struct {
	// Identity
	DeviceID string

	// MQTT connection
	BrokerURL string
	ClientID  string

	// Topics
	BaseTopic string

	// Behavior
	QoS             byte
	RetainSnapshot  bool
	PublishInterval time.Duration

	Username string
	Password string
}

type Controller struct {
	svc ports.ZoneService
	cfg Config
	log zerolog.Logger

	client mqtt.Client
}

func New(svc ports.ZoneService, cfg Config, log zerolog.Logger) (*Controller, error) {
	if cfg.BrokerURL == "" {
		cfg.BrokerURL = "tcp://localhost:1883"
	}
	if cfg.DeviceID == "" {
		return nil, errors.New("mqtt: DeviceID is required")
	}
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = "thermocomfort/" + cfg.DeviceID
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "thermocomfort-" + cfg.DeviceID
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 1 * time.Second
	}
	if cfg.QoS > 1 {
		return nil, errors.New("mqtt: QoS must be 0 or 1")
	}
	return &Controller{
		svc: svc,
		cfg: cfg,
		log: log.With().Str("controller", "mqtt").Logger(),
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	// Subscribe when connected/reconnected.
	opts.OnConnect = func(cl mqtt.Client) {
		topic := c.topic("set/+")
		token := cl.Subscribe(topic, c.cfg.QoS, c.onMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			c.log.Error().Err(err).Str("topic", topic).Msg("subscribe failed")
		}
	}

	c.client = mqtt.NewClient(opts)
	tok := c.client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	c.log.Info().Str("broker", c.cfg.BrokerURL).Str("base_topic", c.cfg.BaseTopic).Msg("mqtt controller connected")

	// Publish loop: publish snapshot on interval, and only when changed.
	ticker := time.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	last := c.svc.Get()
	c.publishSnapshot()

	for {
		select {
		case <-ctx.Done():
			c.client.Disconnect(250)
			return ctx.Err()

		case <-ticker.C:
			cur := c.svc.Get()
			if !reflect.DeepEqual(cur, last) {
				c.publishSnapshot()
				last = cur
			}
		}
	}
}

func (c *Controller) publishSnapshot() {
	snap, ev, err := c.svc.State()
	dto := wire.NewSnapshot(c.cfg.DeviceID, snap).WithComfort(ev, err)
	b, err := json.Marshal(dto)
	if err != nil {
		c.log.Error().Err(err).Msg("encode snapshot")
		return
	}
	c.client.Publish(c.topic("snapshot"), c.cfg.QoS, c.cfg.RetainSnapshot, b)
}

// Command payload format: {"value": ...}
type valueReq[T any] struct {
	Value *T `json:"value"`
}

func (c *Controller) onMessage(_ mqtt.Client, msg mqtt.Message) {
	// topic format: <base>/set/<field>
	t := msg.Topic()
	prefix := strings.TrimRight(c.cfg.BaseTopic, "/") + "/set/"
	if !strings.HasPrefix(t, prefix) {
		return
	}
	field := strings.TrimPrefix(t, prefix)

	if err := c.apply(field, msg.Payload()); err != nil {
		c.log.Warn().Err(err).Str("topic", t).Msg("command rejected")
	}
}

func (c *Controller) apply(field string, payload []byte) error {
	switch field {
	case "air_temperature":
		return applyFloat(payload, func(v float64) error {
			c.svc.SetAirTemperature(v)
			return nil
		})
	case "mean_radiant_temperature":
		return applyFloat(payload, func(v float64) error {
			c.svc.SetMeanRadiantTemperature(v)
			return nil
		})
	case "air_velocity":
		return applyFloat(payload, c.svc.SetAirVelocity)
	case "relative_humidity":
		return applyFloat(payload, c.svc.SetRelativeHumidity)
	case "vapor_pressure":
		return applyFloat(payload, c.svc.SetVaporPressure)
	case "clothing":
		return applyFloat(payload, c.svc.SetClothing)
	case "metabolic_rate":
		return applyFloat(payload, c.svc.SetMetabolicRate)
	case "external_work":
		return applyFloat(payload, func(v float64) error {
			c.svc.SetExternalWork(v)
			return nil
		})
	case "activity":
		s, err := decodeValueStrict[string](payload)
		if err != nil {
			return err
		}
		a, err := zone.ParseActivity(s)
		if err != nil {
			return err
		}
		return c.svc.SetActivity(a)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
}

func applyFloat(payload []byte, set func(float64) error) error {
	v, err := decodeValueStrict[float64](payload)
	if err != nil {
		return err
	}
	return set(v)
}

func (c *Controller) topic(suffix string) string {
	return strings.TrimRight(c.cfg.BaseTopic, "/") + "/" + suffix
}

func decodeValueStrict[T any](b []byte) (T, error) {
	var zero T
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var req valueReq[T]
	if err := dec.Decode(&req); err != nil {
		return zero, err
	}
	if req.Value == nil {
		return zero, errors.New("missing field 'value'")
	}
	return *req.Value, nil
}
