package kafkactrl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/Agrid-Dev/thermocomfort/internal/controllers/wire"
	"github.com/Agrid-Dev/thermocomfort/internal/ports"
)

// messageWriter is the subset of *kafkago.Writer the controller uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Config struct {
	DeviceID        string
	Brokers         []string
	Topic           string
	PublishInterval time.Duration
}

// Controller periodically publishes the zone snapshot and its comfort
// evaluation as a JSON record keyed by device ID.
type Controller struct {
	svc   ports.ZoneService
	cfg   Config
	log   zerolog.Logger
	clock clockwork.Clock

	w messageWriter
}

func New(svc ports.ZoneService, cfg Config, log zerolog.Logger) (*Controller, error) {
	if cfg.DeviceID == "" {
		return nil, errors.New("kafka: DeviceID is required")
	}
	if len(cfg.Brokers) == 0 {
		cfg.Brokers = []string{"localhost:9092"}
	}
	if cfg.Topic == "" {
		cfg.Topic = "thermocomfort.evaluations"
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 10 * time.Second
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Controller{
		svc:   svc,
		cfg:   cfg,
		log:   log.With().Str("controller", "kafka").Logger(),
		clock: clockwork.NewRealClock(),
		w:     w,
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		if err := c.w.Close(); err != nil {
			c.log.Warn().Err(err).Msg("close writer")
		}
	}()
	c.log.Info().Strs("brokers", c.cfg.Brokers).Str("topic", c.cfg.Topic).Msg("kafka controller started")

	ticker := c.clock.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if err := c.publish(ctx); err != nil && ctx.Err() == nil {
				c.log.Error().Err(err).Msg("publish evaluation")
			}
		}
	}
}

func (c *Controller) publish(ctx context.Context) error {
	msg, err := c.message()
	if err != nil {
		return err
	}
	return c.w.WriteMessages(ctx, msg)
}

func (c *Controller) message() (kafkago.Message, error) {
	snap, ev, evErr := c.svc.State()
	dto := wire.NewSnapshot(c.cfg.DeviceID, snap).WithComfort(ev, evErr)
	data, err := json.Marshal(dto)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize evaluation: %w", err)
	}
	now := c.clock.Now().UTC()
	return kafkago.Message{
		Key:   []byte(c.cfg.DeviceID),
		Value: data,
		Time:  now,
		Headers: []kafkago.Header{
			{Key: "device_id", Value: []byte(c.cfg.DeviceID)},
			{Key: "evaluated_at", Value: []byte(now.Format(time.RFC3339))},
		},
	}, nil
}
