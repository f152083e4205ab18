package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpctrl "github.com/Agrid-Dev/thermocomfort/internal/controllers/http"
	kafkactrl "github.com/Agrid-Dev/thermocomfort/internal/controllers/kafka"
	modbusctrl "github.com/Agrid-Dev/thermocomfort/internal/controllers/modbus"
	mqttctrl "github.com/Agrid-Dev/thermocomfort/internal/controllers/mqtt"
	"github.com/Agrid-Dev/thermocomfort/internal/device"
	"github.com/Agrid-Dev/thermocomfort/internal/observability"
	"github.com/Agrid-Dev/thermocomfort/internal/zone"
)

// Run builds the device from cfg and runs every enabled controller, the
// drift runner and the config watcher until ctx is canceled or one of them
// fails.
func Run(ctx context.Context, cfg Config, configPath string, log zerolog.Logger) error {
	snap, err := cfg.Snapshot()
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()
	z, err := zone.New(snap, cfg.DriftParams(), zone.WithObserver(metrics))
	if err != nil {
		return err
	}
	dev := device.New(cfg.DeviceID, z)
	log = log.With().Str("device_id", dev.ID).Logger()

	components, err := buildComponents(cfg, configPath, dev, log)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range components {
		g.Go(func() error {
			err := c.run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Str("component", c.name).Msg("component stopped")
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

type component struct {
	name string
	run  func(context.Context) error
}

// buildComponents constructs every enabled component without starting any,
// so a configuration error leaves nothing running.
func buildComponents(cfg Config, configPath string, dev *device.Device, log zerolog.Logger) ([]component, error) {
	var components []component
	add := func(name string, run func(context.Context) error) {
		components = append(components, component{name: name, run: run})
	}

	ctrls := cfg.Controllers
	if ctrls.HTTP.Enabled {
		srv := httpctrl.New(dev.Zone, ctrls.HTTP.Addr, dev.ID, log)
		add("http", srv.Run)
	}
	if ctrls.MQTT.Enabled {
		c, err := mqttctrl.New(dev.Zone, mqttctrl.Config{
			DeviceID:        dev.ID,
			BrokerURL:       ctrls.MQTT.BrokerURL,
			ClientID:        ctrls.MQTT.ClientID,
			BaseTopic:       ctrls.MQTT.BaseTopic,
			QoS:             ctrls.MQTT.QoS,
			RetainSnapshot:  ctrls.MQTT.RetainSnapshot,
			PublishInterval: ctrls.MQTT.PublishInterval,
			Username:        ctrls.MQTT.Username,
			Password:        ctrls.MQTT.Password,
		}, log)
		if err != nil {
			return nil, err
		}
		add("mqtt", c.Run)
	}
	if ctrls.Modbus.Enabled {
		c, err := modbusctrl.New(dev.Zone, modbusctrl.Config{
			DeviceID: dev.ID,
			Addr:     ctrls.Modbus.Addr,
			UnitID:   ctrls.Modbus.UnitID,
		}, log)
		if err != nil {
			return nil, err
		}
		add("modbus", c.Run)
	}
	if ctrls.Kafka.Enabled {
		c, err := kafkactrl.New(dev.Zone, kafkactrl.Config{
			DeviceID:        dev.ID,
			Brokers:         ctrls.Kafka.Brokers,
			Topic:           ctrls.Kafka.Topic,
			PublishInterval: ctrls.Kafka.PublishInterval,
		}, log)
		if err != nil {
			return nil, err
		}
		add("kafka", c.Run)
	}

	if cfg.Drift.Interval > 0 {
		add("drift", func(ctx context.Context) error {
			return dev.Zone.Run(ctx, cfg.Drift.Interval)
		})
	}
	if configPath != "" && fileExists(configPath) {
		add("config-watch", func(ctx context.Context) error {
			return WatchConfig(ctx, configPath, dev.Zone, log)
		})
	}
	return components, nil
}
