package app

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/providers/file"
	"github.com/rs/zerolog"
)

// OccupantSetter receives occupant settings reloaded from the config file.
type OccupantSetter interface {
	SetOccupant(clothing, metabolicRate, externalWork float64) error
}

// WatchConfig reloads path whenever it changes and applies the occupant
// settings to z. It blocks until ctx is canceled.
func WatchConfig(ctx context.Context, path string, z OccupantSetter, log zerolog.Logger) error {
	f := file.Provider(path)
	err := f.Watch(func(_ any, err error) {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config watch")
			return
		}
		if err := reloadOccupant(path, z); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config reload rejected")
			return
		}
		log.Info().Str("path", path).Msg("config reloaded")
	})
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	<-ctx.Done()
	_ = f.Unwatch()
	return ctx.Err()
}

func reloadOccupant(path string, z OccupantSetter) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	s, err := cfg.Snapshot()
	if err != nil {
		return err
	}
	return z.SetOccupant(s.Clothing, s.MetabolicRate, s.ExternalWork)
}
