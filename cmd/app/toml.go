package app

import (
	"github.com/pelletier/go-toml/v2"
)

// TOML implements koanf.Parser on top of go-toml.
type TOML struct{}

func TOMLParser() *TOML { return &TOML{} }

func (p *TOML) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *TOML) Marshal(o map[string]any) ([]byte, error) {
	return toml.Marshal(o)
}
