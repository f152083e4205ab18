package zone

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
)

// Snapshot is the state of the zone and of its occupant.
type Snapshot struct {
	AirTemperature         float64
	MeanRadiantTemperature float64
	AirVelocity            float64
	Humidity               comfort.Humidity

	Clothing      float64
	MetabolicRate float64
	Activity      Activity
	ExternalWork  float64
}

// Inputs maps the snapshot onto the comfort model inputs.
func (s Snapshot) Inputs() comfort.Inputs {
	return comfort.Inputs{
		Clothing:               s.Clothing,
		MetabolicRate:          s.MetabolicRate,
		ExternalWork:           s.ExternalWork,
		AirTemperature:         s.AirTemperature,
		MeanRadiantTemperature: s.MeanRadiantTemperature,
		AirVelocity:            s.AirVelocity,
		Humidity:               s.Humidity,
	}
}

// Observer is notified of every comfort evaluation of the zone.
type Observer interface {
	ObserveEvaluation(ev comfort.Evaluation, err error)
}

type Option func(*Zone)

func WithClock(c clockwork.Clock) Option {
	return func(z *Zone) { z.clock = c }
}

func WithObserver(o Observer) Option {
	return func(z *Zone) { z.observer = o }
}

type Zone struct {
	mu    sync.RWMutex
	s     Snapshot
	drift Drift

	clock    clockwork.Clock
	observer Observer
}

func New(initial Snapshot, driftParams DriftParams, opts ...Option) (*Zone, error) {
	if err := validateSnapshot(initial); err != nil {
		return nil, err
	}
	drift, err := NewDrift(driftParams)
	if err != nil {
		return nil, err
	}
	z := &Zone{
		s:     initial,
		drift: *drift,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(z)
	}
	return z, nil
}

// Validate reports whether s is a state the zone accepts.
func Validate(s Snapshot) error {
	return validateSnapshot(s)
}

func validateSnapshot(s Snapshot) error {
	if !s.Activity.Valid() {
		return ErrInvalidActivity
	}
	if err := validateHumidity(s.Humidity); err != nil {
		return err
	}
	if s.AirVelocity < 0 {
		return ErrNegativeAirVelocity
	}
	if s.Clothing < 0 {
		return ErrNegativeClothing
	}
	if s.MetabolicRate <= 0 {
		return ErrInvalidMetabolicRate
	}
	return nil
}

func validateHumidity(h comfort.Humidity) error {
	switch v := h.(type) {
	case comfort.RelativeHumidity:
		if v < 0 || v > 100 {
			return ErrHumidityOutOfRange
		}
	case comfort.VaporPressure:
		if v < 0 {
			return ErrNegativeVaporPressure
		}
	default:
		return ErrMissingHumidity
	}
	return nil
}

func (z *Zone) Get() Snapshot {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.s
}

// Comfort evaluates PMV/PPD for the current state.
func (z *Zone) Comfort() (comfort.Evaluation, error) {
	_, ev, err := z.State()
	return ev, err
}

// State returns the snapshot and its evaluation from the same read, so
// the two always describe one state.
func (z *Zone) State() (Snapshot, comfort.Evaluation, error) {
	s := z.Get()
	ev, err := comfort.Evaluate(s.Inputs())
	if z.observer != nil {
		z.observer.ObserveEvaluation(ev, err)
	}
	return s, ev, err
}

// Update applies fn to a copy of the snapshot and commits it only if the
// result is valid. Either every change lands or none does.
func (z *Zone) Update(fn func(*Snapshot)) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	next := z.s
	fn(&next)
	if err := validateSnapshot(next); err != nil {
		return err
	}
	z.s = next
	return nil
}

func (z *Zone) SetAirTemperature(v float64) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.s.AirTemperature = v
}

func (z *Zone) SetMeanRadiantTemperature(v float64) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.s.MeanRadiantTemperature = v
}

func (z *Zone) SetAirVelocity(v float64) error {
	if v < 0 {
		return ErrNegativeAirVelocity
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	z.s.AirVelocity = v
	return nil
}

func (z *Zone) SetRelativeHumidity(v float64) error {
	return z.setHumidity(comfort.RelativeHumidity(v))
}

func (z *Zone) SetVaporPressure(v float64) error {
	return z.setHumidity(comfort.VaporPressure(v))
}

func (z *Zone) setHumidity(h comfort.Humidity) error {
	if err := validateHumidity(h); err != nil {
		return err
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	z.s.Humidity = h
	return nil
}

func (z *Zone) SetClothing(v float64) error {
	if v < 0 {
		return ErrNegativeClothing
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	z.s.Clothing = v
	return nil
}

// SetMetabolicRate sets the rate directly, which marks the activity custom.
func (z *Zone) SetMetabolicRate(v float64) error {
	if v <= 0 {
		return ErrInvalidMetabolicRate
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	z.s.MetabolicRate = v
	z.s.Activity = ActivityCustom
	return nil
}

// SetActivity sets the activity and its tabulated metabolic rate. Setting
// ActivityCustom keeps the current rate.
func (z *Zone) SetActivity(a Activity) error {
	if !a.Valid() {
		return ErrInvalidActivity
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	z.s.Activity = a
	if a != ActivityCustom {
		z.s.MetabolicRate = a.MetabolicRate()
	}
	return nil
}

func (z *Zone) SetExternalWork(v float64) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.s.ExternalWork = v
}

// SetOccupant replaces clothing, metabolic rate and external work at once.
func (z *Zone) SetOccupant(clothing, metabolicRate, externalWork float64) error {
	if clothing < 0 {
		return ErrNegativeClothing
	}
	if metabolicRate <= 0 {
		return ErrInvalidMetabolicRate
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	z.s.Clothing = clothing
	if metabolicRate != z.s.MetabolicRate {
		z.s.MetabolicRate = metabolicRate
		z.s.Activity = ActivityCustom
	}
	z.s.ExternalWork = externalWork
	return nil
}

// Step applies the envelope drift over dt.
func (z *Zone) Step(dt time.Duration) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.drift.Apply(&z.s, dt)
}

func (z *Zone) Run(ctx context.Context, interval time.Duration) error {
	ticker := z.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			z.Step(interval)
		}
	}
}
