package zone

import "time"

// DriftParams configure the envelope drift of an unconditioned zone: both
// the air temperature and the mean radiant temperature of the surrounding
// surfaces relax toward OutdoorTemperature at the rate Coefficient (1/s).
type DriftParams struct {
	OutdoorTemperature float64
	Coefficient        float64 // 0 keeps the zone temperatures fixed
}

func (params *DriftParams) Validate() error {
	if params.Coefficient < 0 {
		return ErrNegativeDriftCoefficient
	}
	return nil
}

// Drift is a first-order (explicit Euler) envelope model. Air and mean
// radiant temperature share one coefficient, so the difference between
// them decays at the same rate as each temperature approaches outdoor.
type Drift struct {
	params DriftParams
}

func NewDrift(params DriftParams) (*Drift, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Drift{params: params}, nil
}

// DeltaTemperature is the change of one zone temperature over dt:
// coefficient × (outdoor − t) × dt.
func (d *Drift) DeltaTemperature(t float64, dt time.Duration) float64 {
	return d.params.Coefficient * (d.params.OutdoorTemperature - t) * dt.Seconds()
}

// Apply drifts the air and mean radiant temperatures of s over dt. The
// occupant and humidity are left alone; a relative humidity is kept as a
// relative humidity at the new air temperature.
func (d *Drift) Apply(s *Snapshot, dt time.Duration) {
	s.AirTemperature += d.DeltaTemperature(s.AirTemperature, dt)
	s.MeanRadiantTemperature += d.DeltaTemperature(s.MeanRadiantTemperature, dt)
}
