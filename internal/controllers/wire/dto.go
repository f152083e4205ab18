// Package wire holds the JSON documents shared by the controllers.
package wire

import (
	"math"

	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
	"github.com/Agrid-Dev/thermocomfort/internal/zone"
)

type Snapshot struct {
	DeviceID               string   `json:"device_id,omitempty"`
	AirTemperature         float64  `json:"air_temperature"`
	MeanRadiantTemperature float64  `json:"mean_radiant_temperature"`
	AirVelocity            float64  `json:"air_velocity"`
	RelativeHumidity       *float64 `json:"relative_humidity,omitempty"`
	VaporPressure          *float64 `json:"vapor_pressure,omitempty"`
	Clothing               float64  `json:"clothing"`
	MetabolicRate          float64  `json:"metabolic_rate"`
	Activity               string   `json:"activity"`
	ExternalWork           float64  `json:"external_work"`

	Comfort      *Comfort `json:"comfort,omitempty"`
	ComfortError string   `json:"comfort_error,omitempty"`
}

// Comfort uses null for non-finite values, which JSON cannot carry.
type Comfort struct {
	PMV                        *float64  `json:"pmv" yaml:"pmv"`
	PPD                        *float64  `json:"ppd" yaml:"ppd"`
	VaporPressure              *float64  `json:"vapor_pressure" yaml:"vapor_pressure"`
	ClothingSurfaceTemperature *float64  `json:"clothing_surface_temperature" yaml:"clothing_surface_temperature"`
	ClothingAreaFactor         *float64  `json:"clothing_area_factor" yaml:"clothing_area_factor"`
	ConvectiveCoefficient      *float64  `json:"convective_coefficient" yaml:"convective_coefficient"`
	HeatLoss                   *HeatLoss `json:"heat_loss,omitempty" yaml:"heat_loss,omitempty"`
	Iterations                 int       `json:"iterations" yaml:"iterations"`
	Converged                  bool      `json:"converged" yaml:"converged"`
}

type HeatLoss struct {
	SkinDiffusion     *float64 `json:"skin_diffusion" yaml:"skin_diffusion"`
	Sweating          *float64 `json:"sweating" yaml:"sweating"`
	LatentRespiration *float64 `json:"latent_respiration" yaml:"latent_respiration"`
	DryRespiration    *float64 `json:"dry_respiration" yaml:"dry_respiration"`
	Radiation         *float64 `json:"radiation" yaml:"radiation"`
	Convection        *float64 `json:"convection" yaml:"convection"`
}

func NewSnapshot(deviceID string, s zone.Snapshot) Snapshot {
	dto := Snapshot{
		DeviceID:               deviceID,
		AirTemperature:         s.AirTemperature,
		MeanRadiantTemperature: s.MeanRadiantTemperature,
		AirVelocity:            s.AirVelocity,
		Clothing:               s.Clothing,
		MetabolicRate:          s.MetabolicRate,
		Activity:               s.Activity.String(),
		ExternalWork:           s.ExternalWork,
	}
	switch h := s.Humidity.(type) {
	case comfort.RelativeHumidity:
		v := float64(h)
		dto.RelativeHumidity = &v
	case comfort.VaporPressure:
		v := float64(h)
		dto.VaporPressure = &v
	}
	return dto
}

// WithComfort attaches an evaluation, or its error, to the snapshot.
func (s Snapshot) WithComfort(ev comfort.Evaluation, err error) Snapshot {
	if err != nil {
		s.ComfortError = err.Error()
		return s
	}
	c := NewComfort(ev)
	s.Comfort = &c
	return s
}

func NewComfort(ev comfort.Evaluation) Comfort {
	return Comfort{
		PMV:                        Finite(ev.PMV),
		PPD:                        Finite(ev.PPD),
		VaporPressure:              Finite(ev.VaporPressure),
		ClothingSurfaceTemperature: Finite(ev.ClothingSurfaceTemperature),
		ClothingAreaFactor:         Finite(ev.ClothingAreaFactor),
		ConvectiveCoefficient:      Finite(ev.ConvectiveCoefficient),
		HeatLoss: &HeatLoss{
			SkinDiffusion:     Finite(ev.HeatLoss.SkinDiffusion),
			Sweating:          Finite(ev.HeatLoss.Sweating),
			LatentRespiration: Finite(ev.HeatLoss.LatentRespiration),
			DryRespiration:    Finite(ev.HeatLoss.DryRespiration),
			Radiation:         Finite(ev.HeatLoss.Radiation),
			Convection:        Finite(ev.HeatLoss.Convection),
		},
		Iterations: ev.Iterations,
		Converged:  ev.Converged,
	}
}

// Finite returns nil for NaN and infinities.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Inputs is the body of a stateless comfort evaluation. Humidity is either
// relative_humidity or vapor_pressure; vapor_pressure wins when both are set.
type Inputs struct {
	Clothing               *float64 `json:"clothing"`
	MetabolicRate          *float64 `json:"metabolic_rate"`
	ExternalWork           *float64 `json:"external_work"`
	AirTemperature         *float64 `json:"air_temperature"`
	MeanRadiantTemperature *float64 `json:"mean_radiant_temperature"`
	AirVelocity            *float64 `json:"air_velocity"`
	RelativeHumidity       *float64 `json:"relative_humidity"`
	VaporPressure          *float64 `json:"vapor_pressure"`
}

// Missing returns the name of the first absent required field, or "".
// External work defaults to 0.
func (in Inputs) Missing() string {
	required := []struct {
		name string
		v    *float64
	}{
		{"clothing", in.Clothing},
		{"metabolic_rate", in.MetabolicRate},
		{"air_temperature", in.AirTemperature},
		{"mean_radiant_temperature", in.MeanRadiantTemperature},
		{"air_velocity", in.AirVelocity},
	}
	for _, r := range required {
		if r.v == nil {
			return r.name
		}
	}
	return ""
}

// Evaluate runs the comfort model on the request.
func (in Inputs) Evaluate() (comfort.Evaluation, error) {
	h, err := comfort.HumidityFrom(in.RelativeHumidity, in.VaporPressure)
	if err != nil {
		return comfort.Evaluation{}, err
	}
	var wme float64
	if in.ExternalWork != nil {
		wme = *in.ExternalWork
	}
	return comfort.Evaluate(comfort.Inputs{
		Clothing:               deref(in.Clothing),
		MetabolicRate:          deref(in.MetabolicRate),
		ExternalWork:           wme,
		AirTemperature:         deref(in.AirTemperature),
		MeanRadiantTemperature: deref(in.MeanRadiantTemperature),
		AirVelocity:            deref(in.AirVelocity),
		Humidity:               h,
	})
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
