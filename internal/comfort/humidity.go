package comfort

import (
	"fmt"
	"math"
)

// Humidity is either a RelativeHumidity or a VaporPressure.
type Humidity interface {
	// VaporPressureAt returns the water vapor pressure in Pa at the given air
	// temperature (°C).
	VaporPressureAt(airTemperature float64) float64
	String() string

	humidity()
}

// RelativeHumidity in percent (0-100).
type RelativeHumidity float64

func (rh RelativeHumidity) VaporPressureAt(airTemperature float64) float64 {
	return float64(rh) * 10 * SaturatedVaporPressure(airTemperature)
}

func (rh RelativeHumidity) String() string { return fmt.Sprintf("%g%%RH", float64(rh)) }

func (RelativeHumidity) humidity() {}

// VaporPressure is a water vapor partial pressure in Pa.
type VaporPressure float64

func (pa VaporPressure) VaporPressureAt(float64) float64 { return float64(pa) }

func (pa VaporPressure) String() string { return fmt.Sprintf("%gPa", float64(pa)) }

func (VaporPressure) humidity() {}

// HumidityFrom picks the humidity representation from two optional values.
// A supplied vapor pressure takes precedence over the relative humidity.
func HumidityFrom(relativeHumidity, vaporPressure *float64) (Humidity, error) {
	switch {
	case vaporPressure != nil:
		return VaporPressure(*vaporPressure), nil
	case relativeHumidity != nil:
		return RelativeHumidity(*relativeHumidity), nil
	default:
		return nil, ErrInvalidInput
	}
}

// SaturatedVaporPressure approximates the saturated water vapor pressure at
// airTemperature (°C). The value is scaled so that a relative humidity in
// percent times 10 times this value gives the vapor pressure in Pa (the result
// is numerically kPa). No domain check: the expression diverges near -235 °C.
func SaturatedVaporPressure(airTemperature float64) float64 {
	return math.Exp(16.6536 - 4030.183/(airTemperature+235))
}

// RelativeHumidityAt converts a vapor pressure (Pa) back to a relative
// humidity (%) at airTemperature. It is the inverse of
// RelativeHumidity.VaporPressureAt.
func RelativeHumidityAt(vaporPressure, airTemperature float64) float64 {
	return vaporPressure / (10 * SaturatedVaporPressure(airTemperature))
}
