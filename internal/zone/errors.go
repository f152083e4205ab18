package zone

import "errors"

var (
	ErrInvalidActivity          = errors.New("invalid activity")
	ErrNegativeAirVelocity      = errors.New("air velocity must be greater or equal to zero")
	ErrHumidityOutOfRange       = errors.New("relative humidity must be between 0 and 100")
	ErrNegativeVaporPressure    = errors.New("vapor pressure must be greater or equal to zero")
	ErrNegativeClothing         = errors.New("clothing insulation must be greater or equal to zero")
	ErrInvalidMetabolicRate     = errors.New("metabolic rate must be strictly positive")
	ErrMissingHumidity          = errors.New("humidity is required")
	ErrNegativeDriftCoefficient = errors.New("drift coefficient must be greater or equal to zero")
)
