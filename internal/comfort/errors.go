package comfort

import "errors"

// ErrInvalidInput is returned when neither a relative humidity nor a vapor
// pressure is available for the evaluation.
var ErrInvalidInput = errors.New("invalid input: relative humidity or vapor pressure is required")
