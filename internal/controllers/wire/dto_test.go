package wire

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
	"github.com/Agrid-Dev/thermocomfort/internal/zone"
)

func ptr(v float64) *float64 { return &v }

func TestNewSnapshot_HumidityVariant(t *testing.T) {
	s := zone.Snapshot{Humidity: comfort.RelativeHumidity(45), Activity: zone.ActivitySeated}
	dto := NewSnapshot("room", s)
	require.NotNil(t, dto.RelativeHumidity)
	assert.Nil(t, dto.VaporPressure)
	assert.Equal(t, 45.0, *dto.RelativeHumidity)
	assert.Equal(t, "seated", dto.Activity)

	s.Humidity = comfort.VaporPressure(1200)
	dto = NewSnapshot("room", s)
	require.NotNil(t, dto.VaporPressure)
	assert.Nil(t, dto.RelativeHumidity)
}

func TestWithComfort(t *testing.T) {
	dto := NewSnapshot("room", zone.Snapshot{}).WithComfort(comfort.Evaluation{}, errors.New("boom"))
	assert.Equal(t, "boom", dto.ComfortError)
	assert.Nil(t, dto.Comfort)

	ev := comfort.Evaluation{Result: comfort.Result{PMV: 0.1, PPD: 5.2}, Iterations: 4, Converged: true}
	dto = NewSnapshot("room", zone.Snapshot{}).WithComfort(ev, nil)
	require.NotNil(t, dto.Comfort)
	assert.Equal(t, 0.1, *dto.Comfort.PMV)
	assert.Equal(t, 4, dto.Comfort.Iterations)
}

func TestNonFiniteEncodesAsNull(t *testing.T) {
	c := NewComfort(comfort.Evaluation{Result: comfort.Result{PMV: math.NaN(), PPD: math.Inf(1)}})
	b, err := json.Marshal(c)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Nil(t, got["pmv"])
	assert.Nil(t, got["ppd"])
}

func TestInputsMissing(t *testing.T) {
	in := Inputs{
		Clothing: ptr(0.5), MetabolicRate: ptr(1.2), AirTemperature: ptr(25),
		MeanRadiantTemperature: ptr(25), AirVelocity: ptr(0.1),
	}
	assert.Equal(t, "", in.Missing())

	in.AirVelocity = nil
	assert.Equal(t, "air_velocity", in.Missing())
}

func TestInputsEvaluate(t *testing.T) {
	in := Inputs{
		Clothing: ptr(0.5), MetabolicRate: ptr(1.2), AirTemperature: ptr(25),
		MeanRadiantTemperature: ptr(25), AirVelocity: ptr(0.1),
	}
	_, err := in.Evaluate()
	assert.ErrorIs(t, err, comfort.ErrInvalidInput)

	in.RelativeHumidity = ptr(50)
	ev, err := in.Evaluate()
	require.NoError(t, err)
	assert.InDelta(t, 0.081783, ev.PMV, 1e-4)
}
