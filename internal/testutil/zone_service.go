package testutil

import (
	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
	"github.com/Agrid-Dev/thermocomfort/internal/zone"
)

// FakeZoneService is a reusable fake implementing ports.ZoneService.
// Put ONLY what multiple test packages need here.
type FakeZoneService struct {
	S zone.Snapshot

	ComfortCalls int
	ComfortErr   error

	UpdateCalls int

	SetAirTemperatureCalled bool
	SetAirTemperatureArg    float64

	SetMeanRadiantTemperatureCalled bool
	SetMeanRadiantTemperatureArg    float64

	SetAirVelocityCalled bool
	SetAirVelocityArg    float64
	SetAirVelocityErr    error

	SetRelativeHumidityCalled bool
	SetRelativeHumidityArg    float64
	SetRelativeHumidityErr    error

	SetVaporPressureCalled bool
	SetVaporPressureArg    float64
	SetVaporPressureErr    error

	SetClothingCalled bool
	SetClothingArg    float64
	SetClothingErr    error

	SetMetabolicRateCalled bool
	SetMetabolicRateArg    float64
	SetMetabolicRateErr    error

	SetActivityCalled bool
	SetActivityArg    zone.Activity
	SetActivityErr    error

	SetExternalWorkCalled bool
	SetExternalWorkArg    float64
}

func NewFakeZoneService() *FakeZoneService {
	return &FakeZoneService{
		S: zone.Snapshot{
			AirTemperature:         25,
			MeanRadiantTemperature: 25,
			AirVelocity:            0.1,
			Humidity:               comfort.RelativeHumidity(50),
			Clothing:               0.5,
			MetabolicRate:          1.2,
			Activity:               zone.ActivitySedentary,
		},
	}
}

func (f *FakeZoneService) Get() zone.Snapshot { return f.S }

func (f *FakeZoneService) Comfort() (comfort.Evaluation, error) {
	f.ComfortCalls++
	if f.ComfortErr != nil {
		return comfort.Evaluation{}, f.ComfortErr
	}
	return comfort.Evaluate(f.S.Inputs())
}

func (f *FakeZoneService) State() (zone.Snapshot, comfort.Evaluation, error) {
	ev, err := f.Comfort()
	return f.S, ev, err
}

// Update validates like the real zone and leaves S untouched on error.
func (f *FakeZoneService) Update(fn func(*zone.Snapshot)) error {
	f.UpdateCalls++
	next := f.S
	fn(&next)
	if err := zone.Validate(next); err != nil {
		return err
	}
	f.S = next
	return nil
}

func (f *FakeZoneService) SetAirTemperature(v float64) {
	f.SetAirTemperatureCalled = true
	f.SetAirTemperatureArg = v
	f.S.AirTemperature = v
}

func (f *FakeZoneService) SetMeanRadiantTemperature(v float64) {
	f.SetMeanRadiantTemperatureCalled = true
	f.SetMeanRadiantTemperatureArg = v
	f.S.MeanRadiantTemperature = v
}

func (f *FakeZoneService) SetAirVelocity(v float64) error {
	f.SetAirVelocityCalled = true
	f.SetAirVelocityArg = v
	if f.SetAirVelocityErr != nil {
		return f.SetAirVelocityErr
	}
	f.S.AirVelocity = v
	return nil
}

func (f *FakeZoneService) SetRelativeHumidity(v float64) error {
	f.SetRelativeHumidityCalled = true
	f.SetRelativeHumidityArg = v
	if f.SetRelativeHumidityErr != nil {
		return f.SetRelativeHumidityErr
	}
	f.S.Humidity = comfort.RelativeHumidity(v)
	return nil
}

func (f *FakeZoneService) SetVaporPressure(v float64) error {
	f.SetVaporPressureCalled = true
	f.SetVaporPressureArg = v
	if f.SetVaporPressureErr != nil {
		return f.SetVaporPressureErr
	}
	f.S.Humidity = comfort.VaporPressure(v)
	return nil
}

func (f *FakeZoneService) SetClothing(v float64) error {
	f.SetClothingCalled = true
	f.SetClothingArg = v
	if f.SetClothingErr != nil {
		return f.SetClothingErr
	}
	f.S.Clothing = v
	return nil
}

func (f *FakeZoneService) SetMetabolicRate(v float64) error {
	f.SetMetabolicRateCalled = true
	f.SetMetabolicRateArg = v
	if f.SetMetabolicRateErr != nil {
		return f.SetMetabolicRateErr
	}
	f.S.MetabolicRate = v
	f.S.Activity = zone.ActivityCustom
	return nil
}

func (f *FakeZoneService) SetActivity(a zone.Activity) error {
	f.SetActivityCalled = true
	f.SetActivityArg = a
	if f.SetActivityErr != nil {
		return f.SetActivityErr
	}
	f.S.Activity = a
	if a != zone.ActivityCustom {
		f.S.MetabolicRate = a.MetabolicRate()
	}
	return nil
}

func (f *FakeZoneService) SetExternalWork(v float64) {
	f.SetExternalWorkCalled = true
	f.SetExternalWorkArg = v
	f.S.ExternalWork = v
}
