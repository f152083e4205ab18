package ports

import (
	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
	"github.com/Agrid-Dev/thermocomfort/internal/zone"
)

// ZoneService is the control-plane port used by controllers (HTTP/MQTT/etc).
type ZoneService interface {
	Get() zone.Snapshot
	Comfort() (comfort.Evaluation, error)
	State() (zone.Snapshot, comfort.Evaluation, error)
	Update(func(*zone.Snapshot)) error

	SetAirTemperature(float64)
	SetMeanRadiantTemperature(float64)
	SetAirVelocity(float64) error
	SetRelativeHumidity(float64) error
	SetVaporPressure(float64) error
	SetClothing(float64) error
	SetMetabolicRate(float64) error
	SetActivity(zone.Activity) error
	SetExternalWork(float64)
}
