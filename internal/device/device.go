package device

import "github.com/Agrid-Dev/thermocomfort/internal/zone"

// Device is a zone exposed under a stable identifier.
type Device struct {
	ID   string
	Zone *zone.Zone
}

func New(id string, z *zone.Zone) *Device {
	return &Device{ID: id, Zone: z}
}
