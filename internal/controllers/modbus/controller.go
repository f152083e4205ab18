package modbusctrl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	mbserver "github.com/tbrandon/mbserver"

	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
	"github.com/Agrid-Dev/thermocomfort/internal/ports"
	"github.com/Agrid-Dev/thermocomfort/internal/zone"
)

// Holding registers (read/write).
const (
	HRAirTemperature uint16 = iota
	HRMeanRadiantTemperature
	HRAirVelocity
	HRRelativeHumidity
	HRVaporPressure
	HRClothing
	HRMetabolicRate
	HRExternalWork
	HRActivity

	holdingCount
)

// Input registers (read only).
const (
	IRPMV uint16 = iota
	IRPPD
	IRClothingSurfaceTemperature
	IRIterations
	IRConverged

	inputCount
)

// Scale applied to every fixed-point register except vapor pressure,
// iterations, converged and activity.
const Scale int = 100

// Config for the Modbus controller.
type Config struct {
	DeviceID string
	Addr     string
	UnitID   byte // UnitID (Modbus slave/unit ID). Use an integer 1..247.
}

type Controller struct {
	svc ports.ZoneService
	cfg Config
	log zerolog.Logger

	serv *mbserver.Server
}

func New(svc ports.ZoneService, cfg Config, log zerolog.Logger) (*Controller, error) {
	if cfg.UnitID == 0 {
		return nil, errors.New("modbus: UnitID is required (non-zero)")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:1502"
	}
	return &Controller{
		svc: svc,
		cfg: cfg,
		log: log.With().Str("controller", "modbus").Logger(),
	}, nil
}

// Run starts the Modbus server and blocks until ctx is canceled. Reads are
// served straight from the zone and writes are applied immediately.
func (c *Controller) Run(ctx context.Context) error {
	serv := mbserver.NewServer()
	c.serv = serv

	// Register handlers BEFORE starting the TCP listener to avoid races inside mbserver
	// between handler registration and the server's goroutines.
	serv.RegisterFunctionHandler(3, c.readHolding)
	serv.RegisterFunctionHandler(4, c.readInput)
	serv.RegisterFunctionHandler(6, c.writeSingle)
	serv.RegisterFunctionHandler(16, c.writeMultiple)

	if err := serv.ListenTCP(c.cfg.Addr); err != nil {
		return fmt.Errorf("mbserver listen tcp %s: %w", c.cfg.Addr, err)
	}
	c.log.Info().Str("addr", c.cfg.Addr).Uint8("unit_id", c.cfg.UnitID).Msg("modbus controller listening")

	<-ctx.Done()
	serv.Close()
	return ctx.Err()
}

func (c *Controller) readHolding(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	start, qty, exc := readRange(frame.GetData(), holdingCount)
	if exc != &mbserver.Success {
		return []byte{}, exc
	}
	regs := holdingRegisters(c.svc.Get())
	return encodeRegisters(regs[start : start+qty]), &mbserver.Success
}

func (c *Controller) readInput(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	start, qty, exc := readRange(frame.GetData(), inputCount)
	if exc != &mbserver.Success {
		return []byte{}, exc
	}
	ev, err := c.svc.Comfort()
	if err != nil {
		c.log.Warn().Err(err).Msg("comfort evaluation failed")
		return []byte{}, &mbserver.SlaveDeviceFailure
	}
	regs := inputRegisters(ev)
	return encodeRegisters(regs[start : start+qty]), &mbserver.Success
}

func (c *Controller) writeSingle(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 4 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	addr := binary.BigEndian.Uint16(data[0:2])
	value := binary.BigEndian.Uint16(data[2:4])

	if exc := c.write(addr, []uint16{value}); exc != &mbserver.Success {
		return []byte{}, exc
	}

	// echo request (address + value)
	resp := make([]byte, 4)
	copy(resp, data[0:4])
	return resp, &mbserver.Success
}

func (c *Controller) writeMultiple(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	d := frame.GetData()
	if len(d) < 5 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	start := binary.BigEndian.Uint16(d[0:2])
	quantity := binary.BigEndian.Uint16(d[2:4])
	byteCount := int(d[4])
	if quantity == 0 || byteCount != int(quantity)*2 || len(d) < 5+byteCount {
		return []byte{}, &mbserver.IllegalDataValue
	}
	values := make([]uint16, quantity)
	for i := range values {
		values[i] = binary.BigEndian.Uint16(d[5+i*2 : 5+i*2+2])
	}
	if exc := c.write(start, values); exc != &mbserver.Success {
		return []byte{}, exc
	}

	resp := make([]byte, 4)
	binary.BigEndian.PutUint16(resp[0:2], start)
	binary.BigEndian.PutUint16(resp[2:4], quantity)
	return resp, &mbserver.Success
}

// write commits values to the holding registers starting at start as one
// zone update: if any register is rejected, none is applied.
func (c *Controller) write(start uint16, values []uint16) *mbserver.Exception {
	if int(start)+len(values) > int(holdingCount) {
		return &mbserver.IllegalDataAddress
	}
	err := c.svc.Update(func(s *zone.Snapshot) {
		current := holdingRegisters(*s)
		for i, v := range values {
			addr := start + uint16(i)
			// A derived humidity register written back unchanged keeps the
			// humidity form the zone holds.
			if isDerivedHumidity(addr, s.Humidity) && v == current[addr] {
				continue
			}
			applyRegister(s, addr, v)
		}
	})
	if err != nil {
		c.log.Warn().Err(err).Uint16("start", start).Int("count", len(values)).Msg("write rejected")
		return &mbserver.IllegalDataValue
	}
	return &mbserver.Success
}

func applyRegister(s *zone.Snapshot, addr, value uint16) {
	switch addr {
	case HRAirTemperature:
		s.AirTemperature = decodeScaled(value)
	case HRMeanRadiantTemperature:
		s.MeanRadiantTemperature = decodeScaled(value)
	case HRAirVelocity:
		s.AirVelocity = decodeScaled(value)
	case HRRelativeHumidity:
		s.Humidity = comfort.RelativeHumidity(decodeScaled(value))
	case HRVaporPressure:
		s.Humidity = comfort.VaporPressure(value)
	case HRClothing:
		s.Clothing = decodeScaled(value)
	case HRMetabolicRate:
		s.MetabolicRate = decodeScaled(value)
		s.Activity = zone.ActivityCustom
	case HRExternalWork:
		s.ExternalWork = decodeScaled(value)
	case HRActivity:
		s.Activity = zone.Activity(value)
		if s.Activity != zone.ActivityCustom {
			s.MetabolicRate = s.Activity.MetabolicRate()
		}
	}
}

// isDerivedHumidity reports whether addr holds the humidity form computed
// from h rather than h itself.
func isDerivedHumidity(addr uint16, h comfort.Humidity) bool {
	switch h.(type) {
	case comfort.RelativeHumidity:
		return addr == HRVaporPressure
	case comfort.VaporPressure:
		return addr == HRRelativeHumidity
	}
	return false
}

// holdingRegisters exposes both humidity forms: the one the zone holds and
// the one derived from it at the current air temperature.
func holdingRegisters(s zone.Snapshot) [holdingCount]uint16 {
	var rh, pa float64
	switch h := s.Humidity.(type) {
	case comfort.RelativeHumidity:
		rh = float64(h)
		pa = h.VaporPressureAt(s.AirTemperature)
	case comfort.VaporPressure:
		pa = float64(h)
		rh = comfort.RelativeHumidityAt(pa, s.AirTemperature)
	}
	return [holdingCount]uint16{
		HRAirTemperature:         encodeScaled(s.AirTemperature),
		HRMeanRadiantTemperature: encodeScaled(s.MeanRadiantTemperature),
		HRAirVelocity:            encodeScaled(s.AirVelocity),
		HRRelativeHumidity:       encodeScaled(rh),
		HRVaporPressure:          encodeUnsigned(pa),
		HRClothing:               encodeScaled(s.Clothing),
		HRMetabolicRate:          encodeScaled(s.MetabolicRate),
		HRExternalWork:           encodeScaled(s.ExternalWork),
		HRActivity:               uint16(s.Activity),
	}
}

func inputRegisters(ev comfort.Evaluation) [inputCount]uint16 {
	converged := uint16(0)
	if ev.Converged {
		converged = 1
	}
	return [inputCount]uint16{
		IRPMV:                        encodeScaled(ev.PMV),
		IRPPD:                        encodeScaled(ev.PPD),
		IRClothingSurfaceTemperature: encodeScaled(ev.ClothingSurfaceTemperature),
		IRIterations:                 uint16(ev.Iterations),
		IRConverged:                  converged,
	}
}

func readRange(data []byte, count uint16) (start, qty int, exc *mbserver.Exception) {
	if len(data) < 4 {
		return 0, 0, &mbserver.IllegalDataValue
	}
	start = int(binary.BigEndian.Uint16(data[0:2]))
	qty = int(binary.BigEndian.Uint16(data[2:4]))
	if qty == 0 || qty > 125 {
		return 0, 0, &mbserver.IllegalDataValue
	}
	if start+qty > int(count) {
		return 0, 0, &mbserver.IllegalDataAddress
	}
	return start, qty, &mbserver.Success
}

// encodeRegisters builds a read response: byte count + register bytes.
func encodeRegisters(regs []uint16) []byte {
	byteCount := len(regs) * 2
	resp := make([]byte, 1+byteCount)
	resp[0] = byte(byteCount)
	for i, r := range regs {
		binary.BigEndian.PutUint16(resp[1+i*2:1+i*2+2], r)
	}
	return resp
}

// encodeScaled stores v as a signed fixed-point value. NaN reads as 0x8000.
func encodeScaled(v float64) uint16 {
	if math.IsNaN(v) {
		return uint16(0x8000)
	}
	r := min(max(math.Round(v*float64(Scale)), math.MinInt16), math.MaxInt16)
	return uint16(int16(r))
}

func decodeScaled(u uint16) float64 {
	return float64(int16(u)) / float64(Scale)
}

func encodeUnsigned(v float64) uint16 {
	if math.IsNaN(v) {
		return 0
	}
	return uint16(min(max(math.Round(v), 0), math.MaxUint16))
}
