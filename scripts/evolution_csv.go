package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
	"github.com/Agrid-Dev/thermocomfort/internal/zone"
)

type ClothingCommand struct {
	IterationNumber int
	Value           float64
}

type row struct {
	Iteration              int     `csv:"iteration"`
	AirTemperature         float64 `csv:"air_temperature"`
	MeanRadiantTemperature float64 `csv:"mean_radiant_temperature"`
	Clothing               float64 `csv:"clothing"`
	PMV                    float64 `csv:"pmv"`
	PPD                    float64 `csv:"ppd"`
	SolverIterations       int     `csv:"solver_iterations"`
}

// SimulateZone lets an occupied zone cool toward the outdoor temperature and
// records the comfort indices at every step.
func SimulateZone(iterations int, step time.Duration, filename string, commands []ClothingCommand) error {
	initial := zone.Snapshot{
		AirTemperature:         26,
		MeanRadiantTemperature: 26,
		AirVelocity:            0.1,
		Humidity:               comfort.RelativeHumidity(50),
		Clothing:               0.5,
		MetabolicRate:          zone.ActivitySedentary.MetabolicRate(),
		Activity:               zone.ActivitySedentary,
	}
	drift := zone.DriftParams{
		OutdoorTemperature: 10,
		Coefficient:        1.e-4,
	}

	z, err := zone.New(initial, drift)
	if err != nil {
		return fmt.Errorf("failed to create zone: %w", err)
	}

	rows := make([]row, 0, iterations)
	pmvs := make([]float64, 0, iterations)
	ppds := make([]float64, 0, iterations)

	for i := range iterations {
		for _, cmd := range commands {
			if cmd.IterationNumber == i+1 {
				if err := z.SetClothing(cmd.Value); err != nil {
					return fmt.Errorf("failed to update clothing: %w", err)
				}
				break
			}
		}

		s := z.Get()
		ev, err := z.Comfort()
		if err != nil {
			return fmt.Errorf("iteration %d: %w", i+1, err)
		}
		rows = append(rows, row{
			Iteration:              i + 1,
			AirTemperature:         s.AirTemperature,
			MeanRadiantTemperature: s.MeanRadiantTemperature,
			Clothing:               s.Clothing,
			PMV:                    ev.PMV,
			PPD:                    ev.PPD,
			SolverIterations:       ev.Iterations,
		})
		pmvs = append(pmvs, ev.PMV)
		ppds = append(ppds, ev.PPD)

		z.Step(step)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	fmt.Printf("%d steps written to %s\n", iterations, filename)
	fmt.Printf("mean PMV %.3f, mean PPD %.3f\n", stat.Mean(pmvs, nil), stat.Mean(ppds, nil))
	return nil
}

func main() {
	commands := []ClothingCommand{
		{
			IterationNumber: 600,
			Value:           1.0,
		},
	}
	if err := SimulateZone(1800, time.Second, "thermocomfort.csv", commands); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
