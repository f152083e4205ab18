// Command pmv computes the PMV and PPD thermal comfort indices for one set
// of conditions. Values not given as flags are prompted for on stdin.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/Agrid-Dev/thermocomfort/internal/comfort"
	"github.com/Agrid-Dev/thermocomfort/internal/controllers/wire"
)

type options struct {
	clo, met, wme float64
	ta, tr, vel   float64
	rh, pa        float64
	output        string
	details       bool
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "pmv",
		Short: "Compute PMV/PPD thermal comfort indices (ISO 7730)",
		Example: `  pmv --clo 0.5 --met 1.2 --ta 25 --tr 25 --vel 0.1 --rh 50
  pmv --clo 1 --met 1 --ta 20 --tr 20 --vel 0.1 --pa 1500 --output json
  pmv   # prompts for every value`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := &prompter{in: bufio.NewScanner(in), out: out}
			inputs, err := collectInputs(cmd.Flags(), o, p)
			if err != nil {
				return err
			}
			ev, err := comfort.Evaluate(inputs)
			if err != nil {
				return err
			}
			return render(out, o.output, o.details, ev)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&o.clo, "clo", 0, "clothing insulation (clo)")
	f.Float64Var(&o.met, "met", 0, "metabolic rate (met)")
	f.Float64Var(&o.wme, "wme", 0, "external work, normally around 0 (met)")
	f.Float64Var(&o.ta, "ta", 0, "air temperature (°C)")
	f.Float64Var(&o.tr, "tr", 0, "mean radiant temperature (°C)")
	f.Float64Var(&o.vel, "vel", 0, "relative air velocity (m/s)")
	f.Float64Var(&o.rh, "rh", 0, "relative humidity (%)")
	f.Float64Var(&o.pa, "pa", 0, "water vapor pressure (Pa), wins over --rh")
	f.StringVarP(&o.output, "output", "o", "text", "output format: text, json or yaml")
	f.BoolVar(&o.details, "details", false, "include solver diagnostics and heat losses")
	return cmd
}

// prompter reads answers line by line.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *prompter) float(label string) (float64, error) {
	s, err := p.line(label)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s%q is not a number", label, s)
	}
	return v, nil
}

func (p *prompter) yes(label string) (bool, error) {
	s, err := p.line(label)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(s, "y"), nil
}

type field struct {
	flag   string
	prompt string
	dst    *float64
}

// collectInputs takes each value from its flag when set and prompts for it
// otherwise.
func collectInputs(fs *pflag.FlagSet, o options, p *prompter) (comfort.Inputs, error) {
	in := comfort.Inputs{
		Clothing:               o.clo,
		MetabolicRate:          o.met,
		ExternalWork:           o.wme,
		AirTemperature:         o.ta,
		MeanRadiantTemperature: o.tr,
		AirVelocity:            o.vel,
	}
	fields := []field{
		{"clo", "Clothing (clo): ", &in.Clothing},
		{"met", "Metabolic rate (met): ", &in.MetabolicRate},
		{"wme", "External work, normally around 0 (met): ", &in.ExternalWork},
		{"ta", "Air Temperature (°C): ", &in.AirTemperature},
		{"tr", "Mean radiant temperature (°C): ", &in.MeanRadiantTemperature},
		{"vel", "Relative air velocity (m/s): ", &in.AirVelocity},
	}
	for _, f := range fields {
		if fs.Changed(f.flag) {
			continue
		}
		v, err := p.float(f.prompt)
		if err != nil {
			return comfort.Inputs{}, err
		}
		*f.dst = v
	}

	var rh, pa *float64
	if fs.Changed("rh") {
		rh = &o.rh
	}
	if fs.Changed("pa") {
		pa = &o.pa
	}
	if rh == nil && pa == nil {
		hasRH, err := p.yes("Do you have relative humidity (RH)? (Y/N): ")
		if err != nil {
			return comfort.Inputs{}, err
		}
		if hasRH {
			v, err := p.float("Relative humidity (%): ")
			if err != nil {
				return comfort.Inputs{}, err
			}
			rh = &v
		} else {
			v, err := p.float("Water vapor pressure (Pa): ")
			if err != nil {
				return comfort.Inputs{}, err
			}
			pa = &v
		}
	}

	h, err := comfort.HumidityFrom(rh, pa)
	if err != nil {
		return comfort.Inputs{}, err
	}
	in.Humidity = h
	return in, nil
}

type report struct {
	PMV     *float64      `json:"pmv" yaml:"pmv"`
	PPD     *float64      `json:"ppd" yaml:"ppd"`
	Details *wire.Comfort `json:"details,omitempty" yaml:"details,omitempty"`
}

func render(w io.Writer, format string, details bool, ev comfort.Evaluation) error {
	switch strings.ToLower(format) {
	case "", "text":
		fmt.Fprintf(w, "Predicted Mean Vote (PMV): %.3f\n", ev.PMV)
		fmt.Fprintf(w, "Predicted Percentage of Dissatisfied (PPD): %.3f\n", ev.PPD)
		if details {
			fmt.Fprintf(w, "Clothing surface temperature (°C): %.3f\n", ev.ClothingSurfaceTemperature)
			fmt.Fprintf(w, "Solver iterations: %d (converged: %t)\n", ev.Iterations, ev.Converged)
			fmt.Fprintf(w, "Total heat loss (W/m²): %.3f\n", ev.HeatLoss.Total())
		}
		return nil
	case "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}

	r := report{PMV: wire.Finite(ev.PMV), PPD: wire.Finite(ev.PPD)}
	if details {
		c := wire.NewComfort(ev)
		r.Details = &c
	}
	if strings.EqualFold(format, "json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(r)
}
