package comfort

import "math"

const (
	// WattsPerMet converts met to W/m².
	WattsPerMet = 58.15
	// ClothingResistancePerClo converts clo to m²K/W.
	ClothingResistancePerClo = 0.155

	// MaxIterations bounds the clothing surface temperature solve.
	MaxIterations = 150
	// Tolerance is the convergence threshold of the normalized clothing
	// surface temperature.
	Tolerance = 0.00015

	clothingAreaFactorThreshold = 0.078 // m²K/W
	kelvinOffset                = 273
)

// Evaluate runs the PMV/PPD heat balance and returns the indices together
// with the intermediate values.
//
// When the clothing surface temperature does not converge within
// MaxIterations, the last estimate is used and Converged is false.
func Evaluate(in Inputs) (Evaluation, error) {
	return evaluate(in, MaxIterations)
}

func evaluate(in Inputs, maxIterations int) (Evaluation, error) {
	if in.Humidity == nil {
		return Evaluation{}, ErrInvalidInput
	}
	pa := in.Humidity.VaporPressureAt(in.AirTemperature)

	icl := ClothingResistancePerClo * in.Clothing
	m := in.MetabolicRate * WattsPerMet
	w := in.ExternalWork * WattsPerMet
	mw := m - w

	fcl := ClothingAreaFactor(icl)
	hcf := ForcedConvection(in.AirVelocity)
	taa := in.AirTemperature + kelvinOffset
	tra := in.MeanRadiantTemperature + kelvinOffset

	s := clothingSurface{
		taa: taa,
		hcf: hcf,
		p1:  icl * fcl,
	}
	s.p2 = s.p1 * 3.96
	s.p3 = s.p1 * 100
	s.p4 = s.p1 * taa
	s.p5 = 308.7 - 0.028*mw + s.p2*math.Pow(tra/100, 4)

	tcla := taa + (35.5-in.AirTemperature)/(3.5*(6.45*icl+0.1))
	xn, hc, n, converged := s.solve(tcla/100, maxIterations)
	tcl := 100*xn - kelvinOffset

	var hl HeatLoss
	hl.SkinDiffusion = 3.05 * 0.001 * (5733 - 6.99*mw - pa)
	if mw > WattsPerMet {
		hl.Sweating = 0.42 * (mw - WattsPerMet)
	}
	hl.LatentRespiration = 1.7 * 0.00001 * m * (5867 - pa)
	hl.DryRespiration = 0.0014 * m * (34 - in.AirTemperature)
	hl.Radiation = 3.96 * fcl * (math.Pow(xn, 4) - math.Pow(tra/100, 4))
	hl.Convection = fcl * hc * (tcl - in.AirTemperature)

	ts := 0.303*math.Exp(-0.036*m) + 0.028
	pmv := ts * (mw - hl.Total())

	return Evaluation{
		Result:                     Result{PMV: pmv, PPD: PPD(pmv)},
		VaporPressure:              pa,
		ClothingSurfaceTemperature: tcl,
		ClothingAreaFactor:         fcl,
		ConvectiveCoefficient:      hc,
		HeatLoss:                   hl,
		Iterations:                 n,
		Converged:                  converged,
	}, nil
}

// Compute returns only the PMV/PPD pair of Evaluate.
func Compute(in Inputs) (Result, error) {
	ev, err := Evaluate(in)
	if err != nil {
		return Result{}, err
	}
	return ev.Result, nil
}

// ComputeComfort takes the humidity as two optional values: at least one of
// relativeHumidity (%) and vaporPressure (Pa) must be non-nil, and the vapor
// pressure wins when both are.
func ComputeComfort(clo, met, wme, ta, tr, vel float64, relativeHumidity, vaporPressure *float64) (pmv, ppd float64, err error) {
	h, err := HumidityFrom(relativeHumidity, vaporPressure)
	if err != nil {
		return 0, 0, err
	}
	r, err := Compute(Inputs{
		Clothing:               clo,
		MetabolicRate:          met,
		ExternalWork:           wme,
		AirTemperature:         ta,
		MeanRadiantTemperature: tr,
		AirVelocity:            vel,
		Humidity:               h,
	})
	if err != nil {
		return 0, 0, err
	}
	return r.PMV, r.PPD, nil
}

// PPD is the predicted percentage of dissatisfied for a given PMV.
func PPD(pmv float64) float64 {
	pmv2 := pmv * pmv
	return 100 - 95*math.Exp(-0.03353*pmv2*pmv2-0.2179*pmv2)
}

// ClothingAreaFactor returns the clothed/nude surface area ratio for a
// clothing resistance icl in m²K/W.
func ClothingAreaFactor(icl float64) float64 {
	if icl < clothingAreaFactorThreshold {
		return 1 + 1.29*icl
	}
	return 1.05 + 0.645*icl
}

// ForcedConvection is the forced convection heat transfer coefficient in
// W/m²K for a relative air velocity in m/s.
func ForcedConvection(velocity float64) float64 {
	return 12.1 * math.Sqrt(velocity)
}

// NaturalConvection is the natural convection heat transfer coefficient in
// W/m²K for a clothing surface to air temperature difference in K.
func NaturalConvection(deltaT float64) float64 {
	return 2.38 * math.Pow(math.Abs(deltaT), 0.25)
}
