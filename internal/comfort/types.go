package comfort

// Inputs are the physical and personal parameters of one evaluation.
type Inputs struct {
	Clothing               float64 // clo
	MetabolicRate          float64 // met
	ExternalWork           float64 // met, normally 0
	AirTemperature         float64 // °C
	MeanRadiantTemperature float64 // °C
	AirVelocity            float64 // relative air velocity, m/s
	Humidity               Humidity
}

// Result holds the two comfort indices.
type Result struct {
	PMV float64
	PPD float64
}

// HeatLoss breaks down the heat losses of the body, all in W/m².
type HeatLoss struct {
	SkinDiffusion     float64
	Sweating          float64
	LatentRespiration float64
	DryRespiration    float64
	Radiation         float64
	Convection        float64
}

func (h HeatLoss) Total() float64 {
	return h.SkinDiffusion + h.Sweating + h.LatentRespiration + h.DryRespiration + h.Radiation + h.Convection
}

// Evaluation is a Result together with the intermediate values of the heat
// balance. Iterations and Converged describe the clothing surface
// temperature solve; a non-converged solve still yields a Result.
type Evaluation struct {
	Result

	VaporPressure              float64 // Pa
	ClothingSurfaceTemperature float64 // °C
	ClothingAreaFactor         float64
	ConvectiveCoefficient      float64 // W/m²K
	HeatLoss                   HeatLoss
	Iterations                 int
	Converged                  bool
}
