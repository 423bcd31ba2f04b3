package dosing

// DrivingField indica cuál de los dos campos mutuamente dependientes manda.
// @Enum units, concentration
type DrivingField string

const (
	DrivingUnits         DrivingField = "units"
	DrivingConcentration DrivingField = "concentration"
)

// Config agrupa las constantes del cálculo. Es inmutable y se pasa en cada llamada.
type Config struct {
	UnitsPerMl       float64 // 100 unidades = 1 ml
	ThresholdMgPerMl float64 // umbral global de concentración
	MaxVialVolumeMl  float64 // líquido máximo por vial físico
	MinUnitsPerDose  float64 // por debajo la medición pierde precisión
}

func DefaultConfig() Config {
	return Config{
		UnitsPerMl:       100,
		ThresholdMgPerMl: 30,
		MaxVialVolumeMl:  3,
		MinUnitsPerDose:  10,
	}
}

// Inputs son los valores ingresados por el usuario.
// UnitsPerDose o ConcentrationMgPerMl puede venir en cero si no aplica.
type Inputs struct {
	VialMassMg           float64
	DoseMg               float64
	UnitsPerDose         float64
	ConcentrationMgPerMl float64

	// NumVials: 0 se trata como 1.
	NumVials float64

	Driving DrivingField

	// ThresholdMgPerMl: nil = usar Config.ThresholdMgPerMl.
	// Un valor <= 0 desactiva el chequeo (perfiles sin límite).
	ThresholdMgPerMl *float64
}

type WarningCode string

const (
	WarningHighConcentration   WarningCode = "high_concentration"
	WarningTooMuchLiquid       WarningCode = "too_much_liquid"
	WarningLowPrecision        WarningCode = "low_precision"
	WarningThresholdNotChecked WarningCode = "threshold_not_checked"
)

type Warning struct {
	Code    WarningCode
	Message string

	// Informational: nota, no advertencia (p.ej. umbral desactivado).
	Informational bool
}

// Result es siempre un valor nuevo; nunca se modifica en sitio.
type Result struct {
	ReconstitutionVolumeMl float64
	TotalVolumeMl          float64
	TotalUnits             float64
	UnitsPerDose           float64
	DosesPerVial           float64
	TotalDoses             float64
	ConcentrationMgPerMl   float64
	NumVials               float64

	Driving DrivingField

	ThresholdMgPerMl float64
	ThresholdChecked bool
	ExceedsThreshold bool
	TooMuchLiquid    bool
	LowPrecision     bool

	Warnings []Warning
}

// NoResult es el centinela "sin resultado" (se muestra como guiones).
var NoResult = Result{}

// Valid distingue un resultado calculado del centinela.
func (r Result) Valid() bool {
	return r.DosesPerVial > 0 && r.ReconstitutionVolumeMl > 0
}

func (r Result) HasWarning(code WarningCode) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
