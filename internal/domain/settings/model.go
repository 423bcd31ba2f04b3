package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"peptide-labels/internal/domain/dosing"
	"peptide-labels/internal/domain/profiles"
)

// Claves persistidas. Cada una se guarda como string bajo un namespace
// (el id de cliente).
const (
	KeyVialQuantity        = "vialQuantity"
	KeyVialQuantityCustom  = "vialQuantityCustom"
	KeyDose                = "dose"
	KeyDoseCustom          = "doseCustom"
	KeyUnits               = "units"
	KeyUnitsCustom         = "unitsCustom"
	KeyConcentration       = "concentration"
	KeyConcentrationCustom = "concentrationCustom"
	KeyNumVials            = "numVials"
	KeyLabelText           = "labelText"
	KeyLabelDate           = "labelDate"
	KeyTargetURL           = "targetUrl"
	KeyShortURL            = "shortUrl"
	KeyShortURLSource      = "shortUrlSource"
	KeyUseShortURL         = "useShortUrl"
	KeyPeptideType         = "peptideType"
	KeyDrivingField        = "drivingField"
	KeySymbology           = "symbology"
)

// AllKeys en orden estable (Save / Reset / listados).
var AllKeys = []string{
	KeyVialQuantity, KeyVialQuantityCustom,
	KeyDose, KeyDoseCustom,
	KeyUnits, KeyUnitsCustom,
	KeyConcentration, KeyConcentrationCustom,
	KeyNumVials,
	KeyLabelText, KeyLabelDate,
	KeyTargetURL, KeyShortURL, KeyShortURLSource, KeyUseShortURL,
	KeyPeptideType, KeyDrivingField, KeySymbology,
}

var ErrUnknownKey = errors.New("unknown settings key")

// CustomValue marca que el dropdown usa el input libre.
const CustomValue = "custom"

// State es el formulario completo tal como se persiste.
// Los campos numéricos quedan como texto: el usuario puede dejar basura
// y el cálculo la trata como "sin resultado".
type State struct {
	VialQuantity        string `json:"vial_quantity"`
	VialQuantityCustom  string `json:"vial_quantity_custom"`
	Dose                string `json:"dose"`
	DoseCustom          string `json:"dose_custom"`
	Units               string `json:"units"`
	UnitsCustom         string `json:"units_custom"`
	Concentration       string `json:"concentration"`
	ConcentrationCustom string `json:"concentration_custom"`
	NumVials            string `json:"num_vials"`

	LabelText string `json:"label_text"`
	LabelDate string `json:"label_date"`

	TargetURL      string `json:"target_url"`
	ShortURL       string `json:"short_url"`
	ShortURLSource string `json:"short_url_source"`
	UseShortURL    bool   `json:"use_short_url"`

	PeptideType  string `json:"peptide_type"`
	DrivingField string `json:"driving_field"`
	Symbology    string `json:"symbology"`
}

// DateLayout es el formato ISO de LabelDate.
const DateLayout = "2006-01-02"

// Defaults arma el estado inicial para un perfil. La fecha de la etiqueta
// arranca en today (hora local del usuario).
func Defaults(p profiles.Profile, today time.Time) State {
	return State{
		VialQuantity: formatFloat(p.DefaultVialMass),
		Dose:         formatFloat(p.DefaultDose),
		Units:        formatFloat(p.DefaultUnits),
		NumVials:     "1",
		LabelDate:    today.Format(DateLayout),
		PeptideType:  p.ID,
		DrivingField: string(dosing.DrivingUnits),
		Symbology:    "qr",
	}
}

// VialMass resuelve dropdown/custom. NaN si no es numérico.
func (s State) VialMass() float64 { return pick(s.VialQuantity, s.VialQuantityCustom) }

func (s State) DoseMg() float64 { return pick(s.Dose, s.DoseCustom) }

func (s State) UnitsPerDose() float64 { return pick(s.Units, s.UnitsCustom) }

// ConcentrationMgPerMl: vacío => NaN (no se usa como campo conductor).
func (s State) ConcentrationMgPerMl() float64 {
	return pick(s.Concentration, s.ConcentrationCustom)
}

func (s State) Vials() float64 {
	v := parseFloat(s.NumVials)
	if math.IsNaN(v) {
		return 1
	}
	return v
}

// DosingInputs arma la entrada del cálculo. El umbral viene del perfil.
func (s State) DosingInputs(p profiles.Profile) dosing.Inputs {
	return dosing.Inputs{
		VialMassMg:           s.VialMass(),
		DoseMg:               s.DoseMg(),
		UnitsPerDose:         s.UnitsPerDose(),
		ConcentrationMgPerMl: s.ConcentrationMgPerMl(),
		NumVials:             s.Vials(),
		Driving:              dosing.DrivingField(s.DrivingField),
		ThresholdMgPerMl:     p.Threshold(),
	}
}

// LabelURL es lo que se codifica: el corto sólo si está activo y
// corresponde a la URL actual.
func (s State) LabelURL() string {
	target := strings.TrimSpace(s.TargetURL)
	if s.UseShortURL && s.ShortURL != "" && s.ShortURLSource == target {
		return s.ShortURL
	}
	return target
}

func pick(selected, custom string) float64 {
	if strings.TrimSpace(selected) == CustomValue {
		return parseFloat(custom)
	}
	return parseFloat(selected)
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Values es el formato persistido: una entrada por clave.
func (s State) Values() map[string]string {
	return map[string]string{
		KeyVialQuantity:        s.VialQuantity,
		KeyVialQuantityCustom:  s.VialQuantityCustom,
		KeyDose:                s.Dose,
		KeyDoseCustom:          s.DoseCustom,
		KeyUnits:               s.Units,
		KeyUnitsCustom:         s.UnitsCustom,
		KeyConcentration:       s.Concentration,
		KeyConcentrationCustom: s.ConcentrationCustom,
		KeyNumVials:            s.NumVials,
		KeyLabelText:           s.LabelText,
		KeyLabelDate:           s.LabelDate,
		KeyTargetURL:           s.TargetURL,
		KeyShortURL:            s.ShortURL,
		KeyShortURLSource:      s.ShortURLSource,
		KeyUseShortURL:         strconv.FormatBool(s.UseShortURL),
		KeyPeptideType:         s.PeptideType,
		KeyDrivingField:        s.DrivingField,
		KeySymbology:           s.Symbology,
	}
}

// Edit es un cambio del usuario: además de Set, marca como conductor el
// campo de units o de concentración que se acaba de tocar.
func (s *State) Edit(key, value string) error {
	if err := s.Set(key, value); err != nil {
		return err
	}
	switch key {
	case KeyUnits, KeyUnitsCustom:
		s.DrivingField = string(dosing.DrivingUnits)
	case KeyConcentration, KeyConcentrationCustom:
		s.DrivingField = string(dosing.DrivingConcentration)
	}
	return nil
}

// Set cambia una clave por nombre (CLI, carga desde el repo).
func (s *State) Set(key, value string) error {
	switch key {
	case KeyVialQuantity:
		s.VialQuantity = value
	case KeyVialQuantityCustom:
		s.VialQuantityCustom = value
	case KeyDose:
		s.Dose = value
	case KeyDoseCustom:
		s.DoseCustom = value
	case KeyUnits:
		s.Units = value
	case KeyUnitsCustom:
		s.UnitsCustom = value
	case KeyConcentration:
		s.Concentration = value
	case KeyConcentrationCustom:
		s.ConcentrationCustom = value
	case KeyNumVials:
		s.NumVials = value
	case KeyLabelText:
		s.LabelText = value
	case KeyLabelDate:
		s.LabelDate = value
	case KeyTargetURL:
		s.TargetURL = value
	case KeyShortURL:
		s.ShortURL = value
	case KeyShortURLSource:
		s.ShortURLSource = value
	case KeyUseShortURL:
		b, err := strconv.ParseBool(value)
		s.UseShortURL = err == nil && b
	case KeyPeptideType:
		s.PeptideType = value
	case KeyDrivingField:
		s.DrivingField = value
	case KeySymbology:
		s.Symbology = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}
