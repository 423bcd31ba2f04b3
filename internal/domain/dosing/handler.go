package dosing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"peptide-labels/internal/domain/profiles"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, cfg Config, catalog *profiles.Catalog) {
	r.Post("/dosing/compute", computeHandler(cfg, catalog))
}

// computeRequest es el cuerpo de la solicitud de cálculo.
type computeRequest struct {
	VialMassMg           float64      `json:"vial_mass_mg"`
	DoseMg               float64      `json:"dose_mg"`
	UnitsPerDose         float64      `json:"units_per_dose"`
	ConcentrationMgPerMl float64      `json:"concentration_mg_per_ml"`
	NumVials             float64      `json:"num_vials"`                        // opcional, default 1
	Driving              DrivingField `json:"driving" enums:"units,concentration"` // opcional
	ProfileID            string       `json:"profile_id"`                       // opcional
	ThresholdMgPerMl     *float64     `json:"threshold_mg_per_ml"`              // opcional, pisa el del perfil
}

type warningResponse struct {
	Code          WarningCode `json:"code"`
	Message       string      `json:"message"`
	Informational bool        `json:"informational"`
}

type displayResponse struct {
	ReconstitutionVolume string   `json:"reconstitution_volume"`
	TotalVolume          string   `json:"total_volume"`
	DosesPerVial         string   `json:"doses_per_vial"`
	Concentration        string   `json:"concentration"`
	UnitsPerDose         string   `json:"units_per_dose"`
	Warnings             []string `json:"warnings"`
	Notes                []string `json:"notes"`
}

// Response: valid=false es el centinela "sin resultado" (no es un error HTTP).
type Response struct {
	Valid                  bool              `json:"valid"`
	ReconstitutionVolumeMl float64           `json:"reconstitution_volume_ml"`
	TotalVolumeMl          float64           `json:"total_volume_ml"`
	TotalUnits             float64           `json:"total_units"`
	UnitsPerDose           float64           `json:"units_per_dose"`
	DosesPerVial           float64           `json:"doses_per_vial"`
	TotalDoses             float64           `json:"total_doses"`
	ConcentrationMgPerMl   float64           `json:"concentration_mg_per_ml"`
	NumVials               float64           `json:"num_vials"`
	Driving                DrivingField      `json:"driving,omitempty"`
	ThresholdMgPerMl       float64           `json:"threshold_mg_per_ml"`
	ThresholdChecked       bool              `json:"threshold_checked"`
	ExceedsThreshold       bool              `json:"exceeds_threshold"`
	TooMuchLiquid          bool              `json:"too_much_liquid"`
	LowPrecision           bool              `json:"low_precision"`
	Warnings               []warningResponse `json:"warnings"`
	Display                displayResponse   `json:"display"`
}

// computeHandler godoc
// @Summary Calcular reconstitución
// @Description Calcula volumen de reconstitución, dosis por vial y concentración. Entrada no numérica o <= 0 devuelve valid=false con guiones en display.
// @Tags dosing
// @Accept json
// @Produce json
// @Param payload body computeRequest true "Datos del vial y la dosis"
// @Success 200 {object} Response
// @Failure 400 {string} string "invalid json / driving inválido"
// @Router /dosing/compute [post]
func computeHandler(cfg Config, catalog *profiles.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req computeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		driving := DrivingField(strings.ToLower(strings.TrimSpace(string(req.Driving))))
		switch driving {
		case "", DrivingUnits, DrivingConcentration:
		default:
			http.Error(w, "driving must be units or concentration", http.StatusBadRequest)
			return
		}

		threshold := req.ThresholdMgPerMl
		if threshold == nil && strings.TrimSpace(req.ProfileID) != "" {
			p, err := catalog.Get(req.ProfileID)
			if err != nil {
				http.Error(w, "profile not found", http.StatusBadRequest)
				return
			}
			threshold = p.Threshold()
		}

		res, err := Compute(cfg, Inputs{
			VialMassMg:           req.VialMassMg,
			DoseMg:               req.DoseMg,
			UnitsPerDose:         req.UnitsPerDose,
			ConcentrationMgPerMl: req.ConcentrationMgPerMl,
			NumVials:             req.NumVials,
			Driving:              driving,
			ThresholdMgPerMl:     threshold,
		})
		if err != nil && !errors.Is(err, ErrInvalidInput) {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, ToResponse(res))
	}
}

// ToResponse también lo usa el módulo de sesión para no duplicar el formato.
func ToResponse(res Result) Response {
	d := res.Display()
	out := Response{
		Valid:                  res.Valid(),
		ReconstitutionVolumeMl: res.ReconstitutionVolumeMl,
		TotalVolumeMl:          res.TotalVolumeMl,
		TotalUnits:             res.TotalUnits,
		UnitsPerDose:           res.UnitsPerDose,
		DosesPerVial:           res.DosesPerVial,
		TotalDoses:             res.TotalDoses,
		ConcentrationMgPerMl:   res.ConcentrationMgPerMl,
		NumVials:               res.NumVials,
		Driving:                res.Driving,
		ThresholdMgPerMl:       res.ThresholdMgPerMl,
		ThresholdChecked:       res.ThresholdChecked,
		ExceedsThreshold:       res.ExceedsThreshold,
		TooMuchLiquid:          res.TooMuchLiquid,
		LowPrecision:           res.LowPrecision,
		Warnings:               make([]warningResponse, 0, len(res.Warnings)),
		Display: displayResponse{
			ReconstitutionVolume: d.ReconstitutionVolume,
			TotalVolume:          d.TotalVolume,
			DosesPerVial:         d.DosesPerVial,
			Concentration:        d.Concentration,
			UnitsPerDose:         d.UnitsPerDose,
			Warnings:             d.Warnings,
			Notes:                d.Notes,
		},
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, warningResponse{
			Code:          w.Code,
			Message:       w.Message,
			Informational: w.Informational,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
