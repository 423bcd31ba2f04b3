package profiles

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, catalog *Catalog) {
	r.Route("/profiles", func(pr chi.Router) {
		pr.Get("/", listProfilesHandler(catalog))
		pr.Get("/{profileID}", getProfileHandler(catalog))
	})
}

type optionResponse struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Custom bool   `json:"custom,omitempty"`
}

// profileResponse representa un preset de tipo de péptido.
type profileResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	VialMasses       []float64        `json:"vial_masses"`
	Doses            []float64        `json:"doses"`
	Units            []float64        `json:"units"`
	DefaultVialMass  float64          `json:"default_vial_mass"`
	DefaultDose      float64          `json:"default_dose"`
	DefaultUnits     float64          `json:"default_units"`
	ThresholdMgPerMl float64          `json:"threshold_mg_per_ml"`
	ThresholdChecked bool             `json:"threshold_checked"`
	VialOptions      []optionResponse `json:"vial_options"`
	DoseOptions      []optionResponse `json:"dose_options"`
	UnitOptions      []optionResponse `json:"unit_options"`
}

// listProfilesHandler godoc
// @Summary Listar tipos de péptido
// @Description Devuelve los presets disponibles (valores permitidos, defaults y umbral).
// @Tags profiles
// @Produce json
// @Success 200 {array} profileResponse
// @Router /profiles [get]
func listProfilesHandler(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		items := catalog.List()
		out := make([]profileResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProfileResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getProfileHandler godoc
// @Summary Obtener tipo de péptido
// @Tags profiles
// @Produce json
// @Param profileID path string true "ID del preset"
// @Success 200 {object} profileResponse
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID} [get]
func getProfileHandler(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := catalog.Get(chi.URLParam(r, "profileID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "profile not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

func toProfileResponse(p Profile) profileResponse {
	return profileResponse{
		ID:               p.ID,
		Name:             p.Name,
		VialMasses:       p.VialMasses,
		Doses:            p.Doses,
		Units:            p.Units,
		DefaultVialMass:  p.DefaultVialMass,
		DefaultDose:      p.DefaultDose,
		DefaultUnits:     p.DefaultUnits,
		ThresholdMgPerMl: p.ThresholdMgPerMl,
		ThresholdChecked: p.ThresholdMgPerMl > 0,
		VialOptions:      toOptionResponses(Options(p.VialMasses, "mg", "Custom")),
		DoseOptions:      toOptionResponses(Options(p.Doses, "mg", "Other")),
		UnitOptions:      toOptionResponses(Options(p.Units, "", "Other")),
	}
}

func toOptionResponses(in []Option) []optionResponse {
	out := make([]optionResponse, 0, len(in))
	for _, o := range in {
		out = append(out, optionResponse{Value: o.Value, Label: o.Label, Custom: o.Custom})
	}
	return out
}

// writeJSON duplicado a propósito, igual que en los otros módulos.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
