package labels

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"peptide-labels/internal/domain/dosing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func RegisterRoutes(r chi.Router, svc *Service, dosingCfg dosing.Config) {
	r.Route("/labels", func(lr chi.Router) {
		lr.Post("/layout", layoutHandler(svc, dosingCfg))

		// Export: ?format=png|svg
		lr.Post("/render", renderHandler(svc, dosingCfg))
	})
}

// labelRequest es el cuerpo común de layout y render.
type labelRequest struct {
	Text      string `json:"text"`
	Date      string `json:"date"` // YYYY-MM-DD opcional
	URL       string `json:"url"`
	Variant   string `json:"variant" enums:"reconstituted,unreconstituted"`
	Symbology string `json:"symbology" enums:"qr,datamatrix"`
	Scale     int    `json:"scale"` // opcional

	VialMassMg           float64 `json:"vial_mass_mg"`
	DoseMg               float64 `json:"dose_mg"`
	UnitsPerDose         float64 `json:"units_per_dose"`
	ConcentrationMgPerMl float64 `json:"concentration_mg_per_ml"`
	NumVials             float64 `json:"num_vials"`
	Driving              string  `json:"driving" enums:"units,concentration"`
}

type lineResponse struct {
	Index      int    `json:"index"`
	Text       string `json:"text"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	FontSizePx int    `json:"font_size_px"`
}

// LayoutResponse es el layout declarativo devuelto por la API.
type LayoutResponse struct {
	Variant       Variant        `json:"variant"`
	Symbology     Symbology      `json:"symbology"`
	Scale         int            `json:"scale"`
	BarcodeSizePx int            `json:"barcode_size_px"`
	TotalWidthPx  int            `json:"total_width_px"`
	TotalHeightPx int            `json:"total_height_px"`
	TextClamped   bool           `json:"text_clamped"`
	Lines         []lineResponse `json:"lines"`
}

type layoutEnvelope struct {
	URL    string         `json:"url"`
	Layout LayoutResponse `json:"layout"`
}

// layoutHandler godoc
// @Summary Calcular layout de etiqueta
// @Description Devuelve posiciones y tamaños (sin pixeles) del código y las líneas de texto.
// @Tags labels
// @Accept json
// @Produce json
// @Param payload body labelRequest true "Texto, URL y datos de dosis"
// @Success 200 {object} layoutEnvelope
// @Failure 400 {string} string "invalid json / variant / symbology / scale"
// @Failure 502 {string} string "barcode image unavailable"
// @Router /labels/layout [post]
func layoutHandler(svc *Service, dosingCfg dosing.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeLabelRequest(w, r, dosingCfg)
		if !ok {
			return
		}

		b, err := svc.Build(r.Context(), in)
		if err != nil {
			writeBuildError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, layoutEnvelope{
			URL:    b.Content.TargetURL,
			Layout: ToLayoutResponse(b.Layout),
		})
	}
}

// renderHandler godoc
// @Summary Exportar etiqueta
// @Description Genera el archivo de la etiqueta. Por defecto PNG a escala de impresión.
// @Tags labels
// @Accept json
// @Produce png
// @Produce image/svg+xml
// @Param format query string false "png o svg"
// @Param payload body labelRequest true "Texto, URL y datos de dosis"
// @Success 200 {file} file
// @Failure 400 {string} string "invalid json / format"
// @Failure 502 {string} string "barcode image unavailable"
// @Router /labels/render [post]
func renderHandler(svc *Service, dosingCfg dosing.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := ParseFormat(r.URL.Query().Get("format"))
		if !ok {
			http.Error(w, "format must be png or svg", http.StatusBadRequest)
			return
		}

		in, ok := decodeLabelRequest(w, r, dosingCfg)
		if !ok {
			return
		}

		// buffer: si falla el render no mandamos headers de imagen a medias
		var buf bytes.Buffer
		l, err := svc.Export(r.Context(), in, f, &buf)
		if err != nil {
			writeBuildError(w, err)
			return
		}

		name := fmt.Sprintf("label-%s.%s", uuid.NewString(), f)
		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Header().Set("X-Label-Width", strconv.Itoa(l.TotalWidthPx))
		w.Header().Set("X-Label-Height", strconv.Itoa(l.TotalHeightPx))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func decodeLabelRequest(w http.ResponseWriter, r *http.Request, dosingCfg dosing.Config) (BuildInput, bool) {
	var req labelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return BuildInput{}, false
	}

	variant, ok := ParseVariant(req.Variant)
	if !ok {
		http.Error(w, "variant must be reconstituted or unreconstituted", http.StatusBadRequest)
		return BuildInput{}, false
	}
	sym, ok := ParseSymbology(req.Symbology)
	if !ok {
		http.Error(w, "symbology must be qr or datamatrix", http.StatusBadRequest)
		return BuildInput{}, false
	}
	if req.Scale < 0 || req.Scale > 16 {
		http.Error(w, "scale must be between 1 and 16", http.StatusBadRequest)
		return BuildInput{}, false
	}

	doseIn := dosing.Inputs{
		VialMassMg:           req.VialMassMg,
		DoseMg:               req.DoseMg,
		UnitsPerDose:         req.UnitsPerDose,
		ConcentrationMgPerMl: req.ConcentrationMgPerMl,
		NumVials:             req.NumVials,
		Driving:              dosing.DrivingField(strings.ToLower(strings.TrimSpace(req.Driving))),
	}
	// entrada inválida => placeholders en el texto, no error
	res, _ := dosing.Compute(dosingCfg, doseIn)

	return BuildInput{
		Content: Content{
			FreeText:  req.Text,
			Date:      req.Date,
			TargetURL: req.URL,
		},
		Variant:   variant,
		Symbology: sym,
		Scale:     req.Scale,
		Dose:      doseIn,
		Result:    res,
	}, true
}

func writeBuildError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrImageUnavailable):
		http.Error(w, "barcode image unavailable", http.StatusBadGateway)
	case errors.Is(err, ErrInvalidScale), errors.Is(err, ErrInvalidGeometry),
		errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrUnsupportedSymbology):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func ToLayoutResponse(l Layout) LayoutResponse {
	out := LayoutResponse{
		Variant:       l.Variant,
		Symbology:     l.Symbology,
		Scale:         l.Scale,
		BarcodeSizePx: l.BarcodeSizePx,
		TotalWidthPx:  l.TotalWidthPx,
		TotalHeightPx: l.TotalHeightPx,
		TextClamped:   l.TextClamped,
		Lines:         make([]lineResponse, 0, len(l.Lines)),
	}
	for _, ln := range l.Lines {
		out.Lines = append(out.Lines, lineResponse{
			Index:      ln.Index,
			Text:       ln.Text,
			X:          ln.X,
			Y:          ln.Y,
			FontSizePx: ln.FontSizePx,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
