package recalc

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"peptide-labels/internal/domain/dosing"
	"peptide-labels/internal/domain/labels"
	"peptide-labels/internal/domain/settings"
	"peptide-labels/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, m *Manager) {
	r.Route("/session", func(sr chi.Router) {
		sr.Get("/", getSessionHandler(m))
		sr.Put("/", putSessionHandler(m))
		sr.Delete("/", resetSessionHandler(m))

		// Preview de una etiqueta del último recálculo
		sr.Get("/label", sessionLabelHandler(m))
	})
}

type labelOutcomeResponse struct {
	Variant   labels.Variant         `json:"variant"`
	Symbology labels.Symbology       `json:"symbology"`
	Selected  bool                   `json:"selected"`
	Layout    *labels.LayoutResponse `json:"layout,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// sessionResponse es el resultado completo de un recálculo.
type sessionResponse struct {
	Generation    uint64                 `json:"generation"`
	Published     bool                   `json:"published"`
	Profile       string                 `json:"profile"`
	State         settings.State         `json:"state"`
	Dosing        dosing.Response        `json:"dosing"`
	URL           string                 `json:"url"`
	ShortURLError string                 `json:"short_url_error,omitempty"`
	Labels        []labelOutcomeResponse `json:"labels"`
}

// getSessionHandler godoc
// @Summary Estado actual
// @Description Devuelve el último recálculo del cliente (X-Client-ID). La primera vez carga lo guardado.
// @Tags session
// @Produce json
// @Param X-Client-ID header string false "Id de cliente; si falta se genera y se devuelve en la respuesta"
// @Success 200 {object} sessionResponse
// @Failure 500 {string} string "internal error"
// @Router /session [get]
func getSessionHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(w, r, m)
		if !ok {
			return
		}

		out, err := s.Current(r.Context())
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(out, true))
	}
}

// putSessionHandler godoc
// @Summary Aplicar cambios del formulario
// @Description Guarda el formulario, recalcula dosis y etiquetas. published=false indica que un cambio más nuevo ya está en curso.
// @Tags session
// @Accept json
// @Produce json
// @Param X-Client-ID header string false "Id de cliente"
// @Param payload body settings.State true "Formulario completo"
// @Success 200 {object} sessionResponse
// @Failure 400 {string} string "invalid json"
// @Router /session [put]
func putSessionHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st settings.State
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		s, ok := sessionFor(w, r, m)
		if !ok {
			return
		}

		out, published, err := s.Apply(r.Context(), st)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(out, published))
	}
}

// resetSessionHandler godoc
// @Summary Restablecer
// @Description Borra lo guardado del cliente y recalcula con los valores por defecto.
// @Tags session
// @Produce json
// @Param X-Client-ID header string false "Id de cliente"
// @Success 200 {object} sessionResponse
// @Router /session [delete]
func resetSessionHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(w, r, m)
		if !ok {
			return
		}

		out, err := s.Reset(r.Context())
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(out, true))
	}
}

// sessionLabelHandler godoc
// @Summary Preview de etiqueta
// @Description Dibuja una etiqueta del último recálculo publicado (escala de pantalla).
// @Tags session
// @Produce png
// @Produce image/svg+xml
// @Param X-Client-ID header string false "Id de cliente"
// @Param variant query string false "reconstituted o unreconstituted"
// @Param symbology query string false "qr o datamatrix (default: la seleccionada)"
// @Param format query string false "png o svg"
// @Success 200 {file} file
// @Failure 400 {string} string "invalid variant / symbology / format"
// @Failure 404 {string} string "label not available"
// @Failure 502 {string} string "barcode image unavailable"
// @Router /session/label [get]
func sessionLabelHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		v, ok := labels.ParseVariant(q.Get("variant"))
		if !ok {
			http.Error(w, "variant must be reconstituted or unreconstituted", http.StatusBadRequest)
			return
		}
		f, ok := labels.ParseFormat(q.Get("format"))
		if !ok {
			http.Error(w, "format must be png or svg", http.StatusBadRequest)
			return
		}

		s, ok := sessionFor(w, r, m)
		if !ok {
			return
		}
		out, err := s.Current(r.Context())
		if err != nil {
			writeSessionError(w, err)
			return
		}

		symRaw := q.Get("symbology")
		if symRaw == "" {
			symRaw = out.State.Symbology
		}
		sym, ok := labels.ParseSymbology(symRaw)
		if !ok {
			http.Error(w, "symbology must be qr or datamatrix", http.StatusBadRequest)
			return
		}

		var buf bytes.Buffer
		if err := s.Preview(&buf, v, sym, f); err != nil {
			writeSessionError(w, err)
			return
		}

		w.Header().Set("Content-Type", f.ContentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func sessionFor(w http.ResponseWriter, r *http.Request, m *Manager) (*Session, bool) {
	id, _ := middleware.GetClientID(r.Context())
	s, err := m.Session(id)
	if err != nil {
		http.Error(w, "missing client id", http.StatusBadRequest)
		return nil, false
	}
	return s, true
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLabelMissing), errors.Is(err, ErrNoOutcome):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, labels.ErrImageUnavailable):
		http.Error(w, "barcode image unavailable", http.StatusBadGateway)
	case errors.Is(err, labels.ErrUnsupportedFormat):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toSessionResponse(o Outcome, published bool) sessionResponse {
	out := sessionResponse{
		Generation:    o.Generation,
		Published:     published,
		Profile:       o.Profile.ID,
		State:         o.State,
		Dosing:        dosing.ToResponse(o.Result),
		URL:           o.URL,
		ShortURLError: o.ShortURLError,
		Labels:        make([]labelOutcomeResponse, 0, len(o.Labels)),
	}
	for _, l := range o.Labels {
		lr := labelOutcomeResponse{
			Variant:   l.Variant,
			Symbology: l.Symbology,
			Selected:  l.Selected,
			Error:     l.Error,
		}
		if l.Layout != nil {
			resp := labels.ToLayoutResponse(*l.Layout)
			lr.Layout = &resp
		}
		out.Labels = append(out.Labels, lr)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
