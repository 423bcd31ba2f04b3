package router_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"peptide-labels/internal/platform/config"
	"peptide-labels/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.APITokens = "secret-token=clinic-a"

	rt, err := router.NewRouter(router.Options{Config: cfg})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	ts := httptest.NewServer(rt)
	t.Cleanup(func() {
		ts.Close()
		_ = rt.Close()
	})
	return ts
}

func TestHTTP_Health(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected 200 ok, got %d body=%s", st, string(body))
	}
}

func TestHTTP_ProfilesAndDosing(t *testing.T) {
	ts := newTestServer(t)

	// 1) Perfiles
	{
		st, body := doReq(t, ts.URL, "GET", "/profiles", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list profiles, got %d body=%s", st, string(body))
		}
		var list []struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &list)
		if len(list) == 0 || list[0].ID != "generic" {
			t.Fatalf("expected generic first, body=%s", string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/profiles/melanotan", "", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 unknown profile, got %d", st)
		}
	}

	// 2) Cálculo válido: 30 mg, 5 mg/dosis, 25 u => 1.5 ml
	{
		st, body := doReq(t, ts.URL, "POST", "/dosing/compute", "", map[string]any{
			"vial_mass_mg":   30,
			"dose_mg":        5,
			"units_per_dose": 25,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 compute, got %d body=%s", st, string(body))
		}
		var resp struct {
			Valid                  bool    `json:"valid"`
			ReconstitutionVolumeMl float64 `json:"reconstitution_volume_ml"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.Valid || math.Abs(resp.ReconstitutionVolumeMl-1.5) > 1e-9 {
			t.Fatalf("unexpected compute result body=%s", string(body))
		}
	}

	// 3) Entrada inválida => 200 con valid=false
	{
		st, body := doReq(t, ts.URL, "POST", "/dosing/compute", "", map[string]any{
			"vial_mass_mg": 0,
			"dose_mg":      5,
		})
		if st != http.StatusOK || !strings.Contains(string(body), `"valid":false`) {
			t.Fatalf("expected 200 valid=false, got %d body=%s", st, string(body))
		}
	}

	// 4) JSON roto => 400
	{
		st, _ := doRaw(t, ts.URL, "POST", "/dosing/compute", "", []byte("{"))
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 invalid json, got %d", st)
		}
	}
}

func TestHTTP_Labels(t *testing.T) {
	ts := newTestServer(t)

	payload := map[string]any{
		"text":           "Tirzepatide",
		"date":           "2026-02-01",
		"url":            "https://example.test/vial",
		"vial_mass_mg":   30,
		"dose_mg":        5,
		"units_per_dose": 25,
	}

	// 1) Layout a escala de pantalla
	{
		st, body := doReq(t, ts.URL, "POST", "/labels/layout", "", payload)
		if st != http.StatusOK {
			t.Fatalf("expected 200 layout, got %d body=%s", st, string(body))
		}
		var resp struct {
			URL    string `json:"url"`
			Layout struct {
				BarcodeSizePx int `json:"barcode_size_px"`
				TotalHeightPx int `json:"total_height_px"`
			} `json:"layout"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.URL != "https://example.test/vial" || resp.Layout.BarcodeSizePx != 114 || resp.Layout.TotalHeightPx != 114 {
			t.Fatalf("unexpected layout body=%s", string(body))
		}
	}

	// 2) Export PNG a escala de impresión
	{
		st, body := doReq(t, ts.URL, "POST", "/labels/render?format=png", "", payload)
		if st != http.StatusOK {
			t.Fatalf("expected 200 render png, got %d body=%s", st, string(body))
		}
		img, err := png.Decode(bytes.NewReader(body))
		if err != nil {
			t.Fatalf("decode png: %v", err)
		}
		if img.Bounds().Dy() != 38*9 {
			t.Fatalf("expected height %d, got %d", 38*9, img.Bounds().Dy())
		}
	}

	// 3) Export SVG
	{
		st, body := doReq(t, ts.URL, "POST", "/labels/render?format=svg", "", payload)
		if st != http.StatusOK || !strings.Contains(string(body), "<svg") {
			t.Fatalf("expected 200 svg, got %d body=%s", st, string(body))
		}
	}

	// 4) Formato desconocido
	{
		st, _ := doReq(t, ts.URL, "POST", "/labels/render?format=gif", "", payload)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 unknown format, got %d", st)
		}
	}
}

func TestHTTP_Session(t *testing.T) {
	ts := newTestServer(t)
	clientID := "tab-1"

	// 1) Primer GET: defaults del perfil genérico
	{
		st, body := doReq(t, ts.URL, "GET", "/session", clientID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get session, got %d body=%s", st, string(body))
		}
		var resp sessionBody
		_ = json.Unmarshal(body, &resp)
		if resp.Profile != "generic" || resp.State.VialQuantity != "30" || len(resp.Labels) != 4 {
			t.Fatalf("unexpected initial session body=%s", string(body))
		}
	}

	// 2) PUT con cambio de perfil y texto
	{
		st, body := doReq(t, ts.URL, "PUT", "/session", clientID, map[string]any{
			"vial_quantity": "10",
			"dose":          "2.5",
			"units":         "25",
			"num_vials":     "1",
			"label_text":    "Tirz",
			"target_url":    "https://example.test/t",
			"peptide_type":  "tirzepatide",
			"driving_field": "units",
			"symbology":     "datamatrix",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 put session, got %d body=%s", st, string(body))
		}
		var resp sessionBody
		_ = json.Unmarshal(body, &resp)
		if !resp.Published || resp.Profile != "tirzepatide" || resp.URL != "https://example.test/t" {
			t.Fatalf("unexpected put body=%s", string(body))
		}
	}

	// 3) Otro cliente no ve el cambio
	{
		_, body := doReq(t, ts.URL, "GET", "/session", "tab-2", nil)
		var resp sessionBody
		_ = json.Unmarshal(body, &resp)
		if resp.Profile != "generic" {
			t.Fatalf("expected isolated session, body=%s", string(body))
		}
	}

	// 4) Preview del último recálculo
	{
		st, body := doReq(t, ts.URL, "GET", "/session/label?variant=reconstituted&symbology=datamatrix&format=png", clientID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 preview, got %d body=%s", st, string(body))
		}
		if _, err := png.Decode(bytes.NewReader(body)); err != nil {
			t.Fatalf("decode preview: %v", err)
		}
	}

	// 5) Reset
	{
		st, body := doReq(t, ts.URL, "DELETE", "/session", clientID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 reset, got %d body=%s", st, string(body))
		}
		var resp sessionBody
		_ = json.Unmarshal(body, &resp)
		if resp.Profile != "generic" || resp.State.LabelText != "" {
			t.Fatalf("unexpected reset body=%s", string(body))
		}
	}
}

func TestHTTP_ClientIDFromToken(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest("GET", ts.URL+"/session", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("X-Client-ID", "ignored")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if got := res.Header.Get("X-Client-ID"); got != "clinic-a" {
		t.Fatalf("expected client id from token, got %q", got)
	}
}

type sessionBody struct {
	Published bool   `json:"published"`
	Profile   string `json:"profile"`
	URL       string `json:"url"`
	State     struct {
		VialQuantity string `json:"vial_quantity"`
		LabelText    string `json:"label_text"`
	} `json:"state"`
	Labels []json.RawMessage `json:"labels"`
}

func doReq(t *testing.T, baseURL, method, path, clientID string, body any) (int, []byte) {
	t.Helper()

	var raw []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		raw = b
	}
	return doRaw(t, baseURL, method, path, clientID, raw)
}

func doRaw(t *testing.T, baseURL, method, path, clientID string, raw []byte) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if raw != nil {
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if raw != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if clientID != "" {
		req.Header.Set("X-Client-ID", clientID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
