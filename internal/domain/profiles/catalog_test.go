package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	ids := make([]string, 0)
	for _, p := range c.List() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"generic", "semaglutide", "tirzepatide", "retatrutide", "bpc-157"}, ids)

	p, err := c.Get("")
	require.NoError(t, err)
	assert.Equal(t, GenericID, p.ID)
	assert.Equal(t, 30.0, *p.Threshold())

	p, err = c.Get(" Semaglutide ")
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.ThresholdMgPerMl)

	_, err = c.Get("melanotan")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, GenericID, c.Resolve("melanotan").ID)
}

func TestBuiltinDefaultsAreSelectable(t *testing.T) {
	for _, p := range Builtin() {
		assert.Truef(t, p.AllowsVialMass(p.DefaultVialMass), "%s vial", p.ID)
		assert.Truef(t, p.AllowsDose(p.DefaultDose), "%s dose", p.ID)
		assert.Truef(t, p.AllowsUnits(p.DefaultUnits), "%s units", p.ID)
	}
}

func TestBuiltinReturnsFreshCopies(t *testing.T) {
	a := Builtin()
	a[0].Units[0] = 999
	b := Builtin()
	assert.NotEqual(t, 999.0, b[0].Units[0])
}

func TestParse_AddsAndOverrides(t *testing.T) {
	raw := []byte(`
profiles:
  - id: Ipamorelin
    name: Ipamorelin
    vial_masses: [2, 5, 10]
    doses: [0.1, 0.2, 0.3]
    default_vial_mass: 5
    default_dose: 0.2
    threshold_mg_per_ml: 0
  - id: semaglutide
    name: Semaglutide (custom)
    vial_masses: [5]
    doses: [0.25]
    units: [20]
    default_vial_mass: 5
    default_dose: 0.25
    default_units: 20
    threshold_mg_per_ml: 5
`)
	c, err := Parse(raw)
	require.NoError(t, err)

	ipa, err := c.Get("ipamorelin")
	require.NoError(t, err)
	assert.Equal(t, defaultUnits, ipa.Units)
	assert.Equal(t, 25.0, ipa.DefaultUnits)

	sema, err := c.Get("semaglutide")
	require.NoError(t, err)
	assert.Equal(t, "Semaglutide (custom)", sema.Name)
	assert.Equal(t, 5.0, sema.ThresholdMgPerMl)

	// el orden builtin se mantiene, los nuevos van al final
	list := c.List()
	assert.Equal(t, "semaglutide", list[1].ID)
	assert.Equal(t, "ipamorelin", list[len(list)-1].ID)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":     "profiles: [",
		"missing name": "profiles:\n  - id: x\n    vial_masses: [1]\n    doses: [1]\n    default_vial_mass: 1\n    default_dose: 1\n",
		"zero value":   "profiles:\n  - id: x\n    name: X\n    vial_masses: [0]\n    doses: [1]\n    default_vial_mass: 1\n    default_dose: 1\n",
		"no defaults":  "profiles:\n  - id: x\n    name: X\n    vial_masses: [1]\n    doses: [1]\n",
		"empty doses":  "profiles:\n  - id: x\n    name: X\n    vial_masses: [1]\n    default_vial_mass: 1\n    default_dose: 1\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestNewCatalog_RequiresGeneric(t *testing.T) {
	sema := Builtin()[1]
	_, err := NewCatalog(sema)
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: []\n"), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.List(), len(Builtin()))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	got := Options([]float64{10, 2, 5}, "mg", "Custom")
	assert.Equal(t, []Option{
		{Value: "2", Label: "2 mg"},
		{Value: "5", Label: "5 mg"},
		{Value: "10", Label: "10 mg"},
		{Value: "custom", Label: "Custom", Custom: true},
	}, got)

	got = Options([]float64{.25}, "", "Other")
	assert.Equal(t, "0.25", got[0].Label)
}
