package profiles

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound       = errors.New("profile not found")
	ErrInvalidProfile = errors.New("invalid profile")
)

const GenericID = "generic"

var defaultUnits = []float64{10, 20, 25, 30, 40, 50, 75, 100}

// Builtin son los presets incluidos. Se devuelve una copia nueva en cada llamada.
func Builtin() []Profile {
	return []Profile{
		{
			ID:               GenericID,
			Name:             "Generic peptide",
			VialMasses:       []float64{2, 5, 10, 15, 20, 30, 40, 60},
			Doses:            []float64{.25, .5, 1, 2, 2.5, 4, 5, 7.5, 8, 10, 12, 12.5, 15},
			Units:            slices.Clone(defaultUnits),
			DefaultVialMass:  30,
			DefaultDose:      5,
			DefaultUnits:     25,
			ThresholdMgPerMl: 30,
		},
		{
			ID:               "semaglutide",
			Name:             "Semaglutide",
			VialMasses:       []float64{2, 3, 5, 10, 15, 20},
			Doses:            []float64{.25, .5, 1, 1.7, 2, 2.4},
			Units:            slices.Clone(defaultUnits),
			DefaultVialMass:  5,
			DefaultDose:      .25,
			DefaultUnits:     20,
			ThresholdMgPerMl: 3,
		},
		{
			ID:               "tirzepatide",
			Name:             "Tirzepatide",
			VialMasses:       []float64{5, 10, 15, 20, 30, 40, 60},
			Doses:            []float64{2.5, 5, 7.5, 10, 12.5, 15},
			Units:            slices.Clone(defaultUnits),
			DefaultVialMass:  30,
			DefaultDose:      5,
			DefaultUnits:     25,
			ThresholdMgPerMl: 20,
		},
		{
			ID:               "retatrutide",
			Name:             "Retatrutide",
			VialMasses:       []float64{5, 10, 20, 30, 40},
			Doses:            []float64{1, 2, 4, 6, 8, 12},
			Units:            slices.Clone(defaultUnits),
			DefaultVialMass:  10,
			DefaultDose:      2,
			DefaultUnits:     20,
			ThresholdMgPerMl: 0,
		},
		{
			ID:               "bpc-157",
			Name:             "BPC-157",
			VialMasses:       []float64{5, 10},
			Doses:            []float64{.25, .5, .75, 1},
			Units:            slices.Clone(defaultUnits),
			DefaultVialMass:  5,
			DefaultDose:      .25,
			DefaultUnits:     10,
			ThresholdMgPerMl: 0,
		},
	}
}

// Catalog es de solo lectura una vez construido.
type Catalog struct {
	byID  map[string]Profile
	order []string
}

func NewCatalog(items ...Profile) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Profile, len(items))}
	for _, p := range items {
		p.ID = strings.TrimSpace(strings.ToLower(p.ID))
		if err := validate(p); err != nil {
			return nil, err
		}
		if _, exists := c.byID[p.ID]; !exists {
			c.order = append(c.order, p.ID)
		}
		// el último gana: un archivo puede pisar un builtin
		c.byID[p.ID] = p
	}
	if _, ok := c.byID[GenericID]; !ok {
		return nil, fmt.Errorf("%w: catalog requires %q profile", ErrInvalidProfile, GenericID)
	}
	return c, nil
}

// DefaultCatalog devuelve el catálogo builtin.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(Builtin()...)
	if err != nil {
		// los builtin siempre validan
		panic(err)
	}
	return c
}

type fileFormat struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadFile agrega (o pisa) perfiles desde un YAML:
//
//	profiles:
//	  - id: ipamorelin
//	    name: Ipamorelin
//	    vial_masses: [2, 5, 10]
//	    ...
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	for i := range f.Profiles {
		// unidades: si el archivo no las define, usamos las de siempre
		if len(f.Profiles[i].Units) == 0 {
			f.Profiles[i].Units = slices.Clone(defaultUnits)
		}
		if f.Profiles[i].DefaultUnits == 0 {
			f.Profiles[i].DefaultUnits = 25
		}
	}
	items := append(Builtin(), f.Profiles...)
	return NewCatalog(items...)
}

func (c *Catalog) Get(id string) (Profile, error) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		id = GenericID
	}
	p, ok := c.byID[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// Resolve nunca falla: un id desconocido cae al genérico.
func (c *Catalog) Resolve(id string) Profile {
	p, err := c.Get(id)
	if err != nil {
		return c.byID[GenericID]
	}
	return p
}

func (c *Catalog) List() []Profile {
	out := make([]Profile, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Options arma los ítems del dropdown + la opción custom al final.
func Options(values []float64, suffix, customLabel string) []Option {
	sorted := slices.Clone(values)
	sort.Float64s(sorted)

	out := make([]Option, 0, len(sorted)+1)
	for _, v := range sorted {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		label := s
		if suffix != "" {
			label = s + " " + suffix
		}
		out = append(out, Option{Value: s, Label: label})
	}
	out = append(out, Option{Value: "custom", Label: customLabel, Custom: true})
	return out
}

func validate(p Profile) error {
	if p.ID == "" {
		return fmt.Errorf("%w: id required", ErrInvalidProfile)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: %s: name required", ErrInvalidProfile, p.ID)
	}
	for _, set := range [][]float64{p.VialMasses, p.Doses, p.Units} {
		if len(set) == 0 {
			return fmt.Errorf("%w: %s: empty value list", ErrInvalidProfile, p.ID)
		}
		for _, v := range set {
			if v <= 0 {
				return fmt.Errorf("%w: %s: values must be > 0", ErrInvalidProfile, p.ID)
			}
		}
	}
	if p.DefaultVialMass <= 0 || p.DefaultDose <= 0 || p.DefaultUnits <= 0 {
		return fmt.Errorf("%w: %s: defaults must be > 0", ErrInvalidProfile, p.ID)
	}
	return nil
}
