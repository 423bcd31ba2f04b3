package settings

import (
	"context"
	"strconv"
	"strings"
	"time"

	"peptide-labels/internal/domain/profiles"
	"peptide-labels/internal/platform/logger"
)

// Service carga y guarda el formulario. La persistencia es "best effort":
// un fallo se loguea y la sesión sigue con lo que tiene en memoria.
type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	return NewServiceWithClock(repo, log, time.Now)
}

// NewServiceWithClock fija el reloj (fecha por defecto de la etiqueta).
func NewServiceWithClock(repo Repository, log logger.Logger, now func() time.Time) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo: repo,
		log:  log,
		now:  now,
	}
}

// Defaults es el estado inicial de un perfil con la fecha de hoy.
func (s *Service) Defaults(p profiles.Profile) State {
	return Defaults(p, s.now())
}

// Load parte de los defaults del perfil guardado (o del genérico) y
// superpone lo persistido.
func (s *Service) Load(ctx context.Context, namespace string, catalog *profiles.Catalog) (State, profiles.Profile) {
	log := s.log.With(map[string]any{"namespace": namespace})

	stored := make(map[string]string, len(AllKeys))
	for _, key := range AllKeys {
		v, found, err := s.repo.Get(ctx, namespace, key)
		if err != nil {
			log.Warn("settings read failed", map[string]any{"key": key, "error": err})
			continue
		}
		if found {
			stored[key] = v
		}
	}

	p := catalog.Resolve(stored[KeyPeptideType])
	st := s.Defaults(p)
	for key, v := range stored {
		_ = st.Set(key, v)
	}
	st.PeptideType = p.ID

	return Normalize(st, p), p
}

// Save escribe todas las claves.
func (s *Service) Save(ctx context.Context, namespace string, st State) {
	log := s.log.With(map[string]any{"namespace": namespace})
	values := st.Values()

	failed := 0
	for _, key := range AllKeys {
		if err := s.repo.Set(ctx, namespace, key, values[key]); err != nil {
			failed++
			log.Warn("settings write failed", map[string]any{"key": key, "error": err})
		}
	}
	if failed == 0 {
		log.Debug("settings saved", map[string]any{"at": s.now().UTC().Format(time.RFC3339)})
	}
}

// Reset borra todo lo persistido del namespace.
func (s *Service) Reset(ctx context.Context, namespace string) {
	if err := s.repo.RemoveAll(ctx, namespace, AllKeys); err != nil {
		s.log.Warn("settings reset failed", map[string]any{"namespace": namespace, "error": err})
	}
}

// Normalize ajusta un estado al perfil: un valor de dropdown que el perfil
// no ofrece pasa al input custom para no perderlo.
func Normalize(st State, p profiles.Profile) State {
	st.VialQuantity, st.VialQuantityCustom = toCustomIfMissing(st.VialQuantity, st.VialQuantityCustom, p.AllowsVialMass)
	st.Dose, st.DoseCustom = toCustomIfMissing(st.Dose, st.DoseCustom, p.AllowsDose)
	st.Units, st.UnitsCustom = toCustomIfMissing(st.Units, st.UnitsCustom, p.AllowsUnits)

	if strings.TrimSpace(st.NumVials) == "" {
		st.NumVials = "1"
	}
	return st
}

func toCustomIfMissing(selected, custom string, allows func(float64) bool) (string, string) {
	sel := strings.TrimSpace(selected)
	if sel == CustomValue {
		return selected, custom
	}
	if v, err := strconv.ParseFloat(sel, 64); err == nil && allows(v) {
		return sel, custom
	}
	if sel == "" {
		return CustomValue, custom
	}
	return CustomValue, sel
}
