package app

import (
	"fmt"
	"time"

	"peptide-labels/internal/adapters/barcode"
	"peptide-labels/internal/adapters/render"
	"peptide-labels/internal/adapters/shortener"
	"peptide-labels/internal/domain/dosing"
	"peptide-labels/internal/domain/labels"
	"peptide-labels/internal/domain/profiles"
	"peptide-labels/internal/domain/recalc"
	"peptide-labels/internal/domain/settings"
	"peptide-labels/internal/platform/config"
	"peptide-labels/internal/platform/logger"
)

// Services son las piezas ya armadas que comparten la API y la CLI.
type Services struct {
	Config    config.Config
	Dosing    dosing.Config
	Catalog   *profiles.Catalog
	Labels    *labels.Service
	Settings  *settings.Service
	Shortener *shortener.Client // nil si no hay endpoint
	Barcodes  *barcode.Cached
	Sessions  *recalc.Manager

	fonts *render.Fonts
}

// New arma todo a partir de la config. repo decide dónde se guardan los settings.
func New(cfg config.Config, log logger.Logger, repo settings.Repository) (*Services, error) {
	return NewWithClock(cfg, log, repo, time.Now)
}

// NewWithClock es New con el reloj que fija la fecha por defecto de la etiqueta.
func NewWithClock(cfg config.Config, log logger.Logger, repo settings.Repository, now func() time.Time) (*Services, error) {
	if log == nil {
		log = logger.Nop()
	}

	catalog := profiles.DefaultCatalog()
	if cfg.ProfilesFile != "" {
		c, err := profiles.LoadFile(cfg.ProfilesFile)
		if err != nil {
			return nil, fmt.Errorf("profiles: %w", err)
		}
		catalog = c
	}

	fonts, err := render.NewFonts()
	if err != nil {
		return nil, fmt.Errorf("fonts: %w", err)
	}

	provider, err := newBarcodeProvider(cfg.Barcode)
	if err != nil {
		_ = fonts.Close()
		return nil, fmt.Errorf("barcode: %w", err)
	}

	labelsSvc := labels.NewService(provider, fonts, map[labels.Format]labels.Sink{
		labels.FormatPNG: render.NewPNG(fonts),
		labels.FormatSVG: render.NewSVG(),
	}, labels.Options{
		DefaultURL:  cfg.Label.DefaultURL,
		ScreenScale: cfg.Label.ScreenScale,
		PrintScale:  cfg.Label.PrintScale,
		HeightMm:    cfg.Label.HeightMm,
		MaxWidthMm:  cfg.Label.MaxWidthMm,
	})

	dosingCfg := dosing.Config{
		UnitsPerMl:       cfg.Dosing.UnitsPerMl,
		ThresholdMgPerMl: cfg.Dosing.ThresholdMgPerMl,
		MaxVialVolumeMl:  cfg.Dosing.MaxVialVolumeMl,
		MinUnitsPerDose:  cfg.Dosing.MinUnitsPerDose,
	}

	s := &Services{
		Config:   cfg,
		Dosing:   dosingCfg,
		Catalog:  catalog,
		Labels:   labelsSvc,
		Settings: settings.NewServiceWithClock(repo, log, now),
		Barcodes: provider,
		fonts:    fonts,
	}

	deps := recalc.Deps{
		Env: recalc.Env{
			Dosing:  dosingCfg,
			Catalog: catalog,
			Labels:  labelsSvc,
		},
		Settings: s.Settings,
		Log:      log,
	}

	if cfg.Shortener.Endpoint != "" {
		sc, err := shortener.NewClient(shortener.Config{
			Endpoint: cfg.Shortener.Endpoint,
			Format:   cfg.Shortener.Format,
			Params:   cfg.Shortener.Params,
			APIKey:   cfg.Shortener.APIKey,
			Timeout:  cfg.Shortener.Timeout,
		})
		if err != nil {
			_ = fonts.Close()
			return nil, err
		}
		s.Shortener = sc
		deps.Shortener = sc
	}

	m, err := recalc.NewManager(deps, cfg.MaxSessions)
	if err != nil {
		_ = fonts.Close()
		return nil, err
	}
	s.Sessions = m

	log.Info("services ready", map[string]any{
		"profiles":       len(catalog.List()),
		"barcode_source": cfg.Barcode.Source,
		"shortener":      s.Shortener != nil,
	})
	return s, nil
}

func (s *Services) Close() error {
	if s == nil || s.fonts == nil {
		return nil
	}
	return s.fonts.Close()
}

// newBarcodeProvider: local siempre; remote sólo para QR (DataMatrix sigue local).
// En ambos casos con cache LRU adelante.
func newBarcodeProvider(cfg config.Barcode) (*barcode.Cached, error) {
	local := barcode.NewLocal()

	var next labels.BarcodeProvider = local
	if cfg.Source == "remote" {
		remote, err := barcode.NewRemote(barcode.RemoteConfig{
			BaseURL: cfg.QRServerURL,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		remote.DataMatrix = local
		next = remote
	}
	return barcode.NewCached(next, cfg.CacheSize)
}
