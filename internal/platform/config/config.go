package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "PEPLABEL"

var ErrInvalidConfig = errors.New("invalid config")

// Config es inmutable una vez cargada; se pasa por valor a quien la use.
type Config struct {
	App       string
	Port      string
	LogLevel  string
	LogFormat string

	// DBDSN: si viene, settings en Postgres; si no, en memoria.
	DBDSN string
	// SettingsFile: SQLite de la CLI.
	SettingsFile string
	// APITokens: "token=client,token=client" (opcional).
	APITokens string

	ProfilesFile string
	MaxSessions  int

	Dosing    Dosing
	Label     Label
	Barcode   Barcode
	Shortener Shortener
}

type Dosing struct {
	UnitsPerMl       float64
	ThresholdMgPerMl float64
	MaxVialVolumeMl  float64
	MinUnitsPerDose  float64
}

type Label struct {
	DefaultURL  string
	HeightMm    float64
	MaxWidthMm  float64
	ScreenScale int
	PrintScale  int
}

type Barcode struct {
	Source      string // local | remote
	QRServerURL string
	Timeout     time.Duration
	CacheSize   int
}

type Shortener struct {
	Endpoint string
	Format   string // text | json
	Params   map[string]string
	APIKey   string
	Timeout  time.Duration
}

// New arma un viper con defaults y env (PEPLABEL_LABEL_DEFAULT_URL, ...).
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("app", "peptide-labels")
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("db.dsn", "")
	v.SetDefault("settings.file", "")
	v.SetDefault("api.tokens", "")
	v.SetDefault("profiles.file", "")
	v.SetDefault("sessions.max", 1024)

	v.SetDefault("dosing.units_per_ml", 100.0)
	v.SetDefault("dosing.threshold_mg_per_ml", 30.0)
	v.SetDefault("dosing.max_vial_volume_ml", 3.0)
	v.SetDefault("dosing.min_units_per_dose", 10.0)

	v.SetDefault("label.default_url", "https://rickroll.it/rickroll.mp4")
	v.SetDefault("label.height_mm", 10.0)
	v.SetDefault("label.max_width_mm", 50.0)
	v.SetDefault("label.screen_scale", 3)
	v.SetDefault("label.print_scale", 9)

	v.SetDefault("barcode.source", "local")
	v.SetDefault("barcode.qrserver_url", "https://api.qrserver.com/v1/create-qr-code")
	v.SetDefault("barcode.timeout", "5s")
	v.SetDefault("barcode.cache_size", 256)

	v.SetDefault("shortener.endpoint", "")
	v.SetDefault("shortener.format", "text")
	v.SetDefault("shortener.params", "")
	v.SetDefault("shortener.api_key", "")
	v.SetDefault("shortener.timeout", "5s")
}

// Load lee el archivo (opcional) y arma la Config.
func Load(v *viper.Viper, file string) (Config, error) {
	if strings.TrimSpace(file) != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		App:          v.GetString("app"),
		Port:         strings.TrimPrefix(strings.TrimSpace(v.GetString("port")), ":"),
		LogLevel:     v.GetString("log.level"),
		LogFormat:    v.GetString("log.format"),
		DBDSN:        strings.TrimSpace(v.GetString("db.dsn")),
		SettingsFile: strings.TrimSpace(v.GetString("settings.file")),
		APITokens:    v.GetString("api.tokens"),
		ProfilesFile: strings.TrimSpace(v.GetString("profiles.file")),
		MaxSessions:  v.GetInt("sessions.max"),
		Dosing: Dosing{
			UnitsPerMl:       v.GetFloat64("dosing.units_per_ml"),
			ThresholdMgPerMl: v.GetFloat64("dosing.threshold_mg_per_ml"),
			MaxVialVolumeMl:  v.GetFloat64("dosing.max_vial_volume_ml"),
			MinUnitsPerDose:  v.GetFloat64("dosing.min_units_per_dose"),
		},
		Label: Label{
			DefaultURL:  strings.TrimSpace(v.GetString("label.default_url")),
			HeightMm:    v.GetFloat64("label.height_mm"),
			MaxWidthMm:  v.GetFloat64("label.max_width_mm"),
			ScreenScale: v.GetInt("label.screen_scale"),
			PrintScale:  v.GetInt("label.print_scale"),
		},
		Barcode: Barcode{
			Source:      strings.ToLower(strings.TrimSpace(v.GetString("barcode.source"))),
			QRServerURL: strings.TrimSpace(v.GetString("barcode.qrserver_url")),
			Timeout:     v.GetDuration("barcode.timeout"),
			CacheSize:   v.GetInt("barcode.cache_size"),
		},
		Shortener: Shortener{
			Endpoint: strings.TrimSpace(v.GetString("shortener.endpoint")),
			Format:   strings.ToLower(strings.TrimSpace(v.GetString("shortener.format"))),
			Params:   parseParams(v.GetString("shortener.params")),
			APIKey:   v.GetString("shortener.api_key"),
			Timeout:  v.GetDuration("shortener.timeout"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port required"))
	}
	if c.Dosing.UnitsPerMl <= 0 {
		errs = append(errs, errors.New("dosing.units_per_ml must be > 0"))
	}
	if c.Label.HeightMm <= 0 || c.Label.MaxWidthMm <= 0 {
		errs = append(errs, errors.New("label size must be > 0"))
	}
	if c.Label.ScreenScale < 1 || c.Label.PrintScale < 1 {
		errs = append(errs, errors.New("label scales must be >= 1"))
	}
	if c.Barcode.Source != "local" && c.Barcode.Source != "remote" {
		errs = append(errs, fmt.Errorf("barcode.source must be local or remote, got %q", c.Barcode.Source))
	}
	if c.Shortener.Format != "text" && c.Shortener.Format != "json" {
		errs = append(errs, fmt.Errorf("shortener.format must be text or json, got %q", c.Shortener.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// parseParams: "format=simple&x=y" o "format=simple,x=y".
func parseParams(s string) map[string]string {
	out := map[string]string{}
	s = strings.NewReplacer("&", ",").Replace(s)
	for _, part := range strings.Split(s, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	return out
}
