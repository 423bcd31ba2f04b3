package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"peptide-labels/internal/adapters/storage/memory"
	"peptide-labels/internal/adapters/storage/sqlite"
	"peptide-labels/internal/app"
	"peptide-labels/internal/domain/settings"
	"peptide-labels/internal/platform/config"
	"peptide-labels/internal/platform/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// cli guarda el estado compartido entre subcomandos.
type cli struct {
	cfgFile string
	verbose bool
	client  string

	v   *viper.Viper
	cfg config.Config
	log logger.Logger
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	return newRootCmdAt(time.Now)
}

// newRootCmdAt fija el reloj (fecha por defecto de las etiquetas).
func newRootCmdAt(now func() time.Time) *cobra.Command {
	c := &cli{now: now}

	root := &cobra.Command{
		Use:   "peplabel",
		Short: "Peptide reconstitution calculator and vial label generator",
		Long: `peplabel calcula volúmenes de reconstitución y dosis por vial, y genera
etiquetas (PNG o SVG) con código QR o DataMatrix para imprimir.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.peplabel.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&c.client, "client", "default", "settings namespace")

	root.AddCommand(
		newCalcCmd(c),
		newLabelCmd(c),
		newProfilesCmd(c),
		newSettingsCmd(c),
	)
	return root
}

// init carga config (archivo + env) y arma el logger a stderr.
func (c *cli) init(cmd *cobra.Command) error {
	c.v = config.New()
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		c.v.AddConfigPath(home)
		c.v.SetConfigType("yaml")
		c.v.SetConfigName(".peplabel")
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if c.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := config.FromViper(c.v)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := logger.Warn
	if c.verbose {
		level = logger.Debug
	}
	c.log = logger.New(logger.Options{
		Level:  level,
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.App,
		Output: zapcore.AddSync(cmd.ErrOrStderr()),
	})
	if used := c.v.ConfigFileUsed(); used != "" {
		c.log.Debug("using config file", map[string]any{"file": used})
	}
	return nil
}

// services arma todo con settings en memoria (cálculos sueltos).
func (c *cli) services() (*app.Services, func(), error) {
	svcs, err := app.NewWithClock(c.cfg, c.log, memory.NewSettingsRepo(), c.now)
	if err != nil {
		return nil, nil, err
	}
	return svcs, func() { _ = svcs.Close() }, nil
}

// persistentServices usa el archivo SQLite de settings.
func (c *cli) persistentServices(ctx context.Context) (*app.Services, *sqlite.SettingsRepo, func(), error) {
	path, err := c.settingsFile()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, nil, nil, err
	}
	repo := sqlite.NewSettingsRepo(db)

	svcs, err := app.NewWithClock(c.cfg, c.log, repo, c.now)
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	c.log.Debug("settings store", map[string]any{"file": path})

	return svcs, repo, func() {
		_ = svcs.Close()
		_ = db.Close()
	}, nil
}

// today es la fecha por defecto de las etiquetas, YYYY-MM-DD.
func (c *cli) today() string {
	return c.now().Format(settings.DateLayout)
}

func (c *cli) settingsFile() (string, error) {
	if c.cfg.SettingsFile != "" {
		return c.cfg.SettingsFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("settings file: %w", err)
	}
	return filepath.Join(home, ".peplabel", "settings.db"), nil
}

// loadState devuelve el formulario guardado del cliente.
func (c *cli) loadState(ctx context.Context, svcs *app.Services) settings.State {
	st, _ := svcs.Settings.Load(ctx, c.client, svcs.Catalog)
	return st
}
