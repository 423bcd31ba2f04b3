package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "peptide-labels/docs"
	"peptide-labels/internal/adapters/auth/apitoken"
	mem "peptide-labels/internal/adapters/storage/memory"
	pg "peptide-labels/internal/adapters/storage/postgres"
	"peptide-labels/internal/app"
	"peptide-labels/internal/domain/dosing"
	"peptide-labels/internal/domain/labels"
	"peptide-labels/internal/domain/profiles"
	"peptide-labels/internal/domain/recalc"
	"peptide-labels/internal/domain/settings"
	"peptide-labels/internal/middleware"
	"peptide-labels/internal/platform/config"
	"peptide-labels/internal/platform/logger"
	"peptide-labels/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config config.Config
	Logger logger.Logger // nil = Nop

	// AuthVerifier puede ser nil: entonces se usa Config.APITokens (si hay).
	AuthVerifier auth.AuthVerifier

	// Opcional: si viene, usa Postgres. Si no, intenta Config.DBDSN y si no, in-memory.
	DB *sql.DB
}

// Router es el handler HTTP más las piezas que hay que cerrar al apagar.
type Router struct {
	http.Handler

	Services *app.Services
	db       *sql.DB
	ownsDB   bool
}

func NewRouter(opts Options) (*Router, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	verifier := opts.AuthVerifier
	if verifier == nil && opts.Config.APITokens != "" {
		v, err := apitoken.Parse(opts.Config.APITokens)
		if err != nil {
			return nil, fmt.Errorf("api tokens: %w", err)
		}
		verifier = v
	}

	var settingsRepo settings.Repository

	db, ownsDB := opts.DB, false
	if db == nil && opts.Config.DBDSN != "" {
		opened, err := pg.Open(opts.Config.DBDSN)
		if err != nil {
			// sin base seguimos en memoria: los settings son best effort
			log.Warn("postgres unavailable, using in-memory settings", map[string]any{"error": err})
		} else {
			db, ownsDB = opened, true
		}
	}

	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pg.Migrate(ctx, db); err != nil {
			if ownsDB {
				_ = db.Close()
			}
			return nil, err
		}
		settingsRepo = pg.NewSettingsRepo(db)
	} else {
		settingsRepo = mem.NewSettingsRepo()
	}

	svcs, err := app.New(opts.Config, log, settingsRepo)
	if err != nil {
		if ownsDB {
			_ = db.Close()
		}
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.ClientContext(verifier))
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	profiles.RegisterRoutes(r, svcs.Catalog)
	dosing.RegisterRoutes(r, svcs.Dosing, svcs.Catalog)
	labels.RegisterRoutes(r, svcs.Labels, svcs.Dosing)
	recalc.RegisterRoutes(r, svcs.Sessions)

	return &Router{Handler: r, Services: svcs, db: db, ownsDB: ownsDB}, nil
}

// Close libera fuentes y la conexión a Postgres si la abrió el router.
func (rt *Router) Close() error {
	err := rt.Services.Close()
	if rt.ownsDB && rt.db != nil {
		if cerr := rt.db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
