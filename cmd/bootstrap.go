package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storepos/src/batchsale/application/usecase"
	"storepos/src/batchsale/domain/port"
	"storepos/src/batchsale/infrastructure/cache"
	"storepos/src/batchsale/infrastructure/persistence"
	"storepos/src/shared/infrastructure/config"
	"storepos/src/shared/infrastructure/logger"
	"storepos/src/shared/infrastructure/metrics"

	_ "github.com/go-sql-driver/mysql" // Driver de MySQL
	_ "github.com/lib/pq"              // Driver de PostgreSQL
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app dependencias compartidas por los comandos
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	db       *sql.DB
	repo     port.SessionRepository
	catalog  *cache.PaymentMethodCache
}

// newApp carga configuración, logger, métricas, store de sesión y catálogo de pagos
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("error building logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &app{
		cfg:      cfg,
		logger:   log,
		registry: registry,
		metrics:  metrics.New(registry),
	}

	if err := a.openSessionStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.catalog = cache.NewPaymentMethodCache(log)
	a.catalog.LoadOptions(cfg.PaymentMethods.Options)
	if cfg.PaymentMethods.LoadFromDB && a.db != nil {
		if err := a.catalog.LoadFromDB(ctx, a.db); err != nil {
			log.Warn("continuing with configured payment methods only", zap.Error(err))
		}
	}
	return a, nil
}

func (a *app) openSessionStore(ctx context.Context) error {
	store := strings.ToLower(a.cfg.Session.Store)
	switch store {
	case "memory":
		a.repo = persistence.NewMemorySessionRepository()
		a.logger.Warn("session store is in memory, the batch sale is lost on restart")
		return nil
	case "file":
		a.repo = persistence.NewFileSessionRepository(a.cfg.Session.FileDir)
		a.logger.Info("session store ready",
			zap.String("store", store),
			zap.String("dir", a.cfg.Session.FileDir))
		return nil
	}

	driver, dialect := "postgres", persistence.DialectPostgres
	if store == "mysql" {
		driver, dialect = "mysql", persistence.DialectMySQL
	}

	db, err := sql.Open(driver, a.cfg.Session.DSN)
	if err != nil {
		return fmt.Errorf("error opening %s session store: %w", store, err)
	}
	a.db = db
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("error connecting to %s session store: %w", store, err)
	}

	repo, err := persistence.NewSQLSessionRepository(db, dialect, a.cfg.Session.Table)
	if err != nil {
		return err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	a.repo = repo
	a.logger.Info("session store ready",
		zap.String("store", store),
		zap.String("table", a.cfg.Session.Table))
	return nil
}

// newSession abre la sesión persistida bajo la clave configurada
func (a *app) newSession(ctx context.Context) (*usecase.Session, error) {
	session := usecase.NewSession(
		a.cfg.Session.Key,
		a.repo,
		a.cfg.Sale.RequiredBuyerFields,
		a.logger,
		a.metrics,
	)
	if err := session.Open(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// Close libera la conexión a la base y vacía el logger
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("error closing database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
