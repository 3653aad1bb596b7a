package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storepos/src/batchsale/application/usecase"
	"storepos/src/batchsale/infrastructure/client"
	"storepos/src/batchsale/infrastructure/controller"
	"storepos/src/batchsale/infrastructure/export"
	sharedConfig "storepos/src/shared/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local batch sale API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.logger
	log.Info("storepos starting", zap.String("version", Version))

	session, err := a.newSession(ctx)
	if err != nil {
		return err
	}

	gateway := client.NewInventoryClient(a.cfg.API, log, a.metrics)

	loadSnapshotUC := usecase.NewLoadSnapshotUseCase(
		gateway,
		a.cfg.Session.Location,
		usecase.RetryPolicy{
			Attempts:     a.cfg.Snapshot.Attempts,
			InitialDelay: a.cfg.Snapshot.InitialDelay,
			MaxDelay:     a.cfg.Snapshot.MaxDelay,
		},
		log,
		a.metrics,
	)
	commitLineUC := usecase.NewCommitLineUseCase(gateway, a.cfg.Sale.LowStockPriority, log, a.metrics)
	finalSaveUC := usecase.NewFinalSaveUseCase(gateway, a.catalog, log, a.metrics)
	exportUC := usecase.NewExportBatchSaleUseCase(export.NewXLSXExporter())

	// Snapshot inicial en segundo plano; /stock informa loading/ready/failed
	go func() {
		if err := loadSnapshotUC.Execute(ctx, session); err != nil {
			log.Warn("initial stock snapshot not available", zap.Error(err))
		}
	}()

	if a.cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	sharedCfg := sharedConfig.DefaultSharedConfig()
	sharedCfg.MetricsEnabled = a.cfg.Metrics.Enabled
	sharedCfg.MetricsGatherer = a.registry
	sharedCfg.Version = Version
	sharedConfig.SetupSharedMiddleware(router, log, sharedCfg)

	v1 := router.Group("/api/v1")
	batchCtrl := controller.NewBatchSaleController(
		session,
		loadSnapshotUC,
		commitLineUC,
		finalSaveUC,
		exportUC,
		a.catalog,
		log,
	)
	batchCtrl.RegisterRoutes(v1)

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started",
			zap.String("addr", "http://localhost:"+a.cfg.Server.Port),
			zap.String("api", "/api/v1/batch-sale"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
