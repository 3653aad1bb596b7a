package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"storepos/src/batchsale/domain/entity"
	"storepos/src/batchsale/domain/port"
	"storepos/src/shared/infrastructure/metrics"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy reintentos con backoff exponencial
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// LoadSnapshotUseCase carga la lista de stock vendible de la tienda
type LoadSnapshotUseCase struct {
	gateway  port.InventoryGateway
	location string
	retry    RetryPolicy
	logger   *zap.Logger
	metrics  *metrics.Metrics
	newTimer func() backoff.Timer
}

// NewLoadSnapshotUseCase crea una nueva instancia
func NewLoadSnapshotUseCase(
	gateway port.InventoryGateway,
	location string,
	retry RetryPolicy,
	logger *zap.Logger,
	m *metrics.Metrics,
) *LoadSnapshotUseCase {
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoadSnapshotUseCase{
		gateway:  gateway,
		location: location,
		retry:    retry,
		logger:   logger,
		metrics:  m,
		newTimer: func() backoff.Timer { return nil },
	}
}

// Execute carga el snapshot en la sesión
// Una carga más nueva invalida el resultado de esta
func (uc *LoadSnapshotUseCase) Execute(ctx context.Context, s *Session) error {
	gen := s.beginSnapshotLoad()

	var items []entity.StockItem
	attempt := 0
	operation := func() error {
		attempt++
		result, err := uc.gateway.ListStock(ctx, uc.location)
		if err != nil {
			uc.metrics.SnapshotLoad("error")
			return err
		}
		items = result
		return nil
	}
	notify := func(err error, next time.Duration) {
		uc.logger.Warn("error loading stock snapshot",
			zap.Int("attempt", attempt),
			zap.Int("attempts", uc.retry.Attempts),
			zap.Duration("next_retry", next),
			zap.Error(err))
	}

	err := backoff.RetryNotifyWithTimer(operation, uc.backOff(ctx), notify, uc.newTimer())
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			err = cerr
		}
		uc.logger.Warn("stock snapshot failed",
			zap.Int("attempts", attempt),
			zap.Error(err))
		s.finishSnapshotLoad(gen, nil, err)
		return fmt.Errorf("error loading stock snapshot: %w", err)
	}

	uc.metrics.SnapshotLoad("ok")
	if !s.finishSnapshotLoad(gen, items, nil) {
		uc.logger.Info("discarding stale stock snapshot", zap.Uint64("generation", gen))
		return nil
	}
	uc.logger.Info("stock snapshot loaded",
		zap.String("location", uc.location),
		zap.Int("items", len(items)),
		zap.Int("attempt", attempt))
	return nil
}

// backOff política exponencial sin jitter, acotada a Attempts intentos
func (uc *LoadSnapshotUseCase) backOff(ctx context.Context) backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     uc.retry.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         uc.retry.MaxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	if b.MaxInterval <= 0 {
		b.MaxInterval = time.Duration(math.MaxInt64)
	}
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(uc.retry.Attempts-1)), ctx)
}

// beginSnapshotLoad abre una nueva generación de carga
func (s *Session) beginSnapshotLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshotGen++
	s.snapshotStatus = SnapshotLoading
	s.snapshotErr = nil
	return s.snapshotGen
}

// finishSnapshotLoad aplica el resultado si sigue siendo la generación vigente
func (s *Session) finishSnapshotLoad(gen uint64, items []entity.StockItem, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.snapshotGen {
		return false
	}
	if err != nil {
		s.snapshotStatus = SnapshotFailed
		s.snapshotErr = err
		return true
	}
	s.snapshot = entity.NewStockSnapshot(items)
	s.snapshotStatus = SnapshotReady
	s.snapshotErr = nil
	return true
}

// SnapshotStatus estado de carga y último error
func (s *Session) SnapshotStatus() (SnapshotStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotStatus, s.snapshotErr
}
