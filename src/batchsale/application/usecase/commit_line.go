package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storepos/src/batchsale/application/response"
	"storepos/src/batchsale/domain/entity"
	"storepos/src/batchsale/domain/port"
	"storepos/src/shared/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CommitLineUseCase caso de uso "Add To Sale"
// Registra la venta de la línea, descuenta stock, avisa stock bajo y recién
// entonces agrega la línea al lote. Si un paso remoto falla, el commit
// pendiente queda persistido y el reintento retoma desde el paso incompleto.
type CommitLineUseCase struct {
	gateway          port.InventoryGateway
	lowStockPriority string
	logger           *zap.Logger
	metrics          *metrics.Metrics
	newID            func() string
}

// NewCommitLineUseCase crea una nueva instancia del caso de uso
func NewCommitLineUseCase(
	gateway port.InventoryGateway,
	lowStockPriority string,
	logger *zap.Logger,
	m *metrics.Metrics,
) *CommitLineUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lowStockPriority == "" {
		lowStockPriority = "High"
	}
	return &CommitLineUseCase{
		gateway:          gateway,
		lowStockPriority: lowStockPriority,
		logger:           logger,
		metrics:          m,
		newID:            uuid.NewString,
	}
}

// commitPlan línea validada lista para enviar
type commitPlan struct {
	stockID   string
	quantity  int
	unitPrice decimal.Decimal
	resume    *entity.PendingCommit
}

// Execute confirma la línea candidata de la sesión
func (uc *CommitLineUseCase) Execute(ctx context.Context, s *Session) (*response.CommitLineResponse, error) {
	// ========================================================================
	// PASO 1: VALIDACIONES LOCALES (sin red, sin mutación)
	// ========================================================================
	plan, err := s.prepareCommit()
	if err != nil {
		uc.metrics.Commit("rejected")
		return nil, err
	}
	defer s.endSubmit()

	pending := plan.resume
	if pending != nil {
		uc.logger.Info("resuming pending line commit",
			zap.String("request_id", pending.RequestID),
			zap.String("stock_id", pending.StockID),
			zap.Bool("sale_recorded", pending.SaleRecorded),
			zap.Bool("stock_patched", pending.StockPatched))
	} else {
		// ====================================================================
		// PASO 2: NIVEL DE STOCK AUTORITATIVO
		// ====================================================================
		fresh, err := uc.gateway.GetStockItem(ctx, plan.stockID)
		if errors.Is(err, entity.ErrStockItemNotFound) {
			uc.metrics.Commit("rejected")
			uc.logger.Warn("stock item removed since snapshot, rejecting line",
				zap.String("stock_id", plan.stockID))
			return nil, err
		}
		if err != nil {
			uc.metrics.Commit("remote_error")
			uc.logger.Error("error fetching stock level",
				zap.String("stock_id", plan.stockID),
				zap.Error(err))
			return nil, fmt.Errorf("%w: fetching stock level: %w", entity.ErrRemoteCommitFailed, err)
		}
		s.refreshSnapshotEntry(*fresh)

		if fresh.CurentStock-plan.quantity < 0 {
			uc.metrics.Commit("rejected")
			uc.logger.Warn("stock changed since snapshot, rejecting line",
				zap.String("stock_id", plan.stockID),
				zap.Int("quantity", plan.quantity),
				zap.Int("available", fresh.CurentStock))
			return nil, entity.ErrInsufficientStock
		}

		// ====================================================================
		// PASO 3: REGISTRAR COMMIT PENDIENTE
		// ====================================================================
		p := entity.NewPendingCommit(uc.newID(), *fresh, plan.quantity, plan.unitPrice)
		if err := s.savePending(ctx, p); err != nil {
			uc.metrics.Commit("rejected")
			return nil, fmt.Errorf("error persisting pending commit: %w", err)
		}
		pending = &p
	}

	// ========================================================================
	// PASO 4: EFECTOS REMOTOS EN ORDEN, CADA UNO CON SU IDEMPOTENCY KEY
	// ========================================================================
	if err := uc.runSteps(ctx, s, pending); err != nil {
		uc.metrics.Commit("remote_error")
		return nil, err
	}

	// ========================================================================
	// PASO 5: PLEGAR LA LÍNEA EN EL LOTE
	// ========================================================================
	resp, err := s.completeCommit(ctx, *pending)
	if err != nil {
		uc.metrics.Commit("rejected")
		return nil, err
	}
	uc.metrics.Commit("ok")

	uc.logger.Info("line added to batch sale",
		zap.String("request_id", pending.RequestID),
		zap.String("stock_id", pending.StockID),
		zap.Int("quantity", pending.Quantity),
		zap.Int("remaining", pending.Remaining),
		zap.Int("total_items", resp.TotalItems))
	return resp, nil
}

func (uc *CommitLineUseCase) runSteps(ctx context.Context, s *Session, pending *entity.PendingCommit) error {
	if !pending.SaleRecorded {
		record := entity.NewLineSaleRecord(s.buyer(), *pending)
		if _, err := uc.gateway.CreateSale(ctx, record, pending.IdempotencyKey(entity.StepSale)); err != nil {
			uc.logger.Error("error recording line sale",
				zap.String("request_id", pending.RequestID),
				zap.String("stock_id", pending.StockID),
				zap.Error(err))
			return fmt.Errorf("%w: %w", entity.ErrRemoteCommitFailed, err)
		}
		pending.SaleRecorded = true
		s.markStep(ctx, pending.RequestID, entity.StepSale)
	}

	if !pending.StockPatched {
		err := uc.gateway.PatchStock(ctx, pending.StockID, pending.Name, pending.Remaining,
			pending.IdempotencyKey(entity.StepStock))
		if err != nil {
			uc.logger.Error("error patching stock",
				zap.String("request_id", pending.RequestID),
				zap.String("stock_id", pending.StockID),
				zap.Int("remaining", pending.Remaining),
				zap.Error(err))
			return fmt.Errorf("%w: patching stock: %w", entity.ErrRemoteCommitFailed, err)
		}
		pending.StockPatched = true
		s.markStep(ctx, pending.RequestID, entity.StepStock)
	}

	if pending.NeedsNotification() && !pending.NotificationSent {
		item := pending.RemainingItem(pending.UnitPrice)
		err := uc.gateway.CreateNotification(ctx, item.LowStockMessage(), uc.lowStockPriority,
			pending.IdempotencyKey(entity.StepNotification))
		if err != nil {
			uc.logger.Error("error sending low stock notification",
				zap.String("request_id", pending.RequestID),
				zap.String("stock_id", pending.StockID),
				zap.Error(err))
			return fmt.Errorf("%w: sending notification: %w", entity.ErrRemoteCommitFailed, err)
		}
		pending.NotificationSent = true
		s.markStep(ctx, pending.RequestID, entity.StepNotification)
		uc.logger.Warn("low stock notification sent",
			zap.String("stock_id", pending.StockID),
			zap.Int("remaining", pending.Remaining),
			zap.Int("restock_level", pending.RestockLevel))
	}
	return nil
}

// prepareCommit valida la línea candidata y pasa la sesión a submitting
func (s *Session) prepareCommit() (*commitPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.candidate
	if c.StockID == "" || !c.QuantityValue().IsPositive() {
		return nil, entity.ErrCandidateIncomplete
	}
	if field, missing := s.sale.MissingBuyerField(s.requiredFields); missing {
		return nil, fmt.Errorf("%w: %s", entity.ErrBuyerFieldRequired, field)
	}

	if p := s.sale.Pending; p != nil {
		qty, _ := c.WholeQuantity()
		if !p.Matches(c.StockID, qty, c.PriceValue()) {
			return nil, entity.ErrPendingCommitMismatch
		}
		if err := s.beginSubmitLocked(); err != nil {
			return nil, err
		}
		resume := *p
		return &commitPlan{stockID: p.StockID, quantity: p.Quantity, unitPrice: p.UnitPrice, resume: &resume}, nil
	}

	if s.snapshotStatus != SnapshotReady {
		return nil, entity.ErrSnapshotNotReady
	}
	entry, ok := s.snapshot.Find(c.StockID)
	if !ok {
		return nil, entity.ErrStockItemNotFound
	}
	if s.sale.Contains(c.StockID) {
		return nil, entity.ErrItemAlreadySelected
	}
	available := decimal.NewFromInt(int64(entry.CurentStock))
	if available.Sub(c.QuantityValue()).IsNegative() {
		return nil, entity.ErrInsufficientStock
	}
	qty, ok := c.WholeQuantity()
	if !ok {
		return nil, entity.ErrInvalidQuantity
	}
	price := c.PriceValue()
	if price.IsNegative() {
		return nil, entity.ErrInvalidPrice
	}

	if err := s.beginSubmitLocked(); err != nil {
		return nil, err
	}
	return &commitPlan{stockID: entry.ID, quantity: qty, unitPrice: price}, nil
}

// buyer copia del formulario del comprador
func (s *Session) buyer() entity.BuyerForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sale.Buyer
}

// refreshSnapshotEntry reemplaza la copia local con el nivel leído del API
func (s *Session) refreshSnapshotEntry(item entity.StockItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil {
		s.snapshot.Replace(item)
	}
}

// savePending persiste el commit pendiente antes del primer efecto remoto
func (s *Session) savePending(ctx context.Context, p entity.PendingCommit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sale.Pending = &p
	s.sale.UpdatedAt = time.Now()
	if err := s.persistLocked(ctx); err != nil {
		s.sale.Pending = nil
		return err
	}
	return nil
}

// markStep marca un paso remoto como hecho
// Un error al persistir se loguea: el paso ya ocurrió y la key lo deduplica
func (s *Session) markStep(ctx context.Context, requestID, step string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.sale.Pending
	if p == nil || p.RequestID != requestID {
		return
	}
	switch step {
	case entity.StepSale:
		p.SaleRecorded = true
	case entity.StepStock:
		p.StockPatched = true
	case entity.StepNotification:
		p.NotificationSent = true
	}
	if err := s.persistLocked(ctx); err != nil {
		s.logger.Error("error persisting commit step",
			zap.String("request_id", requestID),
			zap.String("step", step),
			zap.Error(err))
	}
}

// completeCommit agrega la línea, actualiza el snapshot y limpia la candidata
func (s *Session) completeCommit(ctx context.Context, p entity.PendingCommit) (*response.CommitLineResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := p.Line()
	if err != nil {
		return nil, err
	}
	if err := s.sale.AddItem(*line); err != nil {
		return nil, err
	}

	price := p.UnitPrice
	if entry, ok := s.snapshot.Find(p.StockID); ok {
		price = entry.Price
	}
	if s.snapshot != nil {
		s.snapshot.Replace(p.RemainingItem(price))
	}

	s.candidate = entity.CandidateLine{}
	s.sale.Pending = nil
	if err := s.persistLocked(ctx); err != nil {
		s.logger.Error("error persisting batch sale after commit",
			zap.String("request_id", p.RequestID),
			zap.Error(err))
	}

	return &response.CommitLineResponse{
		Line:          *line,
		Remaining:     p.Remaining,
		LowStock:      p.NeedsNotification(),
		TotalItems:    s.sale.TotalItems(),
		SalesTotal:    s.sale.SalesTotal(),
		SalesQuantity: s.sale.SalesQuantity(),
		RequestID:     p.RequestID,
	}, nil
}
