package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storepos/src/batchsale/application/response"
	"storepos/src/batchsale/domain/entity"
	"storepos/src/batchsale/domain/port"
	"storepos/src/shared/infrastructure/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FinalSaveUseCase envía el lote completo como un único registro de venta
type FinalSaveUseCase struct {
	gateway port.InventoryGateway
	catalog port.PaymentMethodCatalog
	logger  *zap.Logger
	metrics *metrics.Metrics
	newID   func() string
}

// NewFinalSaveUseCase crea una nueva instancia del caso de uso
func NewFinalSaveUseCase(
	gateway port.InventoryGateway,
	catalog port.PaymentMethodCatalog,
	logger *zap.Logger,
	m *metrics.Metrics,
) *FinalSaveUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinalSaveUseCase{
		gateway: gateway,
		catalog: catalog,
		logger:  logger,
		metrics: m,
		newID:   uuid.NewString,
	}
}

// Execute guarda el lote; solo un 201 del API limpia la sesión
func (uc *FinalSaveUseCase) Execute(ctx context.Context, s *Session) (*response.FinalSaveResponse, error) {
	record, resp, err := s.prepareSave(ctx, uc.catalog, uc.newID)
	if err != nil {
		uc.metrics.Save("rejected")
		return nil, err
	}
	defer s.endSubmit()

	uc.logger.Info("submitting batch sale",
		zap.String("request_id", resp.RequestID),
		zap.Int("items", resp.TotalItems),
		zap.String("total", resp.SalesTotal.String()))

	status, err := uc.gateway.CreateSale(ctx, record, resp.RequestID)
	if err != nil {
		uc.metrics.Save("remote_error")
		uc.logger.Error("error saving batch sale",
			zap.String("request_id", resp.RequestID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", entity.ErrRemoteSaveFailed, err)
	}
	if status != http.StatusCreated {
		uc.metrics.Save("remote_error")
		uc.logger.Error("unexpected status saving batch sale",
			zap.String("request_id", resp.RequestID),
			zap.Int("status", status))
		return nil, fmt.Errorf("%w: status %d", entity.ErrRemoteSaveFailed, status)
	}

	s.completeSave(ctx, resp.RequestID)
	uc.metrics.Save("ok")

	uc.logger.Info("batch sale saved",
		zap.String("request_id", resp.RequestID),
		zap.String("product_ids", resp.SalesIDFromNames))
	return resp, nil
}

// prepareSave valida el guardado final y pasa la sesión a submitting
// El request id se genera una vez y se persiste para que los reintentos lo reusen
func (s *Session) prepareSave(
	ctx context.Context,
	catalog port.PaymentMethodCatalog,
	newID func() string,
) (entity.SaleRecord, *response.FinalSaveResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	method := strings.TrimSpace(s.sale.Buyer.PaymentMethod)
	if method == "" {
		return entity.SaleRecord{}, nil, entity.ErrPaymentMethodRequired
	}
	if catalog != nil && !catalog.IsKnown(method) {
		return entity.SaleRecord{}, nil, fmt.Errorf("%w: %s", entity.ErrUnknownPaymentMethod, method)
	}
	if s.sale.IsEmpty() || !s.sale.SalesTotal().IsPositive() {
		return entity.SaleRecord{}, nil, entity.ErrEmptyBatch
	}
	if s.sale.Pending != nil {
		return entity.SaleRecord{}, nil, entity.ErrPendingCommitOutstanding
	}
	if err := s.beginSubmitLocked(); err != nil {
		return entity.SaleRecord{}, nil, err
	}

	if s.sale.SaveRequestID == "" {
		s.sale.SaveRequestID = newID()
		s.sale.UpdatedAt = time.Now()
		if err := s.persistLocked(ctx); err != nil {
			s.logger.Error("error persisting save request id",
				zap.String("request_id", s.sale.SaveRequestID),
				zap.Error(err))
		}
	}

	resp := &response.FinalSaveResponse{
		RequestID:     s.sale.SaveRequestID,
		TotalItems:    s.sale.TotalItems(),
		SalesTotal:    s.sale.SalesTotal(),
		SalesQuantity: s.sale.SalesQuantity(),
		WireLists:     s.sale.WireLists(),
	}
	return entity.NewBatchSaleRecord(s.sale), resp, nil
}

// completeSave limpia la sesión tras un guardado confirmado
func (s *Session) completeSave(ctx context.Context, requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sale.SaveRequestID != requestID {
		return
	}
	if err := s.clearLocked(ctx); err != nil {
		s.logger.Error("error deleting saved batch sale",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
