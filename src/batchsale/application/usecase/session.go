package usecase

import (
	"context"
	"errors"
	"sync"

	"storepos/src/batchsale/application/request"
	"storepos/src/batchsale/application/response"
	"storepos/src/batchsale/domain/entity"
	"storepos/src/batchsale/domain/port"
	"storepos/src/shared/infrastructure/metrics"

	"go.uber.org/zap"
)

// SessionStatus estado de envío de la sesión
type SessionStatus string

const (
	StatusIdle       SessionStatus = "idle"
	StatusSubmitting SessionStatus = "submitting"
)

// SnapshotStatus estado de carga del snapshot de stock
type SnapshotStatus string

const (
	SnapshotNotLoaded SnapshotStatus = "not_loaded"
	SnapshotLoading   SnapshotStatus = "loading"
	SnapshotReady     SnapshotStatus = "ready"
	SnapshotFailed    SnapshotStatus = "failed"
)

// Session venta por lote de un operador
// Objeto explícito con ciclo Open/Discard; toda mutación pasa por su mutex y
// commit/save usan la transición idle → submitting → idle
type Session struct {
	mu             sync.Mutex
	key            string
	repo           port.SessionRepository
	requiredFields []string
	logger         *zap.Logger
	metrics        *metrics.Metrics

	sale      *entity.BatchSale
	candidate entity.CandidateLine
	status    SessionStatus

	snapshot       *entity.StockSnapshot
	snapshotStatus SnapshotStatus
	snapshotErr    error
	snapshotGen    uint64
}

// NewSession crea una sesión vacía; llamar Open para hidratarla
func NewSession(
	key string,
	repo port.SessionRepository,
	requiredFields []string,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		key:            key,
		repo:           repo,
		requiredFields: requiredFields,
		logger:         logger,
		metrics:        m,
		sale:           entity.NewBatchSale(),
		status:         StatusIdle,
		snapshotStatus: SnapshotNotLoaded,
	}
}

// Open hidrata la sesión desde el repositorio
// Un documento ilegible se descarta y se arranca vacío
func (s *Session) Open(ctx context.Context) error {
	sale, err := s.repo.Load(ctx, s.key)
	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		sale = entity.NewBatchSale()
	case err != nil:
		s.logger.Error("error loading stored batch sale, starting empty",
			zap.String("key", s.key),
			zap.Error(err))
		sale = entity.NewBatchSale()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sale = sale
	s.candidate = entity.CandidateLine{}
	if sale.Pending != nil {
		// El reintento del commit pendiente parte de la misma línea
		s.candidate = entity.CandidateLine{
			StockID:  sale.Pending.StockID,
			Quantity: itoa(sale.Pending.Quantity),
			Price:    sale.Pending.UnitPrice.String(),
		}
		s.logger.Warn("restored batch sale with a pending line commit",
			zap.String("request_id", sale.Pending.RequestID),
			zap.String("stock_id", sale.Pending.StockID))
	}
	s.metrics.SetBatchLines(sale.TotalItems())

	if !sale.IsEmpty() {
		s.logger.Info("batch sale restored",
			zap.String("key", s.key),
			zap.Int("items", sale.TotalItems()))
	}
	return nil
}

// Discard descarta el lote en curso y borra la copia persistida
func (s *Session) Discard(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitting {
		return entity.ErrSubmissionInProgress
	}
	if s.sale.Pending != nil {
		s.logger.Warn("discarding batch sale with a pending line commit",
			zap.String("request_id", s.sale.Pending.RequestID))
	}
	return s.clearLocked(ctx)
}

// View arma la respuesta con el estado completo
func (s *Session) View() *response.BatchSaleResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]entity.BatchSaleItem, len(s.sale.Items))
	copy(items, s.sale.Items)

	var pending *entity.PendingCommit
	if s.sale.Pending != nil {
		p := *s.sale.Pending
		pending = &p
	}

	return &response.BatchSaleResponse{
		AddedItems:      items,
		SalesTotal:      s.sale.SalesTotal(),
		SalesQuantity:   s.sale.SalesQuantity(),
		WireLists:       s.sale.WireLists(),
		FormData:        s.sale.Buyer,
		ReceiptAttached: s.sale.Buyer.HasReceipt(),
		Candidate: response.CandidateResponse{
			StockID:  s.candidate.StockID,
			Quantity: s.candidate.Quantity,
			Price:    s.candidate.Price,
			Total:    s.candidate.Total(),
		},
		Status:        string(s.status),
		PendingCommit: pending,
		UpdatedAt:     s.sale.UpdatedAt,
	}
}

// Sale copia del aggregate
func (s *Session) Sale() entity.BatchSale {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *s.sale
	cp.Items = make([]entity.BatchSaleItem, len(s.sale.Items))
	copy(cp.Items, s.sale.Items)
	if s.sale.Pending != nil {
		p := *s.sale.Pending
		cp.Pending = &p
	}
	return cp
}

// Status estado de envío actual
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// UpdateBuyer combina los campos recibidos con el formulario actual
func (s *Session) UpdateBuyer(ctx context.Context, req request.BuyerUpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buyer := &s.sale.Buyer
	if req.FullName != nil {
		buyer.FullName = *req.FullName
	}
	if req.Contact != nil {
		buyer.Contact = *req.Contact
	}
	if req.PaymentMethod != nil {
		buyer.PaymentMethod = *req.PaymentMethod
	}
	if req.TransactionID != nil {
		buyer.TransactionID = *req.TransactionID
	}
	if req.SaleType != nil {
		buyer.SaleType = *req.SaleType
	}
	s.sale.Touch()
	return s.persistLocked(ctx)
}

// AttachReceipt guarda el comprobante en memoria; solo el nombre se persiste
func (s *Session) AttachReceipt(ctx context.Context, filename, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sale.Buyer.Receipt = &entity.Receipt{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}
	s.sale.Buyer.ReceiptPreview = filename
	s.sale.Touch()
	return s.persistLocked(ctx)
}

// RemoveReceipt quita comprobante y preview
func (s *Session) RemoveReceipt(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sale.Buyer.Receipt = nil
	s.sale.Buyer.ReceiptPreview = ""
	s.sale.Touch()
	return s.persistLocked(ctx)
}

// AbandonPendingCommit olvida un commit de línea a medio hacer
// Los efectos remotos ya aplicados quedan sin contrapartida local
func (s *Session) AbandonPendingCommit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitting {
		return entity.ErrSubmissionInProgress
	}
	if s.sale.Pending == nil {
		return entity.ErrNoPendingCommit
	}

	p := s.sale.Pending
	s.logger.Warn("pending line commit abandoned, remote and local state may differ",
		zap.String("request_id", p.RequestID),
		zap.String("stock_id", p.StockID),
		zap.Int("quantity", p.Quantity),
		zap.Bool("sale_recorded", p.SaleRecorded),
		zap.Bool("stock_patched", p.StockPatched))

	s.sale.Pending = nil
	s.candidate = entity.CandidateLine{}
	return s.persistLocked(ctx)
}

// beginSubmit pasa la sesión a submitting; s.mu debe estar tomado
func (s *Session) beginSubmitLocked() error {
	if s.status == StatusSubmitting {
		return entity.ErrSubmissionInProgress
	}
	s.status = StatusSubmitting
	return nil
}

// endSubmit vuelve la sesión a idle
func (s *Session) endSubmit() {
	s.mu.Lock()
	s.status = StatusIdle
	s.mu.Unlock()
}

// persistLocked guarda la sesión si tiene algo que conservar; si no, borra la copia
func (s *Session) persistLocked(ctx context.Context) error {
	s.metrics.SetBatchLines(s.sale.TotalItems())
	if s.sale.ShouldPersist() {
		return s.repo.Save(ctx, s.key, s.sale)
	}
	return s.repo.Delete(ctx, s.key)
}

// clearLocked vuelve la sesión al estado inicial y borra la copia persistida
func (s *Session) clearLocked(ctx context.Context) error {
	s.sale = entity.NewBatchSale()
	s.candidate = entity.CandidateLine{}
	s.metrics.SetBatchLines(0)
	return s.repo.Delete(ctx, s.key)
}
