package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"storepos/src/batchsale/application/request"
	"storepos/src/batchsale/application/usecase"
	"storepos/src/batchsale/domain/entity"
	"storepos/src/batchsale/domain/port"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxReceiptSize tamaño máximo del comprobante subido
const maxReceiptSize = 10 << 20

// BatchSaleController maneja las peticiones HTTP de la venta por lote
type BatchSaleController struct {
	session        *usecase.Session
	loadSnapshotUC *usecase.LoadSnapshotUseCase
	commitLineUC   *usecase.CommitLineUseCase
	finalSaveUC    *usecase.FinalSaveUseCase
	exportUC       *usecase.ExportBatchSaleUseCase
	catalog        port.PaymentMethodCatalog
	logger         *zap.Logger
}

// NewBatchSaleController crea una nueva instancia del controlador
func NewBatchSaleController(
	session *usecase.Session,
	loadSnapshotUC *usecase.LoadSnapshotUseCase,
	commitLineUC *usecase.CommitLineUseCase,
	finalSaveUC *usecase.FinalSaveUseCase,
	exportUC *usecase.ExportBatchSaleUseCase,
	catalog port.PaymentMethodCatalog,
	logger *zap.Logger,
) *BatchSaleController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchSaleController{
		session:        session,
		loadSnapshotUC: loadSnapshotUC,
		commitLineUC:   commitLineUC,
		finalSaveUC:    finalSaveUC,
		exportUC:       exportUC,
		catalog:        catalog,
		logger:         logger,
	}
}

// RegisterRoutes registra las rutas del controlador
func (c *BatchSaleController) RegisterRoutes(router *gin.RouterGroup) {
	batch := router.Group("/batch-sale")
	{
		batch.GET("", c.GetBatchSale)
		batch.DELETE("", c.DiscardBatchSale)
		batch.PATCH("/buyer", c.UpdateBuyer)
		batch.POST("/receipt", c.UploadReceipt)
		batch.DELETE("/receipt", c.RemoveReceipt)
		batch.GET("/stock", c.SearchStock)
		batch.POST("/stock/reload", c.ReloadStock)
		batch.PUT("/candidate", c.UpdateCandidate)
		batch.POST("/candidate/commit", c.CommitLine)
		batch.DELETE("/candidate/pending", c.AbandonPendingCommit)
		batch.POST("/save", c.SaveBatchSale)
		batch.GET("/export", c.ExportBatchSale)
		batch.GET("/payment-methods", c.ListPaymentMethods)
	}

	c.logger.Debug("batch sale routes registered", zap.String("group", batch.BasePath()))
}

// GetBatchSale estado completo del lote
func (c *BatchSaleController) GetBatchSale(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.session.View())
}

// DiscardBatchSale descarta el lote en curso
func (c *BatchSaleController) DiscardBatchSale(ctx *gin.Context) {
	if err := c.session.Discard(ctx.Request.Context()); err != nil {
		c.writeError(ctx, err, "Error discarding batch sale")
		return
	}
	ctx.JSON(http.StatusOK, c.session.View())
}

// UpdateBuyer actualiza los datos del comprador y el método de pago
func (c *BatchSaleController) UpdateBuyer(ctx *gin.Context) {
	var req request.BuyerUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := c.session.UpdateBuyer(ctx.Request.Context(), req); err != nil {
		c.writeError(ctx, err, "Error updating buyer")
		return
	}
	ctx.JSON(http.StatusOK, c.session.View())
}

// UploadReceipt recibe el comprobante como multipart (campo "Receipt")
func (c *BatchSaleController) UploadReceipt(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxReceiptSize)

	header, err := ctx.FormFile(entity.FieldReceipt)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Receipt file is required",
			"details": err.Error(),
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.writeError(ctx, err, "Error reading receipt")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.writeError(ctx, err, "Error reading receipt")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	if err := c.session.AttachReceipt(ctx.Request.Context(), header.Filename, contentType, data); err != nil {
		c.writeError(ctx, err, "Error attaching receipt")
		return
	}
	ctx.JSON(http.StatusOK, c.session.View())
}

// RemoveReceipt quita el comprobante
func (c *BatchSaleController) RemoveReceipt(ctx *gin.Context) {
	if err := c.session.RemoveReceipt(ctx.Request.Context()); err != nil {
		c.writeError(ctx, err, "Error removing receipt")
		return
	}
	ctx.JSON(http.StatusOK, c.session.View())
}

// SearchStock estado del snapshot y búsqueda por nombre (?q=)
func (c *BatchSaleController) SearchStock(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.session.SearchItems(ctx.Query("q")))
}

// ReloadStock vuelve a cargar el snapshot de stock
func (c *BatchSaleController) ReloadStock(ctx *gin.Context) {
	if err := c.loadSnapshotUC.Execute(ctx.Request.Context(), c.session); err != nil {
		resp := c.session.SearchItems("")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Stock snapshot not available",
			"details": err.Error(),
			"status":  resp.Status,
		})
		return
	}
	ctx.JSON(http.StatusOK, c.session.SearchItems(""))
}

// UpdateCandidate edita la línea candidata
func (c *BatchSaleController) UpdateCandidate(ctx *gin.Context) {
	var req request.CandidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := c.session.ApplyCandidate(req); err != nil {
		c.writeError(ctx, err, "Error updating candidate line")
		return
	}
	ctx.JSON(http.StatusOK, c.session.View())
}

// CommitLine agrega la línea candidata al lote ("Add To Sale")
func (c *BatchSaleController) CommitLine(ctx *gin.Context) {
	resp, err := c.commitLineUC.Execute(ctx.Request.Context(), c.session)
	if err != nil {
		c.writeError(ctx, err, "Error adding item to sale")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// AbandonPendingCommit descarta un commit de línea a medio hacer
func (c *BatchSaleController) AbandonPendingCommit(ctx *gin.Context) {
	if err := c.session.AbandonPendingCommit(ctx.Request.Context()); err != nil {
		c.writeError(ctx, err, "Error abandoning pending commit")
		return
	}
	ctx.JSON(http.StatusOK, c.session.View())
}

// SaveBatchSale guardado final del lote
func (c *BatchSaleController) SaveBatchSale(ctx *gin.Context) {
	resp, err := c.finalSaveUC.Execute(ctx.Request.Context(), c.session)
	if err != nil {
		c.writeError(ctx, err, "Error saving sales")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ExportBatchSale descarga las líneas confirmadas como planilla
func (c *BatchSaleController) ExportBatchSale(ctx *gin.Context) {
	data, err := c.exportUC.Execute(c.session.Sale())
	if err != nil {
		c.writeError(ctx, err, "Error exporting batch sale")
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.exportUC.Filename()))
	ctx.Data(http.StatusOK, c.exportUC.ContentType(), data)
}

// ListPaymentMethods opciones de método de pago aceptadas
func (c *BatchSaleController) ListPaymentMethods(ctx *gin.Context) {
	names := []string{}
	if c.catalog != nil {
		names = c.catalog.Names()
	}
	ctx.JSON(http.StatusOK, gin.H{
		"items":       names,
		"total_count": len(names),
	})
}

// writeError traduce errores de dominio a status HTTP
func (c *BatchSaleController) writeError(ctx *gin.Context, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		c.logger.Error(message, zap.Int("status", status), zap.Error(err))
	} else {
		c.logger.Info(message, zap.Int("status", status), zap.Error(err))
	}
	ctx.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrSubmissionInProgress),
		errors.Is(err, entity.ErrInsufficientStock),
		errors.Is(err, entity.ErrItemAlreadySelected),
		errors.Is(err, entity.ErrPendingCommitMismatch),
		errors.Is(err, entity.ErrPendingCommitOutstanding):
		return http.StatusConflict
	case errors.Is(err, entity.ErrSnapshotNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, entity.ErrRemoteCommitFailed),
		errors.Is(err, entity.ErrRemoteSaveFailed):
		return http.StatusBadGateway
	case errors.Is(err, entity.ErrNoPendingCommit):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrCandidateIncomplete),
		errors.Is(err, entity.ErrBuyerFieldRequired),
		errors.Is(err, entity.ErrStockItemNotFound),
		errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrInvalidPrice),
		errors.Is(err, entity.ErrPaymentMethodRequired),
		errors.Is(err, entity.ErrUnknownPaymentMethod),
		errors.Is(err, entity.ErrEmptyBatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
