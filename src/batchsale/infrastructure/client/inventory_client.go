package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storepos/src/batchsale/domain/entity"
	"storepos/src/shared/infrastructure/config"
	"storepos/src/shared/infrastructure/metrics"

	"go.uber.org/zap"
)

// StockPatchRequest representa el request para fijar el stock restante
type StockPatchRequest struct {
	CurentStock int    `json:"Curent_stock"`
	Name        string `json:"Name"`
}

// NotificationRequest representa el request para crear una notificación
type NotificationRequest struct {
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// stockListResponse respuesta de GET /stock/all/{location}
type stockListResponse struct {
	Data []entity.StockItem `json:"data"`
}

// stockItemResponse respuesta de GET /stock/all/{id}; algunos despliegues la envuelven en data
type stockItemResponse struct {
	Data *entity.StockItem `json:"data"`
}

// RemoteError error HTTP del API de inventario
type RemoteError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("inventory api %s returned status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// InventoryClient cliente HTTP para el API remoto de inventario
type InventoryClient struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewInventoryClient crea una nueva instancia del cliente
func NewInventoryClient(cfg config.APIConfig, logger *zap.Logger, m *metrics.Metrics) *InventoryClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &InventoryClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		authToken: cfg.Token,
		logger:    logger,
		metrics:   m,
	}
}

// ListStock obtiene los items vendibles de una ubicación usando GET /stock/all/{location}
func (c *InventoryClient) ListStock(ctx context.Context, location string) ([]entity.StockItem, error) {
	endpoint := fmt.Sprintf("%s/stock/all/%s", c.baseURL, url.PathEscape(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	body, _, err := c.execute(req, "list_stock", http.StatusOK)
	if err != nil {
		return nil, err
	}

	var listResp stockListResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("error unmarshalling stock list: %w", err)
	}
	if listResp.Data == nil {
		return []entity.StockItem{}, nil
	}
	return listResp.Data, nil
}

// GetStockItem obtiene el nivel autoritativo de un item usando GET /stock/all/{id}
func (c *InventoryClient) GetStockItem(ctx context.Context, stockID string) (*entity.StockItem, error) {
	endpoint := fmt.Sprintf("%s/stock/all/%s", c.baseURL, url.PathEscape(stockID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	body, status, err := c.execute(req, "get_stock", http.StatusOK)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", entity.ErrStockItemNotFound, stockID)
		}
		return nil, err
	}

	// Primero con envoltorio data, después el objeto suelto
	var wrapped stockItemResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil && wrapped.Data.ID != "" {
		return wrapped.Data, nil
	}

	var item entity.StockItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("error unmarshalling stock item: %w", err)
	}
	if item.ID == "" {
		return nil, fmt.Errorf("%w: %s", entity.ErrStockItemNotFound, stockID)
	}
	return &item, nil
}

// CreateSale registra una venta vía POST /sales/create (multipart)
// Retorna el status recibido; el caller decide si 200 alcanza
func (c *InventoryClient) CreateSale(ctx context.Context, record entity.SaleRecord, idempotencyKey string) (int, error) {
	payload, contentType, err := encodeSaleRecord(record)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sales/create", payload)
	if err != nil {
		return 0, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	setIdempotencyKey(req, idempotencyKey)

	_, status, err := c.execute(req, "create_sale", http.StatusOK, http.StatusCreated)
	return status, err
}

// PatchStock fija el stock restante vía PATCH /stock/all/sale/{id}
func (c *InventoryClient) PatchStock(ctx context.Context, stockID, name string, remaining int, idempotencyKey string) error {
	jsonData, err := json.Marshal(StockPatchRequest{
		CurentStock: remaining,
		Name:        name,
	})
	if err != nil {
		return fmt.Errorf("error marshalling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/stock/all/sale/%s", c.baseURL, url.PathEscape(stockID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setIdempotencyKey(req, idempotencyKey)

	_, _, err = c.execute(req, "patch_stock", http.StatusOK, http.StatusNoContent)
	return err
}

// CreateNotification crea una notificación vía POST /notification/create
func (c *InventoryClient) CreateNotification(ctx context.Context, message, priority, idempotencyKey string) error {
	jsonData, err := json.Marshal(NotificationRequest{
		Message:  message,
		Priority: priority,
	})
	if err != nil {
		return fmt.Errorf("error marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notification/create", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setIdempotencyKey(req, idempotencyKey)

	_, _, err = c.execute(req, "create_notification", http.StatusOK, http.StatusCreated)
	return err
}

// execute ejecuta el request y verifica el status esperado
// Retorna el body y el status aun cuando el status no es el esperado
func (c *InventoryClient) execute(req *http.Request, operation string, expected ...int) ([]byte, int, error) {
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRemote(operation, "error", started)
		return nil, 0, fmt.Errorf("error calling inventory api %s: %w", operation, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRemote(operation, strconv.Itoa(resp.StatusCode), started)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("error reading response: %w", err)
	}

	for _, code := range expected {
		if resp.StatusCode == code {
			c.logger.Debug("inventory api call",
				zap.String("operation", operation),
				zap.Int("status", resp.StatusCode),
				zap.Duration("latency", time.Since(started)))
			return body, resp.StatusCode, nil
		}
	}

	return body, resp.StatusCode, &RemoteError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

// encodeSaleRecord arma el cuerpo multipart del registro de venta
func encodeSaleRecord(record entity.SaleRecord) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range record.Fields() {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("error writing field %s: %w", field.Name, err)
		}
	}

	if record.Buyer.HasReceipt() {
		part, err := writer.CreateFormFile(entity.FieldReceipt, record.Buyer.Receipt.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("error creating receipt part: %w", err)
		}
		if _, err := part.Write(record.Buyer.Receipt.Data); err != nil {
			return nil, "", fmt.Errorf("error writing receipt: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("error closing multipart body: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func setIdempotencyKey(req *http.Request, key string) {
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
}
