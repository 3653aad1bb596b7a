// Package batchsaletest provee dobles en memoria del API de inventario para tests
package batchsaletest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"storepos/src/batchsale/domain/entity"
)

// Operaciones registradas; coinciden con las etiquetas de métricas del cliente HTTP
const (
	OpListStock          = "list_stock"
	OpGetStock           = "get_stock"
	OpCreateSale         = "create_sale"
	OpPatchStock         = "patch_stock"
	OpCreateNotification = "create_notification"
)

// ErrUnavailable error remoto simulado
var ErrUnavailable = errors.New("inventory api unavailable")

// Call una llamada recibida por el fake
type Call struct {
	Op       string
	StockID  string
	Key      string
	Record   entity.SaleRecord
	Remain   int
	Message  string
	Priority string
}

// FakeInventory implementa port.InventoryGateway en memoria
// Los parches de stock se aplican al inventario; las ventas solo se registran
type FakeInventory struct {
	mu         sync.Mutex
	order      []string
	stock      map[string]entity.StockItem
	calls      []Call
	failures   map[string]error
	listFails  int
	saleStatus int

	// Si se setea, CreateSale avisa en SaleStarted y espera a ReleaseSale
	SaleStarted chan struct{}
	ReleaseSale chan struct{}
}

// NewFakeInventory crea el fake con los items dados
func NewFakeInventory(items ...entity.StockItem) *FakeInventory {
	f := &FakeInventory{
		stock:      make(map[string]entity.StockItem),
		failures:   make(map[string]error),
		saleStatus: http.StatusCreated,
	}
	for _, item := range items {
		f.order = append(f.order, item.ID)
		f.stock[item.ID] = item
	}
	return f
}

// ListStock implementa port.InventoryGateway
func (f *FakeInventory) ListStock(ctx context.Context, location string) ([]entity.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Op: OpListStock})
	if f.listFails > 0 {
		f.listFails--
		return nil, ErrUnavailable
	}
	if err := f.failures[OpListStock]; err != nil {
		return nil, err
	}
	items := make([]entity.StockItem, 0, len(f.order))
	for _, id := range f.order {
		items = append(items, f.stock[id])
	}
	return items, nil
}

// GetStockItem implementa port.InventoryGateway
func (f *FakeInventory) GetStockItem(ctx context.Context, stockID string) (*entity.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Op: OpGetStock, StockID: stockID})
	if err := f.failures[OpGetStock]; err != nil {
		return nil, err
	}
	item, ok := f.stock[stockID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrStockItemNotFound, stockID)
	}
	return &item, nil
}

// CreateSale implementa port.InventoryGateway
func (f *FakeInventory) CreateSale(ctx context.Context, record entity.SaleRecord, idempotencyKey string) (int, error) {
	f.mu.Lock()
	started, release := f.SaleStarted, f.ReleaseSale
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Op: OpCreateSale, StockID: record.ProductID, Key: idempotencyKey, Record: record})
	if err := f.failures[OpCreateSale]; err != nil {
		return 0, err
	}
	return f.saleStatus, nil
}

// PatchStock implementa port.InventoryGateway
func (f *FakeInventory) PatchStock(ctx context.Context, stockID, name string, remaining int, idempotencyKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Op: OpPatchStock, StockID: stockID, Key: idempotencyKey, Remain: remaining})
	if err := f.failures[OpPatchStock]; err != nil {
		return err
	}
	if item, ok := f.stock[stockID]; ok {
		item.CurentStock = remaining
		f.stock[stockID] = item
	}
	return nil
}

// CreateNotification implementa port.InventoryGateway
func (f *FakeInventory) CreateNotification(ctx context.Context, message, priority, idempotencyKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Op: OpCreateNotification, Key: idempotencyKey, Message: message, Priority: priority})
	return f.failures[OpCreateNotification]
}

// Fail hace fallar la operación hasta llamar Recover
func (f *FakeInventory) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = ErrUnavailable
	}
	f.failures[op] = err
}

// Recover quita la falla de la operación
func (f *FakeInventory) Recover(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, op)
}

// FailListTimes hace fallar las próximas n llamadas a ListStock
func (f *FakeInventory) FailListTimes(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listFails = n
}

// SetSaleStatus status devuelto por CreateSale
func (f *FakeInventory) SetSaleStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saleStatus = status
}

// SetStock cambia el nivel remoto de un item (otra terminal vendiendo)
func (f *FakeInventory) SetStock(stockID string, level int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.stock[stockID]; ok {
		item.CurentStock = level
		f.stock[stockID] = item
	}
}

// RemoveStock borra un item del inventario remoto
func (f *FakeInventory) RemoveStock(stockID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stock, stockID)
	for i, id := range f.order {
		if id == stockID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Stock nivel remoto actual de un item
func (f *FakeInventory) Stock(stockID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[stockID].CurentStock
}

// Calls copia de las llamadas de una operación; vacío trae todas
func (f *FakeInventory) Calls(op string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Call
	for _, c := range f.calls {
		if op == "" || c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// CallCount cantidad de llamadas de una operación
func (f *FakeInventory) CallCount(op string) int {
	return len(f.Calls(op))
}

// MutationCount llamadas que modifican el estado remoto
func (f *FakeInventory) MutationCount() int {
	return f.CallCount(OpCreateSale) + f.CallCount(OpPatchStock) + f.CallCount(OpCreateNotification)
}

// ResetCalls olvida las llamadas registradas
func (f *FakeInventory) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
