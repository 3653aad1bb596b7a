package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storepos/src/batchsale/domain/entity"
	"storepos/src/shared/infrastructure/config"
	"storepos/src/shared/infrastructure/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *InventoryClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewInventoryClient(config.APIConfig{
		BaseURL: srv.URL + "/",
		Token:   "secret",
		Timeout: 2 * time.Second,
	}, nil, metrics.New(prometheus.NewRegistry()))
}

func TestInventoryClient_ListStock(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/stock/all/store", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":[{"id":"A","Name":"Rice","Price":100,"Curent_stock":10,"Restock_level":2},
			{"id":"B","Name":"Oil","Price":"49.50","Curent_stock":5,"Restock_level":1}]}`)
	})

	items, err := c.ListStock(context.Background(), "store")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Rice", items[0].Name)
	assert.Equal(t, 10, items[0].CurentStock)
	assert.Equal(t, "100", items[0].Price.String())
	assert.Equal(t, "49.5", items[1].Price.String())
}

func TestInventoryClient_ListStockError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "boom")
	})

	_, err := c.ListStock(context.Background(), "store")
	require.Error(t, err)
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode)
	assert.Equal(t, "list_stock", remoteErr.Operation)
}

func TestInventoryClient_GetStockItem(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stock/all/A":
			io.WriteString(w, `{"id":"A","Name":"Rice","Price":100,"Curent_stock":7,"Restock_level":2}`)
		case "/stock/all/B":
			io.WriteString(w, `{"data":{"id":"B","Name":"Oil","Price":50,"Curent_stock":3,"Restock_level":1}}`)
		default:
			http.NotFound(w, r)
		}
	})

	item, err := c.GetStockItem(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 7, item.CurentStock)

	item, err = c.GetStockItem(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, "Oil", item.Name)
	assert.Equal(t, 3, item.CurentStock)

	_, err = c.GetStockItem(context.Background(), "Z")
	assert.ErrorIs(t, err, entity.ErrStockItemNotFound)
}

func TestInventoryClient_CreateSaleMultipart(t *testing.T) {
	var got map[string]string
	var receipt []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sales/create", r.URL.Path)
		assert.Equal(t, "req-1", r.Header.Get("Idempotency-Key"))
		assert.NoError(t, r.ParseMultipartForm(1<<20))

		got = make(map[string]string)
		for name, values := range r.MultipartForm.Value {
			got[name] = values[0]
		}
		if file, _, err := r.FormFile("Receipt"); assert.NoError(t, err) {
			receipt, _ = io.ReadAll(file)
		}
		w.WriteHeader(http.StatusCreated)
	})

	sale := entity.NewBatchSale()
	sale.Buyer.FullName = "Abebe"
	sale.Buyer.Contact = "0911"
	sale.Buyer.PaymentMethod = "Cash"
	sale.Buyer.Receipt = &entity.Receipt{Filename: "r.png", ContentType: "image/png", Data: []byte("png")}
	a, _ := entity.NewBatchSaleItem("A", "Rice", 3, decimal.NewFromInt(100))
	b, _ := entity.NewBatchSaleItem("B", "Oil", 1, decimal.NewFromInt(50))
	require.NoError(t, sale.AddItem(*a))
	require.NoError(t, sale.AddItem(*b))

	status, err := c.CreateSale(context.Background(), entity.NewBatchSaleRecord(sale), "req-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)

	assert.Equal(t, "Abebe", got["Full_name"])
	assert.Equal(t, "Batch Sale", got["Sale_type"])
	assert.Equal(t, "A, B", got["Product_id"])
	assert.Equal(t, "4", got["Quantity"])
	assert.Equal(t, "350", got["Total_amount"])
	assert.Equal(t, "3,1", got["EachQuantity"])
	assert.Equal(t, "Rice, Oil", got["Item_List"])
	assert.Equal(t, []byte("png"), receipt)
}

func TestInventoryClient_CreateSaleReturnsStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	status, err := c.CreateSale(context.Background(), entity.SaleRecord{}, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestInventoryClient_PatchStock(t *testing.T) {
	var body StockPatchRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/stock/all/sale/A", r.URL.Path)
		assert.Equal(t, "req-1-stock", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.PatchStock(context.Background(), "A", "Rice", 7, "req-1-stock"))
	assert.Equal(t, 7, body.CurentStock)
	assert.Equal(t, "Rice", body.Name)
}

func TestInventoryClient_PatchStockFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := c.PatchStock(context.Background(), "A", "Rice", 7, "k")
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadGateway, remoteErr.StatusCode)
}

func TestInventoryClient_CreateNotification(t *testing.T) {
	var body NotificationRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notification/create", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, c.CreateNotification(context.Background(), "Rice is running low on stock.", "High", "k"))
	assert.Equal(t, "Rice is running low on stock.", body.Message)
	assert.Equal(t, "High", body.Priority)
}

func TestInventoryClient_NoTokenNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		io.WriteString(w, `{"data":[]}`)
	}))
	defer srv.Close()

	c := NewInventoryClient(config.APIConfig{BaseURL: srv.URL}, nil, nil)
	items, err := c.ListStock(context.Background(), "store")
	require.NoError(t, err)
	assert.Empty(t, items)
}
