package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"storepos/src/batchsale/application/request"
	"storepos/src/batchsale/batchsaletest"
	"storepos/src/batchsale/domain/entity"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_OpenEmpty(t *testing.T) {
	fx := newFixture(t, stockItem("A", "Rice", 100, 10, 2))

	view := fx.session.View()
	assert.Empty(t, view.AddedItems)
	assert.True(t, view.SalesTotal.IsZero())
	assert.Equal(t, 0, view.SalesQuantity)
	assert.Equal(t, "", view.SalesIDFromNames)
	assert.Equal(t, entity.SaleTypeLine, view.FormData.SaleType)
	assert.Equal(t, string(StatusIdle), view.Status)
	assert.False(t, fx.repo.Has(sessionKey))
}

func TestSession_UpdateBuyerMergesFields(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.session.UpdateBuyer(fx.ctx, request.BuyerUpdateRequest{FullName: strPtr("Abebe")}))
	require.NoError(t, fx.session.UpdateBuyer(fx.ctx, request.BuyerUpdateRequest{
		Contact:       strPtr("0911"),
		PaymentMethod: strPtr("Cash"),
	}))

	buyer := fx.session.View().FormData
	assert.Equal(t, "Abebe", buyer.FullName)
	assert.Equal(t, "0911", buyer.Contact)
	assert.Equal(t, "Cash", buyer.PaymentMethod)
	// Sin líneas no hay nada que persistir
	assert.False(t, fx.repo.Has(sessionKey))
}

func TestSession_ReloadRestoresStateExceptReceiptBytes(t *testing.T) {
	fx := newFixture(t, stockItem("A", "Rice", 100, 10, 2), stockItem("B", "Oil", 50, 5, 1))
	fx.fillBuyer(t)
	require.NoError(t, fx.session.AttachReceipt(fx.ctx, "receipt.png", "image/png", []byte{1, 2, 3}))
	fx.addLine(t, "A", "3")
	fx.addLine(t, "B", "1")

	before := fx.session.View()
	require.True(t, before.ReceiptAttached)
	require.True(t, fx.repo.Has(sessionKey))

	reloaded := fx.openSession(t)
	after := reloaded.View()

	assert.Equal(t, lineSummary(before.AddedItems), lineSummary(after.AddedItems))
	assert.True(t, before.SalesTotal.Equal(after.SalesTotal))
	assert.Equal(t, before.SalesQuantity, after.SalesQuantity)
	assert.Equal(t, before.WireLists, after.WireLists)
	assert.Equal(t, before.FormData.FullName, after.FormData.FullName)
	assert.Equal(t, before.FormData.Contact, after.FormData.Contact)
	assert.Equal(t, "receipt.png", after.FormData.ReceiptPreview)
	assert.False(t, after.ReceiptAttached)
	assert.Nil(t, after.FormData.Receipt)
}

func TestSession_ReceiptAttachAndRemove(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.session.AttachReceipt(fx.ctx, "r.jpg", "image/jpeg", []byte("jpg")))
	view := fx.session.View()
	assert.True(t, view.ReceiptAttached)
	assert.Equal(t, "r.jpg", view.FormData.ReceiptPreview)

	require.NoError(t, fx.session.RemoveReceipt(fx.ctx))
	view = fx.session.View()
	assert.False(t, view.ReceiptAttached)
	assert.Empty(t, view.FormData.ReceiptPreview)
}

func TestSession_Discard(t *testing.T) {
	fx := newFixture(t, stockItem("A", "Rice", 100, 10, 2))
	fx.fillBuyer(t)
	fx.addLine(t, "A", "2")
	require.True(t, fx.repo.Has(sessionKey))

	require.NoError(t, fx.session.Discard(fx.ctx))

	assert.Empty(t, fx.session.View().AddedItems)
	assert.False(t, fx.repo.Has(sessionKey))
}

func TestLineEditor_SelectItemOverwritesPrice(t *testing.T) {
	fx := newFixture(t, stockItem("A", "Rice", 100, 10, 2))

	require.NoError(t, fx.session.SetPrice("80"))
	require.NoError(t, fx.session.SelectItem("A"))
	assert.Equal(t, "100", fx.session.Candidate().Price)

	require.NoError(t, fx.session.SetPrice("90"))
	require.NoError(t, fx.session.SetQuantity("2"))
	view := fx.session.View()
	assert.Equal(t, "90", view.Candidate.Price)
	assert.Equal(t, "180", view.Candidate.Total.String())
}

func TestLineEditor_UnparsableInputCountsAsZero(t *testing.T) {
	fx := newFixture(t, stockItem("A", "Rice", 100, 10, 2))

	require.NoError(t, fx.session.SelectItem("A"))
	require.NoError(t, fx.session.SetQuantity("abc"))
	assert.True(t, fx.session.View().Candidate.Total.IsZero())
}

func TestLineEditor_SelectItemRejections(t *testing.T) {
	fx := newFixture(t, stockItem("A", "Rice", 100, 10, 2))
	fx.fillBuyer(t)

	assert.ErrorIs(t, fx.session.SelectItem("Z"), entity.ErrStockItemNotFound)

	fx.addLine(t, "A", "1")
	assert.ErrorIs(t, fx.session.SelectItem("A"), entity.ErrItemAlreadySelected)
}

func TestLineEditor_ApplyCandidateOrder(t *testing.T) {
	fx := newFixture(t, stockItem("A", "Rice", 100, 10, 2))

	qty := request.FreeText("3")
	price := request.FreeText("95")
	require.NoError(t, fx.session.ApplyCandidate(request.CandidateRequest{
		StockID:  strPtr("A"),
		Quantity: &qty,
		Price:    &price,
	}))

	c := fx.session.Candidate()
	assert.Equal(t, "A", c.StockID)
	assert.Equal(t, "3", c.Quantity)
	assert.Equal(t, "95", c.Price)
}

func TestLineEditor_SearchFlagsSelectedItems(t *testing.T) {
	fx := newFixture(t,
		stockItem("A", "Rice", 100, 10, 2),
		stockItem("B", "Brown Rice", 120, 4, 1),
		stockItem("C", "Oil", 50, 5, 1),
	)
	fx.fillBuyer(t)
	fx.addLine(t, "A", "1")

	resp := fx.session.SearchItems("rice")
	assert.Equal(t, string(SnapshotReady), resp.Status)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "A", resp.Items[0].ID)
	assert.True(t, resp.Items[0].AlreadySelected)
	assert.Equal(t, 9, resp.Items[0].CurentStock)
	assert.Equal(t, "B", resp.Items[1].ID)
	assert.False(t, resp.Items[1].AlreadySelected)
}

// recordingTimer anota las esperas y dispara al instante
type recordingTimer struct {
	delays []time.Duration
	c      chan time.Time
}

func (r *recordingTimer) Start(d time.Duration) {
	r.delays = append(r.delays, d)
	r.c = make(chan time.Time, 1)
	r.c <- time.Now()
}

func (r *recordingTimer) Stop() {}

func (r *recordingTimer) C() <-chan time.Time { return r.c }

func TestLoadSnapshot_RetriesWithBackoff(t *testing.T) {
	inv := batchsaletest.NewFakeInventory(stockItem("A", "Rice", 100, 10, 2))
	inv.FailListTimes(2)

	session := NewSession(sessionKey, nil, nil, nil, nil)
	uc := NewLoadSnapshotUseCase(inv, "store", RetryPolicy{
		Attempts:     4,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     150 * time.Millisecond,
	}, nil, nil)

	timer := &recordingTimer{}
	uc.newTimer = func() backoff.Timer { return timer }

	require.NoError(t, uc.Execute(context.Background(), session))

	status, err := session.SnapshotStatus()
	assert.Equal(t, SnapshotReady, status)
	assert.NoError(t, err)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 150 * time.Millisecond}, timer.delays)
	assert.Equal(t, 3, inv.CallCount(batchsaletest.OpListStock))
}

func TestLoadSnapshot_FailedAfterExhaustingRetries(t *testing.T) {
	inv := batchsaletest.NewFakeInventory(stockItem("A", "Rice", 100, 10, 2))
	inv.FailListTimes(10)

	session := NewSession(sessionKey, nil, nil, nil, nil)
	uc := NewLoadSnapshotUseCase(inv, "store", RetryPolicy{Attempts: 3}, nil, nil)
	timer := &recordingTimer{}
	uc.newTimer = func() backoff.Timer { return timer }

	err := uc.Execute(context.Background(), session)
	require.Error(t, err)
	assert.True(t, errors.Is(err, batchsaletest.ErrUnavailable))

	status, lastErr := session.SnapshotStatus()
	assert.Equal(t, SnapshotFailed, status)
	assert.ErrorIs(t, lastErr, batchsaletest.ErrUnavailable)
	assert.Equal(t, 3, inv.CallCount(batchsaletest.OpListStock))
	assert.Len(t, timer.delays, 2)

	resp := session.SearchItems("")
	assert.Equal(t, string(SnapshotFailed), resp.Status)
	assert.NotEmpty(t, resp.Error)
}

func TestLoadSnapshot_CancelledContextStopsRetrying(t *testing.T) {
	inv := batchsaletest.NewFakeInventory()
	inv.FailListTimes(10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := NewSession(sessionKey, nil, nil, nil, nil)
	uc := NewLoadSnapshotUseCase(inv, "store", RetryPolicy{Attempts: 5, InitialDelay: time.Second}, nil, nil)

	err := uc.Execute(ctx, session)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inv.CallCount(batchsaletest.OpListStock))
}

func TestLoadSnapshot_StaleGenerationIsDiscarded(t *testing.T) {
	session := NewSession(sessionKey, nil, nil, nil, nil)

	first := session.beginSnapshotLoad()
	second := session.beginSnapshotLoad()

	assert.True(t, session.finishSnapshotLoad(second, []entity.StockItem{stockItem("B", "Oil", 50, 5, 1)}, nil))
	assert.False(t, session.finishSnapshotLoad(first, []entity.StockItem{stockItem("A", "Rice", 100, 10, 2)}, nil))

	resp := session.SearchItems("")
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "B", resp.Items[0].ID)
}
