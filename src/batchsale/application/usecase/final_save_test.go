package usecase

import (
	"net/http"
	"testing"

	"storepos/src/batchsale/application/request"
	"storepos/src/batchsale/batchsaletest"
	"storepos/src/batchsale/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSavedFixture(t *testing.T) *fixture {
	t.Helper()
	fx := newFixture(t, stockItem("A", "Rice", 100, 10, 2), stockItem("B", "Oil", 50, 5, 1))
	fx.fillBuyer(t)
	fx.addLine(t, "A", "3")
	fx.addLine(t, "B", "1")
	fx.inv.ResetCalls()
	return fx
}

func (fx *fixture) setPayment(t *testing.T, method string) {
	t.Helper()
	require.NoError(t, fx.session.UpdateBuyer(fx.ctx, request.BuyerUpdateRequest{PaymentMethod: &method}))
}

func TestFinalSave_SubmitsCombinedRecordAndClears(t *testing.T) {
	fx := newSavedFixture(t)
	fx.setPayment(t, "Cash")
	require.NoError(t, fx.session.AttachReceipt(fx.ctx, "r.png", "image/png", []byte("png")))

	resp, err := fx.save.Execute(fx.ctx, fx.session)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, 2, resp.TotalItems)
	assert.Equal(t, "350", resp.SalesTotal.String())
	assert.Equal(t, "A, B", resp.SalesIDFromNames)

	sales := fx.inv.Calls(batchsaletest.OpCreateSale)
	require.Len(t, sales, 1)
	record := sales[0].Record
	assert.Equal(t, resp.RequestID, sales[0].Key)
	assert.Equal(t, entity.SaleTypeBatch, record.SaleType)
	assert.Equal(t, "A, B", record.ProductID)
	assert.Equal(t, 4, record.Quantity)
	assert.Equal(t, "350", record.TotalAmount.String())
	assert.Equal(t, "3,1", record.EachQuantity)
	assert.Equal(t, "Rice, Oil", record.ItemList)
	assert.Equal(t, "Cash", record.Buyer.PaymentMethod)
	assert.True(t, record.Buyer.HasReceipt())

	// Guardar no toca stock
	assert.Equal(t, 0, fx.inv.CallCount(batchsaletest.OpPatchStock))

	view := fx.session.View()
	assert.Empty(t, view.AddedItems)
	assert.True(t, view.SalesTotal.IsZero())
	assert.Empty(t, view.FormData.FullName)
	assert.False(t, fx.repo.Has(sessionKey))
}

func TestFinalSave_Preconditions(t *testing.T) {
	t.Run("payment method required", func(t *testing.T) {
		fx := newSavedFixture(t)
		_, err := fx.save.Execute(fx.ctx, fx.session)
		assert.ErrorIs(t, err, entity.ErrPaymentMethodRequired)
		assert.Empty(t, fx.inv.Calls(""))
	})

	t.Run("unknown payment method", func(t *testing.T) {
		fx := newSavedFixture(t)
		fx.setPayment(t, "Bitcoin")
		_, err := fx.save.Execute(fx.ctx, fx.session)
		assert.ErrorIs(t, err, entity.ErrUnknownPaymentMethod)
	})

	t.Run("payment method is case insensitive", func(t *testing.T) {
		fx := newSavedFixture(t)
		fx.setPayment(t, "tele birr")
		_, err := fx.save.Execute(fx.ctx, fx.session)
		assert.NoError(t, err)
	})

	t.Run("empty batch", func(t *testing.T) {
		fx := newFixture(t)
		fx.setPayment(t, "Cash")
		_, err := fx.save.Execute(fx.ctx, fx.session)
		assert.ErrorIs(t, err, entity.ErrEmptyBatch)
	})

	t.Run("pending commit outstanding", func(t *testing.T) {
		fx := newFixture(t, stockItem("A", "Rice", 100, 10, 2), stockItem("B", "Oil", 50, 5, 1))
		fx.fillBuyer(t)
		fx.setPayment(t, "Cash")
		fx.addLine(t, "A", "1")
		fx.setCandidate(t, "B", "1")
		fx.inv.Fail(batchsaletest.OpPatchStock, nil)
		_, err := fx.commit.Execute(fx.ctx, fx.session)
		require.Error(t, err)

		_, err = fx.save.Execute(fx.ctx, fx.session)
		assert.ErrorIs(t, err, entity.ErrPendingCommitOutstanding)
	})
}

func TestFinalSave_OnlyCreatedCountsAsSuccess(t *testing.T) {
	fx := newSavedFixture(t)
	fx.setPayment(t, "Cash")
	fx.inv.SetSaleStatus(http.StatusOK)

	_, err := fx.save.Execute(fx.ctx, fx.session)
	require.ErrorIs(t, err, entity.ErrRemoteSaveFailed)
	assert.Len(t, fx.session.View().AddedItems, 2)
	assert.True(t, fx.repo.Has(sessionKey))
	assert.Equal(t, StatusIdle, fx.session.Status())
}

func TestFinalSave_RetryReusesRequestID(t *testing.T) {
	fx := newSavedFixture(t)
	fx.setPayment(t, "Cash")
	fx.inv.Fail(batchsaletest.OpCreateSale, nil)

	_, err := fx.save.Execute(fx.ctx, fx.session)
	require.ErrorIs(t, err, entity.ErrRemoteSaveFailed)

	// El reintento puede venir de otro proceso
	restarted := fx.openSession(t)
	fx.inv.Recover(batchsaletest.OpCreateSale)
	resp, err := fx.save.Execute(fx.ctx, restarted)
	require.NoError(t, err)

	sales := fx.inv.Calls(batchsaletest.OpCreateSale)
	require.Len(t, sales, 2)
	assert.Equal(t, sales[0].Key, sales[1].Key)
	assert.Equal(t, resp.RequestID, sales[1].Key)
	assert.False(t, fx.repo.Has(sessionKey))
}

func TestFinalSave_ChangedBatchGetsNewRequestID(t *testing.T) {
	fx := newFixture(t,
		stockItem("A", "Rice", 100, 10, 2),
		stockItem("B", "Oil", 50, 5, 1),
		stockItem("C", "Salt", 20, 8, 1),
	)
	fx.fillBuyer(t)
	fx.addLine(t, "A", "3")
	fx.addLine(t, "B", "1")
	fx.setPayment(t, "Cash")

	fx.inv.ResetCalls()
	fx.inv.Fail(batchsaletest.OpCreateSale, nil)
	_, err := fx.save.Execute(fx.ctx, fx.session)
	require.ErrorIs(t, err, entity.ErrRemoteSaveFailed)
	firstKey := fx.inv.Calls(batchsaletest.OpCreateSale)[0].Key
	fx.inv.Recover(batchsaletest.OpCreateSale)

	fx.addLine(t, "C", "1")
	fx.setPayment(t, "Tele Birr")

	fx.inv.ResetCalls()
	resp, err := fx.save.Execute(fx.ctx, fx.session)
	require.NoError(t, err)

	sales := fx.inv.Calls(batchsaletest.OpCreateSale)
	require.Len(t, sales, 1)
	assert.Equal(t, "A, B, C", sales[0].Record.ProductID)
	assert.Equal(t, "370", sales[0].Record.TotalAmount.String())
	assert.Equal(t, resp.RequestID, sales[0].Key)
	assert.NotEqual(t, firstKey, sales[0].Key)
}

func TestFinalSave_EachPayloadChangeDropsRequestID(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, fx *fixture)
	}{
		{"buyer", func(t *testing.T, fx *fixture) {
			require.NoError(t, fx.session.UpdateBuyer(fx.ctx, request.BuyerUpdateRequest{TransactionID: strPtr("TX-9")}))
		}},
		{"attach receipt", func(t *testing.T, fx *fixture) {
			require.NoError(t, fx.session.AttachReceipt(fx.ctx, "r.png", "image/png", []byte("png")))
		}},
		{"remove receipt", func(t *testing.T, fx *fixture) {
			require.NoError(t, fx.session.RemoveReceipt(fx.ctx))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newSavedFixture(t)
			fx.setPayment(t, "Cash")
			fx.inv.Fail(batchsaletest.OpCreateSale, nil)

			_, err := fx.save.Execute(fx.ctx, fx.session)
			require.ErrorIs(t, err, entity.ErrRemoteSaveFailed)
			first := fx.session.Sale().SaveRequestID
			require.NotEmpty(t, first)

			tt.mutate(t, fx)
			assert.Empty(t, fx.session.Sale().SaveRequestID)

			fx.inv.Recover(batchsaletest.OpCreateSale)
			_, err = fx.save.Execute(fx.ctx, fx.session)
			require.NoError(t, err)

			sales := fx.inv.Calls(batchsaletest.OpCreateSale)
			require.Len(t, sales, 2)
			assert.NotEqual(t, sales[0].Key, sales[1].Key)
		})
	}
}
