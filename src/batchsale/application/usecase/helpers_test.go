package usecase

import (
	"context"
	"fmt"
	"testing"

	"storepos/src/batchsale/application/request"
	"storepos/src/batchsale/batchsaletest"
	"storepos/src/batchsale/domain/entity"
	"storepos/src/batchsale/infrastructure/cache"
	"storepos/src/batchsale/infrastructure/persistence"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const sessionKey = "batchSaleData"

func stockItem(id, name string, price int64, stock, restock int) entity.StockItem {
	return entity.StockItem{
		ID:           id,
		Name:         name,
		Price:        decimal.NewFromInt(price),
		CurentStock:  stock,
		RestockLevel: restock,
	}
}

func strPtr(s string) *string { return &s }

type fixture struct {
	ctx     context.Context
	inv     *batchsaletest.FakeInventory
	repo    *persistence.MemorySessionRepository
	session *Session
	load    *LoadSnapshotUseCase
	commit  *CommitLineUseCase
	save    *FinalSaveUseCase
}

func newFixture(t *testing.T, items ...entity.StockItem) *fixture {
	t.Helper()

	ctx := context.Background()
	inv := batchsaletest.NewFakeInventory(items...)
	repo := persistence.NewMemorySessionRepository()

	catalog := cache.NewPaymentMethodCache(nil)
	catalog.LoadOptions([]string{"Cash", "Bank Transfer", "Tele Birr", "E Birr", "Other"})

	fx := &fixture{
		ctx:    ctx,
		inv:    inv,
		repo:   repo,
		load:   NewLoadSnapshotUseCase(inv, "store", RetryPolicy{Attempts: 1}, nil, nil),
		commit: NewCommitLineUseCase(inv, "High", nil, nil),
		save:   NewFinalSaveUseCase(inv, catalog, nil, nil),
	}
	fx.session = fx.openSession(t)
	require.NoError(t, fx.load.Execute(ctx, fx.session))
	return fx
}

// openSession abre otra sesión sobre el mismo repositorio (simula un reinicio)
func (fx *fixture) openSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(sessionKey, fx.repo, []string{entity.FieldFullName, entity.FieldContact}, nil, nil)
	require.NoError(t, s.Open(fx.ctx))
	return s
}

func (fx *fixture) fillBuyer(t *testing.T) {
	t.Helper()
	require.NoError(t, fx.session.UpdateBuyer(fx.ctx, request.BuyerUpdateRequest{
		FullName: strPtr("Abebe Kebede"),
		Contact:  strPtr("0911000000"),
	}))
}

func (fx *fixture) setCandidate(t *testing.T, stockID, quantity string) {
	t.Helper()
	require.NoError(t, fx.session.SelectItem(stockID))
	require.NoError(t, fx.session.SetQuantity(quantity))
}

func (fx *fixture) addLine(t *testing.T, stockID, quantity string) {
	t.Helper()
	fx.setCandidate(t, stockID, quantity)
	_, err := fx.commit.Execute(fx.ctx, fx.session)
	require.NoError(t, err)
}

// lineSummary representa las líneas como texto para comparar sin depender de la forma interna de decimal
func lineSummary(items []entity.BatchSaleItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprintf("%s|%s|%d|%s|%s",
			item.StockID, item.Name, item.Quantity, item.UnitPrice.String(), item.TotalAmount.String()))
	}
	return out
}
