package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vietanh2810/inventory-api/internal/domain"
	"github.com/vietanh2810/inventory-api/internal/repository/dao"
)

type fixture struct {
	users *UserRepository
	items *ItemRepository
}

func newFixture(t *testing.T) (fixture, *gorm.DB) {
	db := freshDB(t)

	return fixture{
		users: NewUserRepository(dao.NewUserDAO(db)),
		items: NewItemRepository(dao.NewItemDAO(db, 2*time.Second), dao.NewChangeLogDAO(db)),
	}, db
}

func (f fixture) user(t *testing.T, name string) domain.User {
	t.Helper()

	u, err := f.users.Create(context.Background(), domain.User{Username: name, Email: name + "@example.com", Password: "hash"})
	require.NoError(t, err)

	return u
}

func (f fixture) item(t *testing.T, owner domain.User, qty int) domain.InventoryItem {
	t.Helper()

	it, err := f.items.Create(context.Background(), domain.InventoryItem{
		OwnerID:  owner.ID,
		Name:     "Widget",
		Quantity: qty,
		Price:    decimal.RequireFromString("5.00"),
		Category: "tools",
	})
	require.NoError(t, err)

	return it
}

// adjust applies delta inside one locked transaction and records it.
func adjust(ctx context.Context, r *ItemRepository, owner domain.User, id uint, delta int) error {
	return r.WithinTx(ctx, func(uow ItemUnitOfWork) error {
		it, err := uow.FindOwnedForUpdate(ctx, owner.ID, id)
		if err != nil {
			return err
		}
		it.Quantity += delta
		if _, err = uow.Update(ctx, it); err != nil {
			return err
		}
		entry, err := domain.NewChangeLog(id, owner.ID, delta)
		if err != nil {
			return err
		}
		_, err = uow.RecordChange(ctx, entry)
		return err
	})
}

func TestItemRepository_CreateDoesNotLog(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "alice")
	it := f.item(t, owner, 10)
	assert.Equal(t, "5.00", it.Price.StringFixed(2))
	assert.False(t, it.DateAdded.IsZero())

	logs, err := f.items.ListChangeLogs(ctx, owner.ID, it.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestItemRepository_ChangeLogsAreOwnerScoped(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	it := f.item(t, alice, 10)
	require.NoError(t, adjust(ctx, f.items, alice, it.ID, 4))

	_, err := f.items.ListChangeLogs(ctx, bob.ID, it.ID)
	require.ErrorIs(t, err, ErrItemNotFound)

	logs, err := f.items.ListChangeLogs(ctx, alice.ID, it.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 4, logs[0].QuantityChange)
	assert.Equal(t, "alice", logs[0].Username)
	assert.Equal(t, it.ID, logs[0].ItemID)
}

func TestItemRepository_WithinTxRollsBack(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "alice")
	it := f.item(t, owner, 10)
	boom := errors.New("boom")

	err := f.items.WithinTx(ctx, func(uow ItemUnitOfWork) error {
		locked, err := uow.FindOwnedForUpdate(ctx, owner.ID, it.ID)
		if err != nil {
			return err
		}
		locked.Quantity = 99
		if _, err = uow.Update(ctx, locked); err != nil {
			return err
		}
		if _, err = uow.RecordChange(ctx, domain.ChangeLog{ItemID: it.ID, UserID: owner.ID, QuantityChange: 89}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	reloaded, err := f.items.FindOwned(ctx, owner.ID, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, reloaded.Quantity)

	logs, err := f.items.ListChangeLogs(ctx, owner.ID, it.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestItemRepository_ConcurrentAdjustmentsSerialise(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "alice")
	it := f.item(t, owner, 10)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, delta := range []int{3, -1} {
		wg.Add(1)
		go func(i, delta int) {
			defer wg.Done()
			errs[i] = adjust(ctx, f.items, owner, it.ID, delta)
		}(i, delta)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	reloaded, err := f.items.FindOwned(ctx, owner.ID, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, reloaded.Quantity)

	logs, err := f.items.ListChangeLogs(ctx, owner.ID, it.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	sum := 0
	for _, l := range logs {
		sum += l.QuantityChange
	}
	assert.Equal(t, 2, sum)
}

func TestItemRepository_ListAppliesDefaultOrdering(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "alice")
	for _, name := range []string{"b", "c", "a"} {
		_, err := f.items.Create(ctx, domain.InventoryItem{OwnerID: owner.ID, Name: name, Quantity: 1, Price: decimal.Zero, Category: "x"})
		require.NoError(t, err)
	}

	items, err := f.items.List(ctx, owner.ID, domain.ItemFilter{Search: "  "})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].Name)
	assert.Equal(t, "c", items[2].Name)
}
