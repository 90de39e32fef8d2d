package dao

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func insertItem(t *testing.T, d *ItemDAO, ownerID uint, name string, qty int, price, category string) Item {
	t.Helper()

	item, err := d.Insert(context.Background(), Item{
		OwnerID:  ownerID,
		Name:     name,
		Quantity: qty,
		Price:    decimal.RequireFromString(price),
		Category: category,
	})
	require.NoError(t, err)

	return item
}

func names(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestItemDAO_OwnerScoping(t *testing.T) {
	db := freshDB(t)
	users := NewUserDAO(db)
	d := NewItemDAO(db, 0)
	ctx := context.Background()

	alice := insertUser(t, users, "alice")
	bob := insertUser(t, users, "bob")
	aliceItem := insertItem(t, d, alice.ID, "Hammer", 3, "12.50", "tools")
	insertItem(t, d, bob.ID, "Saw", 4, "20.00", "tools")

	items, err := d.List(ctx, alice.ID, ItemQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hammer"}, names(items))

	_, err = d.FindOwned(ctx, bob.ID, aliceItem.ID)
	require.ErrorIs(t, err, ErrItemNotFound)

	require.ErrorIs(t, d.Delete(ctx, bob.ID, aliceItem.ID), ErrItemNotFound)

	aliceItem.OwnerID = bob.ID
	_, err = d.Update(ctx, aliceItem)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemDAO_ListFilters(t *testing.T) {
	db := freshDB(t)
	d := NewItemDAO(db, 0)
	ctx := context.Background()

	owner := insertUser(t, NewUserDAO(db), "alice")
	insertItem(t, d, owner.ID, "Bolt", 100, "0.10", "hardware")
	insertItem(t, d, owner.ID, "Drill", 5, "10.00", "tools")
	insertItem(t, d, owner.ID, "Sander", 4, "20.00", "tools")
	insertItem(t, d, owner.ID, "Router", 0, "20.01", "tools")
	insertItem(t, d, owner.ID, "Glue_100%", -2, "3.00", "supplies")

	tests := []struct {
		name  string
		query ItemQuery
		want  []string
	}{
		{"default ordering by name", ItemQuery{}, []string{"Bolt", "Drill", "Glue_100%", "Router", "Sander"}},
		{"category", ItemQuery{Category: ptr("tools")}, []string{"Drill", "Router", "Sander"}},
		{"exact price", ItemQuery{Price: ptr(decimal.RequireFromString("20"))}, []string{"Sander"}},
		{"inclusive price range", ItemQuery{
			MinPrice: ptr(decimal.RequireFromString("10")),
			MaxPrice: ptr(decimal.RequireFromString("20")),
		}, []string{"Drill", "Sander"}},
		{"min price only", ItemQuery{MinPrice: ptr(decimal.RequireFromString("20"))}, []string{"Router", "Sander"}},
		{"max price only", ItemQuery{MaxPrice: ptr(decimal.RequireFromString("3"))}, []string{"Bolt", "Glue_100%"}},
		{"low stock excludes threshold", ItemQuery{LowStock: ptr(5)}, []string{"Glue_100%", "Router", "Sander"}},
		{"search is case insensitive", ItemQuery{SearchTerms: []string{"dRi"}}, []string{"Drill"}},
		{"search escapes wildcards", ItemQuery{SearchTerms: []string{"_100%"}}, []string{"Glue_100%"}},
		{"every search term must match", ItemQuery{SearchTerms: []string{"o", "t"}}, []string{"Bolt", "Router"}},
		{"ordering desc", ItemQuery{OrderBy: []ItemOrder{{Column: "quantity", Desc: true}}}, []string{"Bolt", "Drill", "Sander", "Router", "Glue_100%"}},
		{"ordering by price then name", ItemQuery{OrderBy: []ItemOrder{{Column: "price"}, {Column: "name", Desc: true}}}, []string{"Bolt", "Glue_100%", "Drill", "Sander", "Router"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := d.List(ctx, owner.ID, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(items))
		})
	}
}

func TestItemDAO_SearchDescription(t *testing.T) {
	db := freshDB(t)
	d := NewItemDAO(db, 0)
	ctx := context.Background()

	owner := insertUser(t, NewUserDAO(db), "alice")
	item := insertItem(t, d, owner.ID, "Box", 1, "1.00", "misc")
	item.Description = ptr("Keeps screws sorted")
	_, err := d.Update(ctx, item)
	require.NoError(t, err)
	insertItem(t, d, owner.ID, "Crate", 1, "1.00", "misc")

	items, err := d.List(ctx, owner.ID, ItemQuery{SearchTerms: []string{"SCREW"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Box"}, names(items))
}

func TestItemDAO_UpdateRefreshesLastUpdated(t *testing.T) {
	db := freshDB(t)
	d := NewItemDAO(db, 0)
	ctx := context.Background()

	owner := insertUser(t, NewUserDAO(db), "alice")
	item := insertItem(t, d, owner.ID, "Widget", 10, "5.00", "tools")

	time.Sleep(10 * time.Millisecond)
	item.Quantity = 7
	item.DateAdded = time.Now().Add(time.Hour)
	updated, err := d.Update(ctx, item)
	require.NoError(t, err)

	assert.Equal(t, 7, updated.Quantity)
	assert.True(t, updated.LastUpdated.After(item.LastUpdated))
	assert.WithinDuration(t, item.LastUpdated, updated.DateAdded, time.Second)
	assert.Equal(t, "5.00", updated.Price.StringFixed(2))
}

func TestItemDAO_ListQuantities(t *testing.T) {
	db := freshDB(t)
	d := NewItemDAO(db, 0)
	ctx := context.Background()

	users := NewUserDAO(db)
	owner := insertUser(t, users, "alice")
	other := insertUser(t, users, "bob")
	a := insertItem(t, d, owner.ID, "Zeta", 1, "1.00", "x")
	b := insertItem(t, d, owner.ID, "Alpha", 2, "1.00", "x")
	insertItem(t, d, other.ID, "Beta", 3, "1.00", "x")

	rows, err := d.ListQuantities(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []ItemQuantity{
		{ID: b.ID, Name: "Alpha", Quantity: 2},
		{ID: a.ID, Name: "Zeta", Quantity: 1},
	}, rows)
}

func TestItemDAO_DeleteCascadesLogs(t *testing.T) {
	db := freshDB(t)
	d := NewItemDAO(db, 0)
	logs := NewChangeLogDAO(db)
	ctx := context.Background()

	owner := insertUser(t, NewUserDAO(db), "alice")
	item := insertItem(t, d, owner.ID, "Widget", 10, "5.00", "tools")
	for _, delta := range []int{3, -1, -4} {
		_, err := logs.Insert(ctx, ChangeLog{ItemID: item.ID, UserID: owner.ID, QuantityChange: delta})
		require.NoError(t, err)
	}

	require.NoError(t, d.Delete(ctx, owner.ID, item.ID))

	n, err := logs.CountByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestItemDAO_TransactionRollsBack(t *testing.T) {
	db := freshDB(t)
	d := NewItemDAO(db, time.Second)
	ctx := context.Background()

	owner := insertUser(t, NewUserDAO(db), "alice")
	item := insertItem(t, d, owner.ID, "Widget", 10, "5.00", "tools")

	err := d.Transaction(ctx, func(items *ItemDAO, logs *ChangeLogDAO) error {
		locked, err := items.FindOwnedForUpdate(ctx, owner.ID, item.ID)
		if err != nil {
			return err
		}
		locked.Quantity = 1
		if _, err = items.Update(ctx, locked); err != nil {
			return err
		}
		// rejected by the check constraint
		_, err = logs.Insert(ctx, ChangeLog{ItemID: item.ID, UserID: owner.ID, QuantityChange: 0})
		return err
	})
	require.Error(t, err)

	reloaded, err := d.FindOwned(ctx, owner.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, reloaded.Quantity)
}

func TestItemDAO_LockTimeoutIsConflict(t *testing.T) {
	db := freshDB(t)
	d := NewItemDAO(db, 100*time.Millisecond)
	ctx := context.Background()

	owner := insertUser(t, NewUserDAO(db), "alice")
	item := insertItem(t, d, owner.ID, "Widget", 10, "5.00", "tools")

	locked := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = d.Transaction(ctx, func(items *ItemDAO, _ *ChangeLogDAO) error {
			if _, err := items.FindOwnedForUpdate(ctx, owner.ID, item.ID); err != nil {
				close(locked)
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()

	<-locked
	err := d.Transaction(ctx, func(items *ItemDAO, _ *ChangeLogDAO) error {
		_, err := items.FindOwnedForUpdate(ctx, owner.ID, item.ID)
		return err
	})
	close(release)
	wg.Wait()

	require.ErrorIs(t, err, ErrConcurrentUpdate)
}
