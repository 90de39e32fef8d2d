package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vietanh2810/inventory-api/internal/domain"
	"github.com/vietanh2810/inventory-api/internal/repository"
)

// fakeItemRepo keeps items and logs in memory. WithinTx runs one
// transaction at a time on a copy of the state and commits it only when
// fn succeeds.
type fakeItemRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID  uint
	items   map[uint]domain.InventoryItem
	logs    []domain.ChangeLog
	failLog error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items: map[uint]domain.InventoryItem{},
	}
}

func (r *fakeItemRepo) Create(_ context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	item.DateAdded = time.Now()
	item.LastUpdated = item.DateAdded
	r.items[item.ID] = item

	return item, nil
}

func (r *fakeItemRepo) FindOwned(_ context.Context, ownerID, id uint) (domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.OwnerID != ownerID {
		return domain.InventoryItem{}, repository.ErrItemNotFound
	}

	return item, nil
}

func (r *fakeItemRepo) List(_ context.Context, ownerID uint, _ domain.ItemFilter) ([]domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.InventoryItem
	for _, it := range r.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *fakeItemRepo) ListQuantities(ctx context.Context, ownerID uint) ([]domain.ItemQuantity, error) {
	items, _ := r.List(ctx, ownerID, domain.ItemFilter{})

	out := make([]domain.ItemQuantity, 0, len(items))
	for _, it := range items {
		out = append(out, domain.ItemQuantity{ID: it.ID, Name: it.Name, Quantity: it.Quantity})
	}

	return out, nil
}

func (r *fakeItemRepo) ListChangeLogs(ctx context.Context, ownerID, itemID uint) ([]domain.ChangeLog, error) {
	if _, err := r.FindOwned(ctx, ownerID, itemID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.ChangeLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].ItemID == itemID {
			out = append(out, r.logs[i])
		}
	}

	return out, nil
}

func (r *fakeItemRepo) Delete(_ context.Context, ownerID, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.OwnerID != ownerID {
		return repository.ErrItemNotFound
	}
	delete(r.items, id)

	kept := r.logs[:0]
	for _, l := range r.logs {
		if l.ItemID != id {
			kept = append(kept, l)
		}
	}
	r.logs = kept

	return nil
}

func (r *fakeItemRepo) WithinTx(_ context.Context, fn func(uow repository.ItemUnitOfWork) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	uow := &fakeUnitOfWork{repo: r, items: map[uint]domain.InventoryItem{}, failLog: r.failLog}
	for id, it := range r.items {
		uow.items[id] = it
	}
	r.mu.Unlock()

	if err := fn(uow); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = uow.items
	for _, l := range uow.logs {
		l.ID = uint(len(r.logs) + 1)
		r.logs = append(r.logs, l)
	}

	return nil
}

func (r *fakeItemRepo) changeLogs() []domain.ChangeLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]domain.ChangeLog(nil), r.logs...)
}

type fakeUnitOfWork struct {
	repo    *fakeItemRepo
	items   map[uint]domain.InventoryItem
	logs    []domain.ChangeLog
	failLog error
}

func (u *fakeUnitOfWork) FindOwnedForUpdate(_ context.Context, ownerID, id uint) (domain.InventoryItem, error) {
	item, ok := u.items[id]
	if !ok || item.OwnerID != ownerID {
		return domain.InventoryItem{}, repository.ErrItemNotFound
	}

	return item, nil
}

func (u *fakeUnitOfWork) Update(_ context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	current, ok := u.items[item.ID]
	if !ok || current.OwnerID != item.OwnerID {
		return domain.InventoryItem{}, repository.ErrItemNotFound
	}
	item.DateAdded = current.DateAdded
	item.LastUpdated = time.Now()
	u.items[item.ID] = item

	return item, nil
}

func (u *fakeUnitOfWork) RecordChange(_ context.Context, entry domain.ChangeLog) (domain.ChangeLog, error) {
	if u.failLog != nil {
		return domain.ChangeLog{}, u.failLog
	}
	if entry.QuantityChange == 0 {
		return domain.ChangeLog{}, errors.New("check constraint violated")
	}
	entry.Timestamp = time.Now()
	u.logs = append(u.logs, entry)

	return entry, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: map[uint]domain.User{},
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return domain.User{}, repository.ErrUserUsernameExists
		}
		if u.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.DateJoined = time.Now()
	r.users[user.ID] = user

	return user, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return u, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}

	return domain.User{}, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}
	r.users[user.ID] = user

	return user, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)

	return nil
}
