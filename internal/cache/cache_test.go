package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/mfrancani/patrimonio/internal/model"
)

func newTestCache(t *testing.T) (*ProductCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := New(context.Background(), "redis://"+mr.Addr(), logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestProductCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	p := &model.Product{ID: 4, EnterpriseID: 7, Name: "Crate", Cost: 12.5, Stock: 3}
	c.Set(ctx, p)

	got, err := c.Get(ctx, 7, 4)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Crate" || got.Cost != 12.5 || got.Stock != 3 {
		t.Errorf("Get() = %+v", got)
	}
}

func TestProductCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), 7, 99)
	if !errors.Is(err, ErrMiss) {
		t.Fatalf("Get() error = %v, want ErrMiss", err)
	}
}

func TestProductCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	p := &model.Product{ID: 4, EnterpriseID: 7, Name: "Crate"}
	c.Set(ctx, p)
	c.Invalidate(ctx, 7, 4)

	if _, err := c.Get(ctx, 7, 4); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get() after invalidate error = %v, want ErrMiss", err)
	}
}

func TestProductCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)

	mr.Set(productKey(7, 4), "not json")

	if _, err := c.Get(context.Background(), 7, 4); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get() on corrupt entry error = %v, want ErrMiss", err)
	}
}

func TestProductCache_EntryExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, &model.Product{ID: 4, EnterpriseID: 7, Name: "Crate"})
	mr.FastForward(defaultTTL * 2)

	if _, err := c.Get(ctx, 7, 4); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get() after expiry error = %v, want ErrMiss", err)
	}
}
