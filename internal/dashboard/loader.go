// Package dashboard loads the desk's overview: headline stats, recent orders
// and the activity feed.
package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/imrishuroy/go-tailor-orderflow/internal/apperr"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
)

const (
	SectionStats      = "stats"
	SectionOrders     = "orders"
	SectionActivities = "activities"
)

// Source is the read side of the backend client.
type Source interface {
	DashboardStats(ctx context.Context) (*Stats, error)
	ListOrders(ctx context.Context, limit int) ([]orders.Order, error)
	RecentActivities(ctx context.Context, limit int) ([]Activity, error)
}

// Result is the outcome of one fetch. A failed fetch leaves Data at its zero
// value so the section renders empty.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

func settle[T any](data T, err error) Result[T] {
	if err != nil {
		var zero T
		return Result[T]{Data: zero, Error: apperr.Message(err, "Failed to load"), Err: err}
	}
	return Result[T]{Success: true, Data: data}
}

// Snapshot is one dashboard load.
type Snapshot struct {
	Stats      Result[*Stats]         `json:"stats"`
	Orders     Result[[]orders.Order] `json:"orders"`
	Activities Result[[]Activity]     `json:"activities"`
}

type Loader struct {
	src         Source
	recentLimit int
}

func NewLoader(src Source, recentLimit int) *Loader {
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &Loader{src: src, recentLimit: recentLimit}
}

// Load issues the three fetches together and waits for all of them. One
// failing fetch never hides the others; the returned error is a
// *apperr.PartialDataError naming the failed sections, or nil.
func (l *Loader) Load(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		wg   sync.WaitGroup
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		stats, err := l.src.DashboardStats(ctx)
		snap.Stats = settle(stats, err)
	}()
	go func() {
		defer wg.Done()
		list, err := l.src.ListOrders(ctx, l.recentLimit)
		snap.Orders = settle(list, err)
	}()
	go func() {
		defer wg.Done()
		feed, err := l.src.RecentActivities(ctx, l.recentLimit)
		snap.Activities = settle(feed, err)
	}()
	wg.Wait()

	failed := map[string]error{}
	for name, err := range map[string]error{
		SectionStats:      snap.Stats.Err,
		SectionOrders:     snap.Orders.Err,
		SectionActivities: snap.Activities.Err,
	} {
		if err != nil {
			slog.Warn("dashboard fetch failed", "section", name, "error", err)
			failed[name] = err
		}
	}
	if len(failed) > 0 {
		return snap, &apperr.PartialDataError{Failed: failed}
	}
	return snap, nil
}
