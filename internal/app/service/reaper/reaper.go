package reaper

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/internal/app/service/ledger"
	"github.com/fatflowers/notemarket/internal/app/service/settlement"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/pkg/config"
	"github.com/fatflowers/notemarket/pkg/logctx"
	"github.com/fatflowers/notemarket/pkg/types"
)

type Store interface {
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*models.Purchase, error)
	CancelIfPending(ctx context.Context, id uint64, cutoff time.Time) (bool, error)
}

type Syncer interface {
	SyncPurchase(ctx context.Context, purchaseID uint64) (*settlement.SyncResult, error)
}

type Stats struct {
	Scanned   int
	Observed  int
	Cancelled int
	Failed    int
}

// Reaper is the polling reconciliation signal: it asks the provider about
// purchases stuck in pending and cancels the ones that stay unpaid past
// the TTL.
type Reaper struct {
	cfg   config.ReaperConfig
	store Store
	sync  Syncer
	log   *zap.SugaredLogger
	now   func() time.Time

	wg sync.WaitGroup
}

func NewReaper(cfg config.ReaperConfig, store Store, syncer Syncer, log *zap.SugaredLogger) *Reaper {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reaper{cfg: cfg, store: store, sync: syncer, log: log, now: time.Now}
}

func New(cfg *config.Config, store *ledger.Service, mgr settlement.Manager, log *zap.SugaredLogger) *Reaper {
	return NewReaper(cfg.Reaper, store, mgr, log)
}

// RunOnce performs a single sweep.
func (r *Reaper) RunOnce(ctx context.Context) (Stats, error) {
	var st Stats
	now := r.now()
	rows, err := r.store.ListStalePending(ctx, now.Add(-r.cfg.PollAfter), r.cfg.BatchSize)
	if err != nil {
		return st, err
	}
	expiry := now.Add(-r.cfg.PendingTTL)
	for _, p := range rows {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		st.Scanned++
		res, err := r.sync.SyncPurchase(ctx, p.ID)
		if err != nil {
			st.Failed++
			r.log.Warnw("reaper_sync_failed", "purchase_id", p.ID, "err", err)
			continue
		}
		if res.Observed {
			st.Observed++
		}
		if res.Purchase == nil || res.Purchase.Status != types.PurchaseStatusPending || !p.CreatedAt.Before(expiry) {
			continue
		}
		ok, err := r.store.CancelIfPending(ctx, p.ID, expiry)
		if err != nil {
			st.Failed++
			r.log.Warnw("reaper_cancel_failed", "purchase_id", p.ID, "err", err)
			continue
		}
		if ok {
			st.Cancelled++
			r.log.Infow("purchase_cancelled_stale", "purchase_id", p.ID, "created_at", p.CreatedAt)
		}
	}
	return st, nil
}

func (r *Reaper) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st, err := r.RunOnce(ctx)
			if err != nil {
				r.log.Errorw("reaper_sweep_failed", "err", err)
				continue
			}
			if st.Scanned > 0 {
				r.log.Infow("reaper_sweep", "scanned", st.Scanned, "observed", st.Observed, "cancelled", st.Cancelled, "failed", st.Failed)
			}
		}
	}
}

func register(lc fx.Lifecycle, cfg *config.Config, r *Reaper, log *zap.SugaredLogger) {
	if !cfg.Reaper.Enabled {
		log.Infow("pending reaper disabled")
		return
	}
	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(logctx.WithLogger(context.Background(), log.With("component", "reaper")))
			r.wg.Add(1)
			go r.loop(ctx)
			log.Infow("pending reaper started", "interval", r.cfg.Interval, "poll_after", r.cfg.PollAfter, "ttl", r.cfg.PendingTTL)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			done := make(chan struct{})
			go func() { r.wg.Wait(); close(done) }()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(register),
)
