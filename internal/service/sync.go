package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"etasync/internal/config"
	"etasync/internal/eta"
	"etasync/internal/metrics"
	"etasync/internal/model"
	"etasync/internal/repository"
	"etasync/internal/storage"
)

var log = logrus.StandardLogger().WithField("component", "sync")

var (
	ErrSyncInProgress = errors.New("a sync run for this filter is already in progress")
	ErrInvalidRange   = errors.New("start date must be before end date")
)

// Run outcomes reported to the SyncRecorder.
const (
	RunSuccess    = "success"
	RunAuthFailed = "auth_failed"
	RunCancelled  = "cancelled"
)

// Authority is the part of the tax authority client the orchestrator drives.
type Authority interface {
	eta.Searcher
	Token(ctx context.Context) (string, error)
	FetchDocument(ctx context.Context, token, uuid string) (*eta.Document, error)
}

// SyncRecorder receives run and document outcomes. *metrics.SyncMetrics implements it.
type SyncRecorder interface {
	RunFinished(outcome string, d time.Duration)
	Document(outcome string, n int)
	SearchPageFailed()
}

var _ SyncRecorder = (*metrics.SyncMetrics)(nil)

type nopRecorder struct{}

func (nopRecorder) RunFinished(string, time.Duration) {}
func (nopRecorder) Document(string, int)              {}
func (nopRecorder) SearchPageFailed()                 {}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the real Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SyncConfig holds the paging and pacing parameters of a run.
type SyncConfig struct {
	PageSize    int
	WindowDays  int
	FetchDelay  time.Duration
	WindowDelay time.Duration
	// LookbackDays is used when a request has no start date.
	LookbackDays int
}

// DefaultSyncConfig mirrors the authority's documented limits.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		PageSize:     50,
		WindowDays:   DefaultWindowDays,
		FetchDelay:   100 * time.Millisecond,
		WindowDelay:  time.Second,
		LookbackDays: 30,
	}
}

// SyncConfigFrom derives the run parameters from application configuration.
func SyncConfigFrom(c config.ETAConfig) SyncConfig {
	sc := DefaultSyncConfig()
	if c.PageSize > 0 {
		sc.PageSize = c.PageSize
	}
	if c.WindowDays > 0 {
		sc.WindowDays = c.WindowDays
	}
	if c.FetchDelayMs >= 0 {
		sc.FetchDelay = c.FetchDelay()
	}
	if c.WindowDelayMs >= 0 {
		sc.WindowDelay = c.WindowDelay()
	}
	return sc
}

// SyncRequest are the entry point parameters of a run. A nil StartDate means
// LookbackDays before now; a nil EndDate means now.
type SyncRequest struct {
	StartDate  *time.Time
	EndDate    *time.Time
	ReceiverID string
}

// InvoiceSyncService synchronizes authority documents into the local store.
type InvoiceSyncService interface {
	// Sync runs one full pass. Only authentication failure, an invalid range
	// or a concurrent run for the same filter return an error without stats;
	// cancellation, even during the token exchange, returns the partial stats
	// alongside ctx.Err().
	Sync(ctx context.Context, req SyncRequest) (*model.SyncStats, error)
}

type invoiceSyncService struct {
	authority Authority
	repo      repository.InvoiceRepository
	archive   storage.Storage
	cfg       SyncConfig
	sleep     Sleeper
	now       func() time.Time
	recorder  SyncRecorder
	locks     *runLocks
}

// SyncOption customizes the sync service.
type SyncOption func(*invoiceSyncService)

// WithArchive stores every saved raw payload in s.
func WithArchive(s storage.Storage) SyncOption {
	return func(svc *invoiceSyncService) { svc.archive = s }
}

// WithSleeper replaces the pacing sleeper.
func WithSleeper(s Sleeper) SyncOption {
	return func(svc *invoiceSyncService) { svc.sleep = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SyncOption {
	return func(svc *invoiceSyncService) { svc.now = now }
}

// WithRecorder reports outcomes to r.
func WithRecorder(r SyncRecorder) SyncOption {
	return func(svc *invoiceSyncService) { svc.recorder = r }
}

// NewInvoiceSyncService constructs the sync orchestrator.
func NewInvoiceSyncService(authority Authority, repo repository.InvoiceRepository, cfg SyncConfig, opts ...SyncOption) InvoiceSyncService {
	s := &invoiceSyncService{
		authority: authority,
		repo:      repo,
		cfg:       cfg,
		sleep:     SleepContext,
		now:       time.Now,
		recorder:  nopRecorder{},
		locks:     newRunLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *invoiceSyncService) resolveRange(req SyncRequest) (time.Time, time.Time, error) {
	now := s.now()
	end := now
	if req.EndDate != nil {
		end = *req.EndDate
	}
	start := now.AddDate(0, 0, -s.cfg.LookbackDays)
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s >= %s", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return start, end, nil
}

func (s *invoiceSyncService) Sync(ctx context.Context, req SyncRequest) (*model.SyncStats, error) {
	start, end, err := s.resolveRange(req)
	if err != nil {
		return nil, err
	}

	release, ok := s.locks.tryAcquire(req.ReceiverID)
	if !ok {
		return nil, ErrSyncInProgress
	}
	defer release()

	stats := &model.SyncStats{
		RunID:       uuid.NewString(),
		StartedAt:   s.now(),
		FailedUUIDs: []string{},
	}
	entry := log.WithFields(logrus.Fields{
		"run_id":      stats.RunID,
		"receiver_id": req.ReceiverID,
		"from":        start.UTC().Format(eta.TimestampLayout),
		"to":          end.UTC().Format(eta.TimestampLayout),
	})
	entry.Info("starting eta invoice sync")

	token, err := s.authority.Token(ctx)
	if err != nil && ctx.Err() != nil {
		return s.cancelled(entry, stats, ctx.Err())
	}
	if err != nil {
		s.finish(stats, RunAuthFailed)
		entry.WithError(err).Error("eta authentication failed, sync aborted")
		return nil, err
	}

	for i, w := range SplitWindows(start, end, s.cfg.WindowDays) {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.WindowDelay); err != nil {
				return s.cancelled(entry, stats, err)
			}
		}
		if err := s.syncWindow(ctx, entry, token, w, req.ReceiverID, stats); err != nil {
			return s.cancelled(entry, stats, err)
		}
		stats.Windows++
	}

	s.finish(stats, RunSuccess)
	entry.WithFields(logrus.Fields{
		"total_fetched":    stats.TotalFetched,
		"total_valid":      stats.TotalValid,
		"total_skipped":    stats.TotalSkipped,
		"fetch_failures":   stats.FetchFailures,
		"persist_failures": stats.PersistFailures,
		"windows":          stats.Windows,
		"pages":            stats.Pages,
	}).Info("eta invoice sync complete")
	return stats, nil
}

func (s *invoiceSyncService) finish(stats *model.SyncStats, outcome string) {
	stats.FinishedAt = s.now()
	s.recorder.RunFinished(outcome, stats.FinishedAt.Sub(stats.StartedAt))
}

func (s *invoiceSyncService) cancelled(entry *logrus.Entry, stats *model.SyncStats, err error) (*model.SyncStats, error) {
	s.finish(stats, RunCancelled)
	entry.WithError(err).Warn("eta invoice sync cancelled, returning partial statistics")
	return stats, err
}

// syncWindow pages through one window. It only returns an error when ctx is done.
func (s *invoiceSyncService) syncWindow(ctx context.Context, entry *logrus.Entry, token string, w Window, receiverID string, stats *model.SyncStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wentry := entry.WithFields(logrus.Fields{
		"window_from": w.From.Format(eta.TimestampLayout),
		"window_to":   w.To.Format(eta.TimestampLayout),
	})

	p := eta.NewPaginator(s.authority, token, eta.SearchQuery{
		From:       w.From,
		To:         w.To,
		PageSize:   s.cfg.PageSize,
		ReceiverID: receiverID,
	})
	for p.Next(ctx) {
		page := p.Page()
		stats.Pages++
		stats.TotalFetched += len(page.Items)
		stats.TotalSkipped += len(page.Skipped)
		s.recorder.Document(metrics.OutcomeSkipped, len(page.Skipped))

		wentry.WithFields(logrus.Fields{
			"page":    page.Number,
			"found":   len(page.Items),
			"valid":   len(page.Usable),
			"skipped": len(page.Skipped),
		}).Info("search page received")

		for _, item := range page.Usable {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.syncDocument(ctx, wentry, token, item, stats); err != nil {
				return err
			}
			if err := s.sleep(ctx, s.cfg.FetchDelay); err != nil {
				return err
			}
		}
	}

	if err := p.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.recorder.SearchPageFailed()
		wentry.WithError(err).WithField("requests", p.Requests()).Warn("search page failed, window truncated")
	}
	return nil
}

// syncDocument fetches, normalizes, archives and upserts one usable item.
// Failures are counted and logged; only a done ctx is returned.
func (s *invoiceSyncService) syncDocument(ctx context.Context, entry *logrus.Entry, token string, item eta.SearchItem, stats *model.SyncStats) error {
	dentry := entry.WithFields(logrus.Fields{"uuid": item.UUID, "internal_id": item.InternalID})

	doc, err := s.authority.FetchDocument(ctx, token, item.UUID)
	if err == nil && doc == nil {
		err = fmt.Errorf("%w: %s: empty response", eta.ErrDocumentUnavailable, item.UUID)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		stats.FetchFailures++
		stats.FailedUUIDs = append(stats.FailedUUIDs, item.UUID)
		s.recorder.Document(metrics.OutcomeFetchFailed, 1)
		if eta.IsUnavailable(err) {
			dentry.WithError(err).Warn("document fetch failed")
		} else {
			dentry.WithError(err).Error("document fetch failed")
		}
		return nil
	}
	if doc.Body.Err != nil {
		dentry.WithError(doc.Body.Err).Warn("nested document unreadable, using top-level fields")
	}

	inv := InvoiceFromDocument(doc, s.now())
	if inv.UUID == "" {
		inv.UUID = item.UUID
	}
	if inv.InternalID == "" {
		inv.InternalID = item.InternalID
	}
	if inv.Status == "" {
		inv.Status = item.Status
	}

	if s.archive != nil {
		key := ArchiveKey(inv)
		if _, err := storage.PutJSON(ctx, s.archive, key, inv.FullDocument, map[string]string{
			storage.MetaUUID:       inv.UUID,
			storage.MetaInternalID: inv.InternalID,
		}); err != nil {
			dentry.WithError(err).Warn("raw document archive failed")
		} else {
			inv.RawObjectKey = key
		}
	}

	if _, err := s.repo.Upsert(ctx, inv); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		stats.PersistFailures++
		stats.FailedUUIDs = append(stats.FailedUUIDs, item.UUID)
		s.recorder.Document(metrics.OutcomePersistFailed, 1)
		dentry.WithError(err).Error("invoice upsert failed")
		return nil
	}

	stats.TotalValid++
	s.recorder.Document(metrics.OutcomeSaved, 1)
	dentry.WithField("document_type", inv.DocumentType).Debug("invoice saved")
	return nil
}
