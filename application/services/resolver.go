package services

import (
	"context"
	"errors"
	"time"

	"dailytens/application/ports"
	"dailytens/domain/events"
	"dailytens/domain/game"
	"dailytens/pkg/common"
	pkgerrors "dailytens/pkg/errors"
	"dailytens/pkg/observability"
	"go.uber.org/zap"
)

// Source tells how a resolution obtained its record
type Source string

const (
	SourceStore     Source = "store"
	SourceExtracted Source = "extracted"
	SourceFallback  Source = "fallback"
)

// Resolution outcomes as counted by the metrics collector
const (
	outcomeInvalid     = "invalid"
	outcomeNotFound    = "not_found"
	outcomeUnavailable = "unavailable"
)

const defaultPersistTimeout = 5 * time.Second

// Resolution is a resolved game record
type Resolution struct {
	Record        *game.Record
	RequestedDate string
	Source        Source
}

// ResolvedDate is the date of the returned record. It differs from
// RequestedDate only for fallback resolutions.
func (r *Resolution) ResolvedDate() string {
	return r.Record.Date
}

// ResolverConfig holds the resolver's tunables
type ResolverConfig struct {
	// Location defines the calendar "today" is computed in. Nil means UTC.
	Location *time.Location
	// PersistTimeout bounds the write after a successful extraction. The write
	// is detached from the request context so a client disconnect does not
	// throw away a good extraction.
	PersistTimeout time.Duration
}

// DailyResolver turns a requested date into a game record: store lookup,
// extraction for today, create-once persistence, then a single-hop fallback
// to the nearest earlier stored date.
type DailyResolver struct {
	repo      ports.GameRepository
	extractor ports.Extractor
	fallback  *FallbackScanner
	publisher ports.EventPublisher
	clock     common.Clock
	config    ResolverConfig
	metrics   *observability.Collector
	tracer    *observability.Tracer
	logger    *zap.Logger
}

// NewDailyResolver creates a new resolver. publisher, metrics and tracer may be nil.
func NewDailyResolver(
	repo ports.GameRepository,
	extractor ports.Extractor,
	publisher ports.EventPublisher,
	clock common.Clock,
	config ResolverConfig,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *DailyResolver {
	if config.PersistTimeout <= 0 {
		config.PersistTimeout = defaultPersistTimeout
	}
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &DailyResolver{
		repo:      repo,
		extractor: extractor,
		fallback:  NewFallbackScanner(repo, logger),
		publisher: publisher,
		clock:     clock,
		config:    config,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
	}
}

// Today returns the current game date
func (r *DailyResolver) Today() string {
	return common.Today(r.clock, r.config.Location)
}

// Resolve returns the record for date. Malformed dates are rejected before
// any store access. A miss with nothing to fall back to is a not-found error,
// or an unavailable error when a store read failed along the way.
func (r *DailyResolver) Resolve(ctx context.Context, date string) (*Resolution, error) {
	if err := game.ValidateDate(date); err != nil {
		r.metrics.RecordResolution(outcomeInvalid)
		return nil, err
	}

	r.tracer.Annotate(ctx, "date", date)

	storeFailed := false

	rec, found, err := r.lookup(ctx, date)
	if err != nil {
		storeFailed = true
	} else if found {
		return r.resolved(date, rec, SourceStore), nil
	}

	if date == r.Today() {
		if rec, ok := r.extractAndPersist(ctx, date); ok {
			return r.resolved(date, rec, SourceExtracted), nil
		}
	}

	fallbackDate, ok, err := r.fallback.FindMostRecentGame(ctx, date)
	if err != nil {
		r.logger.Warn("Fallback scan failed",
			zap.String("date", date),
			zap.Error(err),
		)
		storeFailed = true
	} else if ok {
		// One hop only: the fallback date never triggers extraction or another scan.
		rec, found, err := r.lookup(ctx, fallbackDate)
		if err != nil {
			storeFailed = true
		} else if found {
			return r.resolved(date, rec, SourceFallback), nil
		}
	}

	if storeFailed {
		r.metrics.RecordResolution(outcomeUnavailable)
		r.logger.Warn("Resolution failed after store errors", zap.String("date", date))
		return nil, pkgerrors.StoreUnavailable(date, nil)
	}

	r.metrics.RecordResolution(outcomeNotFound)
	r.logger.Info("No game available", zap.String("date", date))
	return nil, pkgerrors.GameNotFound(date)
}

// lookup reads a date from the store. Read failures are logged and reported
// so the caller can degrade them to absence.
func (r *DailyResolver) lookup(ctx context.Context, date string) (*game.Record, bool, error) {
	rec, found, err := r.repo.Get(ctx, date)
	if err != nil {
		r.logger.Warn("Store read failed, treating as absent",
			zap.String("date", date),
			zap.Error(err),
		)
		return nil, false, err
	}
	return rec, found, nil
}

// extractAndPersist runs the extractor and stores the result at most once.
// It reports ok whenever a complete record is in hand, even if the write failed.
func (r *DailyResolver) extractAndPersist(ctx context.Context, date string) (*game.Record, bool) {
	var (
		candidate *game.Candidate
		ok        bool
	)

	start := time.Now()
	_ = r.tracer.Trace(ctx, "extract", func(ctx context.Context) error {
		candidate, ok = r.extractor.Extract(ctx)
		return nil
	})
	ok = ok && candidate != nil && candidate.Complete()
	r.metrics.RecordExtraction(ok, time.Since(start))

	if !ok {
		r.logger.Warn("Extraction produced no game, falling back",
			zap.String("date", date),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, false
	}

	rec := candidate.ForDate(date)

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.PersistTimeout)
	defer cancel()

	err := r.repo.CreateIfAbsent(persistCtx, rec)
	switch {
	case err == nil:
		r.logger.Info("Extracted game persisted",
			zap.String("date", date),
			zap.String("title", rec.Title),
		)
		r.publishCaptured(persistCtx, rec)
		return rec, true

	case errors.Is(err, ports.ErrGameExists):
		// Another writer won the race; its record is authoritative.
		stored, found, rerr := r.repo.Get(persistCtx, date)
		if rerr == nil && found {
			r.logger.Debug("Concurrent writer won, using stored game", zap.String("date", date))
			return stored, true
		}
		r.logger.Warn("Read-repair after lost write failed, returning extracted game",
			zap.String("date", date),
			zap.Error(rerr),
		)
		return rec, true

	default:
		r.logger.Error("Failed to persist extracted game",
			zap.String("date", date),
			zap.Error(err),
		)
		return rec, true
	}
}

func (r *DailyResolver) publishCaptured(ctx context.Context, rec *game.Record) {
	if r.publisher == nil {
		return
	}
	event := events.NewGameCaptured(rec.Date, rec.Title, len(rec.CorrectAnswers), events.OriginExtractor, r.clock.Now().UTC())
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("Failed to publish game captured event",
			zap.String("date", rec.Date),
			zap.Error(err),
		)
	}
}

func (r *DailyResolver) resolved(requested string, rec *game.Record, source Source) *Resolution {
	r.metrics.RecordResolution(string(source))
	r.logger.Info("Game resolved",
		zap.String("requestedDate", requested),
		zap.String("resolvedDate", rec.Date),
		zap.String("source", string(source)),
	)
	return &Resolution{
		Record:        rec,
		RequestedDate: requested,
		Source:        source,
	}
}
