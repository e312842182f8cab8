// Package splacement runs placements against the database: one transaction
// per call, one call at a time per container.
package splacement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	ordinaldb "github.com/onemodel/ordinal/pkg/db"
	"github.com/onemodel/ordinal/pkg/db/gen"
	"github.com/onemodel/ordinal/pkg/metrics"
	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/placement"
	"github.com/onemodel/ordinal/pkg/service/sorting"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

type containerFunc func(context.Context, *gen.Queries, mcontainer.Ref) (placement.OrderedContainer, error)

type Service struct {
	db      *sql.DB
	placer  *placement.Placer
	metrics *metrics.Metrics
	logger  *slog.Logger

	newContainer containerFunc

	mu    sync.Mutex
	locks map[mcontainer.Ref]*semaphore.Weighted
}

// New returns a Service over db. m may be nil.
func New(db *sql.DB, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:           db,
		placer:       placement.New(logger),
		metrics:      m,
		logger:       logger,
		newContainer: sorting.NewContainer,
		locks:        make(map[mcontainer.Ref]*semaphore.Weighted),
	}
}

// MoveRequest is a placement.MoveRequest aimed at one container.
type MoveRequest struct {
	Container mcontainer.Ref
	placement.MoveRequest
}

// InsertRequest adds Member to Container. With After set the new member is
// placed right after that member instead of at the end.
type InsertRequest struct {
	Container mcontainer.Ref
	Member    mcontainer.Member
	Label     string
	After     *mcontainer.Member
}

func (s *Service) lock(ref mcontainer.Ref) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[ref]
	if !ok {
		l = semaphore.NewWeighted(1)
		s.locks[ref] = l
	}
	return l
}

// inContainer runs fn inside a transaction while holding the container's
// lock. The transaction commits only if fn succeeds.
func (s *Service) inContainer(ctx context.Context, ref mcontainer.Ref, fn func(context.Context, placement.OrderedContainer, *gen.Queries) error) error {
	l := s.lock(ref)
	if err := l.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for %s: %w", ref, err)
	}
	defer l.Release(1)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &placement.StoreError{Op: "begin", Err: err}
	}
	defer ordinaldb.TxnRollback(tx)

	queries := gen.New(tx)
	c, err := s.newContainer(ctx, queries, ref)
	if err != nil {
		return err
	}
	if err := fn(ctx, c, queries); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &placement.StoreError{Op: "commit", Err: err}
	}
	return nil
}

// Move places a member and commits. On any error, ErrRenumberFailed
// included, nothing in the container changes.
func (s *Service) Move(ctx context.Context, req MoveRequest) (placement.Result, error) {
	start := time.Now()
	var res placement.Result
	err := s.inContainer(ctx, req.Container, func(ctx context.Context, c placement.OrderedContainer, _ *gen.Queries) error {
		var err error
		res, err = s.placer.PlaceEntry(ctx, c, req.MoveRequest)
		return err
	})

	kind := req.Container.Kind
	switch {
	case err != nil:
		s.metrics.ObservePlacement(kind, metrics.OutcomeFailed, time.Since(start))
		if errors.Is(err, placement.ErrRenumberFailed) {
			s.logger.Error("placement failed after renumber, rolled back",
				"container", req.Container.String(), "member", req.Moving.String(), "error", err)
		}
		return placement.Result{}, err
	case res.Moved:
		s.metrics.ObservePlacement(kind, metrics.OutcomeMoved, time.Since(start))
	default:
		s.metrics.ObservePlacement(kind, metrics.OutcomeNoop, time.Since(start))
	}
	if res.Renumbered {
		s.metrics.Renumbered(kind, metrics.ReasonPlacement)
	}
	return res, nil
}

// Insert adds a member and returns the key it ends up with.
func (s *Service) Insert(ctx context.Context, req InsertRequest) (sortkey.Key, error) {
	var key sortkey.Key
	err := s.inContainer(ctx, req.Container, func(ctx context.Context, c placement.OrderedContainer, q *gen.Queries) error {
		w := sorting.NewWriterFromQueries(q)
		var err error
		switch req.Container.Kind {
		case mcontainer.KindEntityAttributes:
			key, err = w.AddAttribute(ctx, req.Container.ID, req.Member, req.Label)
		case mcontainer.KindGroupEntries:
			key, err = w.AddGroupEntry(ctx, req.Container.ID, req.Member.ID)
		default:
			err = sorting.ErrUnknownKind
		}
		if err != nil || req.After == nil {
			return err
		}

		res, err := s.placer.PlaceEntry(ctx, c, placement.MoveRequest{
			Moving:    req.Member,
			Reference: req.After,
			Distance:  0,
			Forward:   true,
			Viewport:  placement.Viewport{Size: 1},
		})
		if err != nil {
			return err
		}
		if res.Renumbered {
			s.metrics.Renumbered(req.Container.Kind, metrics.ReasonPlacement)
		}
		key, err = c.MemberKey(ctx, req.Member)
		return err
	})
	if err != nil {
		return 0, err
	}
	return key, nil
}

// Renumber spreads the container's keys evenly.
func (s *Service) Renumber(ctx context.Context, ref mcontainer.Ref) error {
	err := s.inContainer(ctx, ref, func(ctx context.Context, c placement.OrderedContainer, _ *gen.Queries) error {
		return c.RenumberAll(ctx)
	})
	if err != nil {
		return err
	}
	s.metrics.Renumbered(ref.Kind, metrics.ReasonManual)
	s.logger.Info("renumbered container", "container", ref.String())
	return nil
}
