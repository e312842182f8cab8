package placement

import (
	"context"
	"errors"
	"log/slog"

	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

// maxAttempts is one try plus one retry after renumbering.
const maxAttempts = 2

// MoveRequest asks for Moving to be placed Distance visible members beyond
// Reference. A nil Reference starts the search at the edge of the container.
// Distance 0 places Moving right beside a Reference other than itself.
// Reference is usually Moving itself; naming another member places Moving
// relative to that one, which is how new members are put next to a
// highlighted row.
type MoveRequest struct {
	Moving        mcontainer.Member
	Reference     *mcontainer.Member
	Distance      int
	Forward       bool
	Viewport      Viewport
	RelativeIndex int
	// KeepWindow leaves the viewport where it is even when the moved row
	// scrolls out of it.
	KeepWindow bool
}

func (r MoveRequest) Validate() error {
	switch {
	case r.Moving.ID.IsZero():
		return invalidMove("moving member has no id")
	case r.Reference != nil && r.Reference.ID.IsZero():
		return invalidMove("reference member has no id")
	case r.Distance < 0:
		return invalidMove("negative distance %d", r.Distance)
	case r.Distance == 0 && r.movesReference():
		return invalidMove("distance 0 places %s beside itself", r.Moving)
	case r.Viewport.Size < 1:
		return invalidMove("window size %d", r.Viewport.Size)
	case r.Viewport.Start < 0:
		return invalidMove("window start %d", r.Viewport.Start)
	case r.RelativeIndex < 0:
		return invalidMove("relative index %d", r.RelativeIndex)
	}
	return nil
}

func (r MoveRequest) movesReference() bool {
	return r.Reference != nil && r.Reference.Equal(r.Moving)
}

// Result reports what PlaceEntry did. WindowStart is always valid, even when
// nothing moved.
type Result struct {
	Moved          bool
	NewKey         sortkey.Key
	ActualDistance int
	WindowStart    int
	Renumbered     bool
}

// Placer moves members within ordered containers. It holds no state between
// calls and is safe for concurrent use on different containers.
type Placer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Placer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Placer{logger: logger}
}

// PlaceEntry moves req.Moving within c. When the keys around the target spot
// leave no room, the whole container is renumbered once and the placement is
// recomputed; if that still leaves no room it fails with ErrRenumberFailed
// and the caller must roll back its transaction.
func (p *Placer) PlaceEntry(ctx context.Context, c OrderedContainer, req MoveRequest) (Result, error) {
	ref := c.Ref()
	if err := req.Validate(); err != nil {
		return Result{}, &Error{Code: CodeInvalidMove, Container: ref, Member: req.Moving, cause: err}
	}
	log := p.logger.With("container", ref.String(), "member", req.Moving.String())

	total, err := c.VisibleCount(ctx)
	if err != nil {
		return Result{}, storeErr("visible count", err)
	}

	var candidate sortkey.Key
	for attempt := 1; ; attempt++ {
		res, err := p.attempt(ctx, c, req, total, &candidate)
		if !errors.Is(err, errRenumberRequired) {
			if err != nil {
				return Result{}, err
			}
			res.Renumbered = attempt > 1
			return res, nil
		}

		if attempt == maxAttempts {
			log.Error("no room for sort key after renumbering", "candidate", candidate)
			return Result{}, renumberFailed(ref, req.Moving, candidate)
		}
		log.Warn("no room for sort key, renumbering container", "candidate", candidate)
		if err := c.RenumberAll(ctx); err != nil {
			return Result{}, storeErr("renumber", err)
		}
		log.Info("renumbered container")
	}
}

func (p *Placer) attempt(ctx context.Context, c OrderedContainer, req MoveRequest, total uint64, candidate *sortkey.Key) (Result, error) {
	noop := Result{WindowStart: req.Viewport.Start}

	from := sortkey.Seed(req.Forward)
	if req.Reference != nil {
		k, err := c.MemberKey(ctx, *req.Reference)
		if err != nil {
			return Result{}, storeErr("reference key", err)
		}
		from = k
	}

	nb, err := FindNewNeighbors(ctx, c, req.Distance, req.Forward, from)
	if err != nil {
		return Result{}, err
	}
	if nb.Near == nil || (nb.Synthesized && req.movesReference()) {
		p.logger.Debug("nothing to move past", "container", c.Ref().String(), "from", from)
		return noop, nil
	}

	alloc, err := NewSortingKey(ctx, c, AllocationInput{
		TotalCount:    total,
		Viewport:      req.Viewport,
		RelativeIndex: req.RelativeIndex,
		Near:          *nb.Near,
		Far:           nb.Far,
		Forward:       req.Forward,
		Distance:      nb.ActualDistance,
		MovingFrom:    from,
	})
	if err != nil {
		return Result{}, err
	}
	*candidate = alloc.Candidate
	if alloc.Trouble {
		return Result{}, errRenumberRequired
	}

	if err := c.UpdateKey(ctx, req.Moving, alloc.Candidate); err != nil {
		return Result{}, storeErr("update key", err)
	}
	res := Result{
		Moved:          true,
		NewKey:         alloc.Candidate,
		ActualDistance: nb.ActualDistance,
		WindowStart:    alloc.WindowStart,
	}
	if req.KeepWindow {
		res.WindowStart = req.Viewport.Start
	}
	p.logger.Debug("placed member",
		"container", c.Ref().String(),
		"member", req.Moving.String(),
		"key", alloc.Candidate,
		"distance", nb.ActualDistance)
	return res, nil
}
