package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"lessonlink/internal/dataset"
	"lessonlink/internal/logging"
	"lessonlink/internal/match"
	"lessonlink/internal/normalize"
	"lessonlink/internal/scoring"
)

// ErrUnitClosed is returned for requests sent after the unit stopped.
var ErrUnitClosed = errors.New("worker: unit closed")

// ErrNotInitialized is returned for match requests before the first
// successful initialization.
var ErrNotInitialized = errors.New("worker: not initialized")

type initRequest struct {
	snapshot *dataset.Snapshot
	reply    chan error
}

type matchRequest struct {
	schedules []match.Schedule
	reply     chan matchReply
}

type matchReply struct {
	results []match.MatchResult
	err     error
}

type unitMessage interface{ unitMessage() }

func (initRequest) unitMessage()  {}
func (matchRequest) unitMessage() {}

// Unit serves initialization and match requests from a single goroutine.
//
// All state behind the index and matcher is confined to the run loop, so no
// locking is needed: the mailbox channel is the only synchronization point,
// and requests are served strictly in send order. Every request carries its
// own reply channel, so a caller can never receive another caller's answer.
type Unit struct {
	norm   *normalize.Normalizer
	engine *scoring.Engine
	policy match.Policy
	logger *slog.Logger

	mailbox chan unitMessage
	quit    chan struct{}
	done    chan struct{}
	closer  sync.Once
}

// NewUnit starts the unit's run loop. The caller must Close it.
func NewUnit(norm *normalize.Normalizer, engine *scoring.Engine, policy match.Policy, logger *slog.Logger) *Unit {
	u := &Unit{
		norm:    norm,
		engine:  engine,
		policy:  policy,
		logger:  logging.WithComponent(logger, "worker"),
		mailbox: make(chan unitMessage),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go u.run()
	return u
}

// Init builds the matcher for a snapshot, replacing any previous one.
func (u *Unit) Init(ctx context.Context, snapshot *dataset.Snapshot) error {
	req := initRequest{snapshot: snapshot, reply: make(chan error, 1)}
	if err := u.send(ctx, req); err != nil {
		return err
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-u.done:
		return ErrUnitClosed
	}
}

// Match evaluates a batch of schedules against the current snapshot.
func (u *Unit) Match(ctx context.Context, schedules []match.Schedule) ([]match.MatchResult, error) {
	req := matchRequest{schedules: schedules, reply: make(chan matchReply, 1)}
	if err := u.send(ctx, req); err != nil {
		return nil, err
	}
	select {
	case reply := <-req.reply:
		return reply.results, reply.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-u.done:
		return nil, ErrUnitClosed
	}
}

// Close stops the run loop and waits for it to exit. Pending requests
// receive ErrUnitClosed through the done channel.
func (u *Unit) Close() {
	u.closer.Do(func() { close(u.quit) })
	<-u.done
}

func (u *Unit) send(ctx context.Context, msg unitMessage) error {
	select {
	case u.mailbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-u.done:
		return ErrUnitClosed
	}
}

func (u *Unit) run() {
	defer close(u.done)

	var matcher *match.Matcher
	for {
		select {
		case <-u.quit:
			return
		case msg := <-u.mailbox:
			switch req := msg.(type) {
			case initRequest:
				matcher = match.NewMatcher(req.snapshot, u.norm, u.engine, u.policy, u.logger)
				size := 0
				if req.snapshot != nil {
					size = len(req.snapshot.Meetings)
				}
				u.logger.Info("matcher initialized", logging.Int("meetings", size))
				req.reply <- nil
			case matchRequest:
				if matcher == nil {
					req.reply <- matchReply{err: ErrNotInitialized}
					continue
				}
				results := matcher.MatchAll(req.schedules)
				u.logger.Info("batch matched",
					logging.Int("schedules", len(req.schedules)),
					logging.Int("results", len(results)))
				req.reply <- matchReply{results: results}
			}
		}
	}
}
