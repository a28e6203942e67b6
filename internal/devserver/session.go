package devserver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/dom/memdom"
	"github.com/vango-dev/canopy/pkg/render"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// frameInterval is how often a session flushes requested frames.
const frameInterval = 16 * time.Millisecond

// session is one mounted app. Only the run goroutine touches doc and r once
// start has returned.
type session struct {
	id     string
	doc    *memdom.Document
	r      *render.Renderer
	frames *render.ManualFrames
	logger *slog.Logger

	tasks     chan func()
	out       chan Message
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	attached   chan struct{}
	attachOnce sync.Once

	pending     []memdom.Mutation
	resync      bool
	stopObserve func()
}

func newSession(id string, root func() *vdom.VNode, logger *slog.Logger, opts []render.Option) *session {
	s := &session{
		id:     id,
		doc:    memdom.NewDocument(),
		frames: &render.ManualFrames{},
		logger: logger.With("session", id),
		tasks:  make(chan func(), 16),
		out:    make(chan Message, 64),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),

		attached: make(chan struct{}),
	}
	opts = append(opts, render.WithFrames(s.frames), render.WithLogger(s.logger))
	s.r = render.New(s.doc, root, opts...)
	return s
}

// mount renders the app and returns the initial annotated markup. It runs
// on the caller's goroutine before run starts.
func (s *session) mount() (string, error) {
	if err := s.r.Mount(); err != nil {
		return "", err
	}
	s.frames.Flush()
	s.stopObserve = s.doc.Observe(func(m memdom.Mutation) {
		s.pending = append(s.pending, m)
	})
	return s.doc.BodyNode().AnnotatedHTML(), nil
}

// run owns the session until ctx is done, close is called or no client
// attaches within attachTimeout.
func (s *session) run(ctx context.Context, attachTimeout time.Duration) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(attachTimeout)
	defer deadline.Stop()
	attached, expired := s.attached, deadline.C
	defer close(s.done)
	defer func() {
		s.stopObserve()
		s.r.Unmount()
		close(s.out)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-expired:
			s.logger.Info("no client attached", "timeout", attachTimeout)
			return
		case <-attached:
			attached, expired = nil, nil
			deadline.Stop()
			continue
		case task := <-s.tasks:
			task()
		case <-ticker.C:
		}
		s.frames.Flush()
		s.publish()
	}
}

// attach records that a client connected.
func (s *session) attach() {
	s.attachOnce.Do(func() { close(s.attached) })
}

// close stops the session and waits for run to return.
func (s *session) close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

// do queues fn on the session goroutine and waits for it.
func (s *session) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}
	select {
	case s.tasks <- task:
	case <-s.done:
		return errors.New(errors.ErrDevSession).WithDetailf("session %s is closed", s.id)
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return errors.New(errors.ErrDevSession).WithDetailf("session %s is closed", s.id)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch delivers a client event. It runs on the session goroutine.
func (s *session) dispatch(ev Event) {
	node := s.doc.NodeByID(ev.Target)
	if node == nil {
		s.logger.Warn("event for unknown node", "type", ev.Type, "target", ev.Target)
		return
	}
	switch ev.Type {
	case "input":
		node.Input(ev.Value)
	case "change":
		node.Input(ev.Value)
		node.Dispatch("change")
	default:
		node.Dispatch(ev.Type)
	}
	// Handlers only change app state; re-render from the root so plain
	// root functions see it too.
	s.r.Invalidate()
}

func (s *session) publish() {
	if len(s.pending) == 0 {
		return
	}
	msg := Message{Type: MessagePatch, Mutations: s.pending}
	if s.resync || structural(s.pending) {
		msg.HTML = s.doc.BodyNode().AnnotatedHTML()
	}
	s.pending = nil
	select {
	case s.out <- msg:
		s.resync = false
	default:
		// The next patch carries the full HTML so the client catches up.
		s.resync = true
		s.logger.Warn("client too slow, dropping patch", "mutations", len(msg.Mutations))
	}
}
