package devserver

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/render"
	"github.com/vango-dev/canopy/pkg/snapshot"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// Options configures the dev server.
type Options struct {
	// Addr is the listen address for ListenAndServe.
	Addr string

	// NewApp returns a fresh app. It is called once per session so
	// sessions never share component state.
	NewApp func() App

	// RenderOptions are applied to every session renderer. Frame scheduling
	// and logging are set by the server.
	RenderOptions []render.Option

	// Observer, when set, returns the observer of a new session.
	Observer func(sessionID string) render.Observer

	// Gatherer is served on /metrics. Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// WriteTimeout bounds each WebSocket write. Default: 10s
	WriteTimeout time.Duration

	// AttachTimeout is how long a session served with a page waits for its
	// WebSocket before it is closed. Default: 10s
	AttachTimeout time.Duration
}

// App is what a session renders.
type App interface {
	Root() *vdom.VNode
	// RenderOptions are applied before the server's own options.
	RenderOptions() []render.Option
}

// RootFunc adapts a root function with no options of its own to App.
type RootFunc func() *vdom.VNode

// Root calls f.
func (f RootFunc) Root() *vdom.VNode { return f() }

// RenderOptions returns nil.
func (f RootFunc) RenderOptions() []render.Option { return nil }

// Server is the dev server.
type Server struct {
	opts     Options
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

// New creates a server. Call Close to stop every session.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.AttachTimeout == 0 {
		opts.AttachTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:     opts,
		logger:   opts.Logger.With("component", "devserver"),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/sessions/{id}/tree", s.handleTree)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on Options.Addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev server listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return errors.New(errors.ErrDevServer).Wrap(err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return errors.New(errors.ErrDevServer).Wrap(err)
	}
	return nil
}

// Close stops every session and waits for their goroutines.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) startSession() (*session, string, error) {
	id := uuid.NewString()
	app := s.opts.NewApp()
	opts := append(app.RenderOptions(), s.opts.RenderOptions...)
	if s.opts.Observer != nil {
		opts = append(opts, render.WithObserver(s.opts.Observer(id)))
	}
	sess := newSession(id, app.Root, s.logger, opts)
	html, err := sess.mount()
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sess.run(s.ctx, s.opts.AttachTimeout)
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		sess.logger.Info("session closed")
	}()
	sess.logger.Info("session created")
	return sess, html, nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, html, err := s.startSession()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(SessionHeader, sess.id)
	err = pageTemplate.Execute(w, pageData{
		Session: sess.id,
		Body:    template.HTML(html),
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	sess, ok := s.session(id)
	if !ok {
		s.writeError(w, http.StatusNotFound,
			errors.New(errors.ErrDevSession).WithDetailf("no session %q", id).
				WithSuggestion("reload the page to start a new session"))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	sess.attach()
	sess.logger.Info("client connected", "remote", r.RemoteAddr)

	// Writer: forwards patches until the session closes.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for msg := range sess.out {
			conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				sess.logger.Warn("websocket write failed", "error", err)
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
	}()

	// Reader: the event back-channel.
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			var closeErr *websocket.CloseError
			if !stderrors.As(err, &closeErr) {
				sess.logger.Warn("websocket read failed", "error", err)
			}
			break
		}
		if err := sess.do(s.ctx, func() { sess.dispatch(ev) }); err != nil {
			break
		}
	}

	// A preview session ends with its client.
	sess.close()
	<-writeDone
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.session(id)
	if !ok {
		s.writeError(w, http.StatusNotFound,
			errors.New(errors.ErrDevSession).WithDetailf("no session %q", id))
		return
	}
	var tree []snapshot.Node
	if err := sess.do(r.Context(), func() { tree = snapshot.Tree(sess.r) }); err != nil {
		s.writeError(w, http.StatusGone, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tree)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	ce := errors.FromError(err, errors.ErrDevServer)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(ce.FormatJSON()))
}

// logRequests logs every request with slog once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
