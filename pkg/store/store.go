package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chris/forum-miniapp-store/pkg/endpoints"
	"github.com/chris/forum-miniapp-store/pkg/notify"
	"github.com/chris/forum-miniapp-store/pkg/transport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/chris/forum-miniapp-store/pkg/store"

// DefaultRequestTimeout bounds each request unless overridden with WithTimeout.
const DefaultRequestTimeout = 10 * time.Second

// Outcome labels how a request settled.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeCancelled Outcome = "cancelled"
)

// Observer receives request lifecycle callbacks, e.g. for metrics.
type Observer interface {
	RequestStarted(field string)
	RequestFinished(field string, outcome string, elapsed time.Duration)
	ToastShown()
}

type nopObserver struct{}

func (nopObserver) RequestStarted(string)                         {}
func (nopObserver) RequestFinished(string, string, time.Duration) {}
func (nopObserver) ToastShown()                                   {}

// Event is delivered to watchers after every commit.
type Event struct {
	Mutation Mutation
	State    State
}

// Store holds the UI state and dispatches requests that populate it.
type Store struct {
	endpoints endpoints.Endpoints
	requester transport.Requester
	notifier  notify.Notifier
	observer  Observer
	logger    *slog.Logger
	tracer    trace.Tracer
	timeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.RWMutex
	state       State
	inflight    int
	pending     map[Field]*Task
	watchers    map[int]chan Event
	nextWatcher int
	closed      bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithNotifier sets the toast primitive.
func WithNotifier(notifier notify.Notifier) Option {
	return func(s *Store) {
		s.notifier = notifier
	}
}

// WithObserver sets the request lifecycle observer.
func WithObserver(observer Observer) Option {
	return func(s *Store) {
		s.observer = observer
	}
}

// WithTracer sets the tracer. Default: the global OpenTelemetry tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) {
		s.tracer = tracer
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.timeout = timeout
	}
}

// New creates a Store with empty state.
func New(e endpoints.Endpoints, requester transport.Requester, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		endpoints: e,
		requester: requester,
		logger:    slog.Default(),
		observer:  nopObserver{},
		timeout:   DefaultRequestTimeout,
		ctx:       ctx,
		cancel:    cancel,
		state:     initialState(),
		pending:   make(map[Field]*Task),
		watchers:  make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.logger)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// Close cancels all in-flight requests, waits for them to settle and
// closes every watcher channel. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
	s.mu.Unlock()
	return nil
}

// Commit applies a mutation and notifies watchers.
func (s *Store) Commit(m Mutation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(m)
}

func (s *Store) commitLocked(m Mutation) {
	s.state.apply(m)
	if len(s.watchers) == 0 {
		return
	}
	ev := Event{Mutation: m, State: s.state.clone()}
	for _, ch := range s.watchers {
		select {
		case ch <- ev:
		default:
			// Slow watcher; drop rather than block the commit.
		}
	}
}

// Watch subscribes to commit events. The returned function unsubscribes.
func (s *Store) Watch(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.watchers[id]; ok {
				close(c)
				delete(s.watchers, id)
			}
		})
	}
}

// CallAPI raises the loading flag, fetches url in the background and
// commits the decoded response to target's field.
// A newer request for the same field supersedes this one.
func (s *Store) CallAPI(ctx context.Context, url string, target Target) *Task {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return finishedTask(target.Field, url, ErrClosed)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	task := newTask(target.Field, url, cancel)

	if prev, ok := s.pending[target.Field]; ok {
		prev.cancel()
	}
	s.pending[target.Field] = task
	s.inflight++
	s.commitLocked(SetLoading{Loading: true})
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer stop()
		defer cancel()
		s.run(reqCtx, task, target)
	}()

	return task
}

func (s *Store) run(ctx context.Context, task *Task, target Target) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := s.tracer.Start(ctx, "store.CallAPI", trace.WithAttributes(
		attribute.String("store.task_id", task.id),
		attribute.String("store.field", string(target.Field)),
		attribute.String("url.full", task.url),
	))
	defer span.End()

	started := time.Now()
	s.observer.RequestStarted(string(target.Field))

	var (
		m         Mutation
		requestID string
	)
	resp, err := s.requester.Do(ctx, transport.Request{URL: task.url})
	if err == nil {
		requestID = resp.RequestID
		m, err = target.Decode(resp.Data)
	}

	outcome := s.settle(ctx, task, m, err)

	switch outcome {
	case OutcomeFailure:
		err = fmt.Errorf("%w: %w", ErrRequestFailed, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "request failed",
			slog.String("task_id", task.id),
			slog.String("request_id", requestID),
			slog.String("field", string(target.Field)),
			slog.String("url", task.url),
			slog.Any("error", err),
		)
	case OutcomeCancelled:
		err = context.Canceled
		span.SetStatus(codes.Unset, "cancelled")
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.String("store.outcome", string(outcome)))

	// Loading is released before the toast so a slow notifier cannot hold it.
	s.finish(task)
	s.observer.RequestFinished(string(target.Field), string(outcome), time.Since(started))
	if outcome == OutcomeFailure {
		s.toast(ctx)
	}
	task.finish(err)
}

// settle commits a successful result unless the task was cancelled or superseded.
func (s *Store) settle(ctx context.Context, task *Task, m Mutation, err error) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.pending[task.field] == task
	if !current || errors.Is(ctx.Err(), context.Canceled) {
		return OutcomeCancelled
	}
	if err != nil {
		return OutcomeFailure
	}
	s.commitLocked(m)
	return OutcomeSuccess
}

// finish releases the task's slot and lowers loading once nothing is in flight.
func (s *Store) finish(task *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[task.field] == task {
		delete(s.pending, task.field)
	}
	s.inflight--
	if s.inflight == 0 {
		s.commitLocked(SetLoading{Loading: false})
	}
}

func (s *Store) toast(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := s.notifier.Notify(ctx, notify.Toast{Level: notify.LevelError, Title: NetworkErrorTitle}); err != nil {
		s.logger.WarnContext(ctx, "failed to show toast", slog.Any("error", err))
	}
	s.observer.ToastShown()
}
