// Package children resolves AbstractChild operations against a repository,
// memoizing results until the next write or external change.
package children

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/finder/internal/cachemanager"
	"github.com/zjrosen/finder/internal/domain"
	"github.com/zjrosen/finder/internal/finder"
	"github.com/zjrosen/finder/internal/list"
	"github.com/zjrosen/finder/internal/log"
	"github.com/zjrosen/finder/internal/pubsub"
	"github.com/zjrosen/finder/internal/tracing"
)

// ErrNotUnique is returned by FindOne when more than one child matches.
var ErrNotUnique = errors.New("operation matched more than one child")

// Change describes a write published to subscribers.
type Change struct {
	Child     *domain.AbstractChild // nil for DeleteAll and invalidations
	Operation string                // DeleteAll operation text
	Count     int                   // rows affected
}

type resolveInput struct {
	op      finder.Operation
	orderBy []finder.OrderTerm
}

// Finder resolves operations to children. It satisfies
// list.Resolver[*domain.AbstractChild] and list.Counter, so operation-based
// AbstractChildLists resolve through it.
type Finder struct {
	repo     domain.AbstractChildRepository
	resolved *cachemanager.ReadThroughCache[string, []*domain.AbstractChild, resolveInput]
	counted  *cachemanager.ReadThroughCache[string, int, finder.Operation]
	ttl      time.Duration
	tracer   trace.Tracer
	broker   *pubsub.Broker[Change]
}

var (
	_ list.Resolver[*domain.AbstractChild] = (*Finder)(nil)
	_ list.Counter                         = (*Finder)(nil)
)

type options struct {
	resolveCache cachemanager.CacheManager[string, []*domain.AbstractChild]
	countCache   cachemanager.CacheManager[string, int]
	ttl          time.Duration
	skipCache    bool
	sliding      bool
	tracer       trace.Tracer
}

// Option configures a Finder.
type Option func(*options)

// WithTTL sets how long resolved results stay cached. Zero disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
		o.skipCache = ttl <= 0
	}
}

// WithSlidingTTL resets an entry's TTL on every cache hit, so results expire
// only after going unused for the TTL.
func WithSlidingTTL() Option {
	return func(o *options) { o.sliding = true }
}

// WithoutCache sends every call to the repository.
func WithoutCache() Option {
	return func(o *options) { o.skipCache = true }
}

// WithResolveCache replaces the in-memory cache of resolved children.
func WithResolveCache(c cachemanager.CacheManager[string, []*domain.AbstractChild]) Option {
	return func(o *options) { o.resolveCache = c }
}

// WithCountCache replaces the in-memory cache of counts.
func WithCountCache(c cachemanager.CacheManager[string, int]) Option {
	return func(o *options) { o.countCache = c }
}

// WithTracer records a span per resolution.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// New creates a Finder over repo.
func New(repo domain.AbstractChildRepository, opts ...Option) *Finder {
	o := options{
		ttl:    cachemanager.DefaultExpiration,
		tracer: noop.NewTracerProvider().Tracer("noop"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolveCache == nil {
		o.resolveCache = cachemanager.NewInMemoryCacheManager[string, []*domain.AbstractChild]("resolve", o.ttl, cachemanager.DefaultCleanupInterval)
	}
	if o.countCache == nil {
		o.countCache = cachemanager.NewInMemoryCacheManager[string, int]("count", o.ttl, cachemanager.DefaultCleanupInterval)
	}

	f := &Finder{
		repo:   repo,
		ttl:    o.ttl,
		tracer: o.tracer,
		broker: pubsub.NewBroker[Change](),
	}
	f.resolved = cachemanager.NewReadThroughCache(o.resolveCache, f.load, o.skipCache)
	f.counted = cachemanager.NewReadThroughCache(o.countCache, f.count, o.skipCache)
	if o.sliding {
		f.resolved.WithSlidingExpiration()
		f.counted.WithSlidingExpiration()
	}
	return f
}

func (f *Finder) load(ctx context.Context, in resolveInput) ([]*domain.AbstractChild, error) {
	return f.repo.Resolve(ctx, in.op, in.orderBy)
}

func (f *Finder) count(ctx context.Context, op finder.Operation) (int, error) {
	return f.repo.Count(ctx, op)
}

// cacheKey is the canonical text of op plus its order, so equal operations
// built different ways share an entry.
func cacheKey(op finder.Operation, orderBy []finder.OrderTerm) string {
	q := finder.Query{Filter: op, OrderBy: orderBy}
	return q.String()
}

// Resolve returns the children matching op. Callers get copies; mutating them
// does not affect cached results.
func (f *Finder) Resolve(ctx context.Context, op finder.Operation, orderBy []finder.OrderTerm) ([]*domain.AbstractChild, error) {
	if op == nil {
		return nil, list.ErrNilOperation
	}

	ctx, span := f.tracer.Start(ctx, tracing.SpanResolve, trace.WithAttributes(
		attribute.String(tracing.AttrOperation, op.String()),
		attribute.String(tracing.AttrOrderBy, finder.FormatOrderBy(orderBy)),
	))
	defer span.End()

	children, hit, err := f.resolved.Lookup(ctx, cacheKey(op, orderBy), resolveInput{op: op, orderBy: orderBy}, f.ttl)
	span.SetAttributes(attribute.Bool(tracing.AttrCacheHit, hit))
	if err != nil {
		recordError(span, err)
		log.ErrorErr(log.CatFinder, "resolve failed", err, "op", op.String())
		return nil, err
	}

	span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(children)))
	log.Debug(log.CatFinder, "resolved", "op", op.String(), "count", len(children), "cache_hit", hit)

	out := make([]*domain.AbstractChild, len(children))
	for i, c := range children {
		out[i] = c.Clone()
	}
	return out, nil
}

// Count returns how many children match op without loading them.
func (f *Finder) Count(ctx context.Context, op finder.Operation) (int, error) {
	if op == nil {
		return 0, list.ErrNilOperation
	}

	ctx, span := f.tracer.Start(ctx, tracing.SpanCount, trace.WithAttributes(
		attribute.String(tracing.AttrOperation, op.String()),
	))
	defer span.End()

	n, hit, err := f.counted.Lookup(ctx, cacheKey(op, nil), op, f.ttl)
	span.SetAttributes(attribute.Bool(tracing.AttrCacheHit, hit))
	if err != nil {
		recordError(span, err)
		return 0, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrResultCount, n))
	return n, nil
}

// FindMany returns an unresolved list for op. Resolve it with Load or
// list.Resolve(ctx, f).
func (f *Finder) FindMany(op finder.Operation, orderBy ...finder.OrderTerm) *domain.AbstractChildList {
	l := domain.NewAbstractChildListForOperation(op)
	if len(orderBy) > 0 {
		// SetOrderBy cannot fail on an unresolved operation-based list
		_ = l.SetOrderBy(orderBy...)
	}
	return l
}

// Load resolves l through f.
func (f *Finder) Load(ctx context.Context, l *domain.AbstractChildList) error {
	return l.Resolve(ctx, f)
}

// FindOne returns the single child matching op. No match returns a
// ChildNotFoundError; several return ErrNotUnique.
func (f *Finder) FindOne(ctx context.Context, op finder.Operation) (*domain.AbstractChild, error) {
	children, err := f.Resolve(ctx, op, nil)
	if err != nil {
		return nil, err
	}
	switch len(children) {
	case 0:
		return nil, &domain.ChildNotFoundError{Operation: op.String()}
	case 1:
		return children[0], nil
	default:
		return nil, fmt.Errorf("%w: %d matches for %s", ErrNotUnique, len(children), op.String())
	}
}

// FindByID returns a child by its database id, bypassing the cache.
func (f *Finder) FindByID(ctx context.Context, id int64) (*domain.AbstractChild, error) {
	return f.repo.FindByID(ctx, id)
}

// FindByGUID returns a child by its GUID, bypassing the cache.
func (f *Finder) FindByGUID(ctx context.Context, guid string) (*domain.AbstractChild, error) {
	return f.repo.FindByGUID(ctx, guid)
}

// Insert saves a new child and assigns its id.
func (f *Finder) Insert(ctx context.Context, child *domain.AbstractChild) error {
	if child.ID() != 0 {
		return fmt.Errorf("%w: child already has id %d", domain.ErrInvalidChild, child.ID())
	}
	if err := f.repo.Save(ctx, child); err != nil {
		return err
	}
	f.afterWrite(ctx, pubsub.CreatedEvent, Change{Child: child.Clone(), Count: 1})
	return nil
}

// Update saves changes to an existing child.
func (f *Finder) Update(ctx context.Context, child *domain.AbstractChild) error {
	if child.ID() == 0 {
		return fmt.Errorf("%w: child has no id", domain.ErrInvalidChild)
	}
	if err := f.repo.Save(ctx, child); err != nil {
		return err
	}
	f.afterWrite(ctx, pubsub.UpdatedEvent, Change{Child: child.Clone(), Count: 1})
	return nil
}

// Delete removes the child with id.
func (f *Finder) Delete(ctx context.Context, id int64) error {
	child, err := f.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := f.repo.Delete(ctx, id); err != nil {
		return err
	}
	f.afterWrite(ctx, pubsub.DeletedEvent, Change{Child: child, Count: 1})
	return nil
}

// DeleteAll removes every child matching op and returns how many were removed.
func (f *Finder) DeleteAll(ctx context.Context, op finder.Operation) (int, error) {
	if op == nil {
		return 0, list.ErrNilOperation
	}

	ctx, span := f.tracer.Start(ctx, tracing.SpanDeleteAll, trace.WithAttributes(
		attribute.String(tracing.AttrOperation, op.String()),
	))
	defer span.End()

	n, err := f.repo.DeleteAll(ctx, op)
	if err != nil {
		recordError(span, err)
		return 0, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrResultCount, n))

	if n > 0 {
		f.afterWrite(ctx, pubsub.DeletedEvent, Change{Operation: op.String(), Count: n})
	}
	return n, nil
}

func (f *Finder) afterWrite(ctx context.Context, eventType pubsub.EventType, change Change) {
	f.flush(ctx)
	f.broker.Publish(eventType, change)
	log.Debug(log.CatFinder, "published change", "type", eventType, "count", change.Count, "subscribers", f.broker.SubscriberCount())
}

func (f *Finder) flush(ctx context.Context) {
	if err := f.resolved.Invalidate(ctx); err != nil {
		log.ErrorErr(log.CatCache, "flush resolve cache failed", err)
	}
	if err := f.counted.Invalidate(ctx); err != nil {
		log.ErrorErr(log.CatCache, "flush count cache failed", err)
	}
	trace.SpanFromContext(ctx).AddEvent(tracing.EventCacheInvalidated)
}

// Invalidate drops every cached result and notifies subscribers.
func (f *Finder) Invalidate(ctx context.Context) {
	f.flush(ctx)
	f.broker.Publish(pubsub.InvalidatedEvent, Change{})
	log.Debug(log.CatCache, "cache invalidated")
}

// WatchInvalidations calls Invalidate for every signal until ctx is done or
// signals is closed. It blocks; run it in its own goroutine.
func (f *Finder) WatchInvalidations(ctx context.Context, signals <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			f.Invalidate(ctx)
		}
	}
}

// Subscribe returns a channel of write and invalidation events, closed when
// ctx is done or the Finder is closed.
func (f *Finder) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return f.broker.Subscribe(ctx)
}

// Dropped reports how many events were discarded because a subscriber's
// buffer was full.
func (f *Finder) Dropped() int64 {
	return f.broker.Dropped()
}

// Close stops event delivery and closes the repository.
func (f *Finder) Close() error {
	f.broker.Close()
	return f.repo.Close()
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(tracing.AttrErrorType, fmt.Sprintf("%T", err)))
}
