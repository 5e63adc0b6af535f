package cache

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Subscriber is the external subscription primitive the listener builds
// on: install a handler for a channel pattern, or tear one down. Channel
// and payload are delivered as strings (Redis keyspace-notification
// payloads are always printable ASCII/UTF-8 command names and keys).
type Subscriber interface {
	Subscribe(ctx context.Context, pattern string, handler func(channel, payload string)) error
	Unsubscribe(ctx context.Context, pattern string) error
}

// Listener owns the subscription to a database's two keyspace-notification
// channel families and dispatches parsed events onto every registered
// Database's typed shadow stores. It never blocks on I/O inside a
// notification handler and never lets an error escape one.
type Listener struct {
	sub      Subscriber
	identity IdentityProvider
	dbIndex  int
	logger   *zap.Logger
	metrics  *ListenerMetrics
	prom     *promMetrics

	standardPattern string
	detailedPattern string

	paused    atomic.Bool
	databases atomic.Pointer[[]*Database]
}

// ListenerOption configures optional Listener behavior.
type ListenerOption func(*Listener)

// WithLogger attaches a structured logger for debug-level traces. A nil
// logger (the default) is replaced with zap.NewNop().
func WithLogger(logger *zap.Logger) ListenerOption {
	return func(l *Listener) { l.logger = logger }
}

// WithPrometheus enables mirroring the dispatched, ignored and
// self-filtered outcomes into the Prometheus counter vector
// stackredis_l1_listener_events_total (label "outcome"). Received,
// paused-dropped and parse-failed counts stay in ListenerMetrics only.
func WithPrometheus() ListenerOption {
	return func(l *Listener) { l.prom = newPromMetrics() }
}

// NewListener constructs a Listener bound to dbIndex's channel family. It
// does not subscribe to anything until Start is called.
func NewListener(sub Subscriber, identity IdentityProvider, dbIndex int, opts ...ListenerOption) *Listener {
	standard, detailed := ChannelPrefixes(dbIndex)

	l := &Listener{
		sub:             sub,
		identity:        identity,
		dbIndex:         dbIndex,
		metrics:         NewListenerMetrics(),
		standardPattern: standard + "*",
		detailedPattern: detailed + "*",
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}

	empty := make([]*Database, 0)
	l.databases.Store(&empty)

	return l
}

// Metrics returns the listener's atomic counters.
func (l *Listener) Metrics() *ListenerMetrics { return l.metrics }

// Start installs the two pattern subscriptions with the underlying
// Subscriber.
func (l *Listener) Start(ctx context.Context) error {
	if err := l.sub.Subscribe(ctx, l.standardPattern, l.handleStandard); err != nil {
		return err
	}
	if err := l.sub.Subscribe(ctx, l.detailedPattern, l.handleDetailed); err != nil {
		return err
	}
	return nil
}

// Close releases both pattern subscriptions. Unlike the source this is
// reimplemented from, both channel families are unsubscribed — see
// DESIGN.md's Open Question decisions.
func (l *Listener) Close(ctx context.Context) error {
	errStandard := l.sub.Unsubscribe(ctx, l.standardPattern)
	errDetailed := l.sub.Unsubscribe(ctx, l.detailedPattern)
	if errStandard != nil {
		return errStandard
	}
	return errDetailed
}

// Pause sets the pause flag. While paused, incoming events on either
// channel are dropped silently. Observed best-effort: an event arriving
// between a write to this flag and a subsequent assertion by the caller is
// a tolerated race, per spec.
func (l *Listener) Pause(paused bool) {
	l.paused.Store(paused)
}

// Register adds db to the set of databases that receive future
// invalidations. Registration is additive and never removed.
func (l *Listener) Register(db *Database) {
	for {
		old := l.databases.Load()
		next := make([]*Database, len(*old)+1)
		copy(next, *old)
		next[len(*old)] = db
		if l.databases.CompareAndSwap(old, &next) {
			return
		}
	}
}

func (l *Listener) registeredDatabases() []*Database {
	return *l.databases.Load()
}

func (l *Listener) handleStandard(channel, payload string) {
	l.metrics.recordReceived()

	if l.paused.Load() {
		l.metrics.recordPausedDropped()
		return
	}

	parsed := ParseChannelPayload(channel, payload, l.dbIndex)
	if parsed.Kind != ParsedStandard {
		l.metrics.recordParseFailed()
		l.logger.Debug("dropping notification on unexpected channel", zap.String("channel", channel))
		return
	}

	event := ClassifyStandard(parsed.Key, parsed.EventName)
	l.dispatch(event)
}

func (l *Listener) handleDetailed(channel, payload string) {
	l.metrics.recordReceived()

	if l.paused.Load() {
		l.metrics.recordPausedDropped()
		return
	}

	parsed := ParseChannelPayload(channel, payload, l.dbIndex)
	if parsed.Kind != ParsedDetailed {
		l.metrics.recordParseFailed()
		l.logger.Debug("dropping notification on unexpected channel", zap.String("channel", channel))
		return
	}

	if parsed.Originator == l.identity.Current() {
		l.metrics.recordSelfFiltered()
		l.prom.observe("self_filtered")
		return
	}

	event := ClassifyDetailed(parsed.Key, parsed.EventName, parsed.EventArg)
	l.dispatch(event)
}

// dispatch applies event's mutation to every registered database, in
// registration order, catching any mutator panic so it can never escape
// the notification handler.
func (l *Listener) dispatch(event Event) {
	if event.Kind == EventIgnored {
		l.metrics.recordIgnored()
		l.prom.observe("ignored")
		return
	}

	l.metrics.recordDispatched()
	l.prom.observe("dispatched")

	for _, db := range l.registeredDatabases() {
		l.applyToDatabase(event, db)
	}
}

func (l *Listener) applyToDatabase(event Event, db *Database) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Debug("mutator panic recovered", zap.Any("panic", r), zap.String("key", event.Key))
		}
	}()

	switch event.Kind {
	case EventExpired, EventDeleted, EventStringSet, EventStringMutated, EventSortedSetRangeInvalidated:
		db.Strings.Remove(event.Key)
	case EventExpire:
		db.Strings.ClearTTL(event.Key)
	case EventRenamed:
		db.Strings.Rename(event.Key, event.NewKey)
	case EventHashFieldChanged:
		db.Hashes.Delete(event.Key, event.Field)
	case EventSetMemberRemoved:
		db.Sets.RemoveByToken(event.Key, event.MemberToken)
	case EventSortedSetMemberChanged:
		db.SortedSets.RemoveByToken(event.Key, event.ZMemberToken)
	case EventSortedSetRangeByScoreRemoved:
		db.SortedSets.DeleteByScore(event.Key, event.RangeStart, event.RangeStop, event.Exclude)
	}
}
