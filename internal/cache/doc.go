// Package cache implements the L1 invalidation and coherence engine that
// fronts a Redis-compatible remote store.
//
// # Architecture
//
// Data flows one way: a Subscriber delivers (channel, payload) pairs to a
// Listener, which parses them into Events and dispatches mutations onto
// every registered Database's typed shadow stores (MemoryCache,
// MemoryHashes, MemorySets, MemorySortedSets). No component calls back
// into the subscription, and no store mutator calls the parser.
//
// # Typed stores
//
//	mc := cache.NewMemoryCache()
//	mh := cache.NewMemoryHashes()
//	ms := cache.NewMemorySets()
//	mz := cache.NewMemorySortedSets()
//	db := cache.NewDatabase(mc, mh, ms, mz)
//
// # Listener
//
//	l := cache.NewListener(subscriber, cache.NewProcessIdentity(), 0)
//	l.Register(db)
//	if err := l.Start(ctx); err != nil { ... }
//	defer l.Close(ctx)
//
// The listener never surfaces parse or mutator errors to the caller;
// the worst case is a stale shadow entry, which self-corrects on the next
// write-through or TTL expiry.
package cache
