package cache

// Database is an opaque handle bundling references to one registrant's
// four typed shadow stores. The listener borrows these references; it
// never owns or frees them, and registration never removes a Database
// once added.
type Database struct {
	Strings    *MemoryCache
	Hashes     *MemoryHashes
	Sets       *MemorySets
	SortedSets *MemorySortedSets
}

// NewDatabase bundles a database's four typed stores into a single
// registration handle.
func NewDatabase(strings *MemoryCache, hashes *MemoryHashes, sets *MemorySets, sortedSets *MemorySortedSets) *Database {
	return &Database{
		Strings:    strings,
		Hashes:     hashes,
		Sets:       sets,
		SortedSets: sortedSets,
	}
}
