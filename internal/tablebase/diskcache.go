package tablebase

import (
	"encoding/binary"
	"log"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/RenWild/marvin-chess/internal/board"
)

// CachedProber wraps another prober with a persistent badger store of
// WDL results keyed by position hash. Endgame probes repeat heavily
// between searches of the same game, and for an online prober the cache
// is the difference between usable and not.
type CachedProber struct {
	inner Prober

	mu   sync.Mutex
	db   *badger.DB
	hits uint64
	miss uint64
}

// NewCachedProber opens (or creates) the cache database at dir. A failed
// open degrades to pass-through probing.
func NewCachedProber(inner Prober, dir string) *CachedProber {
	cp := &CachedProber{inner: inner}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		log.Printf("tablebase cache at %s unavailable: %v", dir, err)
		return cp
	}
	cp.db = db
	return cp
}

// Close flushes and closes the cache database.
func (cp *CachedProber) Close() error {
	if cp.db == nil {
		return nil
	}
	return cp.db.Close()
}

func cacheKey(pos *board.Position) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], pos.Key)
	return key[:]
}

func (cp *CachedProber) lookup(pos *board.Position) (WDL, bool) {
	if cp.db == nil {
		return Draw, false
	}
	var wdl WDL
	err := cp.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(pos))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			wdl = WDL(int8(val[0]))
			return nil
		})
	})
	return wdl, err == nil
}

func (cp *CachedProber) store(pos *board.Position, wdl WDL) {
	if cp.db == nil {
		return
	}
	err := cp.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(pos), []byte{byte(int8(wdl))})
	})
	if err != nil {
		log.Printf("tablebase cache store: %v", err)
	}
}

func (cp *CachedProber) ProbeWDL(pos *board.Position) (WDL, bool) {
	if wdl, ok := cp.lookup(pos); ok {
		cp.mu.Lock()
		cp.hits++
		cp.mu.Unlock()
		return wdl, true
	}

	wdl, ok := cp.inner.ProbeWDL(pos)
	cp.mu.Lock()
	cp.miss++
	cp.mu.Unlock()
	if ok {
		cp.store(pos, wdl)
	}
	return wdl, ok
}

func (cp *CachedProber) ProbeRoot(pos *board.Position) (board.Move, WDL, bool) {
	// Root probes want the move, which the cache does not keep.
	return cp.inner.ProbeRoot(pos)
}

func (cp *CachedProber) MaxPieces() int {
	return cp.inner.MaxPieces()
}

func (cp *CachedProber) Available() bool {
	return cp.inner.Available()
}

// HitRate returns the fraction of probes served from the cache.
func (cp *CachedProber) HitRate() float64 {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	total := cp.hits + cp.miss
	if total == 0 {
		return 0
	}
	return float64(cp.hits) / float64(total)
}
