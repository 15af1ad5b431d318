package querycache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"tschecker/internal/types"
)

// snapshotSchemaVersion guards against decoding a snapshot written by an
// incompatible build; bumped whenever Snapshot's shape changes.
const snapshotSchemaVersion uint16 = 1

// Digest is a content hash identifying the source set a snapshot was taken
// against, the same role project.Digest plays for dcache.go's DiskPayload.
type Digest [32]byte

// Sum hashes the given source byte slices, in order, into a single Digest.
// Hashing every file's contents keys a snapshot to exactly the source text
// it was computed from.
func Sum(contents ...[]byte) Digest {
	h := sha256.New()
	for _, c := range contents {
		h.Write(c)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// EvalEntry is one memoized evaluate_type result, as stored on disk.
type EvalEntry struct {
	Type   types.TypeID
	Result types.TypeID
}

// SubtypeEntry is one memoized is_subtype_of result, as stored on disk.
type SubtypeEntry struct {
	Source types.TypeID
	Target types.TypeID
	Result bool
}

// Snapshot is the whole of a Cache's memo tables in a serializable form.
// TypeIDs inside a Snapshot are only valid when reloaded into a session
// whose types.Interner assigns IDs in the exact same order as the run that
// produced the snapshot. Keying a snapshot by the Digest of the unchanged
// source set it was taken from serves that: the same sources replay the
// same sequence of Intern/Union/Object calls and land on the same IDs. No
// package outside querycache stores or loads snapshots; internal/driver
// does not use DiskCache.
type Snapshot struct {
	Schema uint16
	Eval   []EvalEntry
	Sub    []SubtypeEntry
}

// DiskCache stores Snapshots on disk, keyed by Digest, exactly the way
// internal/driver/dcache.go's DiskCache stores module metadata keyed by
// project.Digest: a flat directory of msgpack-encoded files, written
// atomically via a temp-file-then-rename, guarded by one RWMutex. This is
// the query layer's only optional, explicitly opt-in persistence: a
// session never requires a cache directory, and nothing breaks if the
// directory is deleted between runs — the next run simply recomputes every
// entry from scratch, per spec's "no required cross-process persistence"
// non-goal.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache creates (if needed) and opens a disk cache rooted at dir,
// a directory the caller names. Unlike dcache.go's OpenDiskCache,
// there is no XDG-standard default location: the query cache is large and
// disposable by nature, so it is never written anywhere without the caller
// naming a directory explicitly.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "types", hexKey+".mp")
}

// Put serializes and atomically writes snapshot under key.
func (c *DiskCache) Put(key Digest, snapshot Snapshot) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot.Schema = snapshotSchemaVersion

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&snapshot); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads back the Snapshot stored under key, reporting false if nothing
// is cached for it (a cold run) rather than an error.
func (c *DiskCache) Get(key Digest) (Snapshot, bool, error) {
	if c == nil {
		return Snapshot{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	defer f.Close()

	var snapshot Snapshot
	if err := msgpack.NewDecoder(f).Decode(&snapshot); err != nil {
		return Snapshot{}, false, err
	}
	if snapshot.Schema != snapshotSchemaVersion {
		return Snapshot{}, false, nil
	}
	return snapshot, true, nil
}

// DropAll discards every snapshot ever written to this cache, useful after
// a schema bump.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// IsValid performs a basic sanity check that d is a non-zero digest,
// mirroring dcache.go's IsSHA256.
func IsValid(d Digest) bool {
	var zero Digest
	return d != zero
}
