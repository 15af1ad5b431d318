package querycache

import (
	"os"
	"testing"

	"tschecker/internal/types"
)

func TestEvaluateMemoizesAndOnlyComputesOnce(t *testing.T) {
	c := New()
	calls := 0
	compute := func(id types.TypeID) types.TypeID {
		calls++
		return types.String
	}

	if got := c.Evaluate(types.Number, compute); got != types.String {
		t.Fatalf("got %v, want String", got)
	}
	if got := c.Evaluate(types.Number, compute); got != types.String {
		t.Fatalf("got %v, want String", got)
	}
	if calls != 1 {
		t.Fatalf("compute called %d times, want 1", calls)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("stats = %+v, want 1 hit / 1 miss", stats)
	}
	if stats.EvalEntries != 1 {
		t.Fatalf("EvalEntries = %d, want 1", stats.EvalEntries)
	}
}

func TestIsSubtypeMemoizesPerPair(t *testing.T) {
	c := New()
	calls := 0
	compute := func(source, target types.TypeID) bool {
		calls++
		return source == types.Never
	}

	if !c.IsSubtype(types.Never, types.String, compute) {
		t.Fatal("expected true")
	}
	if c.IsSubtype(types.Number, types.String, compute) {
		t.Fatal("expected false")
	}
	if calls != 2 {
		t.Fatalf("compute called %d times, want 2 (distinct pairs)", calls)
	}

	// Same pairs again: no further calls.
	c.IsSubtype(types.Never, types.String, compute)
	c.IsSubtype(types.Number, types.String, compute)
	if calls != 2 {
		t.Fatalf("compute called %d times after repeat, want still 2", calls)
	}

	// The reversed pair is a distinct key.
	c.IsSubtype(types.String, types.Never, compute)
	if calls != 3 {
		t.Fatalf("compute called %d times, want 3 after reversed pair", calls)
	}
}

func TestClearResetsTablesAndCounters(t *testing.T) {
	c := New()
	c.Evaluate(types.Number, func(types.TypeID) types.TypeID { return types.String })
	c.IsSubtype(types.Never, types.String, func(types.TypeID, types.TypeID) bool { return true })

	c.Clear()

	stats := c.Stats()
	if stats.Hits != 0 || stats.Misses != 0 || stats.EvalEntries != 0 || stats.SubEntries != 0 {
		t.Fatalf("stats after Clear = %+v, want all zero", stats)
	}
}

func TestSnapshotRoundTripsThroughLoad(t *testing.T) {
	c := New()
	c.Evaluate(types.Number, func(types.TypeID) types.TypeID { return types.String })
	c.IsSubtype(types.Never, types.String, func(types.TypeID, types.TypeID) bool { return true })

	snap := c.Snapshot()
	if len(snap.Eval) != 1 || len(snap.Sub) != 1 {
		t.Fatalf("snapshot = %+v, want one entry in each table", snap)
	}

	fresh := New()
	fresh.Load(snap)

	calls := 0
	if got := fresh.Evaluate(types.Number, func(types.TypeID) types.TypeID {
		calls++
		return types.Never
	}); got != types.String {
		t.Fatalf("got %v after Load, want String (loaded, not recomputed)", got)
	}
	if calls != 0 {
		t.Fatal("Evaluate recomputed after Load instead of using the loaded entry")
	}

	if !fresh.IsSubtype(types.Never, types.String, func(types.TypeID, types.TypeID) bool {
		calls++
		return false
	}) {
		t.Fatal("expected loaded subtype result true")
	}
	if calls != 0 {
		t.Fatal("IsSubtype recomputed after Load instead of using the loaded entry")
	}
}

func TestDiskCachePutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dc, err := OpenDiskCache(dir)
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	c := New()
	c.Evaluate(types.Number, func(types.TypeID) types.TypeID { return types.String })
	snap := c.Snapshot()

	key := Sum([]byte("const x: number = 1;"))
	if !IsValid(key) {
		t.Fatal("Sum produced an invalid (zero) digest")
	}

	if err := dc.Put(key, snap); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := dc.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get reported no entry for a key just Put")
	}
	if len(got.Eval) != 1 || got.Eval[0].Type != types.Number || got.Eval[0].Result != types.String {
		t.Fatalf("round-tripped snapshot = %+v, want one Number->String entry", got)
	}
}

func TestDiskCacheGetMissingKeyIsNotAnError(t *testing.T) {
	dc, err := OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	_, ok, err := dc.Get(Sum([]byte("never written")))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("Get reported an entry for a key that was never Put")
	}
}

func TestDiskCacheDropAllRemovesEntries(t *testing.T) {
	dir := t.TempDir()
	dc, err := OpenDiskCache(dir)
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	key := Sum([]byte("x"))
	if err := dc.Put(key, Snapshot{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := dc.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}

	if _, ok, err := dc.Get(key); err != nil || ok {
		t.Fatalf("entry survived DropAll: ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("cache dir still exists after DropAll: %v", err)
	}
}

func TestNilDiskCacheIsANoop(t *testing.T) {
	var dc *DiskCache
	if err := dc.Put(Sum([]byte("x")), Snapshot{}); err != nil {
		t.Fatalf("Put on nil cache: %v", err)
	}
	if _, ok, err := dc.Get(Sum([]byte("x"))); err != nil || ok {
		t.Fatalf("Get on nil cache: ok=%v err=%v", ok, err)
	}
	if err := dc.DropAll(); err != nil {
		t.Fatalf("DropAll on nil cache: %v", err)
	}
}

func TestIsValidRejectsZeroDigest(t *testing.T) {
	var zero Digest
	if IsValid(zero) {
		t.Fatal("zero digest reported valid")
	}
}
