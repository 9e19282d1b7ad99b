package rx

import "testing"

func TestCanonicalFlagsOrdersAndValidates(t *testing.T) {
	got, err := CanonicalFlags("mi")
	if err != nil {
		t.Fatal(err)
	}
	if got != "im" {
		t.Fatalf("got %q, want canonical order %q", got, "im")
	}
	if _, err := CanonicalFlags("q"); err == nil {
		t.Fatalf("unknown flag should error")
	}
}

func TestCacheCoherenceSharesEntry(t *testing.T) {
	cache := NewCache(MaxCacheSize)
	r1, err := New(cache, `\d+`, "i")
	if err != nil {
		t.Fatal(err)
	}
	r2, err := New(cache, `\d+`, "i")
	if err != nil {
		t.Fatal(err)
	}
	if r1.CacheID() != r2.CacheID() {
		t.Fatalf("two regexes with the same canonical (flags,pattern) should share a cache entry")
	}
}

func TestCacheEvictionRebuildsUnderSameID(t *testing.T) {
	cache := NewCache(2)
	r1, _ := New(cache, "a", "")
	_, _ = New(cache, "b", "")
	_, _ = New(cache, "c", "") // evicts r1's node (capacity 2, LRU)

	// r1's ID must still resolve to byte-equal matching behavior.
	m := Match(r1, "a", 0)
	if !m.Success {
		t.Fatalf("regex should still match after its cache entry was evicted and rebuilt")
	}
}

func TestMatchNamedCaptureDuplicateFirstNonEmptyWins(t *testing.T) {
	cache := NewCache(MaxCacheSize)
	r, err := New(cache, `(?<n>a)|(?<n>b)`, "")
	if err != nil {
		t.Fatal(err)
	}
	m := Match(r, "b", 0)
	if !m.Success {
		t.Fatalf("expected a match")
	}
	idx, ok := m.Named["n"]
	if !ok {
		t.Fatalf("named capture n should be present")
	}
	if m.Text(idx) != "b" {
		t.Fatalf("named capture n should refer to the non-empty capture, got %q", m.Text(idx))
	}
}

func TestReplaceWholeMatchRoundTrip(t *testing.T) {
	cache := NewCache(MaxCacheSize)
	r, _ := New(cache, `\d+`, "")
	out := Replace(r, "a1b22c333", "$0", 0, 0)
	if out != "a1b22c333" {
		t.Fatalf("replace with $0 should round-trip: got %q", out)
	}
	r2, _ := New(cache, `xyz`, "")
	out2 := Replace(r2, "a1b22c333", "$0", 0, 0)
	if out2 != "a1b22c333" {
		t.Fatalf("replace with no matches should equal input unchanged: got %q", out2)
	}
}

func TestCountMatchesSplitMinusOne(t *testing.T) {
	cache := NewCache(MaxCacheSize)
	r, _ := New(cache, `\d+`, "")
	input := "a1b22c333"
	count := Count(r, input, 0, 0)
	parts := Split(r, input, true, 0)
	if count != len(parts)-1 {
		t.Fatalf("count(r,s) should equal len(split(r,s))-1: count=%d parts=%d", count, len(parts))
	}
}

func TestResumableReplaceCallback(t *testing.T) {
	cache := NewCache(MaxCacheSize)
	r, _ := New(cache, `\d+`, "")
	st := BeginReplace(r, "a1b22c333", 0, 0)
	iterations := 0
	for st.LoopTop() {
		iterations++
		st.LoopBottom("#")
	}
	got := st.EndReplace()
	if got != "a#b#c#" {
		t.Fatalf("got %q, want a#b#c#", got)
	}
	if iterations != 3 {
		t.Fatalf("expected 3 match iterations, got %d", iterations)
	}
}

func TestWithStartEndAnchorsAndCaseInsensitive(t *testing.T) {
	cache := NewCache(MaxCacheSize)
	r, _ := New(cache, "abc", "")
	anchored, err := WithStartAnchor(cache, r)
	if err != nil {
		t.Fatal(err)
	}
	if Test(anchored, "xabc", 0) {
		t.Fatalf("start-anchored regex should not match when not at the start")
	}
	if !Test(anchored, "abcx", 0) {
		t.Fatalf("start-anchored regex should match at the start")
	}

	ci, err := AsCaseInsensitive(cache, r)
	if err != nil {
		t.Fatal(err)
	}
	if !Test(ci, "ABC", 0) {
		t.Fatalf("case-insensitive regex should match uppercase input")
	}
}
