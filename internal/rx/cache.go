// Package rx implements the regex subsystem: an LRU-cached compiled-
// pattern store shared process-wide, plus match/split/count/replace
// operations including a resumable replace state machine.
//
// The cache is a doubly-linked-list LRU with a two-index (key->id,
// id->node) shape: a regex's ID survives eviction and rebuilds under the
// same ID on next lookup, which a generic eviction-callback LRU library's
// model doesn't give for free.
package rx

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
	"github.com/dustin/go-humanize"

	"smile/internal/errs"
)

// MaxCacheSize is the LRU's fixed default capacity.
const MaxCacheSize = 256

// allFlags lists every recognized flag letter in canonical order.
const allFlags = "aimnsx"

// cacheNode is one LRU entry: a compiled pattern plus its doubly-linked
// position. Regex objects hold only the node's ID (a weak reference);
// the node itself may be evicted and rebuilt transparently.
type cacheNode struct {
	id      int
	key     string // "{canonicalFlags}/{pattern}"
	pattern string
	flags   string
	valid   bool
	errMsg  string
	re      *regexp2.Regexp
	names   map[int]string // capture group number -> name, for named groups

	prev, next *cacheNode
}

// Cache is the process-wide (or per-interpreter-context) regex LRU.
type Cache struct {
	mu         sync.Mutex
	capacity   int
	nextID     int
	keyToID    map[string]int
	idToNode   map[int]*cacheNode
	head, tail *cacheNode // head = most-recently-used
	size       int
}

// NewCache builds an empty cache with the given capacity (use
// MaxCacheSize for the default).
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		keyToID:  make(map[string]int),
		idToNode: make(map[int]*cacheNode),
	}
}

// CanonicalFlags validates and alphabetically reorders a flag string.
// Unknown flags produce a configuration-error.
func CanonicalFlags(flags string) (string, error) {
	seen := map[byte]bool{}
	for i := 0; i < len(flags); i++ {
		c := flags[i]
		if !strings.ContainsRune(allFlags, rune(c)) {
			return "", errs.New(errs.ConfigurationError, fmt.Sprintf("unknown regex flag %q", string(c)))
		}
		seen[c] = true
	}
	var sb strings.Builder
	for i := 0; i < len(allFlags); i++ {
		if seen[allFlags[i]] {
			sb.WriteByte(allFlags[i])
		}
	}
	return sb.String(), nil
}

func cacheKey(canonicalFlags, pattern string) string {
	return canonicalFlags + "/" + pattern
}

// getOrCompile returns the cache node for (flags, pattern), compiling and
// inserting it if absent, and bumping it to the head of the LRU either
// way. Two regexes with the same canonical (flags, pattern) always
// resolve to the same node/ID.
func (c *Cache) getOrCompile(pattern, canonicalFlags string) *cacheNode {
	key := cacheKey(canonicalFlags, pattern)

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.keyToID[key]; ok {
		if node, ok := c.idToNode[id]; ok {
			c.bump(node)
			return node
		}
		// Evicted: rebuild under the SAME id so existing weak references
		// keep resolving to byte-equal behavior.
		node := c.compile(id, key, pattern, canonicalFlags)
		c.idToNode[id] = node
		c.attachAtHead(node)
		c.evictIfNeeded()
		return node
	}

	c.nextID++
	id := c.nextID
	node := c.compile(id, key, pattern, canonicalFlags)
	c.keyToID[key] = id
	c.idToNode[id] = node
	c.attachAtHead(node)
	c.evictIfNeeded()
	return node
}

func (c *Cache) compile(id int, key, pattern, canonicalFlags string) *cacheNode {
	// Note: the 'a' (ASCII-only) flag is canonicalized and recorded on the
	// node but has no dedicated regexp2 option; \w/\d/\s remain
	// Unicode-aware under it.
	opts := regexp2.None
	if strings.ContainsRune(canonicalFlags, 'i') {
		opts |= regexp2.IgnoreCase
	}
	if strings.ContainsRune(canonicalFlags, 'm') {
		opts |= regexp2.Multiline
	}
	if strings.ContainsRune(canonicalFlags, 's') {
		opts |= regexp2.Singleline
	}
	if strings.ContainsRune(canonicalFlags, 'x') {
		opts |= regexp2.IgnorePatternWhitespace
	}
	re, err := regexp2.Compile(pattern, opts)
	node := &cacheNode{id: id, key: key, pattern: pattern, flags: canonicalFlags}
	if err != nil {
		node.valid = false
		node.errMsg = err.Error()
		return node
	}
	node.valid = true
	node.re = re
	node.names = namedGroups(re)
	return node
}

func namedGroups(re *regexp2.Regexp) map[int]string {
	out := map[int]string{}
	for _, name := range re.GetGroupNames() {
		if num := re.GroupNumberFromName(name); num >= 0 {
			if _, isNumeric := isAllDigits(name); !isNumeric {
				out[num] = name
			}
		}
	}
	return out
}

func isAllDigits(s string) (string, bool) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return s, false
		}
	}
	return s, true
}

func (c *Cache) attachAtHead(node *cacheNode) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
	c.size++
}

func (c *Cache) detach(node *cacheNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
	node.prev, node.next = nil, nil
	c.size--
}

func (c *Cache) bump(node *cacheNode) {
	if node == c.head {
		return
	}
	c.detach(node)
	c.attachAtHead(node)
}

func (c *Cache) evictIfNeeded() {
	for c.size > c.capacity && c.tail != nil {
		victim := c.tail
		c.detach(victim)
		delete(c.idToNode, victim.id)
		// keyToID is left intact: the key still resolves to this id, and
		// the next lookup recompiles on demand under the same id.
	}
}

// Stats returns a short human-readable occupancy line for diagnostics.
func (c *Cache) Stats() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("regex cache: %s/%s entries", humanize.Comma(int64(c.size)), humanize.Comma(int64(c.capacity)))
}

