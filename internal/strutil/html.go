package strutil

import "sync"

// htmlByCode maps a codepoint to its entity name (the first name listed
// for it in htmlEntityTable). It is a flat map keyed by the whole
// codepoint, not a two-level index.
var htmlByCode map[rune]string

// htmlTrieNode is one node of the hand-coded prefix-tree matcher used for
// entity-name lookup.
type htmlTrieNode struct {
	children map[byte]*htmlTrieNode
	code     rune
	isEntity bool
}

var htmlTrieRoot *htmlTrieNode
var htmlInitOnce sync.Once

func initHTMLTables() {
	htmlByCode = make(map[rune]string, len(htmlEntityTable))
	htmlTrieRoot = &htmlTrieNode{children: map[byte]*htmlTrieNode{}}

	for _, e := range htmlEntityTable {
		if _, exists := htmlByCode[e.Code]; !exists {
			htmlByCode[e.Code] = e.Name
		}
		node := htmlTrieRoot
		for i := 0; i < len(e.Name); i++ {
			b := e.Name[i]
			child, ok := node.children[b]
			if !ok {
				child = &htmlTrieNode{children: map[byte]*htmlTrieNode{}}
				node.children[b] = child
			}
			node = child
		}
		node.isEntity = true
		node.code = e.Code
	}
}

// HTMLEntityNameForCode looks up the canonical entity name for a codepoint,
// using the htmlByCode map. Returns "", false
// if the codepoint has no named entity.
func HTMLEntityNameForCode(code rune) (string, bool) {
	htmlInitOnce.Do(initHTMLTables)
	name, ok := htmlByCode[code]
	return name, ok
}

// HTMLEntityCodeForName looks up the codepoint for an entity name (without
// the surrounding "&"/";") via the prefix-tree matcher.
func HTMLEntityCodeForName(name string) (rune, bool) {
	htmlInitOnce.Do(initHTMLTables)
	node := htmlTrieRoot
	for i := 0; i < len(name); i++ {
		child, ok := node.children[name[i]]
		if !ok {
			return 0, false
		}
		node = child
	}
	if !node.isEntity {
		return 0, false
	}
	return node.code, true
}

// HTMLEntityCodeForPrefix walks the trie from the start of s and returns the
// codepoint and byte-length of the LONGEST entity name that prefixes s, as
// used when scanning "&name;" references out of free text.
func HTMLEntityCodeForPrefix(s string) (code rune, length int, ok bool) {
	htmlInitOnce.Do(initHTMLTables)
	node := htmlTrieRoot
	bestLen := 0
	var bestCode rune
	for i := 0; i < len(s); i++ {
		child, exists := node.children[s[i]]
		if !exists {
			break
		}
		node = child
		if node.isEntity {
			bestLen = i + 1
			bestCode = node.code
		}
	}
	if bestLen == 0 {
		return 0, 0, false
	}
	return bestCode, bestLen, true
}
