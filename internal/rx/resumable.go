package rx

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// ReplaceState drives a resumable replace loop so a Smile-level callback
// (rather than a template string) can compute each replacement.
type ReplaceState struct {
	node    *cacheNode
	input   string
	limit   int
	count   int
	prevEnd int
	sb      strings.Builder

	// Match is populated by LoopTop for the current iteration; the
	// caller reads it to compute a replacement before calling LoopBottom.
	Match *RegexMatch

	lastMatch  *regexp2.Match
	started    bool
	pendingEnd int
	exhausted  bool
}

// BeginReplace starts a resumable replace over input, starting at byte
// offset `start` and stopping after `limit` replacements (0 = unlimited).
func BeginReplace(r *Regex, input string, start, limit int) *ReplaceState {
	node := r.node()
	st := &ReplaceState{node: node, input: input, limit: limit, prevEnd: start}
	st.sb.WriteString(input[:start])
	return st
}

// LoopTop attempts to find the next match. If found, it appends the
// pre-match text to the accumulating output, populates st.Match, and
// returns true so the caller can compute a replacement and call
// LoopBottom. Returns false once there are no more matches (or the
// limit was reached), at which point EndReplace should be called.
func (st *ReplaceState) LoopTop() bool {
	if st.exhausted || !st.node.valid {
		return false
	}
	if st.limit > 0 && st.count >= st.limit {
		st.exhausted = true
		return false
	}

	var m *regexp2.Match
	var err error
	if !st.started {
		m, err = st.node.re.FindStringMatchStartingAt(st.input, st.prevEnd)
		st.started = true
	} else {
		m, err = st.node.re.FindNextMatch(st.lastMatch)
	}
	if err != nil || m == nil {
		st.exhausted = true
		return false
	}

	st.sb.WriteString(st.input[st.prevEnd:m.Index])
	st.Match = buildMatch(st.node, st.input, m)
	st.pendingEnd = m.Index + m.Length
	st.lastMatch = m
	return true
}

// LoopBottom appends the caller-computed replacement text and advances
// the cursor past the match that LoopTop just reported.
func (st *ReplaceState) LoopBottom(replacement string) {
	st.sb.WriteString(replacement)
	st.prevEnd = st.pendingEnd
	st.count++
}

// EndReplace appends any trailing unmatched text and returns the final
// string.
func (st *ReplaceState) EndReplace() string {
	st.sb.WriteString(st.input[st.prevEnd:])
	return st.sb.String()
}
