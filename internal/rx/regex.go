package rx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"smile/internal/errs"
)

// Regex is the user-facing handle: a (pattern, flags) pair together with
// a weak cache-entry ID.
type Regex struct {
	cache   *Cache
	id      int
	Pattern string
	Flags   string // canonical
}

// Capture is one (start, length) range, index 0 being the whole match.
type Capture struct {
	Start  int
	Length int
}

// RegexMatch carries the outcome of a single match attempt.
type RegexMatch struct {
	Success bool
	Input   string
	Groups  []Capture     // index 0 = whole match
	Named   map[string]int // name -> capture index
	Error   string
}

// Text returns the substring for capture group i, or "" if it didn't
// participate in the match.
func (m *RegexMatch) Text(i int) string {
	if !m.Success || i < 0 || i >= len(m.Groups) {
		return ""
	}
	g := m.Groups[i]
	if g.Start < 0 {
		return ""
	}
	return m.Input[g.Start : g.Start+g.Length]
}

// New compiles (or fetches from cache) a Regex for pattern/flags. flags
// may be given in any order; it is canonicalized before lookup.
func New(cache *Cache, pattern, flags string) (*Regex, error) {
	canon, err := CanonicalFlags(flags)
	if err != nil {
		return nil, err
	}
	node := cache.getOrCompile(pattern, canon)
	if !node.valid {
		return nil, errs.New(errs.ConfigurationError, fmt.Sprintf("invalid regex /%s/%s: %s", pattern, canon, node.errMsg))
	}
	return &Regex{cache: cache, id: node.id, Pattern: pattern, Flags: canon}, nil
}

// node resolves the Regex's current cache entry, recompiling under the
// same ID if it was evicted (the weak-reference contract).
func (r *Regex) node() *cacheNode {
	return r.cache.getOrCompile(r.Pattern, r.Flags)
}

// CacheID returns the regex's (stable, weak) cache entry ID.
func (r *Regex) CacheID() int { return r.id }

// WithStartAnchor wraps the pattern so it only matches at the start of
// the input (`\A(...)`).
func WithStartAnchor(cache *Cache, r *Regex) (*Regex, error) {
	return New(cache, `\A(?:`+r.Pattern+`)`, r.Flags)
}

// WithEndAnchor wraps the pattern so it only matches at the end of the
// input (`(...)\z`).
func WithEndAnchor(cache *Cache, r *Regex) (*Regex, error) {
	return New(cache, `(?:`+r.Pattern+`)\z`, r.Flags)
}

// AsCaseInsensitive returns an equivalent Regex with the 'i' flag added,
// if not already present.
func AsCaseInsensitive(cache *Cache, r *Regex) (*Regex, error) {
	if strings.ContainsRune(r.Flags, 'i') {
		return r, nil
	}
	return New(cache, r.Pattern, r.Flags+"i")
}

// Test reports whether the pattern matches anywhere at or after start.
func Test(r *Regex, input string, start int) bool {
	m := Match(r, input, start)
	return m.Success
}

// Match always returns a RegexMatch; on failure it carries Success=false
// and, if compilation itself failed, an Error message.
func Match(r *Regex, input string, start int) *RegexMatch {
	node := r.node()
	if !node.valid {
		return &RegexMatch{Success: false, Input: input, Error: node.errMsg}
	}
	m, err := node.re.FindStringMatchStartingAt(input, start)
	if err != nil {
		return &RegexMatch{Success: false, Input: input, Error: err.Error()}
	}
	if m == nil {
		return &RegexMatch{Success: false, Input: input}
	}
	return buildMatch(node, input, m)
}

func buildMatch(node *cacheNode, input string, m *regexp2.Match) *RegexMatch {
	groups := m.Groups()
	out := &RegexMatch{Success: true, Input: input, Named: map[string]int{}}
	out.Groups = make([]Capture, len(groups))
	for i, g := range groups {
		if len(g.Captures) == 0 {
			out.Groups[i] = Capture{Start: -1, Length: 0}
		} else {
			c := g.Captures[len(g.Captures)-1]
			out.Groups[i] = Capture{Start: c.Index, Length: c.Length}
		}
	}
	// Every name in the regex appears in the output map; if a name is
	// reused across alternatives, the first NON-EMPTY capture wins.
	for num, name := range node.names {
		if num >= len(out.Groups) {
			continue
		}
		cap := out.Groups[num]
		if existing, ok := out.Named[name]; !ok {
			out.Named[name] = num
		} else if out.Groups[existing].Length == 0 && cap.Length > 0 {
			out.Named[name] = num
		}
	}
	return out
}

// Count returns the number of non-overlapping matches starting at or
// after `start`, stopping after `limit` matches (0 = unlimited).
func Count(r *Regex, input string, start, limit int) int {
	node := r.node()
	if !node.valid {
		return 0
	}
	n := 0
	m, err := node.re.FindStringMatchStartingAt(input, start)
	for err == nil && m != nil {
		n++
		if limit > 0 && n >= limit {
			break
		}
		m, err = node.re.FindNextMatch(m)
	}
	return n
}

// Split produces the text between successive matches, plus any explicit
// capture groups from each match, honoring keepEmpty and limit (0 =
// unlimited pieces).
func Split(r *Regex, input string, keepEmpty bool, limit int) []string {
	node := r.node()
	if !node.valid {
		return []string{input}
	}
	var out []string
	prevEnd := 0
	m, err := node.re.FindStringMatch(input)
	for err == nil && m != nil {
		if limit > 0 && len(out) >= limit-1 {
			break
		}
		piece := input[prevEnd:m.Index]
		if keepEmpty || piece != "" {
			out = append(out, piece)
		}
		groups := m.Groups()
		for i := 1; i < len(groups); i++ {
			if len(groups[i].Captures) == 0 {
				continue
			}
			c := groups[i].Captures[len(groups[i].Captures)-1]
			txt := input[c.Index : c.Index+c.Length]
			if keepEmpty || txt != "" {
				out = append(out, txt)
			}
		}
		prevEnd = m.Index + m.Length
		m, err = node.re.FindNextMatch(m)
	}
	tail := input[prevEnd:]
	if keepEmpty || tail != "" {
		out = append(out, tail)
	}
	return out
}

// Replace substitutes every match (up to limit, 0 = unlimited) with the
// expansion of template (`$0`/`$&`/`$n`/`${n}`/`${name}`/`$+` escapes).
func Replace(r *Regex, input, template string, start, limit int) string {
	node := r.node()
	if !node.valid {
		return input
	}
	var sb strings.Builder
	prevEnd := start
	sb.WriteString(input[:start])
	n := 0
	m, err := node.re.FindStringMatchStartingAt(input, start)
	for err == nil && m != nil {
		if limit > 0 && n >= limit {
			break
		}
		sb.WriteString(input[prevEnd:m.Index])
		sb.WriteString(expandTemplate(node, m, template))
		prevEnd = m.Index + m.Length
		n++
		m, err = node.re.FindNextMatch(m)
	}
	sb.WriteString(input[prevEnd:])
	return sb.String()
}

func expandTemplate(node *cacheNode, m *regexp2.Match, template string) string {
	groups := m.Groups()
	groupText := func(i int) string {
		if i < 0 || i >= len(groups) || len(groups[i].Captures) == 0 {
			return ""
		}
		c := groups[i].Captures[len(groups[i].Captures)-1]
		return c.String()
	}
	nameToNum := map[string]int{}
	for num, name := range node.names {
		nameToNum[name] = num
	}

	var sb strings.Builder
	i := 0
	for i < len(template) {
		ch := template[i]
		if ch == '\\' && i+1 < len(template) {
			sb.WriteByte(template[i+1])
			i += 2
			continue
		}
		if ch != '$' {
			sb.WriteByte(ch)
			i++
			continue
		}
		// ch == '$'
		if i+1 >= len(template) {
			sb.WriteByte('$')
			i++
			continue
		}
		next := template[i+1]
		switch {
		case next == '$':
			sb.WriteByte('$')
			i += 2
		case next == '&' || next == '0':
			sb.WriteString(groupText(0))
			i += 2
		case next == '+':
			sb.WriteString(groupText(len(groups) - 1))
			i += 2
		case next == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				sb.WriteByte('$')
				i++
				continue
			}
			inner := template[i+2 : i+end]
			if num, err := strconv.Atoi(inner); err == nil {
				sb.WriteString(groupText(num))
			} else if num, ok := nameToNum[inner]; ok {
				sb.WriteString(groupText(num))
			}
			i += end + 1
		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(template) && j < i+3 && template[j] >= '0' && template[j] <= '9' {
				j++
			}
			num, _ := strconv.Atoi(template[i+1 : j])
			sb.WriteString(groupText(num))
			i = j
		default:
			sb.WriteByte('$')
			i++
		}
	}
	return sb.String()
}
