package linebuf

import (
	"context"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/vicut/vicut/internal/cachemanager"
)

// patternCache memoizes compiled search patterns keyed by pattern text,
// built on internal/cachemanager's read-through wrapper over its
// patrickmn/go-cache-backed InMemoryCacheManager. Backed by regexp2 (a
// backtracking, .NET-style engine) rather than stdlib regexp (RE2), since
// Vim search patterns routinely use backreferences and lookaround that RE2
// cannot express. The cache's default TTL keeps a long-running --watch
// session from growing unbounded while a single-shot invocation effectively
// never evicts anything it used.
var patternCache = cachemanager.NewReadThroughCache[string, *regexp2.Regexp, string](
	cachemanager.NewInMemoryCacheManager[string, *regexp2.Regexp](
		"vicut-pattern-cache", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval,
	),
	func(_ context.Context, pattern string) (*regexp2.Regexp, error) {
		return regexp2.Compile(pattern, regexp2.None)
	},
	false,
)

// CompilePattern compiles (or retrieves from cache) a regexp2.Regexp for
// pattern, using case-sensitive, multiline-off Vim-like default options.
func CompilePattern(pattern string) (*regexp2.Regexp, error) {
	return patternCache.Get(context.Background(), pattern, pattern, cachemanager.DefaultExpiration)
}

// FindForward returns the byte range [start,end) of the first match of
// pattern in s at or after byte offset from, or ok=false if none.
func FindForward(pattern, s string, from int) (start, end int, ok bool, err error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return 0, 0, false, err
	}
	if from < 0 {
		from = 0
	}
	if from > len(s) {
		return 0, 0, false, nil
	}
	m, err := re.FindStringMatchStartingAt(s, from)
	if err != nil || m == nil {
		return 0, 0, false, err
	}
	return m.Index, m.Index + m.Length, true, nil
}

// MatchLine reports whether pattern matches anywhere in text, for the Ex
// global command (`g/pat/cmd`).
func MatchLine(pattern, text string) (bool, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return false, err
	}
	m, err := re.FindStringMatch(text)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// SubstituteLine replaces the first (or, if global, every) match of
// pattern in text with repl, returning the result and the number of
// replacements made. repl supports Vim-style `\1`..`\9` backreferences and
// `&` (whole match), translated to regexp2's `${1}`/`${0}` group syntax.
func SubstituteLine(pattern, repl, text string, global bool) (string, int, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return text, 0, err
	}
	goRepl := translateVimReplacement(repl)

	var sb strings.Builder
	count := 0
	pos := 0
	m, err := re.FindStringMatch(text)
	if err != nil {
		return text, 0, err
	}
	for m != nil {
		if !global && count == 1 {
			break
		}
		sb.WriteString(text[pos:m.Index])
		sb.WriteString(expandReplacement(goRepl, m))
		pos = m.Index + m.Length
		count++
		m, err = re.FindNextMatch(m)
		if err != nil {
			return text, count, err
		}
	}
	sb.WriteString(text[pos:])
	return sb.String(), count, nil
}

func translateVimReplacement(repl string) string {
	var sb strings.Builder
	for i := 0; i < len(repl); i++ {
		switch {
		case repl[i] == '&':
			sb.WriteString("${0}")
		case repl[i] == '\\' && i+1 < len(repl) && repl[i+1] >= '0' && repl[i+1] <= '9':
			sb.WriteString("${" + string(repl[i+1]) + "}")
			i++
		case repl[i] == '\\' && i+1 < len(repl):
			sb.WriteByte(repl[i+1])
			i++
		default:
			sb.WriteByte(repl[i])
		}
	}
	return sb.String()
}

func expandReplacement(tmpl string, m *regexp2.Match) string {
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] == '$' && i+1 < len(tmpl) && tmpl[i+1] == '{' {
			end := i + 2
			for end < len(tmpl) && tmpl[end] != '}' {
				end++
			}
			if end < len(tmpl) {
				idxStr := tmpl[i+2 : end]
				if g, err := strconv.Atoi(idxStr); err == nil {
					grp := m.GroupByNumber(g)
					if grp != nil && len(grp.Captures) > 0 {
						sb.WriteString(grp.String())
					}
					i = end
					continue
				}
			}
		}
		sb.WriteByte(tmpl[i])
	}
	return sb.String()
}

// FindBackward returns the byte range of the last match of pattern in s
// starting at or before byte offset upTo, or ok=false if none.
func FindBackward(pattern, s string, upTo int) (start, end int, ok bool, err error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return 0, 0, false, err
	}
	m, err := re.FindStringMatch(s)
	if err != nil {
		return 0, 0, false, err
	}
	last := -1
	lastEnd := -1
	for m != nil {
		if m.Index > upTo {
			break
		}
		last = m.Index
		lastEnd = m.Index + m.Length
		m, err = re.FindNextMatch(m)
		if err != nil {
			return 0, 0, false, err
		}
	}
	if last < 0 {
		return 0, 0, false, nil
	}
	return last, lastEnd, true, nil
}
