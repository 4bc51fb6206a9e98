// Package shortcode expands bracketed markup macros such as [the-year] or
// [link href="/"]text[/link] inside theme output.
package shortcode

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Handler renders one shortcode. attrs holds named attributes; positional
// attributes and bare flags are keyed by their index ("0", "1", ...).
// content is the enclosed text of [tag]...[/tag], empty for self-closing tags.
type Handler func(attrs map[string]string, content string) string

// Expander holds the registered shortcodes. The zero value is not usable;
// call New.
type Expander struct {
	mu   sync.RWMutex
	tags map[string]Handler
}

// New returns an empty expander.
func New() *Expander {
	return &Expander{tags: make(map[string]Handler)}
}

// Add registers h for tag, replacing any previous handler.
func (x *Expander) Add(tag string, h Handler) {
	if tag == "" || h == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.tags[tag] = h
}

// Remove unregisters tag.
func (x *Expander) Remove(tag string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.tags, tag)
}

// Has reports whether tag is registered.
func (x *Expander) Has(tag string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.tags[tag]
	return ok
}

// Tags returns the registered tags, sorted.
func (x *Expander) Tags() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]string, 0, len(x.tags))
	for t := range x.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Expand replaces every registered shortcode in content with its handler's
// output. Unknown tags are left as written and [[tag]] yields a literal [tag].
func (x *Expander) Expand(content string) string {
	return x.replace(content, func(m match) string {
		return m.handler(m.attrs, m.content)
	})
}

// Strip removes every registered shortcode, including enclosed content.
func (x *Expander) Strip(content string) string {
	return x.replace(content, func(match) string { return "" })
}

var openTag = regexp.MustCompile(`\[(\[?)([A-Za-z0-9_-]+)(\s[^\[\]]*?)?(/?)\](\]?)`)

type match struct {
	handler Handler
	attrs   map[string]string
	content string
}

func (x *Expander) replace(content string, render func(match) string) string {
	if !strings.Contains(content, "[") {
		return content
	}

	x.mu.RLock()
	tags := make(map[string]Handler, len(x.tags))
	for k, v := range x.tags {
		tags[k] = v
	}
	x.mu.RUnlock()
	if len(tags) == 0 {
		return content
	}

	var b strings.Builder
	pos := 0
	for pos < len(content) {
		loc := openTag.FindStringSubmatchIndex(content[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		group := func(i int) string {
			if loc[2*i] < 0 {
				return ""
			}
			return content[pos+loc[2*i] : pos+loc[2*i+1]]
		}
		escOpen, tag, rawAttrs, selfClose, escClose := group(1), group(2), group(3), group(4), group(5)

		h, ok := tags[tag]
		if !ok {
			// Emit the first bracket only so a nested tag after it can still match.
			b.WriteString(content[pos : start+1])
			pos = start + 1
			continue
		}

		b.WriteString(content[pos:start])

		inner := ""
		tagEnd := end
		if escClose != "" {
			tagEnd-- // the trailing ] belongs to the escape
		}
		closeEnd := tagEnd
		if selfClose == "" {
			closing := "[/" + tag + "]"
			if i := strings.Index(content[tagEnd:], closing); i >= 0 {
				inner = content[tagEnd : tagEnd+i]
				closeEnd = tagEnd + i + len(closing)
			}
		}

		if escOpen != "" {
			// [[tag]] and [[tag]...[/tag]] are printed without the outer brackets.
			if escClose != "" {
				b.WriteString(content[start+1 : end-1])
				pos = end
				continue
			}
			if closeEnd < len(content) && content[closeEnd] == ']' {
				b.WriteString(content[start+1 : closeEnd])
				pos = closeEnd + 1
				continue
			}
			// Unbalanced escape: keep the extra bracket and expand normally.
			b.WriteByte('[')
		}

		b.WriteString(render(match{handler: h, attrs: ParseAttrs(rawAttrs), content: inner}))
		pos = closeEnd
	}
	b.WriteString(content[pos:])
	return b.String()
}

var attrPattern = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"|([\w-]+)\s*=\s*'([^']*)'|([\w-]+)\s*=\s*([^\s'"]+)|"([^"]*)"|(\S+)`)

// ParseAttrs parses a shortcode attribute string. Attribute names are
// lowercased.
func ParseAttrs(s string) map[string]string {
	attrs := map[string]string{}
	s = strings.TrimSpace(s)
	if s == "" {
		return attrs
	}

	idx := 0
	for _, m := range attrPattern.FindAllStringSubmatch(s, -1) {
		switch {
		case m[1] != "":
			attrs[strings.ToLower(m[1])] = m[2]
		case m[3] != "":
			attrs[strings.ToLower(m[3])] = m[4]
		case m[5] != "":
			attrs[strings.ToLower(m[5])] = m[6]
		case m[8] != "":
			attrs[strconv.Itoa(idx)] = m[8]
			idx++
		default:
			attrs[strconv.Itoa(idx)] = m[7]
			idx++
		}
	}
	return attrs
}

// Atts merges attrs over defaults, dropping keys defaults does not declare.
func Atts(defaults, attrs map[string]string) map[string]string {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		if a, ok := attrs[k]; ok {
			out[k] = a
			continue
		}
		out[k] = v
	}
	return out
}
