// Package request resolves a request's position in the site's content
// taxonomy into an ordered list of context tokens.
//
// Tokens run from least to most specific. A singular post page resolves to
//
//	singular, singular-post, singular-post-42
//
// and the hook dispatcher fires one contextual hook per token in that order.
package request

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Kind is the primary shape of a request.
type Kind string

const (
	KindHome     Kind = "home" // posts index
	KindSingular Kind = "singular"
	KindArchive  Kind = "archive"
	KindSearch   Kind = "search"
	KindNotFound Kind = "404"
)

// Request is the resolved target of one incoming request, supplied by the host.
type Request struct {
	Kind Kind
	// FrontPage is set when the request is for the site's front page. A
	// static front page is KindSingular with FrontPage set.
	FrontPage bool

	// Singular fields.
	PostType string
	ID       int64
	MimeType string // attachments only, e.g. "image/jpeg"

	Archive Archive
}

// Archive describes an archive request. Zero fields are ignored.
type Archive struct {
	PostType string // post type archive

	Taxonomy string
	TermSlug string
	TermID   int64

	Author   string // user nicename
	AuthorID int64

	Year, Month, Week, Day bool
	Hour, Minute           bool
	Time                   bool
}

func (a Archive) isDate() bool {
	return a.Year || a.Month || a.Week || a.Day
}

func (a Archive) isTime() bool {
	return a.Time || a.Hour || a.Minute
}

// Resolve returns the ordered context tokens for req. It is a pure function.
func Resolve(req Request) []string {
	var tokens []string
	add := func(t ...string) { tokens = append(tokens, t...) }

	if req.FrontPage {
		add("home")
	}

	switch req.Kind {
	case KindHome:
		add("blog")

	case KindSingular:
		postType := SanitizeToken(req.PostType, "post")
		id := strconv.FormatInt(req.ID, 10)
		add("singular", "singular-"+postType, "singular-"+postType+"-"+id)

		if postType == "attachment" {
			add("attachment")
			if typ, sub, ok := strings.Cut(req.MimeType, "/"); ok {
				add("attachment-"+SanitizeToken(typ, ""), "attachment-"+SanitizeToken(sub, ""))
			} else if req.MimeType != "" {
				add("attachment-" + SanitizeToken(req.MimeType, ""))
			}
		}

	case KindArchive:
		add("archive")
		a := req.Archive

		if a.PostType != "" {
			add("archive-" + SanitizeToken(a.PostType, ""))
		}

		switch {
		case a.Taxonomy != "":
			tax := SanitizeToken(a.Taxonomy, "")
			slug := a.TermSlug
			if a.Taxonomy == "post_format" {
				slug = strings.TrimPrefix(slug, "post-format-")
			}
			add("taxonomy", "taxonomy-"+tax,
				"taxonomy-"+tax+"-"+SanitizeToken(slug, strconv.FormatInt(a.TermID, 10)))

		case a.Author != "" || a.AuthorID != 0:
			add("user", "user-"+SanitizeToken(a.Author, strconv.FormatInt(a.AuthorID, 10)))

		default:
			if a.isDate() {
				add("date")
				if a.Year {
					add("year")
				}
				if a.Month {
					add("month")
				}
				if a.Week {
					add("week")
				}
				if a.Day {
					add("day")
				}
			}
			if a.isTime() {
				add("time")
				if a.Hour {
					add("hour")
				}
				if a.Minute {
					add("minute")
				}
			}
		}

	case KindSearch:
		add("search")

	case KindNotFound:
		add("error-404")
	}

	return unique(tokens)
}

// unique drops repeated and empty tokens, keeping the first occurrence.
func unique(tokens []string) []string {
	return lo.Uniq(lo.Compact(tokens))
}

// SanitizeToken lowercases s, strips percent-encoded octets and keeps only
// [a-z0-9_-]. If nothing survives, fallback is sanitized and returned instead.
func SanitizeToken(s, fallback string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			i += 2
			continue
		}
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			b.WriteByte(c)
		}
	}

	if b.Len() == 0 && fallback != "" {
		return SanitizeToken(fallback, "")
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
