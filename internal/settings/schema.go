package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rnwolfe/exmachina/internal/config"
)

var (
	// ErrUnknownKey is returned when a write names a key the schema does not declare.
	ErrUnknownKey = errors.New("unknown settings key")
	// ErrTypeMismatch is returned when a value cannot be converted to the key's kind.
	ErrTypeMismatch = errors.New("settings value has wrong type")
)

// KeyEntry declares one settings key.
type KeyEntry struct {
	Key     string
	Kind    Kind
	Desc    string
	Default Value
}

// Schema is the ordered set of declared settings keys.
type Schema struct {
	order []string
	keys  map[string]KeyEntry
}

// NewSchema builds a schema. A later entry with the same key replaces an
// earlier one.
func NewSchema(entries ...KeyEntry) *Schema {
	s := &Schema{keys: make(map[string]KeyEntry, len(entries))}
	for _, e := range entries {
		s.Declare(e)
	}
	return s
}

// Declare adds or replaces a key.
func (s *Schema) Declare(e KeyEntry) {
	if _, ok := s.keys[e.Key]; !ok {
		s.order = append(s.order, e.Key)
	}
	if e.Default.kind != e.Kind {
		if v, err := coerce(e.Kind, e.Default); err == nil {
			e.Default = v
		}
	}
	s.keys[e.Key] = e
}

// Lookup returns the entry for key.
func (s *Schema) Lookup(key string) (KeyEntry, bool) {
	e, ok := s.keys[key]
	return e, ok
}

// Keys returns the declared keys in declaration order.
func (s *Schema) Keys() []string {
	return append([]string{}, s.order...)
}

// Entries returns every entry in declaration order.
func (s *Schema) Entries() []KeyEntry {
	out := make([]KeyEntry, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.keys[k])
	}
	return out
}

// Defaults returns a fresh map of every declared default.
func (s *Schema) Defaults() map[string]Value {
	out := make(map[string]Value, len(s.keys))
	for k, e := range s.keys {
		out[k] = e.Default
	}
	return out
}

// Parse converts a command-line string into a Value of key's kind.
// Lists are comma-separated.
func (s *Schema) Parse(key, raw string) (Value, error) {
	e, ok := s.keys[key]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	switch e.Kind {
	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s expects an integer, got %q", ErrTypeMismatch, key, raw)
		}
		return Int(n), nil
	case KindBool:
		b, err := ParseBoolValue(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s: %v", ErrTypeMismatch, key, err)
		}
		return Bool(b), nil
	case KindList:
		if strings.TrimSpace(raw) == "" {
			return List(), nil
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return List(parts...), nil
	default:
		return String(raw), nil
	}
}

// Coerce converts v to key's declared kind. Undeclared keys pass through.
func (s *Schema) Coerce(key string, v Value) (Value, error) {
	e, ok := s.keys[key]
	if !ok {
		return v, nil
	}
	out, err := coerce(e.Kind, v)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %s wants %s, got %s", ErrTypeMismatch, key, e.Kind, v.kind)
	}
	return out, nil
}

func coerce(kind Kind, v Value) (Value, error) {
	if v.kind == kind {
		return v, nil
	}
	switch kind {
	case KindString:
		if v.kind == KindList {
			return Value{}, ErrTypeMismatch
		}
		return String(v.String()), nil
	case KindInt:
		switch v.kind {
		case KindBool:
			return Int(v.Int()), nil
		case KindString:
			n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
			if err != nil {
				if v.s == "" {
					return Int(0), nil
				}
				return Value{}, ErrTypeMismatch
			}
			return Int(n), nil
		}
	case KindBool:
		switch v.kind {
		case KindInt:
			return Bool(v.n != 0), nil
		case KindString:
			if v.s == "" {
				return Bool(false), nil
			}
			b, err := ParseBoolValue(v.s)
			if err != nil {
				return Value{}, ErrTypeMismatch
			}
			return Bool(b), nil
		}
	case KindList:
		return List(v.List()...), nil
	}
	return Value{}, ErrTypeMismatch
}

// ParseBoolValue parses a user-supplied boolean.
func ParseBoolValue(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q (use true/false)", s)
	}
}

// DefaultFooterInsert returns the default footer markup. The child theme
// credit is included only when a child theme is active.
func DefaultFooterInsert(childTheme bool) string {
	copyright := `<p class="copyright">Copyright &#169; [the-year] [site-link].</p>`
	if childTheme {
		return copyright + "\n\n" + `<p class="credit">Powered by [wp-link], [theme-link], and [child-link].</p>`
	}
	return copyright + "\n\n" + `<p class="credit">Powered by [wp-link] and [theme-link].</p>`
}

// DefaultSchema returns the theme settings declared by the parent theme.
func DefaultSchema(theme config.ThemeConfig) *Schema {
	return NewSchema(
		KeyEntry{"comments_pages", KindBool, "Enable comments on pages", Bool(false)},
		KeyEntry{"comments_posts", KindBool, "Enable comments on posts", Bool(true)},
		KeyEntry{"trackbacks_pages", KindBool, "Enable trackbacks on pages", Bool(false)},
		KeyEntry{"trackbacks_posts", KindBool, "Enable trackbacks on posts", Bool(true)},
		KeyEntry{"content_archive", KindString, "Archive display: full or excerpts", String("full")},
		KeyEntry{"content_archive_limit", KindInt, "Archive content character limit (0 = none)", Int(0)},
		KeyEntry{"content_archive_thumbnail", KindBool, "Show featured image on archives", Bool(false)},
		KeyEntry{"content_archive_more", KindString, "Read more link text", String("[Read more...]")},
		KeyEntry{"image_size", KindString, "Featured image size", String("thumbnail")},
		KeyEntry{"posts_nav", KindString, "Archive navigation: numeric or prev-next", String("numeric")},
		KeyEntry{"single_nav", KindBool, "Show previous/next links on single posts", Bool(false)},
		KeyEntry{"header_scripts", KindString, "Markup inserted into the document head", String("")},
		KeyEntry{"footer_scripts", KindString, "Markup inserted before </body>", String("")},
		KeyEntry{"feed_uri", KindString, "Custom feed URL", String("")},
		KeyEntry{"redirect_feed", KindBool, "Redirect the main feed to feed_uri", Bool(false)},
		KeyEntry{"comments_feed_uri", KindString, "Custom comments feed URL", String("")},
		KeyEntry{"redirect_comments_feed", KindBool, "Redirect the comments feed to comments_feed_uri", Bool(false)},
		KeyEntry{"footer_insert", KindString, "Footer markup (shortcodes allowed)", String(DefaultFooterInsert(theme.IsChildTheme()))},
		KeyEntry{"theme_version", KindString, "Theme version that last saved the settings", String(theme.Version)},
	)
}
