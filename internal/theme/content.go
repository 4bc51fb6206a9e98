package theme

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
)

// TruncatePhrase shortens text to at most maxChars runes, cutting at the last
// space. Only spaces count as word breaks. If the first maxChars+1 runes contain
// no space the result is empty.
func TruncatePhrase(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	if maxChars < 0 {
		maxChars = 0
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:maxChars+1])
	i := strings.LastIndex(cut, " ")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(cut[:i])
}

var plainText = bluemonday.StrictPolicy()

// ContentLimit renders content as a plain-text teaser of at most maxChars
// characters inside a <p>. Tags, shortcodes and inline scripts and styles
// are removed first. A truncated teaser ends with an ellipsis and a more
// link to permalink unless moreText is empty.
//
// The link passes through the get_the_content_more_link filter and the
// whole output through get_the_content_limit.
func (t *Theme) ContentLimit(ctx context.Context, content string, maxChars int, moreText, permalink string) (string, error) {
	content = t.shortcodes.Strip(content)
	// Sanitize escapes entities; measure the text a reader sees.
	text := strings.TrimSpace(html.UnescapeString(plainText.Sanitize(content)))

	truncated := false
	if utf8.RuneCountInString(text) > maxChars {
		text = TruncatePhrase(text, maxChars)
		truncated = true
	}
	content = html.EscapeString(text)

	var link, output string
	if moreText != "" && truncated {
		link = fmt.Sprintf(`&#x02026; <a href="%s" class="more-link">%s</a>`, html.EscapeString(permalink), moreText)
		var err error
		link, err = t.hooks.ApplyFiltersString(ctx, "get_the_content_more_link", link, moreText)
		if err != nil {
			return "", err
		}
		output = fmt.Sprintf("<p>%s %s</p>", content, link)
	} else {
		output = fmt.Sprintf("<p>%s</p>", content)
	}

	return t.hooks.ApplyFiltersString(ctx, "get_the_content_limit", output, content, link, maxChars)
}

// HumanTimeDiff describes the time between older and now in words, e.g.
// "3 hours ago".
func (t *Theme) HumanTimeDiff(older time.Time) string {
	return humanize.RelTime(older, t.clock.Now(), "ago", "from now")
}
