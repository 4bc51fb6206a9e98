package theme

import (
	"context"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// FeedRequest describes an incoming feed request for FeedRedirect.
type FeedRequest struct {
	IsFeed        bool
	IsCommentFeed bool
	UserAgent     string
	// Archive, search and singular (per-post comment) feeds are never redirected.
	IsArchive  bool
	IsSearch   bool
	IsSingular bool
}

var feedBots = regexp.MustCompile(`(?i)feedburner|feedvalidator`)

var mainFeedTypes = []string{"", "rss2", "rss", "rdf", "atom"}

// FeedLink returns the public URL for a feed, letting feed_link filters
// substitute the custom feed URIs.
func (t *Theme) FeedLink(ctx context.Context, output, feed string) (string, error) {
	return t.hooks.ApplyFiltersString(ctx, "feed_link", output, feed)
}

// feedLinkFilter replaces the default feed URLs with the feed_uri and
// comments_feed_uri settings.
func (t *Theme) feedLinkFilter(ctx context.Context, value any, args ...any) (any, error) {
	output, _ := value.(string)
	feed := ""
	if len(args) > 0 {
		feed, _ = args[0].(string)
	}
	if t.settings == nil {
		return output, nil
	}

	feedURI := t.settings.String(ctx, "feed_uri")
	commentsURI := t.settings.String(ctx, "comments_feed_uri")
	isComments := strings.Contains(output, "comments")

	if feedURI != "" && !isComments && slices.Contains(mainFeedTypes, feed) {
		output = escURL(feedURI)
	}
	if commentsURI != "" && isComments {
		output = escURL(commentsURI)
	}
	return output, nil
}

// FeedRedirect decides whether a feed request should be redirected to the
// custom feed URL. It returns the target and true when a 302 is due.
func (t *Theme) FeedRedirect(ctx context.Context, req FeedRequest) (string, bool) {
	if !req.IsFeed || feedBots.MatchString(req.UserAgent) {
		return "", false
	}
	if req.IsArchive || req.IsSearch || req.IsSingular {
		return "", false
	}
	if t.settings == nil {
		return "", false
	}

	feedURI := t.settings.String(ctx, "feed_uri")
	commentsURI := t.settings.String(ctx, "comments_feed_uri")

	if feedURI != "" && !req.IsCommentFeed && t.settings.Bool(ctx, "redirect_feed") {
		return escURL(feedURI), true
	}
	if commentsURI != "" && req.IsCommentFeed && t.settings.Bool(ctx, "redirect_comments_feed") {
		return escURL(commentsURI), true
	}
	return "", false
}

// escURL keeps http(s) and scheme-relative URLs and drops anything else.
func escURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "http", "https", "":
		return u.String()
	default:
		return ""
	}
}
