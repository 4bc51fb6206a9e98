package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/rnwolfe/exmachina/internal/request"
)

// requestFlags describe the request to resolve. Exactly one of --blog,
// --singular, --archive, --search and --404 picks the request kind; --front
// may be added to --blog or --singular.
type requestFlags struct {
	front    bool
	blog     bool
	singular string
	id       int64
	mime     string
	archive  string
	taxonomy string
	term     string
	author   string
	date     string
	search   bool
	notFound bool
}

var kindFlags = []string{"blog", "singular", "archive", "search", "404"}

func (r *requestFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&r.front, "front", false, "Request is for the front page")
	fs.BoolVar(&r.blog, "blog", false, "Posts index")
	fs.StringVar(&r.singular, "singular", "", "Singular request of this post type (post, page, attachment, ...)")
	fs.Int64Var(&r.id, "id", 0, "Post ID for --singular")
	fs.StringVar(&r.mime, "mime", "", "Attachment MIME type, e.g. image/jpeg")
	fs.StringVar(&r.archive, "archive", "", "Archive request; --archive=TYPE for a post type archive")
	fs.Lookup("archive").NoOptDefVal = " "
	fs.StringVar(&r.taxonomy, "taxonomy", "", "Taxonomy for a term archive (category, post_tag, ...)")
	fs.StringVar(&r.term, "term", "", "Term slug for --taxonomy")
	fs.StringVar(&r.author, "author", "", "Author nicename for an author archive")
	fs.StringVar(&r.date, "date", "", "Date archive parts: comma list of year,month,week,day,hour,minute,time")
	fs.BoolVar(&r.search, "search", false, "Search results")
	fs.BoolVar(&r.notFound, "404", false, "Not found")
}

// Request builds the request described by the flags that were set on fs.
// With no kind flag the request is the blog home.
func (r *requestFlags) Request(fs *pflag.FlagSet) (request.Request, error) {
	var kinds []string
	fs.Visit(func(f *pflag.Flag) {
		for _, k := range kindFlags {
			if f.Name == k {
				kinds = append(kinds, "--"+k)
			}
		}
	})
	if len(kinds) > 1 {
		return request.Request{}, fmt.Errorf("conflicting request flags: %s", strings.Join(kinds, ", "))
	}

	req := request.Request{Kind: request.KindHome, FrontPage: r.front}
	switch {
	case r.singular != "":
		req.Kind = request.KindSingular
		req.PostType = r.singular
		req.ID = r.id
		req.MimeType = r.mime
	case fs.Changed("archive"):
		req.Kind = request.KindArchive
		req.Archive.PostType = strings.TrimSpace(r.archive)
		req.Archive.Taxonomy = r.taxonomy
		req.Archive.TermSlug = r.term
		req.Archive.Author = r.author
		if err := applyDateParts(&req.Archive, r.date); err != nil {
			return request.Request{}, err
		}
	case r.search:
		req.Kind = request.KindSearch
	case r.notFound:
		req.Kind = request.KindNotFound
	}

	if req.Kind != request.KindArchive && (r.taxonomy != "" || r.author != "" || r.date != "") {
		return request.Request{}, fmt.Errorf("--taxonomy, --author and --date need --archive")
	}
	if r.front && req.Kind != request.KindHome && req.Kind != request.KindSingular {
		return request.Request{}, fmt.Errorf("--front only combines with --blog or --singular")
	}
	return req, nil
}

func applyDateParts(a *request.Archive, list string) error {
	if list == "" {
		return nil
	}
	for _, part := range strings.Split(list, ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "year":
			a.Year = true
		case "month":
			a.Month = true
		case "week":
			a.Week = true
		case "day":
			a.Day = true
		case "hour":
			a.Hour = true
		case "minute":
			a.Minute = true
		case "time":
			a.Time = true
		case "":
		default:
			return fmt.Errorf("unknown date part %q", part)
		}
	}
	return nil
}
