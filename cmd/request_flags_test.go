package cmd

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/rnwolfe/exmachina/internal/request"
)

func parseRequest(t *testing.T, args ...string) (request.Request, error) {
	t.Helper()
	var rf requestFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	rf.register(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return rf.Request(fs)
}

func TestRequestFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want request.Request
	}{
		{
			name: "no flags is the blog",
			want: request.Request{Kind: request.KindHome},
		},
		{
			name: "front blog",
			args: []string{"--front", "--blog"},
			want: request.Request{Kind: request.KindHome, FrontPage: true},
		},
		{
			name: "singular post",
			args: []string{"--singular", "post", "--id", "42"},
			want: request.Request{Kind: request.KindSingular, PostType: "post", ID: 42},
		},
		{
			name: "static front page",
			args: []string{"--front", "--singular", "page", "--id", "2"},
			want: request.Request{Kind: request.KindSingular, FrontPage: true, PostType: "page", ID: 2},
		},
		{
			name: "attachment",
			args: []string{"--singular", "attachment", "--id", "7", "--mime", "image/jpeg"},
			want: request.Request{Kind: request.KindSingular, PostType: "attachment", ID: 7, MimeType: "image/jpeg"},
		},
		{
			name: "bare archive",
			args: []string{"--archive"},
			want: request.Request{Kind: request.KindArchive},
		},
		{
			name: "post type archive",
			args: []string{"--archive=book"},
			want: request.Request{Kind: request.KindArchive, Archive: request.Archive{PostType: "book"}},
		},
		{
			name: "term archive",
			args: []string{"--archive", "--taxonomy", "category", "--term", "news"},
			want: request.Request{Kind: request.KindArchive, Archive: request.Archive{Taxonomy: "category", TermSlug: "news"}},
		},
		{
			name: "author archive",
			args: []string{"--archive", "--author", "admin"},
			want: request.Request{Kind: request.KindArchive, Archive: request.Archive{Author: "admin"}},
		},
		{
			name: "date archive",
			args: []string{"--archive", "--date", "year, Month,day"},
			want: request.Request{Kind: request.KindArchive, Archive: request.Archive{Year: true, Month: true, Day: true}},
		},
		{
			name: "search",
			args: []string{"--search"},
			want: request.Request{Kind: request.KindSearch},
		},
		{
			name: "not found",
			args: []string{"--404"},
			want: request.Request{Kind: request.KindNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRequest(t, tt.args...)
			if err != nil {
				t.Fatalf("Request() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Request() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequestFlagsErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"two kinds", []string{"--search", "--404"}, "conflicting request flags: --search, --404"},
		{"blog and singular", []string{"--blog", "--singular", "post"}, "conflicting request flags"},
		{"taxonomy without archive", []string{"--singular", "post", "--taxonomy", "category"}, "need --archive"},
		{"date without archive", []string{"--date", "year"}, "need --archive"},
		{"front archive", []string{"--front", "--archive"}, "--front only combines"},
		{"front search", []string{"--front", "--search"}, "--front only combines"},
		{"bad date part", []string{"--archive", "--date", "year,decade"}, `unknown date part "decade"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRequest(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRequestFlagsResolve(t *testing.T) {
	req, err := parseRequest(t, "--archive", "--date", "year,month,hour")
	if err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	want := []string{"archive", "date", "year", "month", "time", "hour"}
	if diff := cmp.Diff(want, request.Resolve(req)); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}
