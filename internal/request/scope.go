package request

import (
	"context"
	"slices"
	"sync"
)

// Scope memoises the context tokens for one request. Every dispatcher call
// made while handling the request sees the same sequence.
type Scope struct {
	req     Request
	once    sync.Once
	tokens  []string
	resolve func(Request) []string
}

// NewScope returns a Scope that resolves req lazily on first use.
func NewScope(req Request) *Scope {
	return &Scope{req: req, resolve: Resolve}
}

// WithTokens returns a Scope over a precomputed token list.
func WithTokens(tokens []string) *Scope {
	s := &Scope{}
	s.once.Do(func() { s.tokens = unique(tokens) })
	return s
}

// Override returns a scope for the same request with tokens replaced.
func (s *Scope) Override(tokens []string) *Scope {
	n := WithTokens(tokens)
	if s != nil {
		n.req = s.req
	}
	return n
}

// Request returns the request the scope was built from.
func (s *Scope) Request() Request {
	return s.req
}

// Tokens returns the ordered context tokens. The returned slice is a copy.
func (s *Scope) Tokens() []string {
	if s == nil {
		return nil
	}
	s.once.Do(func() { s.tokens = s.resolve(s.req) })
	return slices.Clone(s.tokens)
}

// Has reports whether token applies to this request.
func (s *Scope) Has(token string) bool {
	return slices.Contains(s.Tokens(), token)
}

type scopeKey struct{}

// NewContext returns a copy of ctx carrying scope.
func NewContext(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// FromContext returns the scope stored in ctx, or nil.
func FromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// TokensFrom returns the tokens of the scope stored in ctx. A context
// without a scope has no tokens.
func TokensFrom(ctx context.Context) []string {
	return FromContext(ctx).Tokens()
}
