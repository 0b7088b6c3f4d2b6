package shared

import "sync/atomic"

// Generation numbers logical operations so that a newer request supersedes
// everything still in flight. Callers hold one Generation for a given flow
// (for example "the current reconciliation"), call Begin when a new request
// starts, and hand the returned token to every async call the request makes.
type Generation struct {
	current atomic.Int64
}

// Begin starts a new operation, superseding all tokens handed out earlier.
func (g *Generation) Begin() *Token {
	return &Token{gen: g, captured: g.current.Add(1)}
}

// CancelAll invalidates every outstanding token without starting a new
// operation.
func (g *Generation) CancelAll() {
	g.current.Add(1)
}

// Token is captured at the start of an async operation and consulted at every
// polling increment and pipeline boundary. Completions arriving after the
// token went stale must be discarded by the caller without side effects.
type Token struct {
	gen      *Generation
	captured int64
}

// Cancelled reports whether the operation holding this token has been
// superseded. A nil token never cancels, so callers that do not care can
// pass nil all the way down.
func (t *Token) Cancelled() bool {
	if t == nil {
		return false
	}
	return t.gen.current.Load() != t.captured
}
