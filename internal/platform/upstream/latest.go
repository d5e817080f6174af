package upstream

import "sync/atomic"

// Latest guards against out-of-order fetch completions: each fetch
// begins with a token, and only the completion holding the most recent
// token may apply its result. Older responses that land late are simply
// discarded instead of overwriting newer state.
type Latest struct {
	seq atomic.Uint64
}

// Begin registers a new fetch and returns its token.
func (l *Latest) Begin() uint64 {
	return l.seq.Add(1)
}

// IsCurrent reports whether the token belongs to the most recent fetch.
func (l *Latest) IsCurrent(token uint64) bool {
	return l.seq.Load() == token
}
