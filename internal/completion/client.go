// Package completion wraps the external text-completion service. Its output
// is treated as untrusted: callers must validate anything they surface.
package completion

import "context"

// Client is the interface for one completion round trip: a system
// instruction plus a user message in, free-form text out.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
