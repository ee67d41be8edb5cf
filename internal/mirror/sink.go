// Package mirror copies displayed game lines to a secondary destination.
//
// Destinations are addressed by URI and resolved through a scheme registry:
//
//	file:///path/to/copy.txt                         local file (bare paths work too)
//	cloudwatch:///log-group?profile=x&region=y       AWS CloudWatch Logs
//	@name                                            alias from the config file
package mirror

import (
	"context"

	"github.com/isaaclog/isaaclog/internal/classify"
)

// Sink receives a plain-text copy of every displayed line.
//
// Write may buffer. Flush delivers everything written so far and is called
// by the follower after each batch of lines and once on exit.
type Sink interface {
	Write(ctx context.Context, l classify.Line) error
	Flush(ctx context.Context) error
	Close() error
}
