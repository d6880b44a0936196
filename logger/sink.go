package logger

import (
	"errors"
	"io"
	"net"
	"os"
)

// closedSinkGuard drops writes once the underlying sink has been closed.
// A caller may stop collecting output before a background request finishes;
// that must never turn into a failed request.
type closedSinkGuard struct {
	w io.Writer
}

func (g *closedSinkGuard) Write(p []byte) (int, error) {
	n, err := g.w.Write(p)
	if err != nil && IsClosedSink(err) {
		return len(p), nil
	}
	return n, err
}

// IsClosedSink reports whether err signals a write to an already closed sink.
func IsClosedSink(err error) bool {
	return errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
