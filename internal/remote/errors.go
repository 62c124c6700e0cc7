package remote

import (
	"errors"
	"fmt"

	"github.com/kolo/xmlrpc"
)

// ErrUnavailable means the remote store could not be reached or answered
// with a transport-level failure. Recoverable: queue items stay queued and
// the pull cursor does not advance past the failing page.
var ErrUnavailable = errors.New("remote store unavailable")

// ErrRejected means the remote store actively refused the request
// (validation, permissions). Retrying the same payload will fail again.
var ErrRejected = errors.New("remote store rejected request")

// classify maps a raw call error onto the remote error taxonomy: an XML-RPC
// fault is an active rejection, anything else is a connectivity problem.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var fault xmlrpc.FaultError
	if errors.As(err, &fault) {
		return fmt.Errorf("%s: %w: %s", op, ErrRejected, fault.String)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
