package broker

import "errors"

// ErrTransport names the transport error kind. handleConn neither returns
// nor wraps it: a read/write failure on a client connection is logged at
// debug level and terminates the connection silently; no reply is
// attempted, since a failing socket cannot be trusted to carry one.
var ErrTransport = errors.New("transport error")
