package wire

import "github.com/pkg/errors"

// ErrConnectionClosed indicates the peer closed the connection mid-frame.
// Callers must treat it as a disconnection of that peer, never as empty data.
var ErrConnectionClosed = errors.New("connection closed")
