// Package server implements the TCP front door of the TypeSpeed server.
//
// The server performs the following steps:
//	1. Listens for incoming TCP connections on the configured address.
//	2. On connection, it enforces the handshake: the client must send the
//	   reserved byte "1" within the grace period, which distinguishes
//	   legitimate clients from incidental or probe connections.
//	3. Screened connections are handed to the lobby handler on their own
//	   goroutine, where the client either hosts a new game or joins an
//	   existing one.
//
// Failures on individual connections, including during the handshake, are
// contained to that connection. The accept loop itself only stops when its
// context is cancelled.
package server
