// Package client implements the client side of the TypeSpeed wire protocol.
//
// The client performs the following steps:
//	1. Connect to the server and send the handshake byte.
//	2. Either host a new game (sending the desired player capacity and a
//	   username, receiving the assigned 4-digit game id) or join an
//	   existing one (sending the game id and a username, with every
//	   rejection recoverable by retrying).
//	3. Wait in the lobby, consuming liveness pings and member-count
//	   updates, until the server signals the start.
//	4. For each of the five rounds: receive the challenge sentence, ask the
//	   Typist for a submission (an elapsed time in seconds, or a sentinel
//	   for a mismatched transcript or detected cheating), and receive the
//	   round result.
//	5. Receive the final standings and disconnect.
//
// The interactive terminal surface — keystroke capture, countdown display,
// copy/paste detection — is out of scope here; it drives this package
// through the Typist func and the progress callbacks.
package client
