// Package message defines the control vocabulary and the binary payload
// schemas shared by the server and the protocol client.
//
// Control values travel as framed UTF-8 text; their meaning depends on the
// phase of the exchange, so every reserved value gets a named constant per
// phase. The two structured payloads (per-round results and the final
// standings) travel as CBOR.
package message

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// Handshake is the single raw byte a legitimate client must send right
// after connecting, before any framed exchange.
const Handshake = "1"

// First framed message of a connection: what the client wants to do.
const (
	CodeHost = "0"
	CodeJoin = "1"
)

// Replies to a join request, both for the game id check and for the
// username check.
const (
	ReplyRejected = "0" // game not found, or username taken
	ReplyAccepted = "1"
	ReplyStarted  = "2" // game already running
)

// Lobby-phase broadcasts. Anything else received in the lobby is the
// current member count as decimal text.
const (
	Ping      = "-1" // liveness ping, sent every ping interval
	GameStart = "0"  // lobby full, rounds begin
)

// Submission sentinels sent in place of an elapsed time.
const (
	SubmissionInvalid = "0"  // typed text did not match the sentence
	SubmissionCheated = "-1" // copy/paste hotkey detected client-side
)

// PlayerRound is one player's result for a single round. Seconds holds the
// submitted elapsed time, or the numeric value of the sentinel that was
// submitted instead.
type PlayerRound struct {
	Seconds float64 `cbor:"seconds"`
	WPM     int     `cbor:"wpm"`
}

// RoundResult maps usernames to their result for the round just played.
// Players who disconnected during the round have no entry.
type RoundResult map[string]PlayerRound

// Standing is one row of the final ranking. Standings are encoded as an
// ordered list, descending by aggregate WPM with ties in join order, so the
// ranking survives serialization.
type Standing struct {
	Username string `cbor:"username"`
	WPM      int    `cbor:"wpm"`
}

// EncodeRoundResult serializes a round result for broadcast.
func EncodeRoundResult(result RoundResult) ([]byte, error) {
	payload, err := cbor.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "marshal round result failed")
	}
	return payload, nil
}

// DecodeRoundResult deserializes a round result payload.
func DecodeRoundResult(payload []byte) (RoundResult, error) {
	var result RoundResult
	if err := cbor.Unmarshal(payload, &result); err != nil {
		return nil, errors.Wrap(err, "unmarshal round result failed")
	}
	return result, nil
}

// EncodeStandings serializes the final ranking for broadcast.
func EncodeStandings(standings []Standing) ([]byte, error) {
	payload, err := cbor.Marshal(standings)
	if err != nil {
		return nil, errors.Wrap(err, "marshal standings failed")
	}
	return payload, nil
}

// DecodeStandings deserializes a final ranking payload.
func DecodeStandings(payload []byte) ([]Standing, error) {
	var standings []Standing
	if err := cbor.Unmarshal(payload, &standings); err != nil {
		return nil, errors.Wrap(err, "unmarshal standings failed")
	}
	return standings, nil
}
