// Package log adds logging utilities.
package log

import (
	"strings"
	"time"

	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/message"

	"github.com/sirupsen/logrus"
)

// SetLogger sets the default logger's level and format.
func SetLogger(level string) {
	formatter := new(logrus.TextFormatter)
	formatter.TimestampFormat = time.RFC3339
	formatter.FullTimestamp = true
	logrus.SetFormatter(formatter)
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// RoundResultToFields flattens a round result for structured logging.
func RoundResultToFields(result message.RoundResult) logrus.Fields {
	fields := make(logrus.Fields, len(result))
	for username, round := range result {
		fields[username] = round.WPM
	}
	return fields
}

// StandingsToFields flattens the final ranking for structured logging.
func StandingsToFields(standings []message.Standing) logrus.Fields {
	fields := make(logrus.Fields, len(standings))
	for _, standing := range standings {
		fields[standing.Username] = standing.WPM
	}
	return fields
}
