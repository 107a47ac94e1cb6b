package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bluesky-go/atproto/internal/telemetry"
)

var logFormats = []string{"json", "text"}

// newLogger builds the logrus-backed telemetry.Logger that the resolve,
// get-record and firehose commands log through; get-record and firehose
// also wire it into their xrpc.Client/firehose.Client. The library packages
// accept a telemetry.Logger, so the CLI's job is just to pick a concrete
// backend and level for it.
func newLogger(levelName, format string) (telemetry.Logger, error) {
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("unknown log level %q", levelName)
	}

	l := logrus.New()
	l.SetLevel(level)
	switch strings.ToLower(format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log format is not one of the supported values (%s): %s", strings.Join(logFormats, ", "), format)
	}

	return telemetry.NewLogrusLogger(l), nil
}
