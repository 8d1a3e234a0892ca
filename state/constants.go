package state

import "time"

var (
	// LivenessWindow is the freshness threshold used to classify a node as
	// active for display. Stale records are not removed at this boundary,
	// only recolored; removal is governed by QueueReapTTL.
	LivenessWindow = 5 * time.Second

	// TopoPushDelay is the period of the unconditional topology broadcast.
	TopoPushDelay = time.Second * 1

	// QueueReapTTL bounds how long the record and pending command queue of a
	// vanished node id are retained. Any store operation touching the id
	// refreshes it. Zero disables reaping.
	QueueReapTTL = time.Minute * 15

	// SimReportDelay is the default check-in cadence of simulated nodes.
	SimReportDelay = time.Second * 2

	// WelcomePrompt is what a console session prints after every line.
	WelcomePrompt = "> "

	// DefaultListen matches the port the reference frontend expects.
	DefaultListen = "0.0.0.0:8000"
)
