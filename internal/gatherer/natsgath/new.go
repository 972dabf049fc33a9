package natsgath

import (
	"github.com/nats-io/nats.go"
)

// New creates a NATS gatherer that streams run progress to the given
// inbox subject.
func New(nc *nats.Conn, runUuid string, inbox string) *natsGatherer {
	return &natsGatherer{
		nc:      nc,
		inbox:   inbox,
		runUuid: runUuid,
	}
}
