package mqtt

import (
	"context"

	"github.com/kilianp07/pvsim/core/sim"
)

// Publisher announces finished simulation runs on a message broker.
type Publisher interface {
	// PublishRun sends the run summary and returns the message identifier.
	PublishRun(ctx context.Context, res *sim.Result) (messageID string, err error)
	Disconnect()
}

// NopPublisher drops every message.
type NopPublisher struct{}

func (NopPublisher) PublishRun(context.Context, *sim.Result) (string, error) { return "", nil }
func (NopPublisher) Disconnect()                                            {}
