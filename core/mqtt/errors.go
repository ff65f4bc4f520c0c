package mqtt

import "errors"

// ErrPublishFailed is returned when a message could not be delivered after
// all retries.
var ErrPublishFailed = errors.New("mqtt publish failed")

// ErrNoResult is returned when asked to publish a nil result.
var ErrNoResult = errors.New("no simulation result to publish")
