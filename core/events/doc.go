// Package events defines the events emitted on the run event bus.
package events
