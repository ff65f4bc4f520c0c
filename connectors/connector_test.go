package connectors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/pvsim/core/model"
)

func TestAlign(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []model.HourRecord{
		{Index: 0, Time: start, Hour: 0},
		{Index: 1, Time: start.Add(time.Hour), Hour: 1},
		{Index: 2, Hour: 2},
	}
	prices := []Price{
		{Start: start.In(time.FixedZone("CET", 3600)), Ct: 7.5},
		{Start: start.Add(5 * time.Hour), Ct: 9},
	}

	out, missing := Align(records, prices)
	assert.Equal(t, 2, missing)
	assert.True(t, out[0].HasSpot)
	assert.Equal(t, 7.5, out[0].SpotCt)
	assert.False(t, out[1].HasSpot)
	assert.False(t, out[2].HasSpot)
	assert.False(t, records[0].HasSpot)
}

type plainSource struct{}

func (plainSource) Fetch(context.Context, ...Option) ([]Price, error) { return nil, nil }

type rangedSource struct{ from, to time.Time }

func (r *rangedSource) Fetch(context.Context, ...Option) ([]Price, error) { return nil, nil }
func (r *rangedSource) SetRange(from, to time.Time)                       { r.from, r.to = from, to }

func TestWithRange(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	r := &rangedSource{}
	assert.NoError(t, WithRange(from, from.Add(time.Hour))(r))
	assert.Equal(t, from, r.from)
	assert.Equal(t, from.Add(time.Hour), r.to)

	assert.Error(t, WithRange(from, from)(plainSource{}))
}
