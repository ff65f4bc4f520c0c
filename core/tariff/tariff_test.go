package tariff

import (
	"errors"
	"testing"

	"github.com/kilianp07/pvsim/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(spot float64) []model.HourRecord {
	hours := make([]model.HourRecord, 24)
	for h := range hours {
		hours[h] = model.HourRecord{Index: h, Hour: h, SpotCt: spot, HasSpot: true}
	}
	return hours
}

func TestDynamicDynamicFeeSurcharges(t *testing.T) {
	tr, err := New(KindDynamicDynamicFee, DefaultRates(), 10)
	require.NoError(t, err)
	prices, err := Prices(tr, day(10))
	require.NoError(t, err)

	assert.InDelta(t, 29.76, prices[17], 1e-9)
	assert.InDelta(t, 29.76, prices[19], 1e-9)
	assert.InDelta(t, 22.09, prices[2], 1e-9)
	assert.InDelta(t, 20.0, prices[10], 1e-9)
	assert.InDelta(t, 20.0, prices[0], 1e-9)
}

func TestDynamicStaticFee(t *testing.T) {
	tr, err := New(KindDynamicStaticFee, DefaultRates(), 10)
	require.NoError(t, err)
	prices, err := Prices(tr, day(12))
	require.NoError(t, err)
	for _, p := range prices {
		assert.InDelta(t, 30.35, p, 1e-9)
	}
}

func TestStaticAndCombined(t *testing.T) {
	hours := []model.HourRecord{
		{Index: 0, Hour: 0, DeferrableLoadKWh: 1},
		{Index: 1, Hour: 1},
	}
	static, err := Prices(Static{PriceCt: 33.9}, hours)
	require.NoError(t, err)
	assert.Equal(t, PriceSeries{33.9, 33.9}, static)

	combined, err := Prices(Combined{HouseholdCt: 33.9, HeatPumpCt: 24.5}, hours)
	require.NoError(t, err)
	assert.Equal(t, PriceSeries{24.5, 33.9}, combined)
}

func TestDynamicWithoutSpot(t *testing.T) {
	hours := []model.HourRecord{{Index: 0, Hour: 0}}
	for _, tr := range []Tariff{DynamicStaticFee{MarginCt: 10}, DynamicDynamicFee{MarginCt: 10}} {
		_, err := Prices(tr, hours)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidConfiguration))
	}
}

func TestStaticIgnoresMissingSpot(t *testing.T) {
	_, err := Prices(Static{PriceCt: 1}, []model.HourRecord{{}})
	assert.NoError(t, err)
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New("flat", DefaultRates(), 0)
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
	_, err = Prices(nil, nil)
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
}

func TestIsDynamic(t *testing.T) {
	for _, k := range Kinds() {
		tr, err := New(k, DefaultRates(), 5)
		require.NoError(t, err)
		assert.Equal(t, k, tr.Kind())
		want := k == KindDynamicStaticFee || k == KindDynamicDynamicFee
		assert.Equal(t, want, IsDynamic(tr), string(k))
	}
}

func TestRatesValidate(t *testing.T) {
	r := DefaultRates()
	assert.NoError(t, r.Validate())
	r.PeakHours = []int{25}
	assert.Error(t, r.Validate())
	r = DefaultRates()
	r.StaticCt = -1
	assert.Error(t, r.Validate())
}
