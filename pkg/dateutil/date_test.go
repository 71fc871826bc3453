package dateutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRoundTrip(t *testing.T) {
	for _, raw := range []string{"2024-01-01", "2024-02-29", "1999-12-31", "2030-07-04"} {
		d, err := ParseDate(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, d.String())

		again, err := ParseDate(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, again)
	}
}

func TestParseDateRejectsInvalid(t *testing.T) {
	for _, raw := range []string{"", "2024-02-30", "2024/01/01", "01-01-2024", "tomorrow"} {
		_, err := ParseDate(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 9, Minute: 30}, c)
	assert.Equal(t, 570, c.Minutes())
	assert.Equal(t, "09:30", c.String())

	c, err = ParseClock("7:05")
	require.NoError(t, err)
	assert.Equal(t, "07:05", c.String())

	for _, raw := range []string{"", "24:00", "12:60", "noon", "12:00:00"} {
		_, err := ParseClock(raw)
		assert.Error(t, err, raw)
	}
}

func TestDateArithmetic(t *testing.T) {
	d := MustParseDate("2024-01-31")
	assert.Equal(t, "2024-02-01", d.AddDays(1).String())
	assert.Equal(t, "2024-01-24", d.AddDays(-7).String())
	// February has no 31st; the date rolls into March.
	assert.Equal(t, "2024-03-02", d.AddMonths(1).String())
	assert.Equal(t, "2025-03-01", MustParseDate("2024-02-29").AddYears(1).String())
}

func TestDateCompare(t *testing.T) {
	a := MustParseDate("2024-03-01")
	b := MustParseDate("2024-03-02")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.SameMonth(b))
	assert.False(t, a.SameMonth(MustParseDate("2023-03-01")))
}

func TestDateAtUsesLocation(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	ts := MustParseDate("2024-05-10").At(MustParseClock("13:45"), loc)
	assert.Equal(t, 13, ts.Hour())
	assert.Equal(t, loc, ts.Location())
	assert.Equal(t, MustParseDate("2024-05-10"), DateOf(ts))
}

func TestDateAndClockJSON(t *testing.T) {
	type payload struct {
		Date  Date  `json:"date"`
		Time  Clock `json:"time"`
		Until *Date `json:"until,omitempty"`
	}
	raw := []byte(`{"date":"2024-01-15","time":"08:00"}`)
	var p payload
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, MustParseDate("2024-01-15"), p.Date)
	assert.Equal(t, Clock{Hour: 8}, p.Time)
	assert.Nil(t, p.Until)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"2024-13-01","time":"08:00"}`), &p))
}
