package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSONRoundTrip(t *testing.T) {
	d, err := ParseDate("2010-03-01")
	require.NoError(t, err)

	payload, err := json.Marshal(struct {
		BirthDate Date `json:"birth_date"`
	}{BirthDate: d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"birth_date":"2010-03-01"}`, string(payload))

	var decoded struct {
		BirthDate Date `json:"birth_date"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "2010-03-01", decoded.BirthDate.String())
}

func TestDateScanKeepsCalendarDay(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	var d Date

	require.NoError(t, d.Scan(time.Date(2010, 3, 1, 0, 0, 0, 0, jakarta)))
	assert.Equal(t, "2010-03-01", d.String())

	require.NoError(t, d.Scan([]byte("2010-03-01")))
	assert.Equal(t, "2010-03-01", d.String())

	require.NoError(t, d.Scan("2010-03-01T00:00:00Z"))
	assert.Equal(t, "2010-03-01", d.String())

	value, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2010-03-01", value)
}

func TestDateUnmarshalTimestampUsesWrittenDay(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-15T23:30:00+07:00"`), &d))
	assert.Equal(t, "2024-01-15", d.String())
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("15/01/2024")
	assert.Error(t, err)

	opt, err := ParseOptionalDate("  ")
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Senin", NewDate(2024, time.January, 1).DayName())
	assert.Equal(t, "Minggu", NewDate(2024, time.January, 7).DayName())
	assert.Equal(t, "Jumat", NewDate(2024, time.February, 2).DayName())
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, 29, LastDayOfMonth(2024, time.February).Day())
	assert.Equal(t, 28, LastDayOfMonth(2023, time.February).Day())
	assert.Equal(t, 31, LastDayOfMonth(2024, time.December).Day())
	assert.Equal(t, 30, LastDayOfMonth(2024, time.April).Day())
}
