package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		d, err := ParseDate("2024-03-10")
		require.NoError(t, err)
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, time.March, d.Month())
		assert.Equal(t, 10, d.Day())
		assert.Equal(t, "2024-03-10", d.String())
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/03/10")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expected yyyy-mm-dd")
	})

	t.Run("Invalid day", func(t *testing.T) {
		_, err := ParseDate("2024-02-30")
		assert.Error(t, err)
	})
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	morning := time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)
	evening := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)
	assert.True(t, DateOf(morning).Equal(DateOf(evening)))
	assert.True(t, DateOf(evening).Equal(MustParseDate("2024-03-10")))

	// The calendar day is taken in the time's own location.
	loc := time.FixedZone("UTC-5", -5*3600)
	lateLocal := time.Date(2024, 3, 10, 22, 0, 0, 0, loc)
	assert.Equal(t, "2024-03-10", DateOf(lateLocal).String())
}

func TestDate_AddDays(t *testing.T) {
	d := MustParseDate("2024-02-28")
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, "2024-02-27", d.AddDays(-1).String())
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		On Date `json:"on"`
	}

	b, err := json.Marshal(wrapper{On: MustParseDate("2024-03-01")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2024-03-01"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"on":"2024-12-31"}`), &w))
	assert.Equal(t, "2024-12-31", w.On.String())

	require.NoError(t, json.Unmarshal([]byte(`{"on":null}`), &w))
	assert.True(t, w.On.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"on":"31-12-2024"}`), &w))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-05", d.String())

	require.NoError(t, d.Scan("2024-04-01"))
	assert.Equal(t, "2024-04-01", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := MustParseDate("2024-04-01").Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", v)
}
