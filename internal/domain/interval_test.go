package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interval(start, pickup string) Interval {
	iv := Interval{Start: MustParseDate(start)}
	if pickup != "" {
		iv.End = CompletedOn(MustParseDate(pickup))
	}
	return iv
}

func TestCovers(t *testing.T) {
	completed := interval("2024-03-01", "2024-03-10")
	ongoing := interval("2024-03-01", "")

	tests := []struct {
		name string
		iv   Interval
		date string
		want bool
	}{
		{"before start", completed, "2024-02-29", false},
		{"on start", completed, "2024-03-01", true},
		{"inside", completed, "2024-03-05", true},
		{"on pickup", completed, "2024-03-10", true},
		{"after pickup", completed, "2024-03-11", false},
		{"ongoing before start", ongoing, "2024-02-29", false},
		{"ongoing far future", ongoing, "2030-01-01", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Covers(tt.iv, MustParseDate(tt.date)))
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", interval("2024-03-01", "2024-03-05"), interval("2024-03-07", "2024-03-09"), false},
		{"adjacent days", interval("2024-03-01", "2024-03-05"), interval("2024-03-06", ""), false},
		{"transition day", interval("2024-03-01", "2024-03-10"), interval("2024-03-10", "2024-03-20"), false},
		{"transition day reversed", interval("2024-03-10", ""), interval("2024-03-01", "2024-03-10"), false},
		{"shared interior", interval("2024-03-01", "2024-03-10"), interval("2024-03-05", "2024-03-20"), true},
		{"contained", interval("2024-03-01", "2024-03-31"), interval("2024-03-05", "2024-03-06"), true},
		{"same placement", interval("2024-03-01", "2024-03-10"), interval("2024-03-01", "2024-03-02"), true},
		{"two ongoing", interval("2024-03-01", ""), interval("2024-06-01", ""), true},
		{"ongoing after completed", interval("2024-03-01", "2024-03-10"), interval("2024-03-11", ""), false},
		{"ongoing swallows later", interval("2024-03-01", ""), interval("2024-04-01", "2024-04-02"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.want, Overlaps(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

func TestRentalEnd(t *testing.T) {
	t.Run("Zero value is ongoing", func(t *testing.T) {
		var e RentalEnd
		assert.True(t, e.IsOngoing())
		_, ok := e.PickupDate()
		assert.False(t, ok)
		assert.Nil(t, e.Pointer())
		assert.Equal(t, "ongoing", e.String())
	})

	t.Run("Completed", func(t *testing.T) {
		e := CompletedOn(MustParseDate("2024-03-10"))
		d, ok := e.PickupDate()
		require.True(t, ok)
		assert.Equal(t, "2024-03-10", d.String())
		require.NotNil(t, e.Pointer())
		assert.True(t, e.Equal(EndFromPointer(e.Pointer())))
		assert.False(t, e.Equal(Ongoing()))
	})

	t.Run("JSON", func(t *testing.T) {
		b, err := json.Marshal(Booking{ID: "b1", End: CompletedOn(MustParseDate("2024-03-10"))})
		require.NoError(t, err)
		assert.Contains(t, string(b), `"pickup_date":"2024-03-10"`)

		var bk Booking
		require.NoError(t, json.Unmarshal([]byte(`{"id":"b2","pickup_date":null}`), &bk))
		assert.True(t, bk.End.IsOngoing())
	})
}
