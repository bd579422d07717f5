package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullTimeScan(t *testing.T) {
	want := time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		value any
	}{
		{name: "time", value: want},
		{name: "rfc3339", value: "2026-02-01T10:30:00Z"},
		{name: "rfc3339_nano", value: "2026-02-01T10:30:00.000000000Z"},
		{name: "sqlite_text", value: "2026-02-01 10:30:00+00:00"},
		{name: "sqlite_text_no_zone", value: "2026-02-01 10:30:00"},
		{name: "bytes", value: []byte("2026-02-01T10:30:00Z")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var nt NullTime
			require.NoError(t, nt.Scan(tc.value))
			require.True(t, nt.Valid)
			assert.True(t, nt.Time.Equal(want), "got %v", nt.Time)
		})
	}
}

func TestNullTimeScanNullAndEmpty(t *testing.T) {
	var nt NullTime
	require.NoError(t, nt.Scan(nil))
	assert.False(t, nt.Valid)
	assert.Nil(t, nt.Ptr())

	require.NoError(t, nt.Scan(""))
	assert.False(t, nt.Valid)
}

func TestNullTimeScanRejectsGarbage(t *testing.T) {
	var nt NullTime
	assert.Error(t, nt.Scan("not a timestamp"))
	assert.Error(t, nt.Scan(42))
}

func TestNullTimePtr(t *testing.T) {
	want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	nt := NullTime{Time: want, Valid: true}

	got := nt.Ptr()
	require.NotNil(t, got)
	assert.True(t, got.Equal(want))
}
