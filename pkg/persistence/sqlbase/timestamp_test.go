package sqlbase_test

import (
	"testing"
	"time"

	"github.com/dukex/flowgen/pkg/persistence/sqlbase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_Scan(t *testing.T) {
	want := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name string
		src  any
	}{
		{name: "time", src: want.In(time.FixedZone("BRT", -3*3600))},
		{name: "rfc3339 string", src: "2025-03-04T05:06:07Z"},
		{name: "sqlite text", src: []byte("2025-03-04 05:06:07")},
		{name: "go default format", src: "2025-03-04 05:06:07 +0000 UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts sqlbase.Timestamp
			require.NoError(t, ts.Scan(tt.src))
			assert.True(t, want.Equal(ts.Time))
		})
	}

	var ts sqlbase.Timestamp
	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.Time.IsZero())

	assert.Error(t, ts.Scan(42))
	assert.Error(t, ts.Scan("yesterday"))
}
