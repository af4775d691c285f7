package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefresher_InvalidSpec(t *testing.T) {
	_, err := NewRefresher(testLogger(), New(testLogger(), StaticSource(Builtin())), "every now and then")
	assert.Error(t, err)
}

func TestRefresher_ReloadsOnSchedule(t *testing.T) {
	source := &countingSource{defs: Builtin()}

	refresher, err := NewRefresher(testLogger(), New(testLogger(), source), "@every 1s")
	require.NoError(t, err)

	refresher.Start()
	defer refresher.Stop()

	assert.Eventually(t, func() bool { return source.calls.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
}
