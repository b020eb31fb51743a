package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconsEmbedded(t *testing.T) {
	for _, name := range []string{IconIdle, IconRunning} {
		resource, err := Icon(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, resource.Content())

		again := MustIcon(name)
		assert.Same(t, resource, again, "cached")
	}
}

func TestIconMissing(t *testing.T) {
	_, err := Icon("nope.svg")
	assert.Error(t, err)
	assert.Panics(t, func() { MustIcon("nope.svg") })
}
