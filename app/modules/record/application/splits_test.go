package recordservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitsRoundTrip(t *testing.T) {
	original := []float64{1.234, 5.678, 9.012}

	joined := JoinSplits(original)
	assert.Equal(t, "1.234|5.678|9.012", joined)

	decoded, err := ParseSplits(joined)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestJoinSplitsEmpty(t *testing.T) {
	assert.Equal(t, "", JoinSplits(nil))

	decoded, err := ParseSplits("")
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestParseSplitsRejectsGarbage(t *testing.T) {
	_, err := ParseSplits("1.2|oops|3.4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
}
