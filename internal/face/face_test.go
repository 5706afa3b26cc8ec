package face

import (
	"encoding/base64"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	a := Descriptor{0, 0, 0}
	b := Descriptor{3, 4, 0}

	assert.InDelta(t, 5.0, Distance(a, b), 1e-9)
	assert.Equal(t, 0.0, Distance(b, b))
	assert.True(t, math.IsInf(Distance(a, Descriptor{1, 2}), 1))
	assert.True(t, math.IsInf(Distance(nil, nil), 1))
}

func TestMatch(t *testing.T) {
	known := Descriptor{0.1, 0.2, 0.3}

	t.Run("within tolerance", func(t *testing.T) {
		assert.True(t, Match(known, Descriptor{0.1, 0.2, 0.7}, DefaultTolerance))
	})

	t.Run("at tolerance boundary", func(t *testing.T) {
		assert.True(t, Match(Descriptor{0}, Descriptor{0.25}, 0.25))
	})

	t.Run("outside tolerance", func(t *testing.T) {
		assert.False(t, Match(known, Descriptor{0.1, 0.2, 0.8}, DefaultTolerance))
	})

	t.Run("length mismatch", func(t *testing.T) {
		assert.False(t, Match(known, Descriptor{0.1, 0.2}, DefaultTolerance))
	})
}

func TestDescriptorText(t *testing.T) {
	d := Descriptor{0.5, -1.25, 2}
	text, err := d.Text()
	require.NoError(t, err)
	assert.Equal(t, "[0.5,-1.25,2]", text)

	parsed, err := ParseDescriptor(text)
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	empty, err := ParseDescriptor("")
	assert.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseDescriptor("not json")
	assert.Error(t, err)
}

func TestDecodeDataURL(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	url := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)

	data, err := DecodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = DecodeDataURL("no-comma-here")
	assert.ErrorIs(t, err, ErrInvalidDataURL)

	_, err = DecodeDataURL("data:image/png;base64,!!!")
	assert.ErrorIs(t, err, ErrInvalidDataURL)

	_, err = DecodeDataURL("data:image/png;base64,")
	assert.ErrorIs(t, err, ErrInvalidDataURL)
}
