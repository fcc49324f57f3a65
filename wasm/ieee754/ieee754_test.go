package ieee754

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFloat32(t *testing.T) {
	for _, c := range []struct {
		bytes []byte
		exp   float32
	}{
		{bytes: []byte{0x00, 0x00, 0x00, 0x00}, exp: 0},
		{bytes: []byte{0x00, 0x00, 0x80, 0x3f}, exp: 1.0},
		{bytes: []byte{0xdb, 0x0f, 0x49, 0x40}, exp: 3.1415927},
		{bytes: []byte{0x00, 0x00, 0x80, 0xff}, exp: float32(math.Inf(-1))},
	} {
		actual, err := LoadFloat32(c.bytes)
		require.NoError(t, err)
		require.Equal(t, c.exp, actual)
	}

	_, err := LoadFloat32([]byte{0x00, 0x00, 0x00})
	require.Error(t, err)
}

func TestLoadFloat64(t *testing.T) {
	for _, c := range []struct {
		bytes []byte
		exp   float64
	}{
		{bytes: []byte{0, 0, 0, 0, 0, 0, 0, 0}, exp: 0},
		{bytes: []byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f}, exp: 1.0},
		{bytes: []byte{0x18, 0x2d, 0x44, 0x54, 0xfb, 0x21, 0x09, 0x40}, exp: math.Pi},
	} {
		actual, err := LoadFloat64(c.bytes)
		require.NoError(t, err)
		require.Equal(t, c.exp, actual)
	}

	_, err := LoadFloat64([]byte{0, 0, 0, 0, 0, 0, 0})
	require.Error(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, v := range []float32{0, 1, -1, 3.1415927, float32(math.Inf(1))} {
		decoded, err := LoadFloat32(EncodeFloat32(v))
		require.NoError(t, err)
		require.Equal(t, v, decoded)
	}
	for _, v := range []float64{0, 1, -1, math.Pi, math.Inf(-1)} {
		decoded, err := LoadFloat64(EncodeFloat64(v))
		require.NoError(t, err)
		require.Equal(t, v, decoded)
	}

	nan32, err := LoadFloat32(EncodeFloat32(float32(math.NaN())))
	require.NoError(t, err)
	require.True(t, math.IsNaN(float64(nan32)))
}
