package meta

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertUint64ToBytes(t *testing.T) {
	testCases := []struct {
		name string
		num  uint64
		want []byte
	}{
		{
			name: "small",
			num:  1234567890,
			want: []byte{0, 0, 0, 0, 73, 150, 2, 210},
		},
		{
			name: "above 32 bits",
			num:  9876543210,
			want: []byte{0, 0, 0, 2, 76, 176, 22, 234},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := convertUint64ToBytes(tc.num)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHeader(t *testing.T) {
	m := New("run", 42)
	require.NoError(t, m.Hash([]byte("payload")))

	header := m.Header()
	require.Len(t, header, SizeHeader)

	got, err := Parse(header)
	require.NoError(t, err)
	assert.Equal(t, m.Checksum, got.Checksum)
	assert.Equal(t, m.Timestamp, got.Timestamp)
	assert.Equal(t, 42, got.Frames)
	assert.True(t, got.IsOk())

	_, err = Parse(header[:10])
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	m := New("run", 1)
	require.NoError(t, m.Hash([]byte("frames")))

	ok, err := m.Validate([]byte("frames"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Validate([]byte("frameS"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChecksumFNV(t *testing.T) {
	// FNV-1a 64 offset basis
	sum, err := generateChecksum(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xcbf29ce484222325), sum)
}
