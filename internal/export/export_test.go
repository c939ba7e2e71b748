package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/go-bezier-renderer/internal/pipeline"
)

func sample() [][]pipeline.Expression {
	return [][]pipeline.Expression{
		{
			{ID: "expr-1", Latex: "((1-t)0.000000+t1.000000,(1-t)0.000000+t1.000000)", Color: "#2464b4", Secret: true},
			{ID: "expr-2", Latex: "((1-t)1.000000+t2.000000,(1-t)1.000000+t0.000000)", Color: "#2464b4", Secret: true},
		},
		{},
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, CBOR, FormatOf("cache.cbor"))
	assert.Equal(t, CBOR, FormatOf("CACHE.CBOR"))
	assert.Equal(t, JSON, FormatOf("cache.json"))
	assert.Equal(t, JSON, FormatOf("cache"))
}

func TestWriteRead(t *testing.T) {
	for _, name := range []string{"cache.json", "cache.cbor"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			written, err := Write(path, "run-1", sample())
			require.NoError(t, err)
			assert.Equal(t, 2, written.Frames)

			m, frames, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, written.Checksum, m.Checksum)
			assert.Equal(t, 2, m.Frames)
			require.Len(t, frames, 2)
			assert.Equal(t, sample()[0], frames[0])
			assert.Empty(t, frames[1])

			_, err = os.Stat(path + ".tmp")
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestJSONKeepsRunID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	_, err := Write(path, "run-7", sample())
	require.NoError(t, err)

	m, _, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "run-7", m.RunID)
}

func TestCorruptCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.cbor")
	_, err := Write(path, "run", sample())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// flip a payload byte
	i := len(data) - 20
	data[i] ^= 0x01
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, _, err = Read(path)
	assert.Error(t, err)
}

func TestChecksumMismatch(t *testing.T) {
	data := []byte(`{"meta":{"run_id":"x","frames":1,"timestamp":1,"checksum":1},"frames":[[]]}`)
	_, _, err := Decode(JSON, data)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestInvalidMeta(t *testing.T) {
	data := []byte(`{"meta":{"run_id":"x","frames":1,"timestamp":0,"checksum":1},"frames":[[]]}`)
	_, _, err := Decode(JSON, data)
	assert.ErrorIs(t, err, ErrMeta)
}

func TestReadMissing(t *testing.T) {
	_, _, err := Read(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}
