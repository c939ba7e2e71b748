// Package export writes batch results to a cache file and reads them back.
//
// Two layouts are supported, chosen by file extension:
//
//	.json  {"meta": {...}, "frames": [[expression, ...], ...]}
//	.cbor  24 byte meta header followed by the CBOR encoded frames
//
// In both, the metadata checksum covers the encoded frames exactly as stored.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/1F47E/go-bezier-renderer/internal/logger"
	"github.com/1F47E/go-bezier-renderer/internal/meta"
	"github.com/1F47E/go-bezier-renderer/internal/pipeline"
)

type Format int

const (
	JSON Format = iota
	CBOR
)

var (
	ErrChecksum = errors.New("cache checksum mismatch")
	ErrMeta     = errors.New("cache metadata invalid")
)

type document struct {
	Meta   meta.Metadata   `json:"meta"`
	Frames json.RawMessage `json:"frames"`
}

// FormatOf picks the layout from the file extension; anything but .cbor is
// JSON.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return CBOR
	}
	return JSON
}

// Write stores frames at path, replacing any previous file.
func Write(path, runID string, frames [][]pipeline.Expression) (meta.Metadata, error) {
	log := logger.Scope("export")
	m := meta.New(runID, len(frames))

	data, err := Encode(FormatOf(path), &m, frames)
	if err != nil {
		return m, err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return m, fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return m, fmt.Errorf("writing cache: %w", err)
	}
	log.Infof("Cache written to %s (%d bytes)", path, len(data))
	return m, nil
}

// Encode fills in the checksum of m and returns the file contents.
func Encode(f Format, m *meta.Metadata, frames [][]pipeline.Expression) ([]byte, error) {
	switch f {
	case CBOR:
		payload, err := cbor.Marshal(frames)
		if err != nil {
			return nil, fmt.Errorf("encoding frames: %w", err)
		}
		if err := m.Hash(payload); err != nil {
			return nil, err
		}
		return append(m.Header(), payload...), nil
	default:
		payload, err := json.Marshal(frames)
		if err != nil {
			return nil, fmt.Errorf("encoding frames: %w", err)
		}
		if err := m.Hash(payload); err != nil {
			return nil, err
		}
		return json.Marshal(document{Meta: *m, Frames: payload})
	}
}

// Read loads a cache file and verifies its checksum.
func Read(path string) (meta.Metadata, [][]pipeline.Expression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return meta.Metadata{}, nil, fmt.Errorf("reading cache: %w", err)
	}
	return Decode(FormatOf(path), data)
}

func Decode(f Format, data []byte) (meta.Metadata, [][]pipeline.Expression, error) {
	var (
		m       meta.Metadata
		payload []byte
		frames  [][]pipeline.Expression
		err     error
	)
	switch f {
	case CBOR:
		if m, err = meta.Parse(data); err != nil {
			return m, nil, err
		}
		payload = data[meta.SizeHeader:]
		if err := cbor.Unmarshal(payload, &frames); err != nil {
			return m, nil, fmt.Errorf("decoding frames: %w", err)
		}
	default:
		var doc document
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return m, nil, fmt.Errorf("decoding cache: %w", err)
		}
		m, payload = doc.Meta, doc.Frames
		if err := json.Unmarshal(payload, &frames); err != nil {
			return m, nil, fmt.Errorf("decoding frames: %w", err)
		}
	}

	if !m.IsOk() {
		return m, nil, ErrMeta
	}
	ok, err := m.Validate(payload)
	if err != nil {
		return m, nil, err
	}
	if !ok {
		return m, nil, ErrChecksum
	}
	if len(frames) != m.Frames {
		return m, nil, fmt.Errorf("cache holds %d frames, header says %d", len(frames), m.Frames)
	}
	return m, frames, nil
}
