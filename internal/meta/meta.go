package meta

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"time"
)

// SizeHeader is the length of the binary header: checksum, timestamp and
// frame count, 8 bytes each, big endian.
const SizeHeader = 24

// Metadata describes a batch export.
type Metadata struct {
	RunID     string `json:"run_id"    cbor:"run_id"`
	Frames    int    `json:"frames"    cbor:"frames"`
	Timestamp int64  `json:"timestamp" cbor:"timestamp"`
	Checksum  uint64 `json:"checksum"  cbor:"checksum"`
}

func New(runID string, frames int) Metadata {
	return Metadata{
		RunID:     runID,
		Frames:    frames,
		Timestamp: time.Now().Unix(),
	}
}

// Parse reads a binary header written by Header.
func Parse(header []byte) (Metadata, error) {
	if len(header) < SizeHeader {
		return Metadata{}, fmt.Errorf("header too short: %d bytes", len(header))
	}
	return Metadata{
		Checksum:  binary.BigEndian.Uint64(header[:8]),
		Timestamp: int64(binary.BigEndian.Uint64(header[8:16])),
		Frames:    int(binary.BigEndian.Uint64(header[16:24])),
	}, nil
}

// Header encodes checksum, timestamp and frame count.
func (m *Metadata) Header() []byte {
	header := make([]byte, 0, SizeHeader)
	header = append(header, convertUint64ToBytes(m.Checksum)...)
	header = append(header, convertUint64ToBytes(uint64(m.Timestamp))...)
	header = append(header, convertUint64ToBytes(uint64(m.Frames))...)
	return header
}

func (m *Metadata) IsOk() bool {
	return m.Frames >= 0 && m.Timestamp > 0
}

func (m *Metadata) Print() string {
	return fmt.Sprintf("Run: %s, Frames: %d, Timestamp: %d (%s), Checksum: %016x",
		m.RunID, m.Frames, m.Timestamp, m.FormatDatetime(), m.Checksum)
}

func (m *Metadata) FormatDatetime() string {
	t := time.Unix(m.Timestamp, 0)
	return t.Local().Format(time.RFC822)
}

// Hash stores the checksum of payload.
func (m *Metadata) Hash(payload []byte) error {
	checksum, err := generateChecksum(payload)
	if err != nil {
		return err
	}
	m.Checksum = checksum
	return nil
}

// Validate reports whether payload matches the stored checksum.
func (m *Metadata) Validate(payload []byte) (bool, error) {
	checksum, err := generateChecksum(payload)
	if err != nil {
		return false, err
	}
	return checksum == m.Checksum, nil
}

func generateChecksum(payload []byte) (uint64, error) {
	hasher := fnv.New64a()
	if _, err := hasher.Write(payload); err != nil {
		return 0, fmt.Errorf("meta: error writing to hasher: %w", err)
	}
	return hasher.Sum64(), nil
}

func convertUint64ToBytes(num uint64) []byte {
	byteArray := make([]byte, 8)
	binary.BigEndian.PutUint64(byteArray, num)
	return byteArray
}
