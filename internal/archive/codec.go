package archive

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/linestat/internal/snapshot"
)

// maxRecordSize bounds a single record frame. A snapshot larger than
// this is not a plausible encoding, so the length prefix must be
// garbage.
const maxRecordSize = 1 << 31

func writeUint64(w io.Writer, value uint64) error {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], value)

	_, err := w.Write(buf[:])

	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte

	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(buf[:]), nil
}

// writeRecord appends one length-prefixed gob-encoded snapshot.
func writeRecord(w io.Writer, snap *snapshot.Snapshot) error {
	var payload bytes.Buffer

	encErr := gob.NewEncoder(&payload).Encode(snap)
	if encErr != nil {
		return fmt.Errorf("encode record: %w", encErr)
	}

	lenErr := writeUint64(w, uint64(payload.Len()))
	if lenErr != nil {
		return fmt.Errorf("write record length: %w", lenErr)
	}

	_, writeErr := w.Write(payload.Bytes())
	if writeErr != nil {
		return fmt.Errorf("write record payload: %w", writeErr)
	}

	return nil
}

// readRecord reads one length-prefixed gob-encoded snapshot.
func readRecord(r io.Reader) (*snapshot.Snapshot, error) {
	length, lenErr := readUint64(r)
	if lenErr != nil {
		return nil, fmt.Errorf("read record length: %w", lenErr)
	}

	if length > maxRecordSize {
		return nil, fmt.Errorf("%w: record length %d", ErrCorrupt, length)
	}

	payload := make([]byte, length)

	_, readErr := io.ReadFull(r, payload)
	if readErr != nil {
		return nil, fmt.Errorf("read record payload: %w", readErr)
	}

	snap := &snapshot.Snapshot{}

	decErr := gob.NewDecoder(bytes.NewReader(payload)).Decode(snap)
	if decErr != nil {
		return nil, fmt.Errorf("decode record: %w", decErr)
	}

	return snap, nil
}
