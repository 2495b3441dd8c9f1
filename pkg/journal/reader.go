package journal

import (
	"encoding/binary"
	"io"
	"os"
)

// ReadAll reads every intact record from the journal at path, in append
// order. A corrupted or truncated tail ends the read without error: the
// journal is best-effort, so a damaged suffix loses only the newest writes.
//
// The version store never bootstraps from the journal; this reader exists
// for verification and offline inspection.
func ReadAll(path string) ([]Record, error) {
	j := &Journal{Path: path}
	files, err := j.findFiles()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNotFound
	}

	var records []Record
	for _, file := range files {
		fd, err := os.Open(file)
		if err != nil {
			return nil, err
		}

		for {
			rec, err := readRecord(fd)
			if err == io.EOF {
				break
			}
			if err != nil {
				break // damaged tail
			}
			records = append(records, *rec)
		}

		fd.Close()
	}

	return records, nil
}

// LatestByKey reduces records of one type to the newest record per key,
// realizing the journal's upsert semantics.
func LatestByKey(records []Record, rt RecordType) map[string][]byte {
	out := make(map[string][]byte)
	for _, rec := range records {
		if rec.Type != rt {
			continue
		}
		out[string(rec.Key)] = rec.Payload
	}
	return out
}

// readRecord reads a single record from the reader
func readRecord(r io.Reader) (*Record, error) {
	header := make([]byte, RecordHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	keyLen := binary.LittleEndian.Uint32(header[12:16])
	payloadLen := binary.LittleEndian.Uint32(header[16:20])

	rest := int(keyLen) + int(payloadLen) + 4
	data := make([]byte, RecordHeaderSize+rest)
	copy(data, header)
	if _, err := io.ReadFull(r, data[RecordHeaderSize:]); err != nil {
		return nil, err
	}

	return DecodeRecord(data)
}
