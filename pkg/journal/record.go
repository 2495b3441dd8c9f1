package journal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"
)

// RecordType identifies what a journal record stores
type RecordType byte

const (
	// RecordVersion stores a document version snapshot
	RecordVersion RecordType = 1

	// RecordBranch stores a branch snapshot
	RecordBranch RecordType = 2
)

const (
	// RecordHeaderSize is the fixed size of the record header
	// Layout: Seq(8) + Type(1) + Reserved(3) + KeyLen(4) + PayloadLen(4) + Timestamp(8)
	RecordHeaderSize = 28
)

// Record is a single journal record. Key is the entity id; Payload is its
// JSON encoding. Upsert semantics: the last record for a key wins.
type Record struct {
	Seq       uint64     // Sequence number (monotonically increasing)
	Type      RecordType // Record type
	Key       []byte     // Entity id
	Payload   []byte     // JSON-encoded entity
	Timestamp time.Time  // Record timestamp
}

// Encode serializes the record to bytes with a CRC32 checksum
// Format: [Header(28)] [Key] [Payload] [CRC32(4)]
func (r *Record) Encode() []byte {
	keyLen := len(r.Key)
	payloadLen := len(r.Payload)
	totalSize := RecordHeaderSize + keyLen + payloadLen + 4 // +4 for CRC32

	buf := make([]byte, totalSize)

	binary.LittleEndian.PutUint64(buf[0:8], r.Seq)
	buf[8] = byte(r.Type)
	// bytes 9-11 are reserved (padding)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(keyLen))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(payloadLen))
	binary.LittleEndian.PutUint64(buf[20:28], uint64(r.Timestamp.Unix()))

	offset := RecordHeaderSize
	copy(buf[offset:], r.Key)
	offset += keyLen
	copy(buf[offset:], r.Payload)
	offset += payloadLen

	// CRC32 covers everything before the checksum field
	crc := crc32.ChecksumIEEE(buf[:offset])
	binary.LittleEndian.PutUint32(buf[offset:offset+4], crc)

	return buf
}

// DecodeRecord deserializes a journal record from bytes
func DecodeRecord(data []byte) (*Record, error) {
	if len(data) < RecordHeaderSize+4 {
		return nil, ErrTruncated
	}

	dataLen := len(data)
	storedCRC := binary.LittleEndian.Uint32(data[dataLen-4:])
	computedCRC := crc32.ChecksumIEEE(data[:dataLen-4])
	if storedCRC != computedCRC {
		return nil, ErrCorrupted
	}

	rec := &Record{
		Seq:  binary.LittleEndian.Uint64(data[0:8]),
		Type: RecordType(data[8]),
	}

	keyLen := binary.LittleEndian.Uint32(data[12:16])
	payloadLen := binary.LittleEndian.Uint32(data[16:20])
	timestamp := binary.LittleEndian.Uint64(data[20:28])
	rec.Timestamp = time.Unix(int64(timestamp), 0)

	expectedSize := RecordHeaderSize + int(keyLen) + int(payloadLen) + 4
	if len(data) < expectedSize {
		return nil, ErrTruncated
	}

	offset := RecordHeaderSize
	if keyLen > 0 {
		rec.Key = make([]byte, keyLen)
		copy(rec.Key, data[offset:offset+int(keyLen)])
		offset += int(keyLen)
	}

	if payloadLen > 0 {
		rec.Payload = make([]byte, payloadLen)
		copy(rec.Payload, data[offset:offset+int(payloadLen)])
	}

	return rec, nil
}

// Size returns the encoded size of the record
func (r *Record) Size() int {
	return RecordHeaderSize + len(r.Key) + len(r.Payload) + 4
}

// String returns a human-readable representation of the record
func (r *Record) String() string {
	typeName := "UNKNOWN"
	switch r.Type {
	case RecordVersion:
		typeName = "VERSION"
	case RecordBranch:
		typeName = "BRANCH"
	}
	return fmt.Sprintf("Journal[Seq=%d Type=%s Key=%s PayloadLen=%d]",
		r.Seq, typeName, r.Key, len(r.Payload))
}
