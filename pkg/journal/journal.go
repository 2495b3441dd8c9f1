// ABOUTME: Append-only record log with CRC checks and rotation
// ABOUTME: Implements the durable persistence hand-off for versions and branches

package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nainya/revstore/pkg/branch"
	"github.com/nainya/revstore/pkg/document"
)

const (
	// MaxFileSize is the maximum size of a single journal file (50MB)
	MaxFileSize = 50 << 20

	// MaxFiles is the maximum number of journal files to keep
	MaxFiles = 3
)

// Journal is a file-backed append-only record log. It implements the
// version-store and branch-manager Persister interfaces: writes are
// idempotent upserts by id realized as appends where the last record wins.
type Journal struct {
	// Path is the base path for journal files (e.g., "/data/revstore.journal")
	Path string

	fd        *os.File
	mu        sync.Mutex
	seq       uint64
	fileSize  int64
	fileIndex int
	closed    bool
}

// Open opens or creates the journal
func (j *Journal) Open() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	files, err := j.findFiles()
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if len(files) > 0 {
		latest := files[len(files)-1]
		fd, err := os.OpenFile(latest, os.O_RDWR|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		j.fd = fd

		stat, err := fd.Stat()
		if err != nil {
			return err
		}
		j.fileSize = stat.Size()

		if _, err := fmt.Sscanf(filepath.Base(latest), j.baseName()+".%d", &j.fileIndex); err != nil {
			j.fileIndex = 0
		}

		maxSeq, err := j.scanForHighestSeq(files)
		if err != nil {
			return err
		}
		atomic.StoreUint64(&j.seq, maxSeq)
	} else {
		path := j.filePath(0)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		j.fd = fd
		j.fileSize = 0
		j.fileIndex = 0
		atomic.StoreUint64(&j.seq, 0)
	}

	j.closed = false
	return nil
}

// PutVersion appends a version snapshot. Implements version.Persister.
func (j *Journal) PutVersion(v *document.Version) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encoding version %s: %v", ErrInvalidRecord, v.ID, err)
	}
	return j.Append(RecordVersion, []byte(v.ID), payload)
}

// PutBranch appends a branch snapshot. Implements branch.Persister.
func (j *Journal) PutBranch(b *branch.Branch) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("%w: encoding branch %s: %v", ErrInvalidRecord, b.ID, err)
	}
	return j.Append(RecordBranch, []byte(b.ID), payload)
}

// Append writes one record to the journal
func (j *Journal) Append(rt RecordType, key, payload []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}

	rec := Record{
		Seq:       atomic.AddUint64(&j.seq, 1),
		Type:      rt,
		Key:       key,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data := rec.Encode()

	if j.fileSize+int64(len(data)) > MaxFileSize {
		if err := j.rotateNoLock(); err != nil {
			return err
		}
	}

	n, err := j.fd.Write(data)
	if err != nil {
		return err
	}

	j.fileSize += int64(n)
	return nil
}

// Fsync ensures all written data is persisted to disk
func (j *Journal) Fsync() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}
	return j.fd.Sync()
}

// Close closes the journal
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}

	err := j.fd.Close()
	j.closed = true
	return err
}

// rotateNoLock rotates to a new journal file (caller must hold mu)
func (j *Journal) rotateNoLock() error {
	if err := j.fd.Sync(); err != nil {
		return err
	}
	if err := j.fd.Close(); err != nil {
		return err
	}

	j.fileIndex++
	path := j.filePath(j.fileIndex)
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	j.fd = fd
	j.fileSize = 0

	return j.cleanOldFilesNoLock()
}

// cleanOldFilesNoLock removes old journal files (caller must hold mu)
func (j *Journal) cleanOldFilesNoLock() error {
	files, err := j.findFiles()
	if err != nil {
		return err
	}

	if len(files) > MaxFiles {
		toRemove := files[:len(files)-MaxFiles]
		for _, f := range toRemove {
			os.Remove(f) // Ignore errors
		}
	}

	return nil
}

func (j *Journal) baseName() string {
	return filepath.Base(j.Path)
}

func (j *Journal) filePath(index int) string {
	dir := filepath.Dir(j.Path)
	name := fmt.Sprintf("%s.%03d", j.baseName(), index)
	return filepath.Join(dir, name)
}

// findFiles returns all journal files sorted by index
func (j *Journal) findFiles() ([]string, error) {
	dir := filepath.Dir(j.Path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && j.isJournalFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Slice(files, func(a, b int) bool {
		var idxA, idxB int
		pattern := j.baseName() + ".%d"
		fmt.Sscanf(filepath.Base(files[a]), pattern, &idxA)
		fmt.Sscanf(filepath.Base(files[b]), pattern, &idxB)
		return idxA < idxB
	})

	return files, nil
}

func (j *Journal) isJournalFile(name string) bool {
	var index int
	pattern := j.baseName() + ".%d"
	_, err := fmt.Sscanf(name, pattern, &index)
	return err == nil
}

// scanForHighestSeq scans all journal files and returns the highest sequence
func (j *Journal) scanForHighestSeq(files []string) (uint64, error) {
	var maxSeq uint64

	for _, file := range files {
		fd, err := os.Open(file)
		if err != nil {
			return 0, err
		}

		for {
			rec, err := readRecord(fd)
			if err == io.EOF {
				break
			}
			if err != nil {
				// A damaged tail ends the scan for this file; appends
				// continue past it with the next sequence number.
				break
			}

			if rec.Seq > maxSeq {
				maxSeq = rec.Seq
			}
		}

		fd.Close()
	}

	return maxSeq, nil
}
