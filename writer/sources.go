package writer

import (
	"fmt"

	"golang.org/x/exp/mmap"
)

// sourceSet lazily opens each distinct input file at most once for the
// duration of a write pass, mirroring writetraces()'s "open file for
// reading if not already done" behavior.
type sourceSet struct {
	readers map[string]*mmap.ReaderAt
}

func newSourceSet() *sourceSet {
	return &sourceSet{readers: make(map[string]*mmap.ReaderAt)}
}

func (s *sourceSet) read(path string, offset int64, length int32, into []byte) ([]byte, error) {
	r, ok := s.readers[path]
	if !ok {
		var err error
		r, err = mmap.Open(path)
		if err != nil {
			return nil, fmt.Errorf("writer: opening %q for reading: %w", path, err)
		}
		s.readers[path] = r
	}

	if cap(into) < int(length) {
		into = make([]byte, length)
	}
	into = into[:length]
	if _, err := r.ReadAt(into, offset); err != nil {
		return nil, fmt.Errorf("writer: reading %d bytes at offset %d from %q: %w", length, offset, path, err)
	}
	return into, nil
}

func (s *sourceSet) closeAll() {
	for path, r := range s.readers {
		r.Close()
		delete(s.readers, path)
	}
}
