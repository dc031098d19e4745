package events

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/google/uuid"
)

// idNamespace seeds the name-based UUIDs given to lines without an id.
var idNamespace = uuid.MustParse("6f1c2a4e-9b2d-4c1e-8a7f-3d5b0e9c4a21")

// LineSource reads one bark event per text line, for example the detection
// log written by the classifier. Lines without a timestamp are skipped.
type LineSource struct {
	files     []string
	extractor *TimestampExtractor
	idPattern *regexp.Regexp

	currentFile    *os.File
	currentScanner *bufio.Scanner
	currentSource  string
	currentLine    int
	fileIndex      int
}

// NewLineSource creates a Source reading the given files in order. When
// idPattern is nil or does not match a line, the event id is derived from
// the file path and line number, so repeated runs assign the same ids.
func NewLineSource(files []string, extractor *TimestampExtractor, idPattern *regexp.Regexp) *LineSource {
	return &LineSource{
		files:     files,
		extractor: extractor,
		idPattern: idPattern,
		fileIndex: -1,
	}
}

// Next returns the next event, or io.EOF when all files are exhausted.
func (s *LineSource) Next(ctx context.Context) (*Event, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentScanner == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		if s.currentScanner.Scan() {
			s.currentLine++
			line := s.currentScanner.Text()

			ts, err := s.extractor.Extract(line)
			if err != nil {
				continue
			}

			return &Event{
				ID:        s.lineID(line),
				Timestamp: ts,
				Source:    s.currentSource,
				LineNum:   s.currentLine,
			}, nil
		}

		if err := s.currentScanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
		}

		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
	}
}

// Close releases resources.
func (s *LineSource) Close() error {
	return s.closeCurrentFile()
}

func (s *LineSource) lineID(line string) string {
	if s.idPattern != nil {
		if m := s.idPattern.FindStringSubmatch(line); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	name := fmt.Sprintf("%s:%d", s.currentSource, s.currentLine)
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

func (s *LineSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening event file %s: %w", path, err)
	}

	s.currentFile = f
	s.currentScanner = bufio.NewScanner(f)
	s.currentSource = path
	s.currentLine = 0

	return nil
}

func (s *LineSource) closeCurrentFile() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentScanner = nil
		return err
	}
	return nil
}
