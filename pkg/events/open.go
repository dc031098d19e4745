package events

import (
	"fmt"
	"regexp"
	"time"
)

// Format names the on-disk layout of event files.
type Format string

const (
	FormatJSON Format = "json"
	FormatLog  Format = "log"
)

// Options controls how event files are opened.
type Options struct {
	Format Format

	// TimestampPattern and TimestampLayout are required for FormatLog.
	TimestampPattern *regexp.Regexp
	TimestampLayout  string

	// IDPattern optionally captures the event id in FormatLog lines.
	IDPattern *regexp.Regexp

	// MinConfidence drops FormatJSON events scored below it.
	MinConfidence float64

	// Location interprets zone-less timestamps. Nil means UTC.
	Location *time.Location
}

// Open returns a Source over files. Multiple files are merged by timestamp.
func Open(files []string, opts Options) (Source, error) {
	sources := make([]Source, 0, len(files))
	for _, file := range files {
		src, err := openOne(file, opts)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	if len(sources) == 1 {
		return sources[0], nil
	}
	return NewMergedSource(sources...), nil
}

func openOne(file string, opts Options) (Source, error) {
	switch opts.Format {
	case FormatJSON, "":
		return NewJSONSource([]string{file}, opts.MinConfidence, opts.Location), nil
	case FormatLog:
		if opts.TimestampPattern == nil || opts.TimestampLayout == "" {
			return nil, fmt.Errorf("format %q requires a timestamp pattern and layout", FormatLog)
		}
		extractor := NewTimestampExtractor(opts.TimestampPattern, opts.TimestampLayout, opts.Location)
		return NewLineSource([]string{file}, extractor, opts.IDPattern), nil
	default:
		return nil, fmt.Errorf("unknown event format %q (use json or log)", opts.Format)
	}
}
