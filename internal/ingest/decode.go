// Package ingest reads round batches (JSON arrays, JSON lines or YAML,
// optionally gzip-compressed), validates them and hands them to the
// round store.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"ladderscope/internal/pattern"
)

// Format selects a batch decoder
type Format int

const (
	// FormatAuto sniffs the first significant byte
	FormatAuto Format = iota
	FormatJSON
	FormatJSONLines
	FormatYAML
)

var formatNames = map[Format]string{
	FormatAuto:      "auto",
	FormatJSON:      "json",
	FormatJSONLines: "jsonl",
	FormatYAML:      "yaml",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "Format(" + strconv.Itoa(int(f)) + ")"
}

// ErrUnknownFormat is returned by ParseFormat
var ErrUnknownFormat = errors.New("unknown ingest format")

// ErrEmptyBatch is returned when a batch holds no records
var ErrEmptyBatch = errors.New("batch contains no rounds")

// ParseFormat accepts auto, json, jsonl (ndjson) and yaml (yml).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson", "json-lines":
		return FormatJSONLines, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatForPath infers the format from a file extension, ignoring a
// trailing .gz.
func FormatForPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(strings.ToLower(path), ".gz")))
	switch ext {
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONLines
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

var gzipMagic = []byte{0x1f, 0x8b}

// Decode reads one batch from r. Gzip input is detected by its magic bytes
// and decompressed transparently.
func Decode(r io.Reader, format Format) ([]pattern.RawRound, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(2); err == nil && bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}

	if format == FormatAuto {
		format = sniff(br)
	}

	var recs []record
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(br).Decode(&recs)
	case FormatJSONLines:
		recs, err = decodeLines(br)
	case FormatYAML:
		err = yaml.NewDecoder(br).Decode(&recs)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s batch: %w", format, err)
	}
	if len(recs) == 0 {
		return nil, ErrEmptyBatch
	}

	out := make([]pattern.RawRound, len(recs))
	for i, rec := range recs {
		out[i] = rec.raw()
	}
	return out, nil
}

// ReadFile decodes the batch stored at path, choosing the format from the
// extension when format is FormatAuto.
func ReadFile(path string, format Format) ([]pattern.RawRound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if format == FormatAuto {
		format = FormatForPath(path)
	}
	return Decode(f, format)
}

// sniff looks at the first non-space byte: '[' is a JSON array, '{' a
// stream of JSON objects, anything else YAML.
func sniff(br *bufio.Reader) Format {
	for i := 1; ; i++ {
		buf, _ := br.Peek(i)
		if len(buf) < i {
			return FormatYAML
		}
		switch buf[i-1] {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return FormatJSON
		case '{':
			return FormatJSONLines
		default:
			return FormatYAML
		}
	}
}

func decodeLines(r io.Reader) ([]record, error) {
	dec := json.NewDecoder(r)
	var recs []record
	for {
		var rec record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(recs), err)
		}
		recs = append(recs, rec)
	}
}

// NewestFirst sorts rounds the way the store returns them: latest
// registration first, then highest round number.
func NewestFirst(rounds []pattern.RawRound) {
	slices.SortStableFunc(rounds, func(a, b pattern.RawRound) int {
		if c := strings.Compare(b.RegisteredAt, a.RegisteredAt); c != 0 {
			return c
		}
		switch {
		case a.RoundNumber > b.RoundNumber:
			return -1
		case a.RoundNumber < b.RoundNumber:
			return 1
		}
		return 0
	})
}
