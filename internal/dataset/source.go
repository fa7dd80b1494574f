package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// Source names one logical table stored as an ordered list of fragments
// sharing a header. A zero Delimiter is detected per fragment from its
// header line.
type Source struct {
	Name      string   `json:"name"`
	Paths     []string `json:"paths"`
	Delimiter rune     `json:"-"`
}

// Fingerprint identifies the on-disk state of a source. It changes when any
// fragment's size or modification time changes.
type Fingerprint string

// Fingerprint stats every fragment. A missing fragment yields ErrSourceMissing.
func (s Source) Fingerprint() (Fingerprint, error) {
	var b strings.Builder
	for _, path := range s.Paths {
		info, err := os.Stat(path)
		if err != nil {
			return "", sourceError(path, err)
		}
		fmt.Fprintf(&b, "%s:%d:%d;", path, info.Size(), info.ModTime().UnixNano())
	}
	return Fingerprint(b.String()), nil
}

func sourceError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSourceMissing, path)
	}
	return fmt.Errorf("%w: %s: %v", ErrSourceInvalid, path, err)
}

// decodeFragments decodes every fragment into records of type T, in order.
// Each fragment must carry all required columns in its header.
func decodeFragments[T any](ctx context.Context, src Source, required []string) ([]T, error) {
	var all []T
	for _, path := range src.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := decodeFile[T](path, src.Delimiter, required)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

func decodeFile[T any](path string, delimiter rune, required []string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sourceError(path, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, sniffSize)
	if delimiter == 0 {
		delimiter = sniffDelimiter(br)
	}
	r := csv.NewReader(br)
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: empty file", ErrSourceInvalid, path)
		}
		return nil, sourceError(path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if missing := missingColumns(header, required); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing columns %s", ErrSourceInvalid, path, strings.Join(missing, ", "))
	}

	var records []T
	if err := gocsv.UnmarshalCSV(&replayReader{header: header, r: r}, &records); err != nil {
		return nil, sourceError(path, err)
	}
	return records, nil
}

const sniffSize = 64 * 1024

// sniffDelimiter picks tab or comma, whichever occurs more often in the
// header line. Ties go to comma.
func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(sniffSize)
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{'\t'}) > bytes.Count(head, []byte{','}) {
		return '\t'
	}
	return ','
}

func missingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// replayReader hands gocsv the already-consumed header before the rest of
// the underlying reader.
type replayReader struct {
	header []string
	r      *csv.Reader
	sent   bool
}

func (rr *replayReader) Read() ([]string, error) {
	if !rr.sent {
		rr.sent = true
		return rr.header, nil
	}
	return rr.r.Read()
}

func (rr *replayReader) ReadAll() ([][]string, error) {
	var rows [][]string
	if !rr.sent {
		rr.sent = true
		rows = append(rows, rr.header)
	}
	rest, err := rr.r.ReadAll()
	if err != nil {
		return nil, err
	}
	return append(rows, rest...), nil
}
