package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"sentinel/internal/roster"
)

// Supported upstream encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingISO88591    = "iso-8859-1"
	EncodingWindows1252 = "windows-1252"
)

func decoder(encoding string) (transform.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingUTF8:
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case EncodingISO88591:
		return charmap.ISO8859_1.NewDecoder(), nil
	case EncodingWindows1252:
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// DecodeTable reads a delimited table with a header row. Rows of uneven
// width and stray quotes are tolerated; an empty input yields an empty table.
func DecodeTable(r io.Reader, delimiter rune, encoding string) (*roster.Table, error) {
	t, err := decoder(encoding)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(transform.NewReader(r, t))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := &roster.Table{}
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	table.Header = header

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if isBlankRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// EncodeTable writes table as UTF-8 with a header row.
func EncodeTable(w io.Writer, delimiter rune, table *roster.Table) error {
	writer := csv.NewWriter(w)
	writer.Comma = delimiter
	if table != nil {
		if err := writer.Write(table.Header); err != nil {
			return err
		}
		for _, row := range table.Rows {
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// readTableFile decodes a store file. A missing file is reported through
// exists=false and is not an error.
func readTableFile(path string, delimiter rune) (*roster.Table, bool, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	table, err := DecodeTable(file, delimiter, EncodingUTF8)
	if err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", path, err)
	}
	return table, true, nil
}

// readStrictTable decodes a file written by this package: every row must
// match the expected header exactly.
func readStrictTable(path string, delimiter rune, columns []string) ([][]string, error) {
	table, exists, err := readTableFile(path, delimiter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if !exists || len(table.Header) == 0 {
		return nil, nil
	}
	if !sameHeader(table.Header, columns) {
		return nil, fmt.Errorf("%w: %s: unexpected header %q", ErrCorrupt, path, strings.Join(table.Header, string(delimiter)))
	}
	for i, row := range table.Rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: %s: row %d has %d fields, want %d", ErrCorrupt, path, i+2, len(row), len(columns))
		}
	}
	return table.Rows, nil
}

func sameHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
