package core

// csv.go turns pasted CSV text into header + rows.
//
// The pipeline is a sequence of explicit steps, each returning an error:
//
//	SplitLines -> DetectHeader -> ValidateHeader -> ParseRows -> ValidateRows
//
// Check order matters: for input with several problems, the first failing
// step decides which message the caller sees.
//
// # Header sniffing
//
// The first non-blank line is a header only if its normalized keys contain
// every key in RequiredKeys. Otherwise it is data and the built-in
// DefaultHeaderLabels are used. A data row whose cells happen to spell out
// all required keys is read as a header; this ambiguity is accepted.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// RequiredKeys are the normalized column keys a supplied header must contain.
var RequiredKeys = []string{
	"liga",
	"pais",
	"horario",
	"casa",
	"visitante",
	"odd_casa",
	"odd_visitante",
	"media_gols",
}

// DefaultHeaderLabels is the effective header for headerless input.
var DefaultHeaderLabels = []string{
	"Liga",
	"País",
	"Horário",
	"Casa",
	"Visitante",
	"Odd Casa",
	"Odd Visitante",
	"Média Gols",
}

// requiredLabels maps each required key to its display label.
var requiredLabels = map[string]string{
	"liga":          "Liga",
	"pais":          "País",
	"horario":       "Horário",
	"casa":          "Casa",
	"visitante":     "Visitante",
	"odd_casa":      "Odd Casa",
	"odd_visitante": "Odd Visitante",
	"media_gols":    "Média Gols",
}

var lineBreaks = regexp.MustCompile(`\r\n|\r|\n`)

// Line is a trimmed, non-blank input line.
type Line struct {
	Number   int // 1-based among non-blank lines
	Physical int // 1-based position in the input, blank lines included
	Text     string
}

// Header is the effective header of a CSV input.
type Header struct {
	Labels   []string // display labels, BOM-stripped and trimmed
	Keys     []string // normalized keys, same length as Labels
	Supplied bool     // true when the labels came from the input itself
	Missing  []string // required keys absent from Keys
}

// Row is one parsed data line.
type Row struct {
	Line       int // physical input line
	Raw        *Fields // display label -> trimmed cell
	Normalized *Fields // normalized key -> trimmed cell
}

// ParsedCSV is the result of a successful parse.
type ParsedCSV struct {
	Header Header
	Rows   []Row
}

// ParseCSV runs the full pipeline on text, sniffing for a header line.
func ParseCSV(text string) (*ParsedCSV, error) {
	lines, err := SplitLines(text)
	if err != nil {
		return nil, err
	}

	header, dataStart, err := DetectHeader(lines)
	if err != nil {
		return nil, err
	}
	return parseBody(header, lines[dataStart:])
}

// ParseCSVWithHeader parses text whose header is supplied by the caller;
// every non-blank line of text is data. A header lacking required keys fails
// with MissingColumns.
func ParseCSVWithHeader(text string, labels []string) (*ParsedCSV, error) {
	lines, err := SplitLines(text)
	if err != nil {
		return nil, err
	}
	return parseBody(NewHeader(labels, true), lines)
}

func parseBody(header Header, data []Line) (*ParsedCSV, error) {
	if err := ValidateHeader(header); err != nil {
		return nil, err
	}

	rows, err := ParseRows(header, data)
	if err != nil {
		return nil, err
	}

	if err := ValidateRows(rows); err != nil {
		return nil, err
	}
	return &ParsedCSV{Header: header, Rows: rows}, nil
}

// SplitLines splits text on any line ending, trims every line and drops the
// blank ones. Invalid UTF-8 is replaced and a leading BOM removed.
func SplitLines(text string) ([]Line, error) {
	text = string(sanitizeUTF8([]byte(text)))
	text = strings.TrimPrefix(text, byteOrderMark)

	var lines []Line
	for i, l := range lineBreaks.Split(text, -1) {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, Line{Number: len(lines) + 1, Physical: i + 1, Text: l})
	}

	if len(lines) == 0 {
		return nil, inputError(CodeEmptyInput, "Cole o conteúdo do CSV antes de enviar.")
	}
	return lines, nil
}

// DetectHeader decides whether the first line is a header. It returns the
// effective header and the index of the first data line in lines.
func DetectHeader(lines []Line) (Header, int, error) {
	if len(lines) == 0 {
		return Header{}, 0, inputError(CodeEmptyInput, "Cole o conteúdo do CSV antes de enviar.")
	}

	cells, err := splitCells(lines[0])
	if err != nil {
		return Header{}, 0, err
	}

	candidate := NewHeader(cells, true)
	if len(candidate.Missing) == 0 {
		return candidate, 1, nil
	}
	return NewHeader(DefaultHeaderLabels, false), 0, nil
}

// NewHeader builds a header from display labels.
func NewHeader(labels []string, supplied bool) Header {
	clean := make([]string, len(labels))
	for i, l := range labels {
		clean[i] = cleanLabel(l)
	}
	keys := NormalizeKeys(clean)
	return Header{
		Labels:   clean,
		Keys:     keys,
		Supplied: supplied,
		Missing:  missingKeys(keys),
	}
}

// ParseRows splits each data line into cells and maps them onto header.
// Every line must have exactly len(header.Labels) cells.
func ParseRows(header Header, data []Line) ([]Row, error) {
	want := len(header.Labels)
	rows := make([]Row, 0, len(data))

	for _, line := range data {
		cells, err := splitCells(line)
		if err != nil {
			return nil, err
		}
		if len(cells) != want {
			e := validationError(CodeColumnCountMismatch, fmt.Sprintf(
				"Linha do CSV com número incorreto de colunas (esperadas %d, encontradas %d).",
				want, len(cells)))
			e.Line = line.Physical
			return nil, e
		}

		raw := NewFields(len(cells))
		normalized := NewFields(len(cells))
		for i, value := range cells {
			label, key := columnName(header, i)
			raw.Set(label, value)
			normalized.Set(key, value)
		}
		rows = append(rows, Row{Line: line.Physical, Raw: raw, Normalized: normalized})
	}

	return rows, nil
}

// columnName returns the label and key for column i, falling back to
// "Column N" past the end of the header.
func columnName(header Header, i int) (string, string) {
	if i < len(header.Labels) {
		return header.Labels[i], header.Keys[i]
	}
	label := fmt.Sprintf("Column %d", i+1)
	return label, NormalizeKey(label)
}

// splitCells parses a single line as CSV and trims every cell.
func splitCells(line Line) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line.Text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	record, err := r.Read()
	if err != nil && err != io.EOF {
		e := inputError(CodeInvalidPayload, "Não foi possível ler a linha do CSV.")
		e.Line = line.Physical
		e.Err = err
		return nil, e
	}

	cells := make([]string, len(record))
	for i, c := range record {
		cells[i] = strings.TrimSpace(c)
	}
	return cells, nil
}

func cleanLabel(label string) string {
	return strings.TrimSpace(strings.TrimPrefix(label, byteOrderMark))
}

func missingKeys(keys []string) []string {
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}

	var missing []string
	for _, k := range RequiredKeys {
		if !present[k] {
			missing = append(missing, k)
		}
	}
	return missing
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement character.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
