package etsimport

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/nerrad567/gray-logic-ets/internal/etsexport"
)

// Reader configuration constants.
const (
	// MaxFileSize is the maximum allowed file size (50MB).
	MaxFileSize = 50 * 1024 * 1024

	// Regex match counts.
	regexMatchCount3 = 3
	regexMatchCount2 = 2

	// groupMarker in the third column marks a main or middle group row.
	groupMarker = "#"
)

// Column positions in an ETS group-address row.
const (
	colMainName = iota
	colMiddleName
	colSubName
	colMain
	colMiddle
	colSub
	colCentral
	colUnfiltered
	colDescription
	colDatapointType
	colSecurity
)

var (
	reDPST = regexp.MustCompile(`^DPST-(\d+)-(\d+)$`)
	reDPT  = regexp.MustCompile(`^DPT-(\d+)$`)

	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
)

// ReadFile reads an ETS group-address CSV file from disk.
func ReadFile(path string) (*etsexport.Overview, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return ReadOverview(data)
}

// ReadOverview parses an ETS group-address CSV file.
//
// The file must start with the ETS header and every row must have the same
// eleven columns. Files re-saved as UTF-8 with a byte-order mark are
// accepted as well.
func ReadOverview(data []byte) (*etsexport.Overview, error) {
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	text, err := decode(data)
	if err != nil {
		return nil, err
	}

	records, err := splitRecords(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, err.Error())
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}
	if header := strings.Join(records[0], etsexport.Delimiter); header != etsexport.HeaderLine {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrInvalidFile, header)
	}

	b := &builder{}
	for i, fields := range records[1:] {
		line := i + 2
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if len(fields) != etsexport.ColumnCount {
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d",
				ErrInvalidFile, line, len(fields), etsexport.ColumnCount)
		}
		if err := b.add(fields); err != nil {
			return nil, fmt.Errorf("%w: line %d: %s", ErrInvalidFile, line, err.Error())
		}
	}

	if b.addresses == 0 {
		return nil, ErrNoGroupAddresses
	}

	return &b.overview, nil
}

// decode converts the raw file to UTF-8.
func decode(data []byte) (string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		data = data[len(utf8BOM):]
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: invalid UTF-8 after byte-order mark", ErrEncoding)
		}
		return string(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrEncoding, err.Error())
	}
	return string(decoded), nil
}

// builder rebuilds the group tree row by row.
type builder struct {
	overview  etsexport.Overview
	addresses int
}

func (b *builder) add(fields []string) error {
	if fields[colSubName] == groupMarker {
		if fields[colMiddle] == "" {
			return b.addMainGroup(fields)
		}
		return b.addMiddleGroup(fields)
	}
	return b.addAddress(fields)
}

func (b *builder) addMainGroup(fields []string) error {
	main, err := parseNumber(fields[colMain], "main")
	if err != nil {
		return err
	}

	b.overview.MainGroups = append(b.overview.MainGroups, etsexport.MainGroup{
		Main: main,
		Name: fields[colMainName],
	})
	return nil
}

func (b *builder) addMiddleGroup(fields []string) error {
	mg := b.currentMain()
	if mg == nil {
		return fmt.Errorf("middle group %q before any main group", fields[colMiddleName])
	}

	main, err := parseNumber(fields[colMain], "main")
	if err != nil {
		return err
	}
	if main != mg.Main {
		return fmt.Errorf("middle group %q belongs to main %d, inside main %d",
			fields[colMiddleName], main, mg.Main)
	}

	middle, err := parseNumber(fields[colMiddle], "middle")
	if err != nil {
		return err
	}

	mg.MiddleGroups = append(mg.MiddleGroups, etsexport.MiddleGroup{
		Middle: middle,
		Name:   fields[colMiddleName],
	})
	return nil
}

func (b *builder) addAddress(fields []string) error {
	mid := b.currentMiddle()
	if mid == nil {
		return fmt.Errorf("address %q before any middle group", fields[colSubName])
	}

	var levels [3]int
	for i, col := range []int{colMain, colMiddle, colSub} {
		n, err := parseNumber(fields[col], "address")
		if err != nil {
			return err
		}
		levels[i] = n
	}

	mid.Addresses = append(mid.Addresses, etsexport.Address{
		GroupAddress:  fmt.Sprintf("%d/%d/%d", levels[0], levels[1], levels[2]),
		Name:          fields[colSubName],
		Comment:       fields[colDescription],
		DatapointType: FromETSID(fields[colDatapointType]),
	})
	b.addresses++
	return nil
}

func (b *builder) currentMain() *etsexport.MainGroup {
	n := len(b.overview.MainGroups)
	if n == 0 {
		return nil
	}
	return &b.overview.MainGroups[n-1]
}

func (b *builder) currentMiddle() *etsexport.MiddleGroup {
	mg := b.currentMain()
	if mg == nil || len(mg.MiddleGroups) == 0 {
		return nil
	}
	return &mg.MiddleGroups[len(mg.MiddleGroups)-1]
}

func parseNumber(field, what string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, fmt.Errorf("invalid %s number %q", what, field)
	}
	return n, nil
}

// FromETSID converts an ETS datapoint identifier back to human notation.
// DPST-1-1 -> DPT1.001, DPT-9 -> DPT9. Anything else is returned unchanged.
func FromETSID(id string) string {
	if matches := reDPST.FindStringSubmatch(id); len(matches) == regexMatchCount3 {
		main, _ := strconv.Atoi(matches[1])
		sub, _ := strconv.Atoi(matches[2])
		return fmt.Sprintf("DPT%d.%03d", main, sub)
	}

	if matches := reDPT.FindStringSubmatch(id); len(matches) == regexMatchCount2 {
		return "DPT" + matches[1]
	}

	return id
}

// splitRecords splits semicolon-separated text into records, accepting only
// the layout the exporter writes: records end in CRLF, and a quote may only
// open a field and must be followed by a delimiter or CRLF when it closes.
// Inside quotes, delimiters, line breaks and doubled quotes are literal.
// A final CRLF is tolerated.
func splitRecords(text string) ([][]string, error) {
	var (
		records  [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
		quoted   bool // current field was quoted and its quote has closed
	)

	line := 1
	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
		quoted = false
	}
	endRecord := func() {
		endField()
		records = append(records, fields)
		fields = nil
		line++
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inQuotes {
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
					continue
				}
				inQuotes = false
				quoted = true
				continue
			}
			field.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			if quoted || field.Len() > 0 {
				return nil, fmt.Errorf("line %d: quote inside an unquoted field", line)
			}
			inQuotes = true
		case ';':
			endField()
		case '\r':
			if i+1 >= len(text) || text[i+1] != '\n' {
				return nil, fmt.Errorf("line %d: carriage return without line feed", line)
			}
			i++
			endRecord()
		case '\n':
			return nil, fmt.Errorf("line %d: line feed without carriage return", line)
		default:
			if quoted {
				return nil, fmt.Errorf("line %d: text after closing quote", line)
			}
			field.WriteByte(c)
		}
	}

	if inQuotes {
		return nil, fmt.Errorf("line %d: unterminated quoted field", line)
	}
	if quoted || field.Len() > 0 || len(fields) > 0 {
		endRecord()
	}

	return records, nil
}
