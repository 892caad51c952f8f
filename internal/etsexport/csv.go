package etsexport

import (
	"sort"
	"strconv"
	"strings"
)

// CSV layout constants shared with the ETS import dialog.
const (
	// ColumnCount is the fixed number of columns in every row.
	ColumnCount = 11

	// Delimiter separates fields. ETS expects a semicolon.
	Delimiter = ";"

	// LineEnding separates rows. ETS on Windows expects CRLF.
	LineEnding = "\r\n"

	// groupMarker in the SubHierarchy column marks a main or middle group row.
	groupMarker = "#"

	// indent in a hierarchy column places the row under its parent in the
	// ETS tree. It is a real single space and is never trimmed or quoted.
	indent = " "

	securityAuto = "Auto"
)

// Column positions.
const (
	colMainHierarchy = iota
	colMiddleHierarchy
	colSubHierarchy
	colMain
	colMiddle
	colSub
	colCentral
	colUnfiltered
	colDescription
	colDatapointType
	colSecurity
)

// Row is one CSV line split into its escaped fields.
type Row [ColumnCount]string

// Header is the literal first row of every export.
var Header = Row{
	"Main", "Middle", "Sub",
	"Main", "Middle", "Sub",
	"Central", "Unfiltered", "Description", "DatapointType", "Security",
}

// HeaderLine is Header joined with the delimiter.
var HeaderLine = Header.String()

// String joins the fields with the delimiter.
func (r Row) String() string {
	return strings.Join(r[:], Delimiter)
}

// EscapeValue quotes a field for the semicolon-separated format.
//
// A field is wrapped in double quotes, with inner quotes doubled, when it
// contains the delimiter, a quote, CR or LF, or when it starts with '-'.
// Leading minus signs are quoted so spreadsheets and ETS do not read the
// field as a formula. Empty values stay empty and a lone space stays a space.
func EscapeValue(v string) string {
	if v == "" {
		return ""
	}
	if strings.ContainsAny(v, ";\"\r\n") || strings.HasPrefix(v, "-") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

// BuildRows walks the overview and returns the header followed by one row per
// main group, middle group and address.
//
// Main groups are sorted by Main and middle groups by Middle (both stable);
// addresses are emitted in the order given. The overview is not modified.
func BuildRows(ov Overview) []Row {
	mainGroups, middleGroups, addresses := ov.Counts()
	rows := make([]Row, 0, 1+mainGroups+middleGroups+addresses)
	rows = append(rows, Header)

	for _, mg := range sortedMainGroups(ov.MainGroups) {
		rows = append(rows, mainGroupRow(mg))

		for _, mid := range sortedMiddleGroups(mg.MiddleGroups) {
			rows = append(rows, middleGroupRow(mg.Main, mid))

			for _, addr := range mid.Addresses {
				rows = append(rows, addressRow(addr))
			}
		}
	}

	return rows
}

// Assemble joins rows with CRLF. There is no line break after the last row.
func Assemble(rows []Row) string {
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString(LineEnding)
		}
		b.WriteString(r.String())
	}
	return b.String()
}

// BuildCSV returns the complete CSV text (still Unicode) for an overview.
func BuildCSV(ov Overview) string {
	return Assemble(BuildRows(ov))
}

func sortedMainGroups(groups []MainGroup) []MainGroup {
	sorted := make([]MainGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Main < sorted[j].Main
	})
	return sorted
}

func sortedMiddleGroups(groups []MiddleGroup) []MiddleGroup {
	sorted := make([]MiddleGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Middle < sorted[j].Middle
	})
	return sorted
}

// groupName is the display name of a main or middle group.
func groupName(name string) string {
	return CapitalizeFirst(Sanitize(name))
}

func mainGroupRow(mg MainGroup) Row {
	var r Row
	r[colMainHierarchy] = EscapeValue(groupName(mg.Name))
	r[colSubHierarchy] = groupMarker
	r[colMain] = strconv.Itoa(mg.Main)
	r[colSecurity] = securityAuto
	return r
}

func middleGroupRow(main int, mid MiddleGroup) Row {
	var r Row
	r[colMainHierarchy] = indent
	r[colMiddleHierarchy] = EscapeValue(groupName(mid.Name))
	r[colSubHierarchy] = groupMarker
	r[colMain] = strconv.Itoa(main)
	r[colMiddle] = strconv.Itoa(mid.Middle)
	r[colSecurity] = securityAuto
	return r
}

func addressRow(addr Address) Row {
	ga := ParseGroupAddress(addr.GroupAddress)

	// ETS rejects rows without a name.
	name := Sanitize(addr.Name)
	if strings.TrimSpace(name) == "" {
		name = addr.GroupAddress
	}

	var r Row
	r[colMainHierarchy] = indent
	r[colMiddleHierarchy] = indent
	r[colSubHierarchy] = EscapeValue(name)
	r[colMain] = strconv.Itoa(ga.Main)
	r[colMiddle] = strconv.Itoa(ga.Middle)
	r[colSub] = strconv.Itoa(ga.Sub)
	r[colDescription] = EscapeValue(addr.Comment)
	r[colDatapointType] = EscapeValue(ToETSID(addr.DatapointType))
	r[colSecurity] = securityAuto
	return r
}
