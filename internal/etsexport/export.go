package etsexport

import (
	"strings"
	"unicode"
)

// ContentType is the MIME type under which exports are served and saved.
const ContentType = "text/csv;charset=windows-1252"

// DefaultProjectName is used in the filename when no project name is given.
const DefaultProjectName = "Project"

// filenameSuffix is appended to the project name.
const filenameSuffix = "-ets.csv"

// invalidFilenameChars cannot appear in a Windows filename.
const invalidFilenameChars = `<>:"/\|?*`

// Options control the file-level metadata of an export. They never change
// the CSV bytes.
type Options struct {
	// ProjectName names the output file. Defaults to DefaultProjectName.
	ProjectName string
}

// Stats summarises an export.
type Stats struct {
	// Rows is the number of CSV lines including the header.
	Rows int `json:"rows"`

	MainGroups   int `json:"mainGroups"`
	MiddleGroups int `json:"middleGroups"`
	Addresses    int `json:"addresses"`

	// Replaced counts code points written as '?' because Windows-1252 has
	// no byte for them.
	Replaced int `json:"replaced"`
}

// Result is an encoded export ready to be saved or served.
type Result struct {
	Data        []byte
	Filename    string
	ContentType string
	Stats       Stats
}

// Export encodes an overview as an ETS group-address CSV file.
//
// The only error is ErrNilOverview. Malformed group addresses, unknown
// datapoint types and characters outside Windows-1252 all produce output
// rather than an error.
func Export(ov *Overview, opts Options) (*Result, error) {
	if ov == nil {
		return nil, ErrNilOverview
	}

	rows := BuildRows(*ov)
	data, replaced := EncodeWindows1252Count(Assemble(rows))

	mainGroups, middleGroups, addresses := ov.Counts()

	return &Result{
		Data:        data,
		Filename:    Filename(opts.ProjectName),
		ContentType: ContentType,
		Stats: Stats{
			Rows:         len(rows),
			MainGroups:   mainGroups,
			MiddleGroups: middleGroups,
			Addresses:    addresses,
			Replaced:     replaced,
		},
	}, nil
}

// Filename returns "<project>-ets.csv". Characters that are not allowed in
// Windows filenames are replaced with '_'.
func Filename(project string) string {
	project = strings.TrimSpace(project)
	if project == "" {
		project = DefaultProjectName
	}

	safe := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(invalidFilenameChars, r) {
			return '_'
		}
		return r
	}, project)

	return safe + filenameSuffix
}
