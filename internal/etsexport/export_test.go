package etsexport

import (
	"bytes"
	"errors"
	"testing"
)

func testOverview() *Overview {
	return &Overview{MainGroups: []MainGroup{
		{
			Main: 2,
			Name: "scÃ¨nes",
			MiddleGroups: []MiddleGroup{{
				Middle: 0,
				Name:   "algemeen",
				Addresses: []Address{
					{GroupAddress: "2/0/0", Name: "Thuis", DatapointType: "DPT17.001"},
					{GroupAddress: "2/0/1", Name: "Café – bar", DatapointType: "DPT17.001"},
				},
			}},
		},
		{
			Main: 1,
			Name: "verlichting",
			MiddleGroups: []MiddleGroup{
				{Middle: 1, Name: "dimmen", Addresses: []Address{
					{GroupAddress: "1/1/0", Name: "Keuken", Comment: "1.1.1 - K1", DatapointType: "DPT5.001"},
				}},
				{Middle: 0, Name: "schakelen", Addresses: []Address{
					{GroupAddress: "1/0/0", Name: "Keuken", Comment: "1.1.1 - K1", DatapointType: "DPT1.001"},
					{GroupAddress: "1/0/1", Name: "Łazienka", DatapointType: "DPT1.001"},
				}},
			},
		},
	}}
}

func TestExportNil(t *testing.T) {
	res, err := Export(nil, Options{})
	if !errors.Is(err, ErrNilOverview) {
		t.Fatalf("Export(nil) error = %v, want ErrNilOverview", err)
	}
	if res != nil {
		t.Errorf("Export(nil) result = %+v, want nil", res)
	}
}

func TestExport(t *testing.T) {
	res, err := Export(testOverview(), Options{ProjectName: "Villa"})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if res.Filename != "Villa-ets.csv" {
		t.Errorf("Filename = %q, want %q", res.Filename, "Villa-ets.csv")
	}
	if res.ContentType != ContentType {
		t.Errorf("ContentType = %q, want %q", res.ContentType, ContentType)
	}

	want := Stats{Rows: 1 + 2 + 3 + 5, MainGroups: 2, MiddleGroups: 3, Addresses: 5, Replaced: 1}
	if res.Stats != want {
		t.Errorf("Stats = %+v, want %+v", res.Stats, want)
	}

	if !bytes.HasPrefix(res.Data, []byte(HeaderLine+"\r\nVerlichting;;#;1;")) {
		t.Errorf("data does not start with header and main group 1: %q", res.Data[:80])
	}
	if bytes.HasSuffix(res.Data, []byte("\r\n")) {
		t.Error("data ends with a line break")
	}

	// è and – are single Windows-1252 bytes.
	if !bytes.Contains(res.Data, []byte("Sc\xe8nes;;#;2;")) {
		t.Error("main group 2 not encoded as Windows-1252 'Scènes'")
	}
	if !bytes.Contains(res.Data, []byte("Caf\xe9 \x96 bar")) {
		t.Error("address name not encoded as Windows-1252")
	}
	if !bytes.Contains(res.Data, []byte(" ; ;?azienka;1;0;1;")) {
		t.Error("unencodable character not replaced with '?'")
	}
}

func TestExportDeterministic(t *testing.T) {
	a, _ := Export(testOverview(), Options{})
	b, _ := Export(testOverview(), Options{})
	if !bytes.Equal(a.Data, b.Data) {
		t.Error("two exports of the same overview differ")
	}
}

func TestExportDoesNotMutateInput(t *testing.T) {
	ov := testOverview()
	if _, err := Export(ov, Options{}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if ov.MainGroups[0].Main != 2 {
		t.Errorf("main groups reordered")
	}
	if ov.MainGroups[0].Name != "scÃ¨nes" {
		t.Errorf("main group name modified: %q", ov.MainGroups[0].Name)
	}
	if ov.MainGroups[1].MiddleGroups[0].Middle != 1 {
		t.Errorf("middle groups reordered")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Villa", "Villa-ets.csv"},
		{"Villa Nova", "Villa Nova-ets.csv"},
		{"", "Project-ets.csv"},
		{"   ", "Project-ets.csv"},
		{"a/b", "a_b-ets.csv"},
		{`x:y*?`, "x_y__-ets.csv"},
		{"tab\there", "tab_here-ets.csv"},
		{"Château", "Château-ets.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Filename(tt.input); got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
