package etsexport

import (
	"bytes"
	"strings"
	"testing"
)

const testHeader = "Main;Middle;Sub;Main;Middle;Sub;Central;Unfiltered;Description;DatapointType;Security"

func TestEscapeValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"single space", " ", " "},
		{"plain", "Keuken", "Keuken"},
		{"delimiter", "a;b", `"a;b"`},
		{"quote doubled", `say "hi"`, `"say ""hi"""`},
		{"newline", "line\nbreak", "\"line\nbreak\""},
		{"carriage return", "line\rbreak", "\"line\rbreak\""},
		{"leading minus", "-5", `"-5"`},
		{"inner minus", "1.1.1 - K1", "1.1.1 - K1"},
		{"leading space kept", "  Hal", "  Hal"},
		{"comma not special", "a,b", "a,b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeValue(tt.input)
			if got != tt.want {
				t.Errorf("EscapeValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHeaderLine(t *testing.T) {
	if HeaderLine != testHeader {
		t.Errorf("HeaderLine = %q, want %q", HeaderLine, testHeader)
	}
}

func TestBuildCSVSingleAddress(t *testing.T) {
	overview := func(mainName, middleName string) Overview {
		return Overview{MainGroups: []MainGroup{{
			Main: 1,
			Name: mainName,
			MiddleGroups: []MiddleGroup{{
				Middle: 0,
				Name:   middleName,
				Addresses: []Address{{
					GroupAddress:  "1/0/0",
					Name:          "Keuken",
					Comment:       "1.1.1",
					DatapointType: "DPT1.001",
				}},
			}},
		}}}
	}

	want := testHeader + "\r\n" +
		"Verlichting;;#;1;;;;;;;Auto\r\n" +
		" ;Schakelen;#;1;0;;;;;;Auto\r\n" +
		" ; ;Keuken;1;0;0;;;1.1.1;DPST-1-1;Auto"

	tests := []struct {
		name       string
		mainName   string
		middleName string
	}{
		{"capitalised input", "Verlichting", "Schakelen"},
		{"lower case input", "verlichting", "schakelen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildCSV(overview(tt.mainName, tt.middleName))
			if got != want {
				t.Errorf("BuildCSV() =\n%q\nwant\n%q", got, want)
			}
			if rows := strings.Split(got, "\r\n"); len(rows) != 4 {
				t.Errorf("got %d rows after the header, want 3", len(rows)-1)
			}
			if data := EncodeWindows1252(got); !bytes.Equal(data, []byte(want)) {
				t.Errorf("EncodeWindows1252(BuildCSV()) = %q, want the ASCII bytes %q", data, want)
			}
		})
	}
}

func TestBuildCSVEmptyOverview(t *testing.T) {
	if got := BuildCSV(Overview{}); got != testHeader {
		t.Errorf("BuildCSV(empty) = %q, want header only", got)
	}
}

func TestBuildRowsSortsGroups(t *testing.T) {
	ov := Overview{MainGroups: []MainGroup{
		{Main: 2, Name: "b", MiddleGroups: []MiddleGroup{
			{Middle: 3, Name: "z"},
			{Middle: 1, Name: "y"},
		}},
		{Main: 0, Name: "a"},
		{Main: 2, Name: "c"},
	}}

	rows := BuildRows(ov)

	var got []string
	for _, r := range rows[1:] {
		got = append(got, r[colMainHierarchy]+"|"+r[colMiddleHierarchy])
	}

	want := []string{
		"A|",
		"B|",
		" |Y",
		" |Z",
		"C|",
	}

	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i+1, got[i], want[i])
		}
	}
}

func TestBuildRowsKeepsAddressOrder(t *testing.T) {
	ov := Overview{MainGroups: []MainGroup{{
		Main: 1, Name: "x",
		MiddleGroups: []MiddleGroup{{
			Middle: 0, Name: "y",
			Addresses: []Address{
				{GroupAddress: "1/0/9", Name: "nine"},
				{GroupAddress: "1/0/1", Name: "one"},
				{GroupAddress: "1/0/5", Name: "five"},
			},
		}},
	}}}

	rows := BuildRows(ov)
	names := []string{rows[3][colSubHierarchy], rows[4][colSubHierarchy], rows[5][colSubHierarchy]}
	want := []string{"nine", "one", "five"}

	for i := range want {
		if names[i] != want[i] {
			t.Errorf("address %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestBuildRowsDoesNotMutateInput(t *testing.T) {
	ov := Overview{MainGroups: []MainGroup{
		{Main: 3, Name: "three", MiddleGroups: []MiddleGroup{{Middle: 2}, {Middle: 1}}},
		{Main: 1, Name: "one"},
	}}

	BuildRows(ov)

	if ov.MainGroups[0].Main != 3 || ov.MainGroups[1].Main != 1 {
		t.Errorf("main groups reordered: %+v", ov.MainGroups)
	}
	if ov.MainGroups[0].MiddleGroups[0].Middle != 2 {
		t.Errorf("middle groups reordered: %+v", ov.MainGroups[0].MiddleGroups)
	}
	if ov.MainGroups[0].Name != "three" {
		t.Errorf("name modified: %q", ov.MainGroups[0].Name)
	}
}

func TestBuildRowsCountAndShape(t *testing.T) {
	ov := Overview{MainGroups: []MainGroup{
		{Main: 0, Name: "a", MiddleGroups: []MiddleGroup{
			{Middle: 0, Name: "a0", Addresses: []Address{{GroupAddress: "0/0/1"}, {GroupAddress: "0/0/2"}}},
			{Middle: 1, Name: "a1"},
		}},
		{Main: 1, Name: "b", MiddleGroups: []MiddleGroup{
			{Middle: 0, Name: "b0", Addresses: []Address{{GroupAddress: "1/0/0"}}},
		}},
	}}

	csv := BuildCSV(ov)

	// 1 header + 2 main + 3 middle + 3 addresses
	lines := strings.Split(csv, "\r\n")
	if len(lines) != 9 {
		t.Fatalf("got %d lines, want 9", len(lines))
	}
	if strings.HasSuffix(csv, "\r\n") {
		t.Error("CSV must not end with a line break")
	}
	for i, line := range lines {
		if n := strings.Count(line, Delimiter); n != ColumnCount-1 {
			t.Errorf("line %d has %d delimiters, want %d: %q", i, n, ColumnCount-1, line)
		}
		if i > 0 && !strings.HasSuffix(line, ";Auto") {
			t.Errorf("line %d does not end with Auto: %q", i, line)
		}
	}
}

func TestAddressRow(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want string
	}{
		{
			name: "full",
			addr: Address{GroupAddress: "2/1/4", Name: "Woonkamer dimmen", Comment: "1.1.3 - K2", DatapointType: "DPT5.001"},
			want: " ; ;Woonkamer dimmen;2;1;4;;;1.1.3 - K2;DPST-5-1;Auto",
		},
		{
			name: "empty name falls back to address",
			addr: Address{GroupAddress: "1/2/3", Name: "", DatapointType: "DPT1.001"},
			want: " ; ;1/2/3;1;2;3;;;;DPST-1-1;Auto",
		},
		{
			name: "whitespace name falls back to address",
			addr: Address{GroupAddress: "1/2/3", Name: "   "},
			want: " ; ;1/2/3;1;2;3;;;;;Auto",
		},
		{
			name: "malformed address",
			addr: Address{GroupAddress: "x/y", Name: "Bad"},
			want: " ; ;Bad;0;0;0;;;;;Auto",
		},
		{
			name: "name is not capitalized",
			addr: Address{GroupAddress: "0/0/1", Name: "lamp"},
			want: " ; ;lamp;0;0;1;;;;;Auto",
		},
		{
			name: "name with delimiter is quoted",
			addr: Address{GroupAddress: "0/0/1", Name: "Hal; boven"},
			want: ` ; ;"Hal; boven";0;0;1;;;;;Auto`,
		},
		{
			name: "mojibake name repaired",
			addr: Address{GroupAddress: "0/0/1", Name: "ScÃ¨nes"},
			want: " ; ;Scènes;0;0;1;;;;;Auto",
		},
		{
			name: "unknown datapoint type passes through",
			addr: Address{GroupAddress: "0/0/1", Name: "x", DatapointType: "custom"},
			want: " ; ;x;0;0;1;;;;custom;Auto",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := addressRow(tt.addr).String()
			if got != tt.want {
				t.Errorf("addressRow() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGroupRowsCapitalizeAndSanitize(t *testing.T) {
	main := mainGroupRow(MainGroup{Main: 4, Name: "scÃ¨nes"}).String()
	if want := "Scènes;;#;4;;;;;;;Auto"; main != want {
		t.Errorf("mainGroupRow() = %q, want %q", main, want)
	}

	mid := middleGroupRow(4, MiddleGroup{Middle: 7, Name: "ßtatus"}).String()
	if want := " ;SStatus;#;4;7;;;;;;Auto"; mid != want {
		t.Errorf("middleGroupRow() = %q, want %q", mid, want)
	}
}

func TestAssemble(t *testing.T) {
	if got := Assemble(nil); got != "" {
		t.Errorf("Assemble(nil) = %q, want empty", got)
	}

	rows := []Row{Header, {0: "x"}}
	want := testHeader + "\r\nx;;;;;;;;;;"
	if got := Assemble(rows); got != want {
		t.Errorf("Assemble() = %q, want %q", got, want)
	}
}
