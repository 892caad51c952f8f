// Package etsimport reads ETS group-address CSV files back into an
// etsexport.Overview.
//
// ETS writes (and imports) group addresses as a semicolon-separated,
// Windows-1252 encoded file with three hierarchy columns followed by the
// numeric address, description, datapoint type and security columns. A '#'
// in the third column marks a main or middle group row. Records must end
// in CRLF, as the exporter writes them.
//
// # Usage
//
//	data, err := os.ReadFile("Villa-ets.csv")
//	if err != nil {
//	    return err
//	}
//	ov, err := etsimport.ReadOverview(data)
//	if err != nil {
//	    return err
//	}
//	mainGroups, middleGroups, addresses := ov.Counts()
//
// The reader is the inverse of etsexport.Export: reading an exported file
// returns the overview with sanitized, capitalised group names and
// datapoint types converted back to the "DPT1.001" notation. It is used to
// verify exports before they are handed to an installer.
package etsimport
