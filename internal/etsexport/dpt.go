package etsexport

import (
	"regexp"
	"strings"
)

// dptSubmatchCount is the full match plus the main and sub number groups.
const dptSubmatchCount = 3

// reHumanDPT matches the human datapoint notation, e.g. "DPT1.001".
var reHumanDPT = regexp.MustCompile(`DPT(\d+)\.(\d+)`)

// ToETSID converts a human datapoint type ("DPT1.001") to the identifier ETS
// uses internally ("DPST-1-1"). Leading zeros are stripped from the subtype.
//
// Codes that do not match the pattern are returned unchanged, so a custom or
// unknown type never fails an export.
func ToETSID(code string) string {
	m := reHumanDPT.FindStringSubmatch(code)
	if len(m) != dptSubmatchCount {
		return code
	}

	sub := strings.TrimLeft(m[2], "0")
	if sub == "" {
		sub = "0"
	}
	return "DPST-" + m[1] + "-" + sub
}
