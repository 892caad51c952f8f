package etsexport

import (
	"strconv"
	"strings"
)

// gaLevelCount is the number of levels in a 3-level group address.
const gaLevelCount = 3

// GroupAddress is a parsed 3-level group address.
//
// Values are not range checked; the encoder writes whatever it was given.
type GroupAddress struct {
	Main   int
	Middle int
	Sub    int
}

// ParseGroupAddress parses "main/middle/sub" leniently.
//
// Missing or non-numeric parts become 0, so "1/2" yields 1/2/0 and ""
// yields 0/0/0. Parts beyond the third are ignored.
func ParseGroupAddress(s string) GroupAddress {
	var levels [gaLevelCount]int

	parts := strings.Split(s, "/")
	for i := 0; i < gaLevelCount && i < len(parts); i++ {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[i])); err == nil {
			levels[i] = n
		}
	}

	return GroupAddress{
		Main:   levels[0],
		Middle: levels[1],
		Sub:    levels[2],
	}
}

// String returns the address in 3-level format, e.g. "1/2/3".
func (ga GroupAddress) String() string {
	return strconv.Itoa(ga.Main) + "/" + strconv.Itoa(ga.Middle) + "/" + strconv.Itoa(ga.Sub)
}
