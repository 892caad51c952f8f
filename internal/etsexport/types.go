package etsexport

// Overview is the hierarchical group-address tree handed to the encoder.
//
// Main groups are emitted in ascending Main order regardless of slice order.
// The encoder sorts copies and never mutates the caller's slices.
type Overview struct {
	MainGroups []MainGroup `json:"mainGroups" yaml:"mainGroups"`
}

// MainGroup is the top level of the ETS group-address tree (conventionally 0-31).
type MainGroup struct {
	Main         int           `json:"main" yaml:"main"`
	Name         string        `json:"name" yaml:"name"`
	MiddleGroups []MiddleGroup `json:"middleGroups" yaml:"middleGroups"`
}

// MiddleGroup is the second level (conventionally 0-7).
type MiddleGroup struct {
	Middle    int       `json:"middle" yaml:"middle"`
	Name      string    `json:"name" yaml:"name"`
	Addresses []Address `json:"addresses" yaml:"addresses"`
}

// Address is a single group address entry.
//
// Addresses keep the order supplied by the generator; it encodes the
// sequence in which the generator produced them.
type Address struct {
	// GroupAddress in "main/middle/sub" or "main/middle" form.
	GroupAddress string `json:"groupAddress" yaml:"groupAddress"`

	// Name is the display name. Falls back to GroupAddress when blank.
	Name string `json:"name" yaml:"name"`

	// Comment is written to the Description column (e.g. "1.1.1 - K1").
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// DatapointType in human form, e.g. "DPT1.001".
	DatapointType string `json:"datapointType" yaml:"datapointType"`
}

// Counts returns the number of main groups, middle groups and addresses.
func (ov Overview) Counts() (mainGroups, middleGroups, addresses int) {
	mainGroups = len(ov.MainGroups)
	for _, mg := range ov.MainGroups {
		middleGroups += len(mg.MiddleGroups)
		for _, mid := range mg.MiddleGroups {
			addresses += len(mid.Addresses)
		}
	}
	return mainGroups, middleGroups, addresses
}
