package etsimport

import "errors"

var (
	// ErrInvalidFile is returned for input that is not an ETS group
	// address CSV.
	ErrInvalidFile = errors.New("not an ETS group address file")

	ErrNoGroupAddresses = errors.New("file contains no group addresses")

	// ErrEncoding is returned when the bytes decode neither as UTF-8 nor
	// as Windows-1252.
	ErrEncoding = errors.New("unsupported text encoding")

	ErrFileTooLarge = errors.New("file too large")
)
