// Package api implements the HTTP API of the ETS export service.
//
// Endpoints:
//
//	GET  /api/v1/health
//	POST /api/v1/exports/ets-csv    overview in, Windows-1252 CSV out
//	GET  /api/v1/exports            export history, newest first
//	GET  /api/v1/exports/{id}       single history record
//
// The export endpoint answers with the raw file bytes, never JSON, so a
// browser can save the response directly. Counts travel in the X-ETS-Rows
// and X-ETS-Replaced headers. Errors on every endpoint use the structured
// {"status","code","message"} body.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
