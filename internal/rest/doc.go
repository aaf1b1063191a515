// Package rest serves the loaded schema over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /api/v1/config
//	GET  /api/v1/schema/objectclasses
//	GET  /api/v1/schema/objectclasses/:name
//	GET  /api/v1/schema/attributetypes[?usage=user]
//	GET  /api/v1/schema/attributetypes/:name
//	GET  /api/v1/schema/matchingrules
//	GET  /api/v1/schema/syntaxes
//	GET  /api/v1/schema/report
//	POST /api/v1/schema/validate-entry
//	POST /api/v1/schema/reload
//
// Responses other than /health use the Response envelope.
package rest
