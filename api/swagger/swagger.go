package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Meeting Planner API",
        "description": "Weekly availability grid for a fixed meeting roster",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "State", "description": "Stored selections per meeting week"},
        {"name": "Weeks", "description": "Calendar lookups and the slot catalog"},
        {"name": "Exports", "description": "CSV and PDF grid exports"},
        {"name": "Monitoring", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Monitoring"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Monitoring"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "All dependencies reachable"},
                    "503": {"description": "A dependency failed its check"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Monitoring"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Monitoring"],
                "summary": "JSON summary of request, cache and store metrics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/meetings/{id}/state": {
            "get": {
                "tags": ["State"],
                "summary": "Stored selection for a meeting week",
                "parameters": [
                    {"$ref": "#/parameters/MeetingID"},
                    {"$ref": "#/parameters/WeekStart"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SerializedState"}},
                    "400": {"description": "Invalid key", "schema": {"$ref": "#/definitions/LegacyError"}}
                }
            },
            "put": {
                "tags": ["State"],
                "summary": "Replace the selection for a meeting week",
                "parameters": [
                    {"$ref": "#/parameters/MeetingID"},
                    {"$ref": "#/parameters/WeekStart"},
                    {"name": "state", "in": "body", "schema": {"$ref": "#/definitions/SerializedState"}}
                ],
                "responses": {
                    "200": {"description": "Stored state", "schema": {"$ref": "#/definitions/SerializedState"}},
                    "400": {"description": "Invalid key or body", "schema": {"$ref": "#/definitions/LegacyError"}},
                    "429": {"description": "Rate limited"}
                }
            }
        },
        "/api/meetings/{id}/state/toggle": {
            "post": {
                "tags": ["State"],
                "summary": "Toggle one participant in one slot",
                "parameters": [
                    {"$ref": "#/parameters/MeetingID"},
                    {"$ref": "#/parameters/WeekStart"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ToggleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/meetings/{id}/state/range": {
            "post": {
                "tags": ["State"],
                "summary": "Select or clear a run of slots for one participant",
                "parameters": [
                    {"$ref": "#/parameters/MeetingID"},
                    {"$ref": "#/parameters/WeekStart"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/meetings/{id}/grid": {
            "get": {
                "tags": ["State"],
                "summary": "Render data for a meeting week",
                "parameters": [
                    {"$ref": "#/parameters/MeetingID"},
                    {"$ref": "#/parameters/WeekStart"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid meeting id or weekStart is not the start of a week", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/meetings/{id}/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a grid export",
                "parameters": [
                    {"$ref": "#/parameters/MeetingID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Exports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/exports/{jobId}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "jobId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Export not ready", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/weeks/current": {
            "get": {
                "tags": ["Weeks"],
                "summary": "Week containing today",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/weeks/resolve": {
            "get": {
                "tags": ["Weeks"],
                "summary": "Resolve a week number or D.M[.YYYY] date",
                "parameters": [
                    {"name": "input", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Input not recognised", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/weeks/{timestamp}": {
            "get": {
                "tags": ["Weeks"],
                "summary": "Describe the week of a stored bucket id",
                "parameters": [
                    {"name": "timestamp", "in": "path", "required": true, "type": "integer", "format": "int64"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/slots": {
            "get": {
                "tags": ["Weeks"],
                "summary": "Slot catalog grouped by day",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/participants": {
            "get": {
                "tags": ["Weeks"],
                "summary": "Configured participant roster",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "parameters": {
        "MeetingID": {"name": "id", "in": "path", "required": true, "type": "string", "pattern": "^[A-Za-z0-9_-]{1,64}$"},
        "WeekStart": {"name": "weekStart", "in": "query", "required": true, "type": "integer", "format": "int64", "description": "Monday 00:00 local time, Unix milliseconds"}
    },
    "definitions": {
        "SerializedState": {
            "type": "object",
            "description": "Slot key \"day-hour\" to sorted participant indices",
            "additionalProperties": {"type": "array", "items": {"type": "integer"}}
        },
        "LegacyError": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "ToggleRequest": {
            "type": "object",
            "required": ["day", "hour", "participant"],
            "properties": {
                "day": {"type": "integer", "minimum": 0, "maximum": 6},
                "hour": {"type": "integer", "minimum": 0, "maximum": 23},
                "participant": {"type": "integer", "minimum": 0}
            }
        },
        "RangeRequest": {
            "type": "object",
            "required": ["participant", "from", "to"],
            "properties": {
                "participant": {"type": "integer", "minimum": 0},
                "from": {"type": "integer", "minimum": 0},
                "to": {"type": "integer", "minimum": 0},
                "selected": {"type": "boolean"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["weekStart", "format"],
            "properties": {
                "weekStart": {"type": "integer", "format": "int64"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
