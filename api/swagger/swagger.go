package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Clinic Ops API",
        "description": "Clinic scheduling assistant with rule-based auto-allocation of assistant roles",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Allocation", "description": "Auto-assignment engine"},
        {"name": "Appointments", "description": "Day schedule management"},
        {"name": "Assistants", "description": "Assistant profiles"},
        {"name": "Doctors", "description": "Doctor profiles"},
        {"name": "Attendance", "description": "Punch in/out tracking"},
        {"name": "TimeBlocks", "description": "Ad hoc exclusion windows"},
        {"name": "Dashboard", "description": "Live status board"},
        {"name": "Exports", "description": "Day-roster exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and receive an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current authenticated user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/allocation/slot": {
            "post": {
                "tags": ["Allocation"],
                "summary": "Fill assistant roles on one appointment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/allocation/day": {
            "post": {
                "tags": ["Allocation"],
                "summary": "Run allocation over a full date's schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateDayRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/allocation/availability": {
            "get": {
                "tags": ["Allocation"],
                "summary": "Probe one assistant's availability for a window",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "assistant", "in": "query", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string", "required": true},
                    {"name": "start", "in": "query", "type": "string", "required": true},
                    {"name": "end", "in": "query", "type": "string", "required": true},
                    {"name": "excludeSlotId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/appointments": {
            "get": {
                "tags": ["Appointments"],
                "summary": "List appointments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "doctor", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Appointments"],
                "summary": "Register a new appointment slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAppointmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/appointments/{id}": {
            "get": {
                "tags": ["Appointments"],
                "summary": "Fetch one appointment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Appointments"],
                "summary": "Edit an appointment under optimistic concurrency",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAppointmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Save version conflict"}
                }
            },
            "delete": {
                "tags": ["Appointments"],
                "summary": "Remove an appointment slot",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "204": {"description": "Removed"}
                }
            }
        },
        "/appointments/{id}/status": {
            "patch": {
                "tags": ["Appointments"],
                "summary": "Transition an appointment's lifecycle status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance board for a date",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "date", "in": "query", "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/punch-in": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record an assistant's arrival",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PunchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/punch-out": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record an assistant's departure",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PunchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/time-blocks": {
            "get": {
                "tags": ["TimeBlocks"],
                "summary": "List time blocks for a date",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "date", "in": "query", "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["TimeBlocks"],
                "summary": "Block an assistant for part of a date",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTimeBlockRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Live assistant status board",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "date", "in": "query", "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a day-roster export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export via its signed token",
                "produces": ["application/octet-stream"],
                "parameters": [{"name": "token", "in": "query", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Inspect a queued export job",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AllocateSlotRequest": {
            "type": "object",
            "required": ["appointmentId"],
            "properties": {
                "appointmentId": {"type": "string"},
                "onlyFillEmpty": {"type": "boolean"}
            }
        },
        "AllocateDayRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string"},
                "onlyFillEmpty": {"type": "boolean"}
            }
        },
        "CreateAppointmentRequest": {
            "type": "object",
            "required": ["date", "patientName", "doctorName", "startTime", "endTime"],
            "properties": {
                "date": {"type": "string"},
                "patientName": {"type": "string"},
                "doctorName": {"type": "string"},
                "opRoom": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "procedure": {"type": "string"}
            }
        },
        "UpdateAppointmentRequest": {
            "type": "object",
            "required": ["saveVersion"],
            "properties": {
                "patientName": {"type": "string"},
                "doctorName": {"type": "string"},
                "opRoom": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "procedure": {"type": "string"},
                "firstAssistant": {"type": "string"},
                "secondAssistant": {"type": "string"},
                "thirdAssistant": {"type": "string"},
                "saveVersion": {"type": "integer"}
            }
        },
        "UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string"}
            }
        },
        "PunchRequest": {
            "type": "object",
            "required": ["assistantName", "date"],
            "properties": {
                "assistantName": {"type": "string"},
                "date": {"type": "string"},
                "time": {"type": "string"}
            }
        },
        "CreateTimeBlockRequest": {
            "type": "object",
            "required": ["assistantName", "date", "reason", "startTime", "endTime"],
            "properties": {
                "assistantName": {"type": "string"},
                "date": {"type": "string"},
                "reason": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["date", "format"],
            "properties": {
                "date": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
