package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Department Calendar API",
        "description": "Shared departmental event calendar with recurrence, conflict detection and import/export",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Editor login"},
        {"name": "Events", "description": "Event store, history and transfer"},
        {"name": "Calendar", "description": "Month, week and day view models"},
        {"name": "Reminders", "description": "Pending reminders"},
        {"name": "Assistant", "description": "Schedule context for the assistant"},
        {"name": "Backups", "description": "Scheduled JSON backups"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate editor",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current editor",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List expanded events",
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string", "enum": ["Lecture", "Workshop", "Exam", "Holiday", "Other"]},
                    {"name": "types", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "start", "in": "query", "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Events"],
                "summary": "Add event",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEventRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Overlaps an existing event", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get base event or instance",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Events"],
                "summary": "Update event series",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Overlaps an existing event", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete event series",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/events/conflicts": {
            "get": {"tags": ["Events"], "summary": "Overlapping event groups", "responses": {"200": {"description": "OK"}}}
        },
        "/events/counts": {
            "get": {"tags": ["Events"], "summary": "Event counts", "responses": {"200": {"description": "OK"}}}
        },
        "/events/history": {
            "get": {"tags": ["Events"], "summary": "Undo/redo availability", "responses": {"200": {"description": "OK"}}}
        },
        "/events/undo": {
            "post": {"tags": ["Events"], "summary": "Undo", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Nothing to undo"}}}
        },
        "/events/redo": {
            "post": {"tags": ["Events"], "summary": "Redo", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Nothing to redo"}}}
        },
        "/events/import": {
            "post": {
                "tags": ["Events"],
                "summary": "Import JSON, YAML or iCalendar",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json", "application/yaml", "text/calendar"],
                "responses": {"200": {"description": "Imported"}, "422": {"description": "Rejected"}}
            }
        },
        "/events/export": {
            "get": {
                "tags": ["Events"],
                "summary": "Export events",
                "produces": ["application/json", "text/csv", "application/pdf", "text/calendar", "application/yaml"],
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "pdf", "ics", "yaml"]}],
                "responses": {"200": {"description": "File download"}}
            }
        },
        "/calendar/month": {
            "get": {"tags": ["Calendar"], "summary": "Month view", "parameters": [{"name": "date", "in": "query", "type": "string", "format": "date"}], "responses": {"200": {"description": "OK"}}}
        },
        "/calendar/week": {
            "get": {"tags": ["Calendar"], "summary": "Week view", "parameters": [{"name": "date", "in": "query", "type": "string", "format": "date"}], "responses": {"200": {"description": "OK"}}}
        },
        "/calendar/day": {
            "get": {"tags": ["Calendar"], "summary": "Day view", "parameters": [{"name": "date", "in": "query", "type": "string", "format": "date"}], "responses": {"200": {"description": "OK"}}}
        },
        "/reminders": {
            "get": {
                "tags": ["Reminders"],
                "summary": "Upcoming reminders",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "to", "in": "query", "type": "string", "format": "date-time"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/assistant/context": {
            "get": {"tags": ["Assistant"], "summary": "Schedule context", "parameters": [{"name": "q", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/backups": {
            "get": {"tags": ["Backups"], "summary": "List backups", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Backups"], "summary": "Write a backup now", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
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
        "Recurrence": {
            "type": "object",
            "required": ["frequency"],
            "properties": {
                "frequency": {"type": "string", "enum": ["daily", "weekly", "monthly", "yearly"]},
                "interval": {"type": "integer", "minimum": 1},
                "endDate": {"type": "string", "format": "date"},
                "count": {"type": "integer", "minimum": 1}
            }
        },
        "CreateEventRequest": {
            "type": "object",
            "required": ["title", "date", "time", "type"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "time": {"type": "string", "example": "09:30"},
                "durationMinutes": {"type": "integer"},
                "location": {"type": "string"},
                "room": {"type": "string"},
                "type": {"type": "string", "enum": ["Lecture", "Workshop", "Exam", "Holiday", "Other"]},
                "reminderMinutes": {"type": "integer"},
                "color": {"type": "string"},
                "resourcesUrl": {"type": "string"},
                "imageUrl": {"type": "string"},
                "recurrence": {"$ref": "#/definitions/Recurrence"}
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
