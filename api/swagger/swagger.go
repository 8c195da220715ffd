package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EPD Student Records API",
        "description": "Student records, spreadsheet import and program statistics.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student documents keyed by EP ID"},
        {"name": "Imports", "description": "Spreadsheet import"},
        {"name": "Statistics", "description": "Dashboard statistics and exports"},
        {"name": "WaitingList", "description": "Prospective students"}
    ],
    "paths": {
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string", "description": "English name prefix, Arabic name, EP ID or phone number"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["NEW", "RET", "WD", "NCL"]},
                    {"name": "nationality", "in": "query", "type": "string"},
                    {"name": "level", "in": "query", "type": "string"},
                    {"name": "initialSession", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRecord"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "EP ID already used", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Download the student roster as CSV",
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV file"}}
            }
        },
        "/students/{epId}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [{"name": "epId", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Replace student document",
                "parameters": [
                    {"name": "epId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRecord"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{epId}/withdraw": {
            "post": {
                "tags": ["Students"],
                "summary": "Withdraw student",
                "parameters": [
                    {"name": "epId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WithdrawRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import students from an .xlsx or .csv spreadsheet",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "sheet", "in": "formData", "type": "string"},
                    {"name": "dryRun", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Import summary with diagnostics", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "415": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/statistics": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Aggregated student statistics",
                "responses": {
                    "200": {"description": "OK; meta.cache_hit reports cache use", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/statistics/export": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Download statistics as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/waiting-list": {
            "get": {
                "tags": ["WaitingList"],
                "summary": "List waiting-list entries",
                "parameters": [{"name": "search", "in": "query", "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["WaitingList"],
                "summary": "Add a waiting-list entry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateWaitingListRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "PhoneNumber": {
            "type": "object",
            "properties": {
                "number": {"type": "integer"},
                "notes": {"type": "string"}
            }
        },
        "StudentRecord": {
            "type": "object",
            "required": ["epId"],
            "properties": {
                "epId": {"type": "integer"},
                "name": {
                    "type": "object",
                    "properties": {"english": {"type": "string"}, "arabic": {"type": "string"}}
                },
                "gender": {"type": "string", "enum": ["M", "F"]},
                "age": {"description": "Years, or the string Unknown"},
                "nationality": {"type": "string"},
                "currentLevel": {"type": "string"},
                "initialSession": {"type": "string"},
                "status": {"type": "object"},
                "placement": {"type": "object"},
                "work": {"type": "object"},
                "literacy": {"type": "object"},
                "phone": {"type": "object"},
                "classList": {"type": "object"},
                "correspondence": {"type": "array", "items": {"type": "object"}},
                "academicRecords": {"type": "array", "items": {"type": "object"}}
            }
        },
        "WithdrawRequest": {
            "type": "object",
            "properties": {
                "inviteTag": {"type": "boolean"},
                "noContactList": {"type": "boolean"},
                "withdrawDate": {"type": "string"},
                "droppedOutReason": {"type": "string"}
            }
        },
        "CreateWaitingListRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "phoneNumbers": {"type": "array", "items": {"$ref": "#/definitions/PhoneNumber"}},
                "referral": {"type": "string"},
                "outcome": {"type": "string"}
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
