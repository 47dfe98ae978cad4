package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School API",
        "description": "Timetable generation and student billing backend",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedules", "description": "Weekly timetable generation and views"},
        {"name": "Invoices", "description": "Monthly invoicing and student ledger"},
        {"name": "Payments", "description": "Payment review and settlement"},
        {"name": "Metrics", "description": "Runtime metrics"}
    ],
    "paths": {
        "/schedules/generate": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Generate weekly timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Place a single lesson",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}": {
            "put": {
                "tags": ["Schedules"],
                "summary": "Move or reassign a lesson",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Schedules"],
                "summary": "Remove a lesson",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/schedules/my-week": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Weekly timetable for the caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/schedule/week": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Weekly timetable for a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}/schedule/week": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Weekly timetable for a teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/invoices": {
            "post": {
                "tags": ["Invoices"],
                "summary": "Generate an invoice for a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateInvoiceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Period already invoiced", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/invoices/group": {
            "post": {
                "tags": ["Invoices"],
                "summary": "Generate invoices for a class group",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateGroupInvoicesRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/invoices/search": {
            "get": {
                "tags": ["Invoices"],
                "summary": "List invoices by billing account number",
                "parameters": [
                    {"name": "accountNumber", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/invoices": {
            "get": {
                "tags": ["Invoices"],
                "summary": "List a student's invoices",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/invoices/debt": {
            "get": {
                "tags": ["Invoices"],
                "summary": "Total outstanding debt for a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/invoices/export": {
            "get": {
                "tags": ["Invoices"],
                "summary": "Export a student's account statement",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Statement document"}
                }
            }
        },
        "/payments": {
            "get": {
                "tags": ["Payments"],
                "summary": "Payment history for an account",
                "parameters": [
                    {"name": "accountNumber", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Payments"],
                "summary": "Report a payment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitPaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/pending": {
            "get": {
                "tags": ["Payments"],
                "summary": "List payments awaiting review",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/{id}/approve": {
            "post": {
                "tags": ["Payments"],
                "summary": "Approve a pending payment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already processed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/{id}/reject": {
            "post": {
                "tags": ["Payments"],
                "summary": "Reject a pending payment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already processed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/snapshot": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Aggregated runtime metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerationMapping": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "class_group_ids": {"type": "array", "items": {"type": "string"}},
                "lessons_per_week": {"type": "integer"},
                "room": {"type": "string"}
            },
            "required": ["teacher_id", "subject_id", "class_group_ids"]
        },
        "GenerateScheduleRequest": {
            "type": "object",
            "properties": {
                "mappings": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GenerationMapping"}
                }
            },
            "required": ["mappings"]
        },
        "CreateScheduleRequest": {
            "type": "object",
            "properties": {
                "class_group_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "day_of_week": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "room": {"type": "string"},
                "lesson_number": {"type": "integer"}
            },
            "required": ["class_group_id", "teacher_id", "subject_id", "day_of_week", "start_time", "end_time"]
        },
        "GenerateInvoiceRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "year": {"type": "integer"},
                "month": {"type": "integer"},
                "amount": {"type": "integer"}
            },
            "required": ["student_id", "year", "month"]
        },
        "GenerateGroupInvoicesRequest": {
            "type": "object",
            "properties": {
                "class_group_id": {"type": "string"},
                "year": {"type": "integer"},
                "month": {"type": "integer"}
            },
            "required": ["class_group_id", "year", "month"]
        },
        "SubmitPaymentRequest": {
            "type": "object",
            "properties": {
                "account_number": {"type": "string"},
                "amount": {"type": "integer"},
                "receipt_number": {"type": "string"}
            },
            "required": ["account_number", "amount", "receipt_number"]
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
