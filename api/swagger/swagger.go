package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School ERP API",
        "description": "Fee accounting, hosted checkout reconciliation and portal document stores",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Fees", "description": "Fee records, balances and payment history"},
        {"name": "Payments", "description": "Hosted checkout sessions and redirect reconciliation"},
        {"name": "Settings", "description": "Per-role portal settings documents"},
        {"name": "Timetables", "description": "Teacher and class timetables"},
        {"name": "Communications", "description": "Messages, announcements and notifications"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Dependency unavailable"}
                }
            }
        },
        "/fees": {
            "get": {
                "tags": ["Fees"],
                "summary": "List fees",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["Pending", "Partial", "Paid"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Fees"],
                "summary": "Create fee",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFeeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/stats": {
            "get": {
                "tags": ["Fees"],
                "summary": "Fee collection statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/overdue": {
            "get": {
                "tags": ["Fees"],
                "summary": "List overdue fees",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/{id}": {
            "get": {
                "tags": ["Fees"],
                "summary": "Get fee detail with payment history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Fees"],
                "summary": "Update fee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateFeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Fees"],
                "summary": "Delete fee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/fees/{id}/payments": {
            "post": {
                "tags": ["Fees"],
                "summary": "Record a manual payment against a fee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordPaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/{id}/receipt": {
            "get": {
                "tags": ["Fees"],
                "summary": "Download a PDF receipt for a fee",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF receipt"}
                }
            }
        },
        "/payments/checkout": {
            "post": {
                "tags": ["Payments"],
                "summary": "Start a hosted checkout session for a fee",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InitiateCheckoutRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/return": {
            "get": {
                "tags": ["Payments"],
                "summary": "Handle the gateway redirect back after checkout",
                "parameters": [
                    {"name": "payment", "in": "query", "required": true, "type": "string", "enum": ["success", "cancelled"]},
                    {"name": "session_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Reconciliation result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Session not paid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Session cannot be matched to a fee", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/complete": {
            "post": {
                "tags": ["Payments"],
                "summary": "Complete a checkout session explicitly",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CompleteCheckoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "Reconciliation result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings/{role}": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get settings for a portal role",
                "parameters": [
                    {"name": "role", "in": "path", "required": true, "type": "string", "enum": ["student", "teacher", "parent", "admin"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Settings"],
                "summary": "Patch settings for a portal role",
                "parameters": [
                    {"name": "role", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings/{role}/{section}": {
            "patch": {
                "tags": ["Settings"],
                "summary": "Patch one settings section for a portal role",
                "parameters": [
                    {"name": "role", "in": "path", "required": true, "type": "string"},
                    {"name": "section", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings/{role}/reset": {
            "post": {
                "tags": ["Settings"],
                "summary": "Reset a portal role settings to defaults",
                "parameters": [
                    {"name": "role", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get the full timetable document",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/teachers": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List teacher timetables",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Timetables"],
                "summary": "Create or replace a teacher timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/classes/{name}": {
            "put": {
                "tags": ["Timetables"],
                "summary": "Create or replace a class timetable",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/communications/messages": {
            "post": {
                "tags": ["Communications"],
                "summary": "Send a direct message",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendMessageRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/communications/unread": {
            "get": {
                "tags": ["Communications"],
                "summary": "Unread counters for a user",
                "parameters": [
                    {"name": "userId", "in": "query", "required": true, "type": "string"},
                    {"name": "role", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateFeeRequest": {
            "type": "object",
            "required": ["student_id", "student_name", "student_class", "fee_type", "amount", "due_date"],
            "properties": {
                "student_id": {"type": "string"},
                "student_name": {"type": "string"},
                "student_class": {"type": "string"},
                "fee_type": {"type": "string"},
                "amount": {"type": "number"},
                "due_date": {"type": "string", "example": "2026-01-20"}
            }
        },
        "UpdateFeeRequest": {
            "type": "object",
            "properties": {
                "fee_type": {"type": "string"},
                "amount": {"type": "number"},
                "due_date": {"type": "string"}
            }
        },
        "RecordPaymentRequest": {
            "type": "object",
            "required": ["amount", "payment_method", "transaction_id"],
            "properties": {
                "amount": {"type": "number"},
                "payment_method": {"type": "string"},
                "transaction_id": {"type": "string"},
                "paid_by": {"type": "string"}
            }
        },
        "InitiateCheckoutRequest": {
            "type": "object",
            "required": ["fee_id", "amount"],
            "properties": {
                "fee_id": {"type": "string"},
                "amount": {"type": "number"},
                "paid_by": {"type": "string"}
            }
        },
        "CompleteCheckoutRequest": {
            "type": "object",
            "required": ["session_id"],
            "properties": {
                "session_id": {"type": "string"}
            }
        },
        "SendMessageRequest": {
            "type": "object",
            "required": ["sender_id", "sender_name", "sender_role", "recipient_id", "text"],
            "properties": {
                "conversation_id": {"type": "string"},
                "sender_id": {"type": "string"},
                "sender_name": {"type": "string"},
                "sender_role": {"type": "string"},
                "recipient_id": {"type": "string"},
                "recipient_name": {"type": "string"},
                "recipient_role": {"type": "string"},
                "subject": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
