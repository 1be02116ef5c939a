// Package swagger registers the OpenAPI document for the login, catalog and
// circulation endpoints served under /swagger/*.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in as reader or staff",
                "parameters": [
                    {"description": "credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errs.Response"}}
                }
            }
        },
        "/auth/register-reader": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Self-register a reader account",
                "parameters": [
                    {"description": "new reader", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RegisterReaderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errs.Response"}}
                }
            }
        },
        "/books": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List books, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Book"}}}
                }
            }
        },
        "/books/{id}": {
            "delete": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Delete a book without copies",
                "parameters": [
                    {"type": "integer", "description": "book id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.okResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errs.Response"}}
                }
            }
        },
        "/borrow": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["circulation"],
                "summary": "Borrow a copy",
                "parameters": [
                    {"description": "copy and, for staff, the reader", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.BorrowRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.BorrowRecord"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errs.Response"}}
                }
            }
        },
        "/return": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["circulation"],
                "summary": "Return a borrowed copy, assessing overdue and damage fines",
                "parameters": [
                    {"description": "borrow and damage report", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ReturnRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.BorrowRecord"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errs.Response"}}
                }
            }
        },
        "/fines/{id}/pay": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["circulation"],
                "summary": "Pay an unpaid fine in full",
                "parameters": [
                    {"type": "integer", "description": "fine id", "name": "id", "in": "path", "required": true},
                    {"description": "payment method", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/model.PayRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.PayResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errs.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errs.Response"}}
                }
            }
        }
    },
    "definitions": {
        "errs.Response": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "handler.okResponse": {
            "type": "object",
            "properties": {"ok": {"type": "boolean"}}
        },
        "model.LoginRequest": {
            "type": "object",
            "required": ["password", "user_type", "username"],
            "properties": {
                "password": {"type": "string"},
                "user_type": {"type": "string", "enum": ["reader", "staff"]},
                "username": {"type": "string"}
            }
        },
        "model.RegisterReaderRequest": {
            "type": "object",
            "required": ["category_id", "name", "password", "reader_no", "username"],
            "properties": {
                "category_id": {"type": "integer"},
                "name": {"type": "string"},
                "password": {"type": "string"},
                "reader_no": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "model.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_in": {"type": "integer"},
                "reader_id": {"type": "integer"},
                "role": {"type": "string"},
                "token_type": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "model.Book": {
            "type": "object",
            "properties": {
                "available_copies": {"type": "integer"},
                "book_id": {"type": "integer"},
                "category": {"type": "string"},
                "isbn": {"type": "string"},
                "language": {"type": "string"},
                "price": {"type": "string"},
                "publish_date": {"type": "string"},
                "publisher_id": {"type": "integer"},
                "publisher_name": {"type": "string"},
                "subtitle": {"type": "string"},
                "summary": {"type": "string"},
                "title": {"type": "string"},
                "total_copies": {"type": "integer"}
            }
        },
        "model.BorrowRequest": {
            "type": "object",
            "required": ["copy_id"],
            "properties": {"copy_id": {"type": "integer"}, "reader_id": {"type": "integer"}}
        },
        "model.ReturnRequest": {
            "type": "object",
            "required": ["borrow_id"],
            "properties": {
                "borrow_id": {"type": "integer"},
                "damage_desc": {"type": "string"},
                "is_damaged": {"type": "boolean"}
            }
        },
        "model.BorrowRecord": {
            "type": "object",
            "properties": {
                "book_id": {"type": "integer"},
                "borrow_id": {"type": "integer"},
                "borrow_time": {"type": "string"},
                "copy_id": {"type": "integer"},
                "damage_desc": {"type": "string"},
                "due_time": {"type": "string"},
                "fine_amount": {"type": "string"},
                "fine_status": {"type": "string", "enum": ["none", "unpaid", "paid"]},
                "is_damaged": {"type": "boolean"},
                "overdue_days": {"type": "integer"},
                "reader_id": {"type": "integer"},
                "return_time": {"type": "string"},
                "status": {"type": "string", "enum": ["borrowed", "returned", "overdue_returned", "damaged_returned", "lost"]}
            }
        },
        "model.PayRequest": {
            "type": "object",
            "properties": {"method": {"type": "string", "enum": ["cash", "wechat", "alipay", "card", "other"]}}
        },
        "model.PaymentRecord": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "fine_id": {"type": "integer"},
                "method": {"type": "string"},
                "paid_at": {"type": "string"},
                "pay_id": {"type": "integer"},
                "reader_id": {"type": "integer"},
                "receipt_no": {"type": "string"}
            }
        },
        "model.PayResponse": {
            "type": "object",
            "properties": {"ok": {"type": "boolean"}, "payment": {"$ref": "#/definitions/model.PaymentRecord"}}
        }
    },
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Library circulation API",
	Description:      "Catalog, readers, borrowing, fines and payments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
