// Package docs holds the generated OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

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
                "description": "expectedResult of 400, 401, 403, 404, 500 or 503 forces that outcome when enabled.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Refresh tokens",
                "parameters": [
                    {"description": "Refresh token", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.refreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/auth/validate": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Validate an access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.livenessResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "description": "Filter by search and role, sort, then paginate.",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "parameters": [
                    {"type": "integer", "description": "Page number (1-based)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (max 100)", "name": "pageSize", "in": "query"},
                    {"type": "string", "description": "Case-insensitive substring of name, email or role", "name": "search", "in": "query"},
                    {"type": "string", "description": "admin, user or moderator", "name": "role", "in": "query"},
                    {"type": "string", "description": "name, email, role or createdAt", "name": "sortBy", "in": "query"},
                    {"type": "string", "description": "asc or desc", "name": "sortOrder", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create a user",
                "parameters": [
                    {"description": "New user", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/users/bookList": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List demo books",
                "parameters": [
                    {"type": "integer", "description": "Page number (1-based)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (max 100)", "name": "pageSize", "in": "query"},
                    {"type": "string", "description": "Matches localized names, author, isbn or category", "name": "searchKey", "in": "query"},
                    {"type": "string", "description": "bookName, author, price, stock, category or isbn", "name": "sortBy", "in": "query"},
                    {"type": "string", "description": "asc or desc", "name": "sortOrder", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/users/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Generate random users",
                "parameters": [
                    {"description": "How many (1..50)", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.generateUsersRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/users/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "User counts by role",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/users/updateProfile": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Transform a demo profile form",
                "parameters": [
                    {"description": "Profile form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user by id",
                "parameters": [
                    {"type": "string", "description": "User id (e.g. user_1)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update a user",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change (at least one)", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            },
            "delete": {
                "tags": ["users"],
                "summary": "Delete a user",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "handler.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/handler.FieldError"}},
                "pagination": {"$ref": "#/definitions/query.Page"},
                "timestamp": {"type": "string"},
                "requestId": {"type": "string"}
            }
        },
        "handler.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"},
                "value": {}
            }
        },
        "query.Page": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "hasNext": {"type": "boolean"},
                "hasPrev": {"type": "boolean"}
            }
        },
        "handler.createUserRequest": {
            "type": "object",
            "required": ["email", "name"],
            "properties": {
                "name": {"type": "string", "maxLength": 100, "minLength": 2},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "user", "moderator"]}
            }
        },
        "handler.updateUserRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "maxLength": 100, "minLength": 2},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "user", "moderator"]}
            }
        },
        "handler.generateUsersRequest": {
            "type": "object",
            "required": ["count"],
            "properties": {
                "count": {"type": "integer", "maximum": 50, "minimum": 1}
            }
        },
        "handler.objectValueRequest": {
            "type": "object",
            "required": ["firstString", "secondString"],
            "properties": {
                "firstString": {"type": "string"},
                "secondString": {"type": "string"}
            }
        },
        "handler.updateProfileRequest": {
            "type": "object",
            "required": ["dummyData", "numericValue", "objectValue", "placeHolder"],
            "properties": {
                "placeHolder": {"type": "string"},
                "dummyData": {"type": "array", "items": {"type": "string"}},
                "numericValue": {"type": "number"},
                "objectValue": {"$ref": "#/definitions/handler.objectValueRequest"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["expectedResult", "password", "userName"],
            "properties": {
                "userName": {"type": "string", "maxLength": 50, "minLength": 3},
                "password": {"type": "string", "maxLength": 100},
                "expectedResult": {"type": "integer", "maximum": 599, "minimum": 200}
            }
        },
        "handler.refreshRequest": {
            "type": "object",
            "required": ["refreshToken"],
            "properties": {
                "refreshToken": {"type": "string"}
            }
        },
        "handler.livenessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "uptime": {"type": "number"},
                "environment": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "dependencies": {"type": "object", "additionalProperties": {"type": "object"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "User Management API",
	Description:      "Demo user directory with mock authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
