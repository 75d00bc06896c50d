package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MMS API",
        "description": "Management-system backend: edge gateway, user-center and base services",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token rotation and logout"},
        {"name": "Dictionary", "description": "System dictionary lookups"}
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/usercenter/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Account disabled or locked"}
                }
            }
        },
        "/usercenter/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "New token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid, revoked or superseded token"}
                }
            }
        },
        "/usercenter/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "Logged out", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid token"}
                }
            }
        },
        "/usercenter/auth/unlock/{username}": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Unlock an account",
                "parameters": [
                    {"name": "username", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Unlocked"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/usercenter/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current identity",
                "responses": {
                    "200": {"description": "Identity", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/base/dict/types": {
            "get": {
                "tags": ["Dictionary"],
                "summary": "List dictionary types",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Types", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/base/dict/data/{typeCode}": {
            "get": {
                "tags": ["Dictionary"],
                "summary": "List entries of a dictionary type",
                "parameters": [
                    {"name": "typeCode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Entries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
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
                "trace_id": {"type": "string"}
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
