// Package docs registers the OpenAPI description of the portal with swag so
// echo-swagger can serve it under /swagger/. It follows the layout swag init
// generates from the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "get": {"tags": ["auth"], "summary": "Login view", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}}}},
            "post": {
                "tags": ["auth"], "summary": "Login",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ports.LoginForm"}}],
                "responses": {"303": {"description": "See Other"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/register": {
            "get": {"tags": ["auth"], "summary": "Registration view", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.viewResponse"}}}},
            "post": {
                "tags": ["auth"], "summary": "Register",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ports.RegisterForm"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "422": {"description": "Unprocessable Entity"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/logout": {"post": {"tags": ["auth"], "summary": "Logout", "responses": {"303": {"description": "See Other"}}}},
        "/session": {"get": {"tags": ["session"], "summary": "Current session", "responses": {"200": {"description": "OK"}}}},
        "/admin/dashboard": {"get": {"tags": ["admin"], "summary": "Admin dashboard", "responses": {"200": {"description": "OK"}, "302": {"description": "Redirect to /login"}}}},
        "/admin/consultants/{id}/report": {
            "get": {
                "tags": ["admin"], "summary": "Consultant report",
                "produces": ["application/octet-stream"],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}, "302": {"description": "Redirect to /login"}}
            }
        },
        "/consultant/dashboard": {"get": {"tags": ["consultant"], "summary": "Consultant dashboard", "responses": {"200": {"description": "OK"}, "302": {"description": "Redirect to /login"}}}},
        "/consultant/resume": {
            "post": {
                "tags": ["consultant"], "summary": "Upload resume",
                "consumes": ["multipart/form-data"],
                "parameters": [{"in": "formData", "name": "file", "type": "file", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}}
    },
    "definitions": {
        "handler.viewResponse": {
            "type": "object",
            "properties": {
                "view": {"type": "string"},
                "action": {"type": "string"},
                "fields": {"type": "array", "items": {"type": "object"}},
                "links": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "ports.LoginForm": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "consultant"]}
            }
        },
        "ports.RegisterForm": {
            "type": "object",
            "required": ["name", "email", "password", "confirm_password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "confirm_password": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "consultant"]},
                "department": {"type": "string"},
                "skills": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Consultant Portal",
	Description:      "Session gateway in front of the consultant management backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
