// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o internal/docs
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
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in", "responses": {"200": {"description": "Token pair"}, "401": {"description": "Invalid credentials"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Refresh tokens", "responses": {"200": {"description": "New token pair"}}}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register an organisation", "responses": {"201": {"description": "Tenant created"}, "409": {"description": "Slug already taken"}}}},
        "/documents": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "List documents", "responses": {"200": {"description": "List of documents"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "Create a document", "responses": {"201": {"description": "Document created"}}}
        },
        "/documents/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "Get document by ID", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Document details"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "Delete a document", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Document deleted"}}}
        },
        "/documents/{id}/lines": {"put": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "Replace line items", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Document updated"}}}},
        "/documents/{id}/transitions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "List permitted next statuses", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Target statuses"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "Change document status", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Document after the transition"}}}
        },
        "/documents/{id}/approve": {"post": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "Approve the current step", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Document after approval"}}}},
        "/documents/{id}/derive": {"post": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "Derive a downstream document", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Derived document"}}}},
        "/documents/{id}/history": {"get": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "Document audit trail", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Audit entries"}}}},
        "/tax/preview": {"post": {"security": [{"BearerAuth": []}], "tags": ["tax"], "summary": "Preview GST totals", "responses": {"200": {"description": "Computed totals"}}}},
        "/tax/hsn/{code}": {"get": {"security": [{"BearerAuth": []}], "tags": ["tax"], "summary": "Look up a GST rate", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "Registered rate"}}}},
        "/exports/documents": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["exports"], "summary": "Download the document register", "responses": {"200": {"description": "Register file"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["exports"], "summary": "Publish the document register", "responses": {"201": {"description": "Uploaded register"}}}
        },
        "/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["stats"], "summary": "Get tenant statistics", "responses": {"200": {"description": "Aggregate statistics"}}}},
        "/users": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List users", "responses": {"200": {"description": "List of users"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Create a user", "responses": {"201": {"description": "User created"}}}
        },
        "/ws": {"get": {"security": [{"BearerAuth": []}], "tags": ["realtime"], "summary": "Document event stream", "responses": {"101": {"description": "Switching protocols"}}}}
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
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "ERPDesk API",
	Description:      "Document lifecycle and GST totals for expense reports, quotations, e-invoices, e-way bills and bookings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
