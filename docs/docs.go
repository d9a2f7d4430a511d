// Package docs registers the OpenAPI document served at /swagger/.
// Keep it in step with the handler annotations in internal/handlers.
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
        "/health": {
            "get": {
                "description": "Returns the health status of the application and its credential store",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Health status", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Credential store unreachable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/integrations/hubspot/authorize": {
            "post": {
                "description": "Builds the HubSpot consent URL. The state is \"{user_id}:{org_id}\".",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["hubspot"],
                "summary": "Start HubSpot authorization",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "user_id", "in": "formData", "required": true},
                    {"type": "string", "description": "Organization ID", "name": "org_id", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Authorization URL", "schema": {"type": "string"}},
                    "400": {"description": "Missing form field", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/integrations/hubspot/oauth2callback": {
            "get": {
                "description": "Exchanges the authorization code and stores the tokens. On success the page closes its own window.",
                "produces": ["text/html"],
                "tags": ["hubspot"],
                "summary": "HubSpot OAuth callback",
                "parameters": [
                    {"type": "string", "description": "Authorization code", "name": "code", "in": "query"},
                    {"type": "string", "description": "user_id:org_id", "name": "state", "in": "query"},
                    {"type": "string", "description": "Provider error", "name": "error", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "HTML page that closes the window", "schema": {"type": "string"}},
                    "400": {"description": "Missing code or malformed state", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Authorization denied", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Token exchange failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/integrations/hubspot/credentials": {
            "post": {
                "description": "Returns the stored token record. An expired access token is refreshed first.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["hubspot"],
                "summary": "Get HubSpot credentials",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "user_id", "in": "formData", "required": true},
                    {"type": "string", "description": "Organization ID", "name": "org_id", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/hubspot.TokenRecord"}},
                    "400": {"description": "Missing form field or unreadable record", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Expired without refresh token", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "No credentials stored", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Refresh failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/integrations/hubspot/load": {
            "post": {
                "description": "Fetches contacts with the given credentials and normalizes them to integration items.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["hubspot"],
                "summary": "Load HubSpot contacts",
                "parameters": [
                    {"type": "string", "description": "Token record as JSON", "name": "credentials", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.IntegrationItem"}}},
                    "400": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "HubSpot API failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "hubspot.TokenRecord": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"}
            }
        },
        "models.IntegrationItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string"},
                "creation_time": {"type": "string"},
                "parent_path_or_name": {"type": "string"},
                "visibility": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "HubSpot Connector API",
	Description:      "Connects users to HubSpot with OAuth2 and lists their contacts as integration items.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
