// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "429": {"description": "Too Many Requests"}}}},
        "/users": {"get": {"tags": ["users"], "summary": "List users", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/users/{id}": {
            "get": {"tags": ["users"], "summary": "Get a user", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["users"], "summary": "Update a user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["users"], "summary": "Delete a user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/users/{id}/reviews": {"get": {"tags": ["users"], "summary": "List reviews written by a user", "responses": {"200": {"description": "OK"}}}},
        "/amenities": {
            "get": {"tags": ["amenities"], "summary": "List amenities", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["amenities"], "summary": "Create an amenity", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/amenities/{id}": {
            "get": {"tags": ["amenities"], "summary": "Get an amenity", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["amenities"], "summary": "Rename an amenity", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["amenities"], "summary": "Delete an amenity", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/places": {
            "get": {"tags": ["places"], "summary": "List places", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["places"], "summary": "List a new place", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/places/{id}": {
            "get": {"tags": ["places"], "summary": "Get a place with its owner, amenities and reviews", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["places"], "summary": "Update a place", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["places"], "summary": "Delete a place", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/places/{id}/reviews": {"get": {"tags": ["places"], "summary": "List reviews of a place", "responses": {"200": {"description": "OK"}}}},
        "/reviews": {
            "get": {"tags": ["reviews"], "summary": "List reviews", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["reviews"], "summary": "Review a place", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/reviews/{id}": {
            "get": {"tags": ["reviews"], "summary": "Get a review", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["reviews"], "summary": "Update a review", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["reviews"], "summary": "Delete a review", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Marketplace API",
	Description:      "Lodging marketplace: users, places, amenities and reviews.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
