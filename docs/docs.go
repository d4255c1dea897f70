// Package docs holds the OpenAPI description served at /swagger/.
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
        "/statements": {
            "post": {
                "description": "Parse an IBKR activity statement (CSV) and convert every stock buy to BRL with the PTAX sell rate of its trade date",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["statements"],
                "summary": "Build an acquisition cost report",
                "parameters": [
                    {"type": "file", "description": "IBKR activity statement (CSV)", "name": "statement", "in": "formData", "required": true},
                    {"type": "integer", "description": "Tax year (default: year of the latest buy)", "name": "year", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Malformed statement", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "No PTAX rate for a trade date", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "PTAX source unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/rates": {
            "get": {
                "description": "Published PTAX sell rates (BRL per USD) between two dates. Weekends and holidays are absent.",
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "List PTAX sell rates",
                "parameters": [
                    {"type": "string", "description": "Start date (YYYY-MM-DD, default: 30 days before end)", "name": "start", "in": "query"},
                    {"type": "string", "description": "End date (YYYY-MM-DD, default: today)", "name": "end", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object", "additionalProperties": true}}},
                    "400": {"description": "Invalid range", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "PTAX source unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/rates/resolve": {
            "get": {
                "description": "Returns the rate published on the date, or on the closest earlier business day",
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "Resolve the PTAX sell rate of a date",
                "parameters": [
                    {"type": "string", "description": "Date (YYYY-MM-DD)", "name": "date", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid date", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "No rate within the lookback window", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "PTAX source unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "array", "items": {"type": "string"}},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "IRPF acquisition cost API",
	Description:      "Converts IBKR stock purchases to BRL with the BCB PTAX sell rate.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
