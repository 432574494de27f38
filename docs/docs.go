// Package docs registers the OpenAPI document for the opt-in API with swag.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/apis/v1/channels/{channel}/subscribe": {
            "post": {
                "description": "Verifies an EIP-712 Subscribe proof signed by the subscriber. Message addresses are CAIP-10; the proof covers the bare addresses.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["channels"],
                "summary": "Opt a user into a channel",
                "parameters": [
                    {
                        "type": "string",
                        "example": "eip155:1:0xC14d71f1b4B3c6b7c4b9b7c1f2e6a0d5b3a8e9f1",
                        "description": "Channel CAIP-10 address",
                        "name": "channel",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Signed subscription",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/optin.SubscriptionRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Proof verified",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/middleware.SuccessResponse"},
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {"$ref": "#/definitions/optin.SubscriptionResponse"}
                                    }
                                }
                            ]
                        }
                    },
                    "400": {"description": "Invalid input, address or chain", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "401": {"description": "Proof rejected", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "409": {"description": "Proof already used", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/apis/v1/channels/{channel}/unsubscribe": {
            "post": {
                "description": "Verifies an EIP-712 Unsubscribe proof signed by the unsubscriber. Message addresses are CAIP-10; the proof covers the bare addresses.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["channels"],
                "summary": "Opt a user out of a channel",
                "parameters": [
                    {
                        "type": "string",
                        "example": "eip155:1:0xC14d71f1b4B3c6b7c4b9b7c1f2e6a0d5b3a8e9f1",
                        "description": "Channel CAIP-10 address",
                        "name": "channel",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Signed unsubscription",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/optin.SubscriptionRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Proof verified",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/middleware.SuccessResponse"},
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {"$ref": "#/definitions/optin.SubscriptionResponse"}
                                    }
                                }
                            ]
                        }
                    },
                    "400": {"description": "Invalid input, address or chain", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "401": {"description": "Proof rejected", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "409": {"description": "Proof already used", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Reports that the process is serving",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "description": "Runs every dependency check (Redis) and answers 503 if any fails",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ReadyResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ReadyResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "handler.ReadyResponse": {
            "type": "object",
            "properties": {
                "checks": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                },
                "status": {"type": "string"}
            }
        },
        "middleware.ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {}},
                "message": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/middleware.ErrorBody"}
            }
        },
        "middleware.SuccessResponse": {
            "type": "object",
            "properties": {
                "data": {}
            }
        },
        "optin.SubscriptionMessage": {
            "type": "object",
            "required": ["action", "channel"],
            "properties": {
                "action": {"type": "string", "enum": ["Subscribe", "Unsubscribe"]},
                "channel": {"type": "string", "maxLength": 256},
                "subscriber": {"type": "string", "maxLength": 256},
                "unsubscriber": {"type": "string", "maxLength": 256}
            }
        },
        "optin.SubscriptionRequest": {
            "type": "object",
            "required": ["verificationProof"],
            "properties": {
                "message": {"$ref": "#/definitions/optin.SubscriptionMessage"},
                "verificationProof": {"type": "string", "maxLength": 132, "minLength": 132}
            }
        },
        "optin.SubscriptionResponse": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "chain_id": {"type": "integer"},
                "channel": {"type": "string"},
                "receipt_id": {"type": "string"},
                "user": {"type": "string"},
                "verified_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Channel Opt-in API",
	Description:      "Verifies EIP-712 signed channel subscribe and unsubscribe requests",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
