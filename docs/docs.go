// Package docs registers the OpenAPI description served at /swagger.
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
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}}}
            }
        },
        "/auth/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/cart": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Get cart",
                "parameters": [{"type": "boolean", "description": "Bypass the cached snapshot", "name": "refresh", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.cartResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Clear cart",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.cartResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/cart/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Cart history",
                "parameters": [{"type": "integer", "description": "Maximum number of events", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/cart/items": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Add item",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.addItemRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.cartResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/cart/items/{product_id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Update quantity",
                "parameters": [
                    {"type": "string", "description": "Product id", "name": "product_id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.cartResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Remove item",
                "parameters": [{"type": "string", "description": "Product id", "name": "product_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.cartResponse"}}}
            }
        },
        "/api/cart/checkout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Checkout",
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/products": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List products",
                "parameters": [
                    {"type": "string", "description": "Category", "name": "category", "in": "query"},
                    {"type": "string", "description": "Free text search", "name": "search", "in": "query"},
                    {"type": "number", "description": "Lowest price", "name": "min_price", "in": "query"},
                    {"type": "number", "description": "Highest price", "name": "max_price", "in": "query"},
                    {"type": "boolean", "description": "Organic only", "name": "organic", "in": "query"},
                    {"type": "string", "description": "price, name, createdAt or stock", "name": "sort_by", "in": "query"},
                    {"type": "string", "description": "asc or desc", "name": "sort_order", "in": "query"},
                    {"type": "integer", "description": "Page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List orders",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/expenses": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "List expenses",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Create expense",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.expenseRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/expenses/analytics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Expense analytics",
                "parameters": [{"type": "string", "description": "daily, weekly, monthly (default) or yearly", "name": "period", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/expenses/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Update expense",
                "parameters": [
                    {"type": "string", "description": "Expense id", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.expenseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["expenses"],
                "summary": "Delete expense",
                "parameters": [{"type": "string", "description": "Expense id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/analytics/sales": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["insights"],
                "summary": "Sales analytics",
                "parameters": [{"type": "string", "description": "daily, weekly, monthly (default) or yearly", "name": "period", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/analytics/inventory": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["insights"],
                "summary": "Inventory analytics",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/trades": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["trades"],
                "summary": "List trades",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["trades"],
                "summary": "Create trade",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createTradeRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/trades/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["trades"],
                "summary": "Trade summary",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/trades/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["trades"],
                "summary": "Update trade status",
                "parameters": [
                    {"type": "string", "description": "Trade id", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateTradeStatusRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/chat": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["insights"],
                "summary": "Chat",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/ai-analytics": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["insights"],
                "summary": "AI analytics",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "kind": {"type": "string"},
                "redirect": {"type": "string"},
                "retry_after": {"type": "integer"}
            }
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "from": {"type": "string"}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_at": {"type": "string"},
                "redirect": {"type": "string"}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["name", "email", "password", "role"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["farmer", "buyer"]},
                "location": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "handler.addItemRequest": {
            "type": "object",
            "required": ["product_id"],
            "properties": {
                "product_id": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "handler.updateItemRequest": {
            "type": "object",
            "properties": {"quantity": {"type": "integer"}}
        },
        "handler.cartResponse": {
            "type": "object",
            "properties": {
                "lines": {"type": "array", "items": {"type": "object"}},
                "total": {"type": "number"},
                "item_count": {"type": "integer"}
            }
        },
        "handler.createTradeRequest": {
            "type": "object",
            "required": ["product_id"],
            "properties": {
                "product_id": {"type": "string"},
                "quantity": {"type": "integer"},
                "amount": {"type": "number"}
            }
        },
        "handler.expenseRequest": {
            "type": "object",
            "required": ["category", "amount", "date"],
            "properties": {
                "category": {"type": "string"},
                "amount": {"type": "number"},
                "date": {"type": "string", "format": "date"},
                "description": {"type": "string"}
            }
        },
        "handler.updateTradeStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "enum": ["pending", "completed", "cancelled"]}}
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Marketplace Gateway API",
	Description:      "Session, cart, catalog, order, expense, trade and insight gateway in front of the farm marketplace API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
