package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Quality Checklist API",
        "description": "Defect checklist documents, assistance workflow and production volume",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Token issuing and identity"},
        {"name": "Checklists", "description": "Defect checklist documents"},
        {"name": "Users", "description": "Account administration"},
        {"name": "Producao", "description": "Monthly and daily production volume"},
        {"name": "Dashboard", "description": "Home screen indicators"},
        {"name": "Analysis", "description": "Natural-language defect analysis"}
    ],
    "paths": {
        "/token": {
            "post": {
                "tags": ["Auth"],
                "summary": "Issue an access token",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "username", "in": "formData", "required": true, "type": "string"},
                    {"name": "password", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/APIError"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current identity",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserInfo"}}
                }
            }
        },
        "/checklists/": {
            "get": {
                "tags": ["Checklists"],
                "summary": "List checklists, newest first",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["PENDENTE", "COMPLETO"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ChecklistPage"}}
                }
            },
            "post": {
                "tags": ["Checklists"],
                "summary": "Create checklist",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateChecklistRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Checklist"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/checklists/export": {
            "get": {
                "tags": ["Checklists"],
                "summary": "Export checklist history",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/checklists/{id}": {
            "get": {
                "tags": ["Checklists"],
                "summary": "Get checklist",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Checklist"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/APIError"}}
                }
            },
            "patch": {
                "tags": ["Checklists"],
                "summary": "Update checklist (assistance)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateChecklistRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Checklist"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/users/": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/User"}}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/User"}},
                    "409": {"description": "Username taken", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/users/{id}": {
            "patch": {
                "tags": ["Users"],
                "summary": "Update user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Delete user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/producao/": {
            "get": {
                "tags": ["Producao"],
                "summary": "List production records",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ProducaoRegistro"}}}
                }
            },
            "post": {
                "tags": ["Producao"],
                "summary": "Create production record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProducaoRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ProducaoRegistro"}},
                    "409": {"description": "A record already exists for this date", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/producao/{id}": {
            "delete": {
                "tags": ["Producao"],
                "summary": "Delete production record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard indicators",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DashboardSummary"}}
                }
            }
        },
        "/analyze": {
            "post": {
                "tags": ["Analysis"],
                "summary": "Ask a question about recent defects",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnalysisRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AnalysisResponse"}},
                    "503": {"description": "Analyzer unavailable", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        }
    },
    "definitions": {
        "TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "role": {"type": "string", "enum": ["producao", "assistencia", "admin"]},
                "name": {"type": "string"}
            }
        },
        "UserInfo": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "CreateUserRequest": {
            "type": "object",
            "required": ["username", "password", "role"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["producao", "assistencia", "admin"]}
            }
        },
        "UpdateUserRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["producao", "assistencia", "admin"]},
                "password": {"type": "string"}
            }
        },
        "FailureRecord": {
            "type": "object",
            "required": ["falha", "setor"],
            "properties": {
                "falha": {"type": "string"},
                "setor": {"type": "string"},
                "localizacao_componente": {"type": "string"},
                "lado_placa": {"type": "string", "enum": ["top", "bot"]},
                "observacao": {"type": "string"}
            }
        },
        "Checklist": {
            "type": "object",
            "properties": {
                "documento_id": {"type": "string"},
                "produto": {"type": "string"},
                "quantidade": {"type": "integer"},
                "status": {"type": "string", "enum": ["PENDENTE", "COMPLETO"]},
                "responsavel": {"type": "string"},
                "data_criacao": {"type": "string", "format": "date-time"},
                "responsavel_assistencia": {"type": "string"},
                "data_finalizacao": {"type": "string", "format": "date-time"},
                "falhas": {"type": "array", "items": {"$ref": "#/definitions/FailureRecord"}},
                "observacao_producao": {"type": "string"},
                "observacao_assistencia": {"type": "string"}
            }
        },
        "ChecklistPage": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/Checklist"}},
                "total_count": {"type": "integer"}
            }
        },
        "CreateChecklistRequest": {
            "type": "object",
            "required": ["produto", "quantidade"],
            "properties": {
                "produto": {"type": "string"},
                "quantidade": {"type": "integer"},
                "vai_para_assistencia": {"type": "boolean"},
                "falhas": {"type": "array", "items": {"$ref": "#/definitions/FailureRecord"}},
                "observacao_producao": {"type": "string"}
            }
        },
        "UpdateChecklistRequest": {
            "type": "object",
            "properties": {
                "quantidade": {"type": "integer"},
                "status": {"type": "string", "enum": ["PENDENTE", "COMPLETO"]},
                "observacao_assistencia": {"type": "string"},
                "observacao_producao": {"type": "string"},
                "falhas_json": {"type": "string"}
            }
        },
        "ProducaoRegistro": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "data_registro": {"type": "string", "format": "date"},
                "tipo_registro": {"type": "string", "enum": ["M", "D"]},
                "quantidade_mensal": {"type": "integer"},
                "quantidade_diaria": {"type": "integer"},
                "observacao_mensal": {"type": "string"},
                "observacao_diaria": {"type": "string"},
                "responsavel": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "CreateProducaoRequest": {
            "type": "object",
            "required": ["data_registro", "tipo_registro"],
            "properties": {
                "data_registro": {"type": "string"},
                "tipo_registro": {"type": "string", "enum": ["M", "D"]},
                "quantidade_mensal": {"type": "integer"},
                "quantidade_diaria": {"type": "integer"},
                "observacao_mensal": {"type": "string"},
                "observacao_diaria": {"type": "string"},
                "responsavel": {"type": "string"}
            }
        },
        "DashboardSummary": {
            "type": "object",
            "properties": {
                "checklists_today": {"type": "integer"},
                "pending_count": {"type": "integer"},
                "weekly_checklists": {"type": "array", "items": {"type": "object"}},
                "top_defects": {"type": "array", "items": {"type": "object"}},
                "month_production": {"type": "integer"},
                "generated_at": {"type": "string", "format": "date-time"}
            }
        },
        "AnalysisRequest": {
            "type": "object",
            "required": ["query"],
            "properties": {
                "query": {"type": "string"}
            }
        },
        "AnalysisResponse": {
            "type": "object",
            "properties": {
                "summary": {"type": "string"},
                "tips": {"type": "array", "items": {"type": "string"}},
                "visualization_data": {"type": "array", "items": {"type": "object"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "code": {"type": "string"}
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
