package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "KSIS API",
        "description": "Kid Scholars International School management backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Public", "description": "Unauthenticated admission endpoints"},
        {"name": "Applications", "description": "Admission pipeline management"},
        {"name": "Dashboard", "description": "Admin dashboard statistics"}
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
        "/api/public/application": {
            "post": {
                "tags": ["Public"],
                "summary": "Submit an admission application",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitApplicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/public/application/status": {
            "post": {
                "tags": ["Public"],
                "summary": "Check application status by reference number",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown reference", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/public/application/track/{token}": {
            "get": {
                "tags": ["Public"],
                "summary": "Track an application by its tracking token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/applications": {
            "get": {
                "tags": ["Applications"],
                "summary": "List applications",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/applications/{id}": {
            "patch": {
                "tags": ["Applications"],
                "summary": "Update application status, remarks or section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateApplicationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/applications/{id}/admit": {
            "post": {
                "tags": ["Applications"],
                "summary": "Admit an applicant and provision student and parent records",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdmitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already admitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Aggregated dashboard statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/dashboard/system": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Runtime and cache performance snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubmitApplicationRequest": {
            "type": "object",
            "required": ["student_name", "gender", "date_of_birth", "applying_for_class", "source", "parent_type", "parent_name", "mobile", "email"],
            "properties": {
                "student_name": {"type": "string"},
                "gender": {"type": "string", "enum": ["male", "female"]},
                "date_of_birth": {"type": "string", "format": "date"},
                "applying_for_class": {"type": "string", "enum": ["play_group", "pre_kg", "lkg", "ukg"]},
                "source": {"type": "string"},
                "parent_type": {"type": "string", "enum": ["father", "mother", "guardian"]},
                "parent_name": {"type": "string"},
                "mobile": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "StatusCheckRequest": {
            "type": "object",
            "required": ["reference_number", "date_of_birth"],
            "properties": {
                "reference_number": {"type": "string"},
                "date_of_birth": {"type": "string", "format": "date"}
            }
        },
        "UpdateApplicationRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "remarks": {"type": "string"},
                "section": {"type": "string"}
            }
        },
        "AdmitRequest": {
            "type": "object",
            "required": ["section", "academic_year"],
            "properties": {
                "section": {"type": "string"},
                "academic_year": {"type": "string"}
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
                "meta": {"type": "object"}
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
