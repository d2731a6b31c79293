package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Grading API",
        "description": "Finals-grade submission, locking and edit-request workflow",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Grades", "description": "Final-grade submission and lock state"},
        {"name": "GradingPeriods", "description": "Finals grading window checks"},
        {"name": "EditRequests", "description": "Locked-grade edit workflow"},
        {"name": "Archives", "description": "Cohort archival"}
    ],
    "paths": {
        "/grades/final": {
            "post": {
                "tags": ["Grades"],
                "summary": "Submit or resubmit a final grade",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitFinalGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Submission rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/{id}/lock": {
            "get": {
                "tags": ["Grades"],
                "summary": "Report whether a grade is currently editable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/{id}/audit": {
            "get": {
                "tags": ["Grades"],
                "summary": "List the audit trail of a grade",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/{id}/edit-complete": {
            "post": {
                "tags": ["EditRequests"],
                "summary": "Close the open edit window of a grade and re-lock it",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/{id}/archive-check": {
            "post": {
                "tags": ["Archives"],
                "summary": "Archive the cohort of a grade when every grade in it is approved",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grading-periods/finals": {
            "get": {
                "tags": ["GradingPeriods"],
                "summary": "Report whether the finals grading window is open",
                "parameters": [
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/edit-requests": {
            "get": {
                "tags": ["EditRequests"],
                "summary": "List edit requests",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "gradeId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["EditRequests"],
                "summary": "File an edit request for a locked grade",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEditRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/edit-requests/{id}/approve": {
            "post": {
                "tags": ["EditRequests"],
                "summary": "Approve a pending edit request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ReviewEditRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/edit-requests/{id}/deny": {
            "post": {
                "tags": ["EditRequests"],
                "summary": "Deny a pending edit request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ReviewEditRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/archived-courses": {
            "get": {
                "tags": ["Archives"],
                "summary": "List archived cohorts",
                "parameters": [
                    {"name": "academicYear", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubmitFinalGradeRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "classroom_id": {"type": "string"},
                "grade": {"type": "number"},
                "max_points": {"type": "number"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "remarks": {"type": "string"}
            },
            "required": ["student_id", "subject_id", "classroom_id", "academic_year", "semester"]
        },
        "CreateEditRequestRequest": {
            "type": "object",
            "properties": {
                "grade_id": {"type": "string"},
                "reason": {"type": "string"}
            },
            "required": ["grade_id", "reason"]
        },
        "ReviewEditRequestRequest": {
            "type": "object",
            "properties": {
                "notes": {"type": "string"}
            }
        },
        "SubmissionResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "grade_id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "LockStatus": {
            "type": "object",
            "properties": {
                "locked": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "PeriodCheck": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "ArchiveResult": {
            "type": "object",
            "properties": {
                "archived": {"type": "boolean"},
                "message": {"type": "string"}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
