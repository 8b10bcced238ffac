package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Scholaris LMS API",
        "description": "Progress, enrollment and grading engine for class-based learning",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Classes", "description": "Class lifecycle"},
        {"name": "Lessons", "description": "Lesson material and ordering"},
        {"name": "Enrollments", "description": "Class roster management"},
        {"name": "Progress", "description": "Per-lesson progress tracking"},
        {"name": "Grading", "description": "Activities, submissions and scores"},
        {"name": "Students", "description": "Student rewards and dashboard"}
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
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/api/v1/classes": {
            "post": {
                "tags": ["Classes"],
                "summary": "Create class",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/classes/{id}/status": {
            "put": {
                "tags": ["Classes"],
                "summary": "Set class status",
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown status"}
                }
            }
        },
        "/api/v1/classes/{id}/lessons": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Create lesson and backfill progress",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Lessons"],
                "summary": "List lessons in sequence order",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/classes/{id}/lessons/order": {
            "put": {
                "tags": ["Lessons"],
                "summary": "Reorder lessons",
                "responses": {
                    "204": {"description": "Reordered"}
                }
            }
        },
        "/api/v1/lessons/{id}": {
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete lesson and its progress rows",
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Lesson not found"}
                }
            }
        },
        "/api/v1/classes/{id}/students": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll student and backfill progress",
                "responses": {
                    "201": {"description": "Enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Enrollments"],
                "summary": "List class roster",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/classes/{id}/students/{studentId}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove student, purging progress and submissions",
                "responses": {
                    "204": {"description": "Removed"}
                }
            }
        },
        "/api/v1/enrollments/{id}/status": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Set enrollment status",
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown status"}
                }
            }
        },
        "/api/v1/lessons/{id}/progress": {
            "post": {
                "tags": ["Progress"],
                "summary": "Advance lesson progress one step",
                "responses": {
                    "200": {"description": "Advanced", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Class closed"}
                }
            }
        },
        "/api/v1/classes/{id}/progress": {
            "get": {
                "tags": ["Progress"],
                "summary": "Class progress summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/classes/{id}/activities": {
            "post": {
                "tags": ["Grading"],
                "summary": "Create activity",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Grading"],
                "summary": "List activities",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/activities/{id}/submissions": {
            "post": {
                "tags": ["Grading"],
                "summary": "Submit or replace activity answer",
                "responses": {
                    "200": {"description": "Recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Class closed"}
                }
            },
            "get": {
                "tags": ["Grading"],
                "summary": "Activity roster with lateness",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/submissions/{id}/grade": {
            "put": {
                "tags": ["Grading"],
                "summary": "Grade submission",
                "responses": {
                    "200": {"description": "Graded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Score out of range"}
                }
            }
        },
        "/api/v1/submissions/{id}/file": {
            "get": {
                "tags": ["Grading"],
                "summary": "Signed download link for a submission attachment",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No attachment"}
                }
            }
        },
        "/api/v1/files/{token}": {
            "get": {
                "tags": ["Grading"],
                "summary": "Download a file by signed token",
                "responses": {
                    "200": {"description": "File stream"},
                    "404": {"description": "Invalid or expired link"}
                }
            }
        },
        "/api/v1/classes/{id}/scores/{studentId}": {
            "get": {
                "tags": ["Grading"],
                "summary": "Student's overall class score",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/rewards": {
            "get": {
                "tags": ["Students"],
                "summary": "Student points and trophy",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/dashboard": {
            "get": {
                "tags": ["Students"],
                "summary": "Student dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
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
