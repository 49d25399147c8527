package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "BAU Assist Booking API",
        "description": "Classroom booking, conflict detection and occupancy for the BAU timetable.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Semesters", "description": "Semester picker"},
        {"name": "Assignments", "description": "Classroom bookings per subject group"},
        {"name": "Conflicts", "description": "Pre-save availability checks"},
        {"name": "Occupancy", "description": "Hourly classroom occupancy grids"}
    ],
    "paths": {
        "/semesters": {
            "get": {
                "tags": ["Semesters"],
                "summary": "List semesters of an academic year",
                "parameters": [
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/semesters/{id}": {
            "get": {
                "tags": ["Semesters"],
                "summary": "Get semester",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments with slot and bookings",
                "parameters": [
                    {"name": "subjectGroupId", "in": "query", "type": "string"},
                    {"name": "semesterId", "in": "query", "type": "string"},
                    {"name": "classroomId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Book a subject group into a time slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflicts with existing bookings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Referenced entity does not exist", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Assignments"],
                "summary": "Replace an assignment's slot, teacher and bookings",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflicts with existing bookings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Assignments"],
                "summary": "Delete assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/conflicts/classrooms": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Check classroom availability for a slot and week set",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassroomCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/teachers": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Check whether a teacher is free for a slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/occupancy": {
            "get": {
                "tags": ["Occupancy"],
                "summary": "Occupancy grids of every classroom",
                "parameters": [
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}/occupancy": {
            "get": {
                "tags": ["Occupancy"],
                "summary": "Occupancy grid of one classroom per semester",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ClassroomBookingRequest": {
            "type": "object",
            "properties": {
                "classroom_id": {"type": "string"},
                "is_full_semester": {"type": "boolean"},
                "weeks": {"type": "array", "items": {"type": "integer"}}
            },
            "required": ["classroom_id"]
        },
        "SaveAssignmentRequest": {
            "type": "object",
            "properties": {
                "semester_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "subject_group_id": {"type": "string"},
                "student_group_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "day_of_week": {"type": "integer", "minimum": 1, "maximum": 5},
                "shift": {"type": "string", "enum": ["mati", "tarda"]},
                "shift_part": {"type": "string", "enum": ["full", "first", "second"]},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "hours_per_week": {"type": "integer"},
                "classrooms": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ClassroomBookingRequest"}
                },
                "skip_conflict_check": {"type": "boolean"}
            },
            "required": ["semester_id", "subject_id", "day_of_week", "shift", "classrooms"]
        },
        "ClassroomCheckRequest": {
            "type": "object",
            "properties": {
                "classroom_ids": {"type": "array", "items": {"type": "string"}},
                "semester_id": {"type": "string"},
                "day_of_week": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "shift": {"type": "string", "enum": ["mati", "tarda"]},
                "is_full_semester": {"type": "boolean"},
                "weeks": {"type": "array", "items": {"type": "integer"}},
                "exclude_assignment_id": {"type": "string"}
            },
            "required": ["classroom_ids", "semester_id", "day_of_week", "start_time", "end_time", "shift"]
        },
        "TeacherCheckRequest": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string"},
                "semester_id": {"type": "string"},
                "day_of_week": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "shift": {"type": "string", "enum": ["mati", "tarda"]},
                "exclude_assignment_id": {"type": "string"}
            },
            "required": ["teacher_id", "semester_id", "day_of_week", "start_time", "end_time", "shift"]
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
