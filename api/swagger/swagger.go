package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus ERP API",
        "description": "Campus management backend: attendance ledger, marks ledger, roster and identity",
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
        {"name": "Auth", "description": "Accounts and tokens"},
        {"name": "Students", "description": "Roster management"},
        {"name": "Faculty", "description": "Faculty profiles and subject assignments"},
        {"name": "Attendance", "description": "Attendance ledger and statistics"},
        {"name": "Marks", "description": "Marks ledger"},
        {"name": "System", "description": "Health and metrics"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register an account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate email"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue a token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Account disabled"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current account profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/profile": {
            "put": {
                "tags": ["Auth"],
                "summary": "Update own profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/change-password": {
            "put": {
                "tags": ["Auth"],
                "summary": "Change own password",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Wrong current password"}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Admit a student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate student id"}
                }
            }
        },
        "/students/stats": {
            "get": {
                "tags": ["Students"],
                "summary": "Roster statistics",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/students/import": {
            "post": {
                "tags": ["Students"],
                "summary": "Bulk-admit students from CSV",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {"200": {"description": "Per-row outcome"}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student detail",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update a student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Remove a student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/faculty/profile": {
            "get": {
                "tags": ["Faculty"],
                "summary": "Own faculty profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "No linked profile"}}
            }
        },
        "/faculty/assign-subject": {
            "post": {
                "tags": ["Faculty"],
                "summary": "Assign a subject to a faculty member",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Faculty not found"}}
            }
        },
        "/attendance/mark": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance for a class sitting",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Batch accepted; per-entry errors listed in the body"}
                }
            }
        },
        "/attendance/{id}": {
            "put": {
                "tags": ["Attendance"],
                "summary": "Correct an attendance record",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Attendance"],
                "summary": "Delete an attendance record",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/attendance/student/{studentId}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance ledger for one student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "type": "string", "required": true},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/attendance/stats/{studentId}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance statistics for one student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "type": "string", "required": true},
                    {"name": "subject", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/attendance/subject/{subjectCode}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance ledger for one subject",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "subjectCode", "in": "path", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "department", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/attendance/subject/{subjectCode}/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Export a subject's ledger as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "subjectCode", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/attendance/date/{date}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance ledger for one date",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "date", "in": "path", "type": "string", "required": true},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/attendance/low-attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Students below an attendance threshold",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "threshold", "in": "query", "type": "number", "default": 75},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/marks/add": {
            "post": {
                "tags": ["Marks"],
                "summary": "Record or overwrite a grade",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddMarksRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Student not found"}}
            }
        },
        "/marks/subject/{subjectCode}": {
            "get": {
                "tags": ["Marks"],
                "summary": "Grades recorded for a subject",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "subjectCode", "in": "path", "type": "string", "required": true},
                    {"name": "examType", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/marks/my-marks": {
            "get": {
                "tags": ["Marks"],
                "summary": "Own grades",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "tags": ["System"],
                "summary": "Readiness probe",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "Store unreachable"}}
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "password", "role"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "faculty", "student"]},
                "employeeId": {"type": "string"},
                "studentId": {"type": "string"},
                "department": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "required": ["subject", "subjectCode", "date", "facultyId", "attendanceData"],
            "properties": {
                "subject": {"type": "string"},
                "subjectCode": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "session": {"type": "string", "enum": ["Morning", "Afternoon", "Full Day"]},
                "facultyId": {"type": "string"},
                "attendanceData": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "studentId": {"type": "string"},
                            "status": {"type": "string", "enum": ["Present", "Absent", "Late", "Excused"]},
                            "remarks": {"type": "string"}
                        }
                    }
                }
            }
        },
        "AddMarksRequest": {
            "type": "object",
            "required": ["studentId", "subjectName", "subjectCode", "examType", "semester", "facultyId"],
            "properties": {
                "studentId": {"type": "string"},
                "subjectName": {"type": "string"},
                "subjectCode": {"type": "string"},
                "examType": {"type": "string", "enum": ["Mid-Semester", "End-Semester", "Internal", "Practical"]},
                "marksObtained": {"type": "number"},
                "maxMarks": {"type": "number"},
                "semester": {"type": "integer"},
                "facultyId": {"type": "string"}
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
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "errors": {"type": "object"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "count": {"type": "integer"}
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
