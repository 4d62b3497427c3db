package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "KBM Attendance API",
        "description": "Attendance and records API for teaching and learning (KBM) sessions.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Authentication",
            "description": "Login and current user"
        },
        {
            "name": "Students",
            "description": "Student (generus) records"
        },
        {
            "name": "Sessions",
            "description": "KBM reports and their attendance"
        },
        {
            "name": "Statistics",
            "description": "Attendance summaries and exports"
        },
        {
            "name": "Materials",
            "description": "Shared learning materials"
        },
        {
            "name": "System",
            "description": "Instrumentation"
        }
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "summary": "Authenticate user",
                "tags": [
                    "Authentication"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/auth/me": {
            "get": {
                "summary": "Current user",
                "tags": [
                    "Authentication"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/students": {
            "get": {
                "summary": "List students",
                "tags": [
                    "Students"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "summary": "Create student",
                "tags": [
                    "Students"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateStudentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/students/{id}": {
            "get": {
                "summary": "Get student",
                "tags": [
                    "Students"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "patch": {
                "summary": "Partially update student",
                "tags": [
                    "Students"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateStudentRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Delete student",
                "tags": [
                    "Students"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/students/{id}/attendance": {
            "get": {
                "summary": "Attendance history of a student",
                "tags": [
                    "Students"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "start",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Start date (YYYY-MM-DD)"
                    },
                    {
                        "name": "end",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "End date (YYYY-MM-DD)"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions": {
            "get": {
                "summary": "List sessions",
                "tags": [
                    "Sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "summary": "File a KBM report",
                "tags": [
                    "Sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateSessionRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/mine": {
            "get": {
                "summary": "Sessions filed by the caller",
                "tags": [
                    "Sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "summary": "Get session",
                "tags": [
                    "Sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Session ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Delete session and its attendance",
                "tags": [
                    "Sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Session ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/attendance": {
            "get": {
                "summary": "Attendance rows of a session",
                "tags": [
                    "Sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Session ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/users/{id}/sessions": {
            "get": {
                "summary": "Sessions filed by a user",
                "tags": [
                    "Sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "User ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/statistics/summary": {
            "get": {
                "summary": "Attendance summary for a period",
                "tags": [
                    "Statistics"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "start",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Start date (YYYY-MM-DD)"
                    },
                    {
                        "name": "end",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "End date (YYYY-MM-DD)"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/statistics/monthly": {
            "get": {
                "summary": "Monthly breakdown with weekly buckets",
                "tags": [
                    "Statistics"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "year",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Year, defaults to the current year"
                    },
                    {
                        "name": "month",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Month 1-12"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/statistics/monthly/export": {
            "get": {
                "summary": "Download the monthly breakdown",
                "tags": [
                    "Statistics"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "year",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Year, defaults to the current year"
                    },
                    {
                        "name": "month",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Month 1-12"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf"
                        ],
                        "default": "csv"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Rendered file",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/materials": {
            "get": {
                "summary": "List materials",
                "tags": [
                    "Materials"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "summary": "Create material",
                "tags": [
                    "Materials"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateMaterialRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/materials/{id}": {
            "get": {
                "summary": "Get material",
                "tags": [
                    "Materials"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Material ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "patch": {
                "summary": "Partially update material",
                "tags": [
                    "Materials"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Material ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateMaterialRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Delete material",
                "tags": [
                    "Materials"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Material ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/system/metrics": {
            "get": {
                "summary": "Instrumentation snapshot",
                "tags": [
                    "System"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": [
                "username",
                "password",
                "role"
            ],
            "properties": {
                "username": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                },
                "role": {
                    "type": "string",
                    "enum": [
                        "teacher",
                        "coordinator"
                    ]
                }
            }
        },
        "CreateStudentRequest": {
            "type": "object",
            "required": [
                "full_name",
                "birth_place",
                "birth_date",
                "group",
                "gender",
                "level"
            ],
            "properties": {
                "full_name": {
                    "type": "string"
                },
                "birth_place": {
                    "type": "string"
                },
                "birth_date": {
                    "type": "string",
                    "format": "date"
                },
                "group": {
                    "type": "string"
                },
                "gender": {
                    "type": "string",
                    "enum": [
                        "Laki-laki",
                        "Perempuan"
                    ]
                },
                "level": {
                    "type": "string",
                    "enum": [
                        "SD",
                        "SMP",
                        "SMA",
                        "Kuliah"
                    ]
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "Aktif",
                        "Tidak Aktif",
                        "Alumni"
                    ]
                },
                "profession": {
                    "type": "string",
                    "x-nullable": true
                },
                "skills": {
                    "type": "string",
                    "x-nullable": true
                },
                "notes": {
                    "type": "string",
                    "x-nullable": true
                },
                "photo_url": {
                    "type": "string",
                    "x-nullable": true
                }
            }
        },
        "UpdateStudentRequest": {
            "type": "object",
            "description": "Omitted fields keep their stored value.",
            "properties": {
                "full_name": {
                    "type": "string"
                },
                "birth_place": {
                    "type": "string"
                },
                "birth_date": {
                    "type": "string",
                    "format": "date"
                },
                "group": {
                    "type": "string"
                },
                "gender": {
                    "type": "string",
                    "enum": [
                        "Laki-laki",
                        "Perempuan"
                    ]
                },
                "level": {
                    "type": "string",
                    "enum": [
                        "SD",
                        "SMP",
                        "SMA",
                        "Kuliah"
                    ]
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "Aktif",
                        "Tidak Aktif",
                        "Alumni"
                    ]
                },
                "profession": {
                    "type": "string",
                    "x-nullable": true
                },
                "skills": {
                    "type": "string",
                    "x-nullable": true
                },
                "notes": {
                    "type": "string",
                    "x-nullable": true
                },
                "photo_url": {
                    "type": "string",
                    "x-nullable": true
                }
            }
        },
        "AttendanceEntry": {
            "type": "object",
            "required": [
                "student_id",
                "status"
            ],
            "properties": {
                "student_id": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "Hadir",
                        "Sakit",
                        "Izin",
                        "Tidak Hadir/Alfa"
                    ]
                }
            }
        },
        "CreateSessionRequest": {
            "type": "object",
            "required": [
                "date",
                "teacher_name",
                "material"
            ],
            "properties": {
                "date": {
                    "type": "string",
                    "format": "date"
                },
                "day": {
                    "type": "string",
                    "description": "Optional, must match the weekday of date"
                },
                "teacher_name": {
                    "type": "string"
                },
                "material": {
                    "type": "string"
                },
                "notes": {
                    "type": "string",
                    "x-nullable": true
                },
                "attendances": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/AttendanceEntry"
                    }
                }
            }
        },
        "CreateMaterialRequest": {
            "type": "object",
            "required": [
                "title"
            ],
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string",
                    "x-nullable": true
                },
                "file_url": {
                    "type": "string",
                    "x-nullable": true
                },
                "file_name": {
                    "type": "string",
                    "x-nullable": true
                }
            }
        },
        "UpdateMaterialRequest": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string",
                    "x-nullable": true
                },
                "file_url": {
                    "type": "string",
                    "x-nullable": true
                },
                "file_name": {
                    "type": "string",
                    "x-nullable": true
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
