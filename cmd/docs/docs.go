// Package docs serves the Swagger document of the API. The paths follow the swag
// annotations in internal/handlers and must be updated with them.
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
        "/auth/google/exchange-code": {
            "post": {
                "description": "Exchange a Google authorization code for an application session",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "oauth"
                ],
                "summary": "Exchange authorization code for access token",
                "parameters": [
                    {
                        "description": "Authorization code",
                        "name": "code",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.LoginResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid authorization code",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "401": {
                        "description": "Google rejected the code or token",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/google/login": {
            "get": {
                "description": "Redirects the browser to Google's consent screen. Google sends the code back to the frontend.",
                "tags": [
                    "oauth"
                ],
                "summary": "Start Google login",
                "responses": {
                    "307": {
                        "description": "Redirect to Google"
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Authenticates a user with email and password. Returns an access token and sets the refresh token cookie.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "User login",
                "parameters": [
                    {
                        "description": "Login Credentials",
                        "name": "login",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.LoginResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "429": {
                        "description": "Too Many Requests",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/logout": {
            "post": {
                "description": "Revokes the stored refresh token and clears the cookie.",
                "tags": [
                    "auth"
                ],
                "summary": "Logout",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "description": "Exchanges the refresh token cookie for a new access token. The refresh token is rotated.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "Refresh the access token",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.RefreshTokenResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Creates a client login. The client joins establishments afterwards.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "Register a client account",
                "parameters": [
                    {
                        "description": "Client registration",
                        "name": "register",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.UserResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Email already registered",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/register-establishment": {
            "post": {
                "description": "Creates an establishment together with its first administrator login.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "Onboard an establishment",
                "parameters": [
                    {
                        "description": "Establishment and administrator",
                        "name": "register",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Email already registered",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "establishments"
                ],
                "summary": "Get an establishment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Updates the establishment profile, plan or business hours (admin only).",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "establishments"
                ],
                "summary": "Update an establishment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Fields to update",
                        "name": "establishment",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Plan downgrade below current usage",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/admins": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "admins"
                ],
                "summary": "List administrators",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "default": 20
                    },
                    {
                        "description": "Token of the next page",
                        "name": "nextToken",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Creates an admin profile and, when an email and password are given, its login.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "admins"
                ],
                "summary": "Create an administrator",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Admin details",
                        "name": "admin",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Plan limit reached",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/admins/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "admins"
                ],
                "summary": "Get an administrator",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Admin ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "admins"
                ],
                "summary": "Update an administrator",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Admin ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Fields to update",
                        "name": "admin",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "admins"
                ],
                "summary": "Delete an administrator",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Admin ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Last administrator",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/appointments": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Filters by day, time range, employee, client or status. Clients only see their own appointments.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "appointments"
                ],
                "summary": "List appointments",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Local day (YYYY-MM-DD)",
                        "name": "date",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Start of range (RFC3339)",
                        "name": "from",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "End of range (RFC3339)",
                        "name": "to",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Employee ID",
                        "name": "employeeID",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Client ID",
                        "name": "clientID",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Status",
                        "name": "status",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "SCHEDULED",
                            "CONFIRMED",
                            "COMPLETED",
                            "CANCELLED",
                            "NO_SHOW"
                        ]
                    },
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "default": 20
                    },
                    {
                        "description": "Token of the next page",
                        "name": "nextToken",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "appointments"
                ],
                "summary": "Book an appointment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Booking",
                        "name": "appointment",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Outside business hours or invalid input",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Employee, client or service not found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Schedule conflict",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Plan limit reached",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/appointments/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "appointments"
                ],
                "summary": "Get an appointment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Appointment ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "appointments"
                ],
                "summary": "Update or reschedule an appointment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Appointment ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Fields to update",
                        "name": "appointment",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Schedule conflict or stale version",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Appointment is closed",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "appointments"
                ],
                "summary": "Delete an appointment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Appointment ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Appointment has payments",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/appointments/{id}/cancel": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "appointments"
                ],
                "summary": "Cancel an appointment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Appointment ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Reason",
                        "name": "cancel",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Transition not allowed",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/appointments/{id}/complete": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "appointments"
                ],
                "summary": "Complete an appointment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Appointment ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Transition not allowed",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/appointments/{id}/confirm": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "appointments"
                ],
                "summary": "Confirm an appointment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Appointment ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Transition not allowed",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/appointments/{id}/no-show": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "appointments"
                ],
                "summary": "Mark an appointment as no-show",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Appointment ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Transition not allowed",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/available-slots": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Start times on the given day where the service fits inside business hours without overlapping another booking.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "appointments"
                ],
                "summary": "Free slots of an employee",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Employee ID",
                        "name": "employeeID",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Service ID",
                        "name": "serviceID",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Local day (YYYY-MM-DD)",
                        "name": "date",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/clients": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Staff see every client. A client sees only their own record.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "clients"
                ],
                "summary": "List clients",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "default": 20
                    },
                    {
                        "description": "Token of the next page",
                        "name": "nextToken",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "clients"
                ],
                "summary": "Create a client record",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Client details",
                        "name": "client",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Plan limit reached",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/clients/join": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Links the caller's client login to the establishment, reusing a front-desk record with the same email or phone.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "clients"
                ],
                "summary": "Join an establishment as a client",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Contact details",
                        "name": "client",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Caller is not a client account",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/clients/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "clients"
                ],
                "summary": "Get a client",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Client ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "clients"
                ],
                "summary": "Update a client",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Client ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Fields to update",
                        "name": "client",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "clients"
                ],
                "summary": "Delete a client",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Client ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Client has appointments",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/commissions": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Commission statements of every employee",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "First day (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Last day, inclusive (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/commissions/employee": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Commission earned on completed appointments in the period. Employees may only read their own statement.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Commission statement of one employee",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Employee ID",
                        "name": "employeeID",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "First day (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Last day, inclusive (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/employees": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "employees"
                ],
                "summary": "List employees",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "default": 20
                    },
                    {
                        "description": "Token of the next page",
                        "name": "nextToken",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Only active employees",
                        "name": "active",
                        "in": "query",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "employees"
                ],
                "summary": "Create an employee",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Employee details",
                        "name": "employee",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Plan limit reached",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/employees/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "employees"
                ],
                "summary": "Get an employee",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Employee ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "employees"
                ],
                "summary": "Update an employee",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Employee ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Fields to update",
                        "name": "employee",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "employees"
                ],
                "summary": "Delete an employee",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Employee ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Employee has appointments",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/inventory-counts": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "inventory"
                ],
                "summary": "List inventory counts",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Status",
                        "name": "status",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "DRAFT",
                            "APPLIED"
                        ]
                    },
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "default": 20
                    },
                    {
                        "description": "Token of the next page",
                        "name": "nextToken",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "inventory"
                ],
                "summary": "Open an inventory count",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Counted quantities",
                        "name": "count",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Product not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/inventory-counts/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "inventory"
                ],
                "summary": "Get an inventory count",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Inventory count ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "inventory"
                ],
                "summary": "Update a draft inventory count",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Inventory count ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Fields to update",
                        "name": "count",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Count already applied",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "inventory"
                ],
                "summary": "Delete a draft inventory count",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Inventory count ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Count already applied",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/inventory-counts/{id}/apply": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Overwrites each product's stock with the counted quantity and records the differences.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "inventory"
                ],
                "summary": "Apply an inventory count",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Inventory count ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Count already applied",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/payments": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "List payments",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Appointment ID",
                        "name": "appointmentID",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Sale ID",
                        "name": "saleID",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Method",
                        "name": "method",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "CASH",
                            "CARD",
                            "PIX",
                            "OTHER"
                        ]
                    },
                    {
                        "description": "Paid at or after (RFC3339)",
                        "name": "from",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Paid before (RFC3339)",
                        "name": "to",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "default": 20
                    },
                    {
                        "description": "Token of the next page",
                        "name": "nextToken",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Registers money received for exactly one appointment or sale. Appointment balances are updated.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Record a payment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Payment",
                        "name": "payment",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Amount exceeds the outstanding balance",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Appointment or sale not found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/payments/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Get a payment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/payments/{id}/refund": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Marks the payment refunded and gives the amount back to the appointment balance (admin only).",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Refund a payment",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Notes",
                        "name": "refund",
                        "in": "body",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Already refunded",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/products": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "List products",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "default": 20
                    },
                    {
                        "description": "Token of the next page",
                        "name": "nextToken",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "Create a product",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Product details",
                        "name": "product",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Duplicate SKU",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Plan limit reached",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/products/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "Get a product",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Product ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Stock is not editable here; it moves through sales and inventory counts.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "products"
                ],
                "summary": "Update a product",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Product ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Fields to update",
                        "name": "product",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "products"
                ],
                "summary": "Delete a product",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Product ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Product referenced by sales",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/reports/low-stock": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Products at or below their minimum stock",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/reports/period": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Appointments by status, service and product revenue and payments by method for the period (admin only).",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Period report",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "First day (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Last day, inclusive (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/sales": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "sales"
                ],
                "summary": "List sales",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "default": 20
                    },
                    {
                        "description": "Token of the next page",
                        "name": "nextToken",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Records the sale and takes the sold quantities out of stock.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "sales"
                ],
                "summary": "Register a sale",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Sale",
                        "name": "sale",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Product not found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Insufficient stock",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/sales/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "sales"
                ],
                "summary": "Get a sale",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Sale ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Replacing the items moves stock by the difference between the old and new quantities.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "sales"
                ],
                "summary": "Update a sale",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Sale ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Fields to update",
                        "name": "sale",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Insufficient stock or sale cancelled",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Deletes the sale and returns its quantities to stock.",
                "tags": [
                    "sales"
                ],
                "summary": "Delete a sale",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Sale ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Sale has payments",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/sales/{id}/cancel": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Returns the sold quantities to stock and keeps the sale for history.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "sales"
                ],
                "summary": "Cancel a sale",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Sale ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Already cancelled",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/services": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "List services",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "default": 20
                    },
                    {
                        "description": "Token of the next page",
                        "name": "nextToken",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Create a service",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Service details",
                        "name": "service",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Duplicate name",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Plan limit reached",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/services/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Get a service",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Service ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "services"
                ],
                "summary": "Update a service",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Service ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Fields to update",
                        "name": "service",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "services"
                ],
                "summary": "Delete a service",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Service ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Service has appointments",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/services/{id}/employees": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "employees"
                ],
                "summary": "Employees able to perform a service",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Service ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/establishments/{establishment_id}/usage": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Returns the plan limits next to the current usage (admin only).",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "establishments"
                ],
                "summary": "Plan usage",
                "parameters": [
                    {
                        "description": "Establishment ID",
                        "name": "establishment_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "description": "Liveness probe.",
                "consumes": [
                    "*/*"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "root"
                ],
                "summary": "Show the status of server.",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Get the current user",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.UserResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Changes the caller's name or password.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Update the current user",
                "parameters": [
                    {
                        "description": "Fields to update",
                        "name": "user",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.UserResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/users/me/establishments": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Returns the establishment a staff member works at, or every establishment a client joined.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "List establishments of the current user",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "dto.LoginResponse": {
            "type": "object",
            "properties": {
                "expiresAt": {"type": "string"},
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/dto.UserResponse"}
            }
        },
        "dto.RefreshTokenResponse": {
            "type": "object",
            "properties": {
                "expiresAt": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "dto.UserResponse": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "establishmentID": {"type": "string"},
                "isActive": {"type": "boolean"},
                "lastLoginAt": {"type": "string"},
                "lastUpdatedAt": {"type": "string"},
                "name": {"type": "string"},
                "profileID": {"type": "string"},
                "role": {"type": "string"},
                "userID": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Salon Management API",
	Description:      "Multi-tenant backend for beauty salons: scheduling, catalogue, stock, payments and commissions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
