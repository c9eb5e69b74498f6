package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the roster service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>student-roster - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the roster endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "student-roster", "version": "v0.1.0" },
  "components": {
    "parameters": { "device": { "name": "X-Device-ID", "in": "header", "required": true, "schema": {"type":"string"} } },
    "schemas": {
      "Submit": {"type":"object","properties":{"identifier":{"type":"string"},"name":{"type":"string"},"email":{"type":"string"},"credential":{"type":"string"}}},
      "Session": {"type":"object","properties":{"identifier":{"type":"string"},"name":{"type":"string"},"email":{"type":"string"}}}
    }
  },
  "paths": {
    "/auth/session": {
      "get": { "summary": "Bootstrap: report whether the device has a stored session", "parameters": [{"$ref":"#/components/parameters/device"}], "responses": { "200": { "description": "destination Auth or Listing" } } }
    },
    "/auth/login": {
      "post": {
        "summary": "Log in with identifier and credential",
        "parameters": [{"$ref":"#/components/parameters/device"}],
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Submit"}}}},
        "responses": { "200": { "description": "session stored" }, "400": { "description": "validation failed" }, "401": { "description": "wrong credential" }, "404": { "description": "identifier not registered" }, "503": { "description": "record store unreachable" } }
      }
    },
    "/auth/register": {
      "post": {
        "summary": "Register a student and log in",
        "parameters": [{"$ref":"#/components/parameters/device"}],
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Submit"}}}},
        "responses": { "201": { "description": "record created, session stored" }, "400": { "description": "validation failed" }, "409": { "description": "identifier already registered" }, "503": { "description": "server unreachable" } }
      }
    },
    "/auth/logout": {
      "post": { "summary": "Clear the device session and revoke the bearer token", "parameters": [{"$ref":"#/components/parameters/device"}], "responses": { "200": { "description": "logged out" } } }
    },
    "/api/v1/students": {
      "get": { "summary": "List registered students", "parameters": [{"$ref":"#/components/parameters/device"}], "responses": { "200": { "description": "students" }, "401": { "description": "not logged in" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
