package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the wishes service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
//
// publicAPIURL is advertised as the only server so "Try it out" hits the
// same base the landing page uses.
func RegisterSwagger(r gin.IRouter, publicAPIURL string) {
	doc := openAPIDoc(publicAPIURL)

	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, doc)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>wishes-service - Swagger</title>
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

func jsonBody(schema gin.H) gin.H {
	return gin.H{"content": gin.H{"application/json": gin.H{"schema": schema}}}
}

func messageResponse(desc string) gin.H {
	return gin.H{"description": desc, "content": gin.H{"application/json": gin.H{"schema": gin.H{"$ref": "#/components/schemas/Message"}}}}
}

func openAPIDoc(publicAPIURL string) gin.H {
	wishRef := gin.H{"$ref": "#/components/schemas/Wish"}
	return gin.H{
		"openapi": "3.0.0",
		"info":    gin.H{"title": "wishes-service", "version": "v1.0.0"},
		"servers": []gin.H{{"url": publicAPIURL}},
		"paths": gin.H{
			"/wishes": gin.H{
				"get": gin.H{
					"summary":   "List all wishes in stored order (newest first)",
					"responses": gin.H{"200": gin.H{"description": "wishes", "content": gin.H{"application/json": gin.H{"schema": gin.H{"type": "array", "items": wishRef}}}}},
				},
				"post": gin.H{
					"summary": "Submit a wish",
					"requestBody": jsonBody(gin.H{
						"type":       "object",
						"required":   []string{"author", "content"},
						"properties": gin.H{"author": gin.H{"type": "string"}, "content": gin.H{"type": "string"}},
					}),
					"responses": gin.H{
						"201": gin.H{"description": "stored wish", "content": gin.H{"application/json": gin.H{"schema": wishRef}}},
						"400": messageResponse("author or content missing"),
						"429": messageResponse("rate limited"),
						"500": messageResponse("could not persist"),
					},
				},
			},
			"/wishes/{id}": gin.H{
				"delete": gin.H{
					"summary":    "Remove a wish",
					"parameters": []gin.H{{"name": "id", "in": "path", "required": true, "schema": gin.H{"type": "integer"}}},
					"responses": gin.H{
						"200": messageResponse("deleted"),
						"401": gin.H{"description": "admin token required (when the admin guard is configured)"},
						"404": messageResponse("no wish with that id"),
						"500": messageResponse("could not persist"),
					},
				},
			},
			"/wishes/live": gin.H{
				"get": gin.H{"summary": "Websocket feed of created and deleted wishes", "responses": gin.H{"101": gin.H{"description": "switching protocols"}}},
			},
			"/admin/backup": gin.H{
				"post": gin.H{"summary": "Upload a snapshot of the wishes document to object storage", "responses": gin.H{"201": gin.H{"description": "object key"}, "502": gin.H{"description": "upload failed"}}},
			},
		},
		"components": gin.H{
			"schemas": gin.H{
				"Wish": gin.H{
					"type": "object",
					"properties": gin.H{
						"id":      gin.H{"type": "integer"},
						"title":   gin.H{"type": "string"},
						"author":  gin.H{"type": "string"},
						"content": gin.H{"type": "string"},
						"date":    gin.H{"type": "string", "example": "5/3/2024"},
					},
				},
				"Message": gin.H{"type": "object", "properties": gin.H{"message": gin.H{"type": "string"}}},
			},
		},
	}
}
