// Package docs embeds the OpenAPI description of the HTTP API.
package docs

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed openapi.json
var openAPI []byte

// OpenAPI returns the raw OpenAPI 3 document.
func OpenAPI() []byte {
	return openAPI
}

// Register serves the document under /docs.
func Register(router gin.IRoutes) {
	router.GET("/docs/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", openAPI)
	})
}
