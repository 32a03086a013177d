package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/catalogo-prodotti/internal/http/controller"
	"github.com/iyhunko/catalogo-prodotti/internal/http/middleware"
)

// InitRouter registers the middlewares and the catalog routes on server.
func InitRouter(server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Logger(), middleware.Recovery(), middleware.CORS())

	server.GET("/ping", ctr.Ping)

	products := server.Group("/prodotti")
	{
		products.GET("", productCtr.ListProducts)
		products.GET("/:id", productCtr.GetProduct)
		products.POST("", productCtr.CreateProduct)
		products.PATCH("/:id", productCtr.UpdateProduct)
		products.DELETE("/:id", productCtr.DeleteProduct)
	}

	return server
}
