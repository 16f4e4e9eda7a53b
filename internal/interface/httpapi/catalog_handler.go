package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"txapp-service/internal/usecase"
	"txapp-service/pkg/logger"
)

// registerCatalog mounts list/get/create/update/delete for one reference table
func registerCatalog[T any](group *gin.RouterGroup, path string, svc *usecase.CatalogService[T], log logger.Logger) {
	if svc == nil {
		return
	}
	r := group.Group(path)

	r.GET("", func(c *gin.Context) {
		items, err := svc.List(c.Request.Context(), identityFrom(c))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, items)
	})

	r.GET("/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		item, err := svc.Get(c.Request.Context(), identityFrom(c), id)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	r.POST("", func(c *gin.Context) {
		item := new(T)
		if err := c.ShouldBindJSON(item); err != nil {
			badRequest(c, err)
			return
		}
		if err := svc.Create(c.Request.Context(), identityFrom(c), item); err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	})

	r.PUT("/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		item := new(T)
		if err := c.ShouldBindJSON(item); err != nil {
			badRequest(c, err)
			return
		}
		if err := svc.Update(c.Request.Context(), identityFrom(c), id, item); err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	r.DELETE("/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), identityFrom(c), id); err != nil {
			writeError(c, log, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
