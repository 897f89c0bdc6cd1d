package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syncpad/syncpad/internal/document"
	"github.com/syncpad/syncpad/internal/engine"
)

// RegisterDocumentRoutes exposes the document store over REST. Mutations go
// through the engine so connected sessions still see listing refreshes,
// deletion notices and title broadcasts exactly as if a socket peer had made
// the change.
func RegisterDocumentRoutes(r *gin.Engine, eng *engine.Engine) {
	r.GET("/api/documents", func(c *gin.Context) {
		list := eng.ListDocuments()
		out := make([]gin.H, 0, len(list))
		for _, d := range list {
			out = append(out, gin.H{"id": d.ID, "title": d.Title, "version": d.Version, "updatedAt": d.UpdatedAt})
		}
		c.JSON(http.StatusOK, out)
	})

	r.GET("/api/documents/:id", func(c *gin.Context) {
		d, err := eng.GetDocument(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, d)
	})

	r.POST("/api/documents", func(c *gin.Context) {
		var req struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		d := eng.CreateDocument("", req.Title)
		c.JSON(http.StatusCreated, d)
	})

	r.DELETE("/api/documents/:id", func(c *gin.Context) {
		err := eng.DeleteDocument(c.Param("id"))
		switch {
		case errors.Is(err, document.ErrDefaultDocument):
			c.JSON(http.StatusForbidden, gin.H{"error": "default document cannot be deleted"})
		case errors.Is(err, document.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.Status(http.StatusNoContent)
		}
	})

	r.PATCH("/api/documents/:id/title", func(c *gin.Context) {
		var req struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := eng.RenameDocument(c.Param("id"), req.Title); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "title": req.Title})
	})
}
