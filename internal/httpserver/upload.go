package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func uploadHandler(svc uploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "no image file provided"})
			return
		}
		url, err := svc.Store(c.Request.Context(), file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "image upload failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "image uploaded successfully", "imageUrl": url})
	}
}
