package httpserver

import (
	"errors"
	"net/http"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func createCategoryHandler(svc categoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in categoryRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		created, err := svc.Create(c.Request.Context(), in.Name)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func updateCategoryHandler(svc categoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in categoryRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		updated, err := svc.Update(c.Request.Context(), c.Param("categoryId"), in.Name)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) || errors.Is(err, domain.ErrNotFound) {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deleteCategoryHandler(svc categoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("categoryId")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
	}
}

func listCategoriesHandler(svc categoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func readCategoryHandler(svc categoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := svc.Get(c.Request.Context(), c.Param("categoryId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}
