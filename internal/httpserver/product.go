package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	productsvc "github.com/M-ahmad144/Lymora-Backend/internal/service/product"
	"github.com/gin-gonic/gin"
)

func createProductHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		created, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"product": created})
	}
}

func updateProductHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		updated, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deleteProductHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully"})
	}
}

func searchProductsHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("pageNumber"))
		result, err := svc.Search(c.Request.Context(), c.Query("keyword"), page)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getProductHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func listAllProductsHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.ListAll(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func topProductsHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.ListTop(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func newProductsHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.ListNew(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func filterProductsHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.FilterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		products, err := svc.Filter(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func addReviewHandler(svc productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.ReviewInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		user := currentUser(c)
		err := svc.AddReview(c.Request.Context(), c.Param("id"), *user, in)
		if err != nil {
			switch {
			case errors.Is(err, productsvc.ErrAlreadyReviewed):
				c.JSON(http.StatusBadRequest, gin.H{"error": "product already reviewed"})
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "review added successfully"})
	}
}
