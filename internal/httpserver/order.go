package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	ordersvc "github.com/M-ahmad144/Lymora-Backend/internal/service/order"
	"github.com/gin-gonic/gin"
)

func createOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		user := currentUser(c)
		order, err := svc.Create(c.Request.Context(), user.ID, in)
		if err != nil {
			if errors.Is(err, ordersvc.ErrNoItems) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "no order items"})
				return
			}
			var invalid *ordersvc.ValidationError
			if errors.As(err, &invalid) {
				c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
				return
			}
			var notFound *ordersvc.NotFoundProductError
			if errors.As(err, &notFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toOrderResponse(*order))
	}
}

func listOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListAll(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponses(orders))
	}
}

func myOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		orders, err := svc.ListMine(c.Request.Context(), user.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponses(orders))
	}
}

func countOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.Count(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"totalOrders": n})
	}
}

func totalSalesHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := svc.TotalSales(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"totalSales": total.StringFixed(2)})
	}
}

func salesByDateHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		buckets, err := svc.SalesByDate(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		type bucketResponse struct {
			Date       string `json:"_id"`
			TotalSales string `json:"totalSales"`
		}
		result := make([]bucketResponse, 0, len(buckets))
		for _, b := range buckets {
			result = append(result, bucketResponse{Date: b.Date, TotalSales: b.TotalSales.StringFixed(2)})
		}
		c.JSON(http.StatusOK, result)
	}
}

func getOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(*order))
	}
}

// paymentRequest mirrors the gateway confirmation payload.
type paymentRequest struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

func markPaidHandler(svc orderService, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		// When a shared secret is configured the payload must carry a
		// valid gateway signature; otherwise the original trust model
		// applies and the payload is accepted as-is.
		if webhookSecret != "" && !verifySignature(body, c.GetHeader("X-Payment-Signature"), webhookSecret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid payment signature"})
			return
		}

		var in paymentRequest
		if err := json.Unmarshal(body, &in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		order, err := svc.MarkPaid(c.Request.Context(), c.Param("id"), ordersvc.PaymentInput{
			TransactionID: in.ID,
			Status:        in.Status,
			UpdateTime:    in.UpdateTime,
			PayerEmail:    in.Payer.EmailAddress,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(*order))
	}
}

func verifySignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func markDeliveredHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.MarkDelivered(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(*order))
	}
}
