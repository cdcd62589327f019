package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	orderrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/order"
	ordersvc "github.com/M-ahmad144/Lymora-Backend/internal/service/order"
	"github.com/gin-gonic/gin"
)

// writeError maps service/repository errors onto HTTP responses. Unknown
// errors get a generic 500 so internals never leak to clients.
func writeError(c *gin.Context, err error) {
	var notFoundProduct *ordersvc.NotFoundProductError

	switch {
	case errors.As(err, &notFoundProduct):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundProduct.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, orderrepo.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": "order already paid"})
	case errors.Is(err, orderrepo.ErrAlreadyDelivered):
		c.JSON(http.StatusConflict, gin.H{"error": "order already delivered"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type orderItemResponse struct {
	ID      string `json:"id"`
	Product string `json:"product"`
	Name    string `json:"name"`
	Image   string `json:"image,omitempty"`
	Qty     int    `json:"qty"`
	Price   string `json:"price"`
}

type paymentResultResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type orderResponse struct {
	ID              string                 `json:"id"`
	User            string                 `json:"user"`
	UserDetails     *domain.OrderOwner     `json:"userDetails,omitempty"`
	OrderItems      []orderItemResponse    `json:"orderItems"`
	ShippingAddress map[string]any         `json:"shippingAddress,omitempty"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      string                 `json:"itemsPrice"`
	ShippingPrice   string                 `json:"shippingPrice"`
	TaxPrice        string                 `json:"taxPrice"`
	TotalPrice      string                 `json:"totalPrice"`
	IsPaid          bool                   `json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	PaymentResult   *paymentResultResponse `json:"paymentResult,omitempty"`
	IsDelivered     bool                   `json:"isDelivered"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// toOrderResponse renders prices with a fixed two-decimal representation.
func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:      item.ID,
			Product: item.ProductID,
			Name:    item.Name,
			Image:   item.Image,
			Qty:     item.Quantity,
			Price:   item.Price.StringFixed(2),
		})
	}

	var payment *paymentResultResponse
	if o.PaymentResult != nil {
		payment = &paymentResultResponse{
			ID:           o.PaymentResult.TransactionID,
			Status:       o.PaymentResult.Status,
			UpdateTime:   o.PaymentResult.UpdateTime,
			EmailAddress: o.PaymentResult.PayerEmail,
		}
	}

	return orderResponse{
		ID:              o.ID,
		User:            o.UserID,
		UserDetails:     o.Owner,
		OrderItems:      items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		ItemsPrice:      o.ItemsPrice.StringFixed(2),
		ShippingPrice:   o.ShippingPrice.StringFixed(2),
		TaxPrice:        o.TaxPrice.StringFixed(2),
		TotalPrice:      o.TotalPrice.StringFixed(2),
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		PaymentResult:   payment,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	result := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderResponse(o))
	}
	return result
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	}
}
