package httpserver

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	ordersvc "github.com/M-ahmad144/Lymora-Backend/internal/service/order"
	productsvc "github.com/M-ahmad144/Lymora-Backend/internal/service/product"
	usersvc "github.com/M-ahmad144/Lymora-Backend/internal/service/user"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type userService interface {
	Signup(ctx context.Context, in usersvc.SignupInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in usersvc.UpdateProfileInput) (*domain.User, error)
	AdminUpdate(ctx context.Context, id string, in usersvc.AdminUpdateInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type categoryService interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	Update(ctx context.Context, id, name string) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
}

type productService interface {
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Product, error)
	Search(ctx context.Context, keyword string, page int) (*productsvc.SearchPage, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	ListTop(ctx context.Context) ([]domain.Product, error)
	ListNew(ctx context.Context) ([]domain.Product, error)
	Filter(ctx context.Context, in productsvc.FilterInput) ([]domain.Product, error)
	AddReview(ctx context.Context, productID string, user domain.User, in productsvc.ReviewInput) error
}

type orderService interface {
	Create(ctx context.Context, userID string, in ordersvc.CreateInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListMine(ctx context.Context, userID string) ([]domain.Order, error)
	MarkPaid(ctx context.Context, id string, in ordersvc.PaymentInput) (*domain.Order, error)
	MarkDelivered(ctx context.Context, id string) (*domain.Order, error)
	Count(ctx context.Context) (int64, error)
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	SalesByDate(ctx context.Context) ([]domain.DailySales, error)
}

type uploadService interface {
	Store(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// Deps carries the collaborators the router hands to its handlers.
type Deps struct {
	UserSvc     userService
	CategorySvc categoryService
	ProductSvc  productService
	OrderSvc    orderService
	UploadSvc   uploadService

	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter gin.HandlerFunc

	PayPalClientID       string
	PaymentWebhookSecret string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.UserSvc == nil || deps.CategorySvc == nil || deps.ProductSvc == nil || deps.OrderSvc == nil {
		return nil, errors.New("missing service dependencies")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  false,
		AllowOriginFunc:  func(string) bool { return true },
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Payment-Signature"},
	}))
	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter)
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	auth := authRequired(deps.UserSvc)
	admin := adminRequired()

	api := router.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", signupHandler(deps.UserSvc))
		users.POST("/login", loginHandler(deps.UserSvc))
		users.POST("/logout", logoutHandler)
		users.GET("/profile", auth, profileHandler(deps.UserSvc))
		users.PATCH("/profile", auth, updateProfileHandler(deps.UserSvc))
		users.GET("", auth, admin, listUsersHandler(deps.UserSvc))
		users.GET("/:id", auth, admin, getUserHandler(deps.UserSvc))
		users.PATCH("/:id", auth, admin, adminUpdateUserHandler(deps.UserSvc))
		users.DELETE("/:id", auth, admin, deleteUserHandler(deps.UserSvc))
	}

	categories := api.Group("/categories")
	{
		categories.POST("", auth, admin, createCategoryHandler(deps.CategorySvc))
		categories.GET("", listCategoriesHandler(deps.CategorySvc))
		categories.GET("/:categoryId", readCategoryHandler(deps.CategorySvc))
		categories.PUT("/:categoryId", auth, admin, updateCategoryHandler(deps.CategorySvc))
		categories.DELETE("/:categoryId", auth, admin, deleteCategoryHandler(deps.CategorySvc))
	}

	products := api.Group("/products")
	{
		products.GET("", searchProductsHandler(deps.ProductSvc))
		products.POST("", auth, admin, createProductHandler(deps.ProductSvc))
		products.GET("/allproducts", listAllProductsHandler(deps.ProductSvc))
		products.GET("/top", topProductsHandler(deps.ProductSvc))
		products.GET("/new", newProductsHandler(deps.ProductSvc))
		products.POST("/filtered-products", filterProductsHandler(deps.ProductSvc))
		products.GET("/:id", getProductHandler(deps.ProductSvc))
		products.PUT("/:id", auth, admin, updateProductHandler(deps.ProductSvc))
		products.DELETE("/:id", auth, admin, deleteProductHandler(deps.ProductSvc))
		products.POST("/:id/reviews", auth, addReviewHandler(deps.ProductSvc))
	}

	if deps.UploadSvc != nil {
		api.POST("/uploads", auth, admin, uploadHandler(deps.UploadSvc))
	}

	orders := api.Group("/orders")
	{
		orders.POST("", auth, createOrderHandler(deps.OrderSvc))
		orders.GET("", auth, admin, listOrdersHandler(deps.OrderSvc))
		orders.GET("/mine", auth, myOrdersHandler(deps.OrderSvc))
		orders.GET("/total-orders", countOrdersHandler(deps.OrderSvc))
		orders.GET("/total-sales", totalSalesHandler(deps.OrderSvc))
		orders.GET("/total-sales-by-date", salesByDateHandler(deps.OrderSvc))
		orders.GET("/:id", auth, getOrderHandler(deps.OrderSvc))
		orders.PUT("/:id/pay", auth, markPaidHandler(deps.OrderSvc, deps.PaymentWebhookSecret))
		orders.PUT("/:id/deliver", auth, admin, markDeliveredHandler(deps.OrderSvc))
	}

	api.GET("/config/paypal", paypalConfigHandler(deps.PayPalClientID))

	return router, nil
}

func paypalConfigHandler(clientID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if clientID == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "PayPal client id is not configured"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"clientId": clientID})
	}
}
