package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"boot-shop/internal/auth"
	"boot-shop/internal/domain"
	"boot-shop/internal/service"
)

const claimsKey = "auth.claims"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	catalog service.CatalogService
	orders  service.OrderService
	tokens  TokenVerifier
	logger  *logrus.Logger
}

func NewHandler(users service.UserService, catalog service.CatalogService, orders service.OrderService, tokens TokenVerifier, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:   users,
		catalog: catalog,
		orders:  orders,
		tokens:  tokens,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), h.requestLogger())

	router.POST("/register", h.register)
	router.POST("/login", h.login)

	orders := router.Group("/orders", h.requireAuth())
	{
		orders.POST("", h.placeOrder)
		orders.GET("", h.listOrders)
	}

	router.GET("/boots", h.listBoots)
	router.GET("/boots/:id", h.getBoot)
	admin := router.Group("/boots", h.requireAuth(), h.requireAdmin())
	{
		admin.POST("", h.createBoot)
		admin.PUT("/:id", h.updateBoot)
		admin.DELETE("/:id", h.deleteBoot)
	}

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}).Info("request")
	}
}

// requireAuth verifies the Authorization header and stores the claims on
// the context for later handlers.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := h.tokens.Verify(c.GetHeader("Authorization"))
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireRole(domain.RoleAdmin, claimsFrom(c)); err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := h.users.Register(c.Request.Context(), req.Username, req.Password, domain.Role(req.Role)); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully"})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type placeOrderRequest struct {
	Boots []string `json:"boots"`
}

func (h *Handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), claimsFrom(c).SubjectID(), req.Boots)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order placed successfully",
		"order":   orderToResponse(*order),
	})
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), claimsFrom(c).SubjectID())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i := range orders {
		resp[i] = orderToResponse(orders[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createBoot(c *gin.Context) {
	var fields service.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	boot, err := h.catalog.Create(c.Request.Context(), fields)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bootToResponse(*boot))
}

func (h *Handler) listBoots(c *gin.Context) {
	boots, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]BootResponse, len(boots))
	for i := range boots {
		resp[i] = bootToResponse(boots[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getBoot(c *gin.Context) {
	boot, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeBootOrNull(c, boot)
}

func (h *Handler) updateBoot(c *gin.Context) {
	var fields service.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	boot, err := h.catalog.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeBootOrNull(c, boot)
}

func (h *Handler) deleteBoot(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Boot deleted"})
}

func writeBootOrNull(c *gin.Context, boot *domain.Boot) {
	if boot == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, bootToResponse(*boot))
}

// writeError translates err into a status code and {"error": msg} body.
func (h *Handler) writeError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "Internal server error"

	var se *service.Error
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		status, msg = http.StatusUnauthorized, "Access denied"
	case errors.Is(err, auth.ErrInvalidToken):
		status, msg = http.StatusBadRequest, "Invalid token"
	case errors.Is(err, auth.ErrForbidden):
		status, msg = http.StatusForbidden, "Admin access required"
	case errors.As(err, &se):
		status, msg = statusFor(se.Kind), se.Message
	}

	if status >= http.StatusInternalServerError {
		h.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Errorf("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindAuth:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
