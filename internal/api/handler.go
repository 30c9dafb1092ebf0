package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/realtime"
	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	carts    *service.CartRegistry
	catalog  *service.Catalog
	menu     service.MenuStore
	orders   *service.OrderService
	payments *service.PaymentService
	tracker  *service.PaymentTracker
	kitchen  *service.KitchenService
	gate     *service.AccessGate
	feed     *realtime.Feed
}

// NewHandler creates a new HTTP handler
func NewHandler(
	carts *service.CartRegistry,
	catalog *service.Catalog,
	menu service.MenuStore,
	orders *service.OrderService,
	payments *service.PaymentService,
	tracker *service.PaymentTracker,
	kitchen *service.KitchenService,
	gate *service.AccessGate,
	feed *realtime.Feed,
) *Handler {
	return &Handler{
		carts:    carts,
		catalog:  catalog,
		menu:     menu,
		orders:   orders,
		payments: payments,
		tracker:  tracker,
		kitchen:  kitchen,
		gate:     gate,
		feed:     feed,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/shops", h.listShops)
		v1.GET("/shops/:shop/menu", h.getMenu)

		v1.PUT("/cart/shop", h.setCartShop)
		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items/:id", h.updateCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)

		v1.POST("/checkout", h.checkout)

		v1.GET("/orders/:id", h.getOrder)

		v1.GET("/payments/:id", h.getPayment)
		v1.GET("/payments/:id/qr-url", h.getPaymentQRURL)
		v1.GET("/payments/:id/qr", h.getPaymentQR)
		v1.POST("/payments/:id/retry", h.retryPayment)
		v1.GET("/payments/:id/wait", h.waitPayment)

		v1.POST("/kitchen/login", h.kitchenLogin)

		kitchen := v1.Group("/kitchen")
		kitchen.Use(h.kitchenAuth())
		{
			kitchen.POST("/logout", h.kitchenLogout)
			kitchen.POST("/secret", h.changeSecret)
			kitchen.PUT("/shop", h.setKitchenShop)
			kitchen.GET("/orders", h.listKitchenOrders)
			kitchen.GET("/orders/wait", h.waitKitchenOrders)
			kitchen.PATCH("/orders/:id/status", h.updateOrderStatus)
			kitchen.PATCH("/payments/:id/status", h.updatePaymentStatus)
			kitchen.POST("/menu", h.createMenuItem)
			kitchen.PATCH("/menu/:id", h.updateMenuItem)
			kitchen.PATCH("/menu/:id/availability", h.setMenuItemAvailability)
			kitchen.DELETE("/menu/:id", h.deleteMenuItem)
		}
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().Unix()})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready", "time": time.Now().Unix()})
}

// sessionCart resolves the calling session's cart from the X-Session-ID
// header
func (h *Handler) sessionCart(c *gin.Context) (*service.Cart, bool) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing X-Session-ID header"})
		return nil, false
	}
	return h.carts.CartFor(sessionID), true
}

func (h *Handler) listShops(c *gin.Context) {
	shops := h.catalog.GetShops(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}

func (h *Handler) getMenu(c *gin.Context) {
	shop := c.Param("shop")
	category := c.DefaultQuery("category", models.CategoryAll)
	if !models.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	items := h.catalog.GetByCategory(c.Request.Context(), shop, category)
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) setCartShop(c *gin.Context) {
	var req struct {
		Shop string `json:"shop" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}

	cart.SetShop(req.Shop)
	h.catalog.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"shop": req.Shop})
}

func (h *Handler) getCart(c *gin.Context) {
	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shop":           cart.Shop(),
		"items":          cart.Lines(),
		"total_quantity": cart.TotalQuantity(),
		"total_price":    cart.TotalPrice(),
	})
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req struct {
		ItemID   string `json:"item_id" binding:"required"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}

	item, err := h.menu.GetMenuItem(c.Request.Context(), req.ItemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	cart.Add(*item, req.Quantity)
	c.JSON(http.StatusOK, gin.H{"total_quantity": cart.TotalQuantity()})
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req struct {
		Delta int `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}

	cart.UpdateQuantity(c.Param("id"), req.Delta)
	c.JSON(http.StatusOK, gin.H{"total_quantity": cart.TotalQuantity()})
}

func (h *Handler) removeCartItem(c *gin.Context) {
	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}

	cart.Remove(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"total_quantity": cart.TotalQuantity()})
}

func (h *Handler) clearCart(c *gin.Context) {
	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}

	cart.Clear()
	c.JSON(http.StatusOK, gin.H{"total_quantity": 0})
}

func (h *Handler) checkout(c *gin.Context) {
	var req struct {
		CustomerName   string `json:"customer_name"`
		TableNumber    string `json:"table_number"`
		IdempotencyKey string `json:"idempotency_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	cart, ok := h.sessionCart(c)
	if !ok {
		return
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = c.GetHeader("Idempotency-Key")
	}

	lines := cart.Lines()
	shop := cart.Shop()
	if shop == "" && len(lines) > 0 {
		shop = lines[0].Shop
	}

	result, err := h.orders.Checkout(c.Request.Context(), &service.CheckoutRequest{
		Lines:          lines,
		Shop:           shop,
		CustomerName:   req.CustomerName,
		TableNumber:    req.TableNumber,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order", "details": err.Error()})
		return
	}

	cart.Clear()

	qrURL, err := h.payments.QRCodeURL(c.Request.Context(), result.PaymentID)
	if err != nil {
		qrURL = ""
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id":     result.OrderID,
		"payment_id":   result.PaymentID,
		"order_number": result.OrderNumber,
		"total":        result.Total,
		"qr_code_url":  qrURL,
	})
}

func (h *Handler) getOrder(c *gin.Context) {
	order, items, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

func (h *Handler) getPayment(c *gin.Context) {
	payment, err := h.payments.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment", "details": err.Error()})
		return
	}
	if payment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *Handler) getPaymentQRURL(c *gin.Context) {
	qrURL, err := h.payments.QRCodeURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build QR URL", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"qr_code_url": qrURL})
}

func (h *Handler) getPaymentQR(c *gin.Context) {
	png, err := h.payments.QRCodePNG(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code", "details": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) retryPayment(c *gin.Context) {
	result, err := h.payments.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retry payment", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) waitPayment(c *gin.Context) {
	paymentID := c.Param("id")

	payment, err := h.payments.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment", "details": err.Error()})
		return
	}
	if payment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	// Already terminal; nothing to wait for
	if payment.Status != models.PaymentStatusPending {
		c.JSON(http.StatusOK, gin.H{"status": payment.Status, "payment": payment})
		return
	}

	status, payment, err := h.tracker.Wait(c.Request.Context(), paymentID)
	if err != nil {
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Wait cancelled", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "payment": payment})
}

func (h *Handler) kitchenLogin(c *gin.Context) {
	var req struct {
		Passphrase string `json:"passphrase" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result := h.gate.Verify(req.Passphrase)
	switch {
	case result.Granted:
		c.JSON(http.StatusOK, result)
	case result.Locked:
		c.JSON(http.StatusLocked, result)
	default:
		c.JSON(http.StatusUnauthorized, result)
	}
}

// kitchenAuth gates kitchen routes behind a valid access grant,
// re-checking the window on every request
func (h *Handler) kitchenAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Kitchen-Token")
		if token == "" || !h.gate.HasAccess(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Kitchen access required"})
			return
		}
		c.Set("kitchenToken", token)
		c.Next()
	}
}

func (h *Handler) kitchenLogout(c *gin.Context) {
	h.gate.Logout(c.GetString("kitchenToken"))
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) changeSecret(c *gin.Context) {
	var req struct {
		OldSecret string `json:"old_secret" binding:"required"`
		NewSecret string `json:"new_secret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.gate.ChangeSecret(req.OldSecret, req.NewSecret); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "secret changed"})
}

func (h *Handler) setKitchenShop(c *gin.Context) {
	var req struct {
		Shop string `json:"shop" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	h.kitchen.SetShop(req.Shop)
	if err := h.kitchen.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": req.Shop})
}

func (h *Handler) listKitchenOrders(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		if err := h.kitchen.SetFilter(status); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := h.kitchen.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": h.kitchen.Filtered()})
}

// waitKitchenOrders long-polls for the next order change in a shop, then
// returns the freshly filtered list. The kitchen screen drives its refresh
// loop off this endpoint.
func (h *Handler) waitKitchenOrders(c *gin.Context) {
	shop := c.Query("shop")
	if shop == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing shop parameter"})
		return
	}

	changed := make(chan struct{}, 1)
	unsubscribe := h.feed.SubscribeOrders(shop, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	select {
	case <-c.Request.Context().Done():
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Wait cancelled"})
		return
	case <-changed:
	}

	h.kitchen.SetShop(shop)
	if err := h.kitchen.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": h.kitchen.Filtered()})
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.kitchen.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": c.Param("id"), "status": req.Status})
}

func (h *Handler) updatePaymentStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	payment, err := h.payments.MarkStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *Handler) createMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.kitchen.CreateMenuItem(c.Request.Context(), &item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) updateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	item.ID = c.Param("id")

	if err := h.kitchen.UpdateMenuItem(c.Request.Context(), &item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) setMenuItemAvailability(c *gin.Context) {
	var req struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.kitchen.SetMenuItemAvailability(c.Request.Context(), c.Param("id"), *req.Available); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "available": *req.Available})
}

func (h *Handler) deleteMenuItem(c *gin.Context) {
	if err := h.kitchen.DeleteMenuItem(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
