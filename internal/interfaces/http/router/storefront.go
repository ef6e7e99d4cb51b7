package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Handlers are the storefront HTTP handlers mounted by RegisterStorefront
type Handlers struct {
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Rating   *handler.RatingHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Discount *handler.DiscountHandler
	Order    *handler.OrderHandler
	Webhook  *handler.PaymentWebhookHandler
	FAQ      *handler.FAQHandler
	Inquiry  *handler.InquiryHandler
}

// Guards are the per-group middlewares.
//
// Identify resolves the bearer token when one is sent and lets guests through.
// AuthLimit and CartLimit are optional. AuthLimit throttles credential
// endpoints and CartLimit throttles cart, checkout and order endpoints per owner.
type Guards struct {
	Identify  gin.HandlerFunc
	AuthLimit gin.HandlerFunc
	CartLimit gin.HandlerFunc
}

// chain drops nil middlewares
func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// RegisterStorefront registers every public, customer and admin route
func RegisterStorefront(r *Router, h Handlers, g Guards) *Router {
	identify := chain(g.Identify)
	buyer := chain(g.Identify, g.CartLimit)
	signedIn := chain(g.Identify, middleware.RequireAuth())

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/register", chain(g.AuthLimit, h.Auth.Register)...).
		POST("/login", chain(g.AuthLimit, h.Auth.Login)...).
		POST("/refresh", h.Auth.Refresh).
		POST("/forgot-password", chain(g.AuthLimit, h.Auth.ForgotPassword)...).
		POST("/reset-password", chain(g.AuthLimit, h.Auth.ResetPassword)...).
		POST("/logout", chain(g.Identify, middleware.RequireAuth(), h.Auth.Logout)...).
		GET("/me", chain(g.Identify, middleware.RequireAuth(), h.Auth.Me)...)

	products := NewDomainGroup("products", "/products")
	products.GET("", h.Product.ListPublic).
		GET("/suggestions", h.Product.Suggestions).
		GET("/:id", h.Product.GetPublic).
		GET("/:id/ratings", h.Rating.ListByProduct)

	category := NewDomainGroup("category", "/category")
	category.GET("", h.Category.ListPublic)

	subcategory := NewDomainGroup("subcategory", "/subcategory")
	subcategory.GET("", h.Category.ListSubcategories)

	ratings := NewDomainGroup("ratings", "/ratings")
	ratings.Use(signedIn...)
	ratings.POST("", h.Rating.Rate)

	cart := NewDomainGroup("cart", "/cart")
	cart.Use(buyer...)
	cart.GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.Add).
		DELETE("/items", h.Cart.Remove).
		POST("/items/increase", h.Cart.Increase).
		POST("/items/decrease", h.Cart.Decrease).
		POST("/merge", middleware.RequireAuth(), h.Cart.Merge).
		GET("/stream", h.Cart.Stream)

	discounts := NewDomainGroup("discounts", "/discounts")
	discounts.Use(buyer...)
	discounts.GET("/available", h.Checkout.Available).
		POST("/apply", h.Checkout.Apply).
		DELETE("/apply", h.Checkout.Remove).
		POST("/calculate", h.Checkout.Calculate).
		GET("/session", h.Checkout.Session)

	orders := NewDomainGroup("orders", "/orders")
	orders.Use(buyer...)
	orders.POST("/initiate-payment", h.Order.InitiatePayment).
		POST("/verify-payment", h.Order.VerifyPayment).
		POST("/:id/payment-failure", h.Order.ReportFailure).
		GET("/pending", h.Order.Pending).
		GET("/my", h.Order.MyOrders).
		GET("/:id", h.Order.Get)

	payments := NewDomainGroup("payments", "/payments")
	payments.POST("/webhook", h.Webhook.Handle)

	faqs := NewDomainGroup("faqs", "/faqs")
	faqs.GET("", h.FAQ.ListPublic)

	inquiries := NewDomainGroup("design-inquiries", "/design-inquiries")
	inquiries.POST("", h.Inquiry.Submit)

	r.Register(auth).
		Register(products).
		Register(category).
		Register(subcategory).
		Register(ratings).
		Register(cart).
		Register(discounts).
		Register(orders).
		Register(payments).
		Register(faqs).
		Register(inquiries).
		Register(adminGroup(h, identify))
	return r
}

func adminGroup(h Handlers, identify []gin.HandlerFunc) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin")
	admin.Use(identify...).Use(middleware.RequireAdmin())

	admin.Group("discounts", "/discounts").
		GET("", h.Discount.List).
		POST("", h.Discount.Create).
		GET("/:id", h.Discount.GetByID).
		PUT("/:id", h.Discount.Update).
		PATCH("/:id/status", h.Discount.ToggleStatus).
		DELETE("/:id", h.Discount.Delete)

	admin.Group("faqs", "/faqs").
		GET("", h.FAQ.List).
		POST("", h.FAQ.Create).
		GET("/:id", h.FAQ.GetByID).
		PUT("/:id", h.FAQ.Update).
		PATCH("/:id/status", h.FAQ.ToggleStatus).
		DELETE("/:id", h.FAQ.Delete)

	admin.Group("design-inquiries", "/design-inquiries").
		GET("", h.Inquiry.List).
		GET("/:id", h.Inquiry.GetByID).
		PATCH("/:id/status", h.Inquiry.UpdateStatus).
		DELETE("/:id", h.Inquiry.Delete)

	admin.Group("products", "/products").
		GET("", h.Product.List).
		POST("", h.Product.Create).
		GET("/:id", h.Product.GetByID).
		PUT("/:id", h.Product.Update).
		PATCH("/:id/status", h.Product.ToggleStatus).
		DELETE("/:id", h.Product.Delete).
		POST("/:id/images", h.Product.UploadImage).
		POST("/:id/variants", h.Product.AddVariant).
		PUT("/:id/variants/:variantId/stock", h.Product.SetVariantStock)

	admin.Group("categories", "/categories").
		GET("", h.Category.List).
		POST("", h.Category.Create).
		POST("/subcategories", h.Category.CreateSubcategory).
		GET("/:id", h.Category.GetByID).
		PUT("/:id", h.Category.Update).
		DELETE("/:id", h.Category.Delete)

	admin.Group("orders", "/orders").
		GET("", h.Order.List).
		GET("/:id", h.Order.AdminGet).
		PATCH("/:id/status", h.Order.UpdateStatus)

	return admin
}
