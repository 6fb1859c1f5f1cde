package router

import (
	"net/http"

	"github.com/docecupcake/cupcake-backend/config"
	"github.com/docecupcake/cupcake-backend/internal/app/controller"
	"github.com/docecupcake/cupcake-backend/internal/app/model"
	"github.com/docecupcake/cupcake-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController     *controller.AuthController
	cupcakeController  *controller.CupcakeController
	favoriteController *controller.FavoriteController
	orderController    *controller.OrderController
	sessionController  *controller.SessionController
	uploadController   *controller.UploadController
	authMiddleware     *middleware.AuthMiddleware
	sessionMiddleware  *middleware.SessionMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	cupcakeController *controller.CupcakeController,
	favoriteController *controller.FavoriteController,
	orderController *controller.OrderController,
	sessionController *controller.SessionController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	sessionMiddleware *middleware.SessionMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		cupcakeController:  cupcakeController,
		favoriteController: favoriteController,
		orderController:    orderController,
		sessionController:  sessionController,
		uploadController:   uploadController,
		authMiddleware:     authMiddleware,
		sessionMiddleware:  sessionMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	controller.RegisterValidators()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.MaxMultipartMemory = r.config.Upload.MaxBytes

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Cupcake API is running",
		})
	})

	authenticate := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", authenticate, r.authController.GetMe)
			auth.PUT("/me", authenticate, r.authController.UpdateMe)
			// logout also ends the browsing session, so it needs the cookie resolved
			auth.POST("/logout", authenticate, r.sessionMiddleware.Handle(), r.authController.Logout)
		}

		cupcakes := v1.Group("/cupcakes")
		{
			cupcakes.GET("", r.authMiddleware.OptionalAuthenticate(), r.cupcakeController.ListCupcakes)
			cupcakes.GET("/:id", r.authMiddleware.OptionalAuthenticate(), r.cupcakeController.GetCupcake)
			cupcakes.POST("", authenticate, adminOnly, r.cupcakeController.CreateCupcake)
			cupcakes.PUT("/:id", authenticate, adminOnly, r.cupcakeController.UpdateCupcake)
			cupcakes.DELETE("/:id", authenticate, adminOnly, r.cupcakeController.DeleteCupcake)
		}

		favorites := v1.Group("/favorites", authenticate)
		{
			favorites.GET("", r.favoriteController.List)
			favorites.POST("", r.favoriteController.Add)
			favorites.DELETE("/:cupcakeId", r.favoriteController.Remove)
			favorites.POST("/:cupcakeId/toggle", r.favoriteController.Toggle)
		}

		orders := v1.Group("/orders", authenticate)
		{
			orders.GET("", r.orderController.ListOrders)
			orders.POST("", r.orderController.CreateOrder)
			orders.GET("/stats", adminOnly, r.orderController.GetStats)
			orders.GET("/export", adminOnly, r.orderController.ExportOrders)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.PATCH("/:id", adminOnly, r.orderController.UpdateOrderStatus)
		}

		uploads := v1.Group("/uploads", authenticate, adminOnly)
		{
			uploads.POST("/cupcake-image", r.uploadController.UploadCupcakeImage)
			uploads.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}

		sess := v1.Group("/session", r.authMiddleware.OptionalAuthenticate(), r.sessionMiddleware.Handle())
		{
			sess.GET("/cart", r.sessionController.GetCart)
			sess.POST("/cart/items", r.sessionController.AddCartItem)
			sess.PATCH("/cart/items/:id", r.sessionController.UpdateCartQuantity)
			sess.PUT("/cart/items/:id/notes", r.sessionController.UpdateCartNotes)
			sess.DELETE("/cart/items/:id", r.sessionController.RemoveCartItem)
			sess.DELETE("/cart", r.sessionController.ClearCart)

			sess.POST("/checkout", r.sessionController.StartCheckout)
			sess.GET("/checkout", r.sessionController.GetCheckout)
			sess.PUT("/checkout/delivery", r.sessionController.SetDelivery)
			sess.PUT("/checkout/payment", r.sessionController.SetPayment)
			sess.POST("/checkout/submit", r.sessionController.SubmitOrder)

			sess.DELETE("", r.sessionController.EndSession)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		// credentials are needed for the session cookie
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
