package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/booking-api/internal/apperr"
	"github.com/harentsoaR/booking-api/internal/middleware"
	"github.com/harentsoaR/booking-api/internal/services"
)

// Handler holds the services the HTTP routes call.
type Handler struct {
	Accounts    *services.AccountService
	Bookings    *services.BookingService
	Catalog     *services.CatalogService
	Specialists *services.SpecialistService
}

func NewHandler(accounts *services.AccountService, bookings *services.BookingService, catalog *services.CatalogService, specialists *services.SpecialistService) *Handler {
	return &Handler{
		Accounts:    accounts,
		Bookings:    bookings,
		Catalog:     catalog,
		Specialists: specialists,
	}
}

// Routes mounts every route on r, which is normally the /api group.
func (h *Handler) Routes(r gin.IRouter, tokens middleware.TokenValidator) {
	auth := middleware.AuthMiddleware(tokens)
	admin := middleware.AdminOnly()

	r.GET("/health", h.Health)

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/logout", h.Logout)
	}

	userRoutes := r.Group("/users", auth)
	{
		userRoutes.GET("/profile", h.GetProfile)
		userRoutes.PUT("/profile", h.UpdateProfile)
		userRoutes.PUT("/password", h.UpdatePassword)
		userRoutes.GET("/bookings", h.MyBookings)
	}

	bookingRoutes := r.Group("/booking")
	{
		bookingRoutes.GET("/busy-slots", h.BusySlots)
		bookingRoutes.POST("", auth, h.CreateBooking)
		bookingRoutes.GET("", auth, h.ListMyBookings)
		bookingRoutes.GET("/all", auth, admin, h.ListAllBookings)
		bookingRoutes.GET("/:id", auth, h.GetBooking)
		bookingRoutes.PUT("/:id", auth, h.UpdateBooking)
		bookingRoutes.DELETE("/:id", auth, h.DeleteBooking)
	}

	serviceRoutes := r.Group("/service", auth)
	{
		serviceRoutes.GET("", h.ListServices)
		serviceRoutes.GET("/:id", h.GetService)
		serviceRoutes.POST("", admin, h.CreateService)
		serviceRoutes.PUT("/:id", admin, h.UpdateService)
		serviceRoutes.DELETE("/:id", admin, h.DeleteService)
	}

	specialistRoutes := r.Group("/specialists")
	{
		specialistRoutes.GET("", h.ListSpecialists)
		specialistRoutes.GET("/:id", h.GetSpecialist)
		specialistRoutes.POST("", auth, admin, h.CreateSpecialist)
		specialistRoutes.PUT("/:id", auth, admin, h.UpdateSpecialist)
		specialistRoutes.DELETE("/:id", auth, admin, h.DeleteSpecialist)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "ok"})
}

// actor reads the caller set by AuthMiddleware.
func actor(c *gin.Context) (services.Actor, bool) {
	a, err := services.NewActor(c.GetString(middleware.UserIDKey), c.GetString(middleware.UserRoleKey))
	if err != nil {
		_ = c.Error(err)
		return services.Actor{}, false
	}
	return a, true
}

// bind decodes the JSON body into dst.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(&apperr.Error{Kind: apperr.KindValidation, Message: "Invalid request body", Err: err})
		return false
	}
	return true
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(items), "data": items})
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}
