package v1

import (
	"github.com/gin-gonic/gin"

	"medstock/internal/service"
	"medstock/pkg/auth"
	"medstock/pkg/metrics"
)

// NewRouter wires the versioned API. Auth endpoints are public; everything
// else requires a bearer token. Per-role restrictions live in the services.
func NewRouter(
	authSvc *service.AuthService,
	stockSvc *service.StockService,
	prescriptionSvc *service.PrescriptionService,
	reportSvc *service.ReportService,
	jwtManager *auth.JWTManager,
	collector *metrics.Collector,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Instrument(collector))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	authHandler := NewAuthHandler(authSvc)
	medicineHandler := NewMedicineHandler(stockSvc)
	prescriptionHandler := NewPrescriptionHandler(prescriptionSvc, reportSvc)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protected := api.Group("", RequireAuth(jwtManager))

	medicines := protected.Group("/medicines")
	{
		medicines.POST("", medicineHandler.Create)
		medicines.GET("", medicineHandler.List)
		medicines.GET("/watch", medicineHandler.WatchAll)
		medicines.GET("/dashboard", medicineHandler.Dashboard)
		medicines.GET("/:id", medicineHandler.Get)
		medicines.PUT("/:id", medicineHandler.Update)
		medicines.DELETE("/:id", medicineHandler.Delete)
		medicines.POST("/:id/adjust", medicineHandler.Adjust)
		medicines.GET("/:id/watch", medicineHandler.Watch)
	}

	prescriptions := protected.Group("/prescriptions")
	{
		prescriptions.POST("", prescriptionHandler.Create)
		prescriptions.GET("", prescriptionHandler.List)
		prescriptions.GET("/watch", prescriptionHandler.WatchAll)
		prescriptions.GET("/recap", prescriptionHandler.Recap)
		prescriptions.GET("/:id", prescriptionHandler.Get)
		prescriptions.PUT("/:id", prescriptionHandler.Update)
		prescriptions.DELETE("/:id", prescriptionHandler.Delete)
	}

	return r
}
