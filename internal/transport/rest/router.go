package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/sobatmedia/smm-store/internal/admin"
	"github.com/sobatmedia/smm-store/internal/order"
	"github.com/sobatmedia/smm-store/internal/product"
	"github.com/sobatmedia/smm-store/internal/transport/middleware"
	"github.com/sobatmedia/smm-store/internal/transport/swagger"
)

// Throttle ceilings for the endpoints buyers and bots hammer.
const (
	orderCreateConcurrency = 20
	loginConcurrency       = 5
	throttleBacklogTimeout = 5 * time.Second
)

// RegisterAllRoutes wires every public and back-office endpoint onto the
// router.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	orderHandler *order.Handler,
	webhookHandler *order.WebhookHandler,
	productHandler *product.Handler,
	adminHandler *admin.Handler,
	allowedOrigins string,
	uploadsDir string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Local-disk proof images; a no-op when OSS is configured.
	if uploadsDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir)))
		router.Get("/uploads/*", fileServer.ServeHTTP)
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Storefront.
		productHandler.RegisterRoutes(r)

		r.Route("/order", func(or chi.Router) {
			or.Group(func(tr chi.Router) {
				tr.Use(chiMiddleware.ThrottleBacklog(orderCreateConcurrency, orderCreateConcurrency, throttleBacklogTimeout))
				tr.Post("/create", orderHandler.CreateOrder)
			})
			or.Get("/status/{code}", orderHandler.GetOrderStatus)
			or.Post("/pay", orderHandler.CreatePayment)
			or.Post("/submit-proof", orderHandler.SubmitPaymentProof)
			or.Post("/{purchaseCode}/refresh-status", orderHandler.RefreshPaymentStatus)
		})

		r.Route("/midtrans", func(mr chi.Router) {
			mr.Post("/webhook", webhookHandler.HandleNotification)
			mr.Get("/status/{orderId}", webhookHandler.GetTransactionStatus)
		})

		// Back office.
		r.Route("/admin", func(ar chi.Router) {
			ar.Group(func(tr chi.Router) {
				tr.Use(chiMiddleware.ThrottleBacklog(loginConcurrency, loginConcurrency, throttleBacklogTimeout))
				tr.Post("/login", adminHandler.Login)
			})

			ar.Group(func(pr chi.Router) {
				pr.Use(adminHandler.AuthMiddleware)

				pr.Get("/profile", adminHandler.Profile)
				pr.Get("/dashboard", adminHandler.Dashboard)

				pr.Route("/products", func(pdr chi.Router) {
					pdr.Get("/", adminHandler.ListProducts)
					pdr.Post("/", adminHandler.CreateProduct)
					pdr.Put("/{id}", adminHandler.UpdateProduct)
					pdr.Delete("/{id}", adminHandler.DeleteProduct)
				})

				pr.Route("/orders", func(odr chi.Router) {
					odr.Get("/", adminHandler.ListOrders)
					odr.Post("/batch-delete", adminHandler.BatchDeleteOrders)
					odr.Get("/{id}", adminHandler.GetOrderDetail)
					odr.Patch("/{id}/seller-status", adminHandler.UpdateSellerStatus)
					odr.Patch("/{id}/payment-status", adminHandler.UpdatePaymentStatus)
					odr.Delete("/{id}", adminHandler.DeleteOrder)
				})

				pr.Get("/payment-logs", adminHandler.ListPaymentLogs)

				pr.Group(func(sr chi.Router) {
					sr.Use(adminHandler.SuperadminOnly)
					sr.Post("/users", adminHandler.CreateAdmin)
				})
			})
		})
	})
}
