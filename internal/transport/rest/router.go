package rest

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/civiport/report-management/internal/auth"
	"github.com/civiport/report-management/internal/catalog"
	"github.com/civiport/report-management/internal/company"
	"github.com/civiport/report-management/internal/messaging"
	"github.com/civiport/report-management/internal/report"
	"github.com/civiport/report-management/internal/storage"
	"github.com/civiport/report-management/internal/transport/middleware"
	"github.com/civiport/report-management/internal/user"
)

type Handlers struct {
	Auth      *auth.Handler
	Catalog   *catalog.Handler
	Company   *company.Handler
	User      *user.Handler
	Report    *report.Handler
	Messaging *messaging.Handler
	Upload    *storage.UploadHandler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, guard *auth.Guard, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", handlers.Auth.Login)
			sr.Post("/refresh", handlers.Auth.RefreshToken)
			sr.Post("/logout", handlers.Auth.Logout)
		})

		// Public citizen sign-up.
		r.Post("/register", handlers.User.Register)

		// Everything below requires a session.
		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)

			pr.Get("/users/me", handlers.User.Me)

			// Administration: companies and municipality users.
			pr.Group(func(ar chi.Router) {
				ar.Use(guard.Require(auth.OpManageCompanies))
				ar.Route("/companies", func(cr chi.Router) {
					cr.Post("/", handlers.Company.Create)
					cr.Get("/", handlers.Company.List)
					cr.Get("/{id}", handlers.Company.Get)
					cr.Patch("/{id}", handlers.Company.Update)
					cr.Delete("/{id}", handlers.Company.Delete)
				})
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(guard.Require(auth.OpBrowseCatalog))
				ar.Get("/departments", handlers.Catalog.ListDepartments)
				ar.Get("/departments/{id}/roles", handlers.Catalog.ListDepartmentRoles)
				ar.Get("/roles", handlers.Catalog.ListRoleNames)
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(guard.Require(auth.OpManageMunicipalityUsers))
				ar.Route("/municipality-users", func(ur chi.Router) {
					ur.Post("/", handlers.User.Create)
					ur.Get("/", handlers.User.List)
					ur.Get("/{id}", handlers.User.Get)
					ur.Patch("/{id}", handlers.User.Update)
					ur.Delete("/{id}", handlers.User.Delete)
					ur.Post("/{id}/roles", handlers.User.AssignRole)
					ur.Put("/{id}/roles", handlers.User.ReplaceRoles)
					ur.Delete("/{id}/roles/{departmentRoleID}", handlers.User.RemoveRole)
				})
			})

			// Reports.
			pr.Route("/reports", func(rr chi.Router) {
				rr.Post("/", handlers.Report.Create)
				rr.Get("/", handlers.Report.List)
				rr.Get("/mine", handlers.Report.ListMine)
				rr.Get("/assigned-to-me", handlers.Report.ListAssignedToMe)
				rr.Post("/photos", handlers.Upload.UploadPhoto)

				rr.Group(func(gr chi.Router) {
					gr.Use(guard.Require(auth.OpViewPendingReports))
					gr.Get("/pending", handlers.Report.ListPending)
				})

				rr.Get("/{id}", handlers.Report.Get)
				rr.Patch("/{id}/status", handlers.Report.Transition)
				rr.Post("/{id}/delegate", handlers.Report.Delegate)

				rr.Group(func(gr chi.Router) {
					gr.Use(guard.Require(auth.OpApproveReport))
					gr.Patch("/{id}/approve", handlers.Report.Approve)
				})

				rr.Group(func(gr chi.Router) {
					gr.Use(guard.Require(auth.OpRejectReport))
					gr.Patch("/{id}/reject", handlers.Report.Reject)
				})

				// Messaging on a report.
				rr.Post("/{id}/messages", handlers.Messaging.SendMessage)
				rr.Get("/{id}/messages", handlers.Messaging.ListMessages)

				rr.Group(func(gr chi.Router) {
					gr.Use(guard.Require(auth.OpWriteInternalComment))
					gr.Post("/{id}/internal-comments", handlers.Messaging.AddInternalComment)
				})
				rr.Group(func(gr chi.Router) {
					gr.Use(guard.Require(auth.OpReadInternalComments))
					gr.Get("/{id}/internal-comments", handlers.Messaging.ListInternalComments)
				})
			})

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", handlers.Messaging.ListNotifications)
				nr.Patch("/{id}/read", handlers.Messaging.MarkNotificationRead)
			})
		})
	})
}
