package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/eoffice/office-management/internal/auth"
	"github.com/eoffice/office-management/internal/requisition"
	"github.com/eoffice/office-management/internal/transport/middleware"
	"github.com/eoffice/office-management/internal/transport/swagger"
	"github.com/eoffice/office-management/internal/user"
	"github.com/go-chi/chi"
)

// RegisterAllRoutes wires every endpoint onto the router. Guards apply in
// order: authentication first, then the permission gate for the module the
// route belongs to. User administration sits behind MANAGE_USER, the item
// catalog behind MANAGE_REQUISITION_ITEM and the requisition workflow
// behind MANAGE_REQUISITION.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, allowedOrigins []string, authHandler *auth.Handler, userHandler *user.Handler, requisitionHandler *requisition.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	// Token endpoint takes form-encoded credentials and stays open.
	router.Post("/auth/token", authHandler.Login)

	router.Group(func(pr chi.Router) {
		pr.Use(authHandler.AuthMiddleware)

		pr.Get("/users/me", userHandler.GetCurrentUser)

		pr.Route("/users", func(ur chi.Router) {
			ur.Use(authHandler.RequirePermission(auth.PermManageUser))

			ur.Route("/teams", func(tr chi.Router) {
				tr.Post("/", userHandler.CreateTeam)
				tr.Get("/", userHandler.ListTeams)
				tr.Get("/{name}", userHandler.GetTeam)
				tr.Patch("/{name}", userHandler.UpdateTeam)
				tr.Delete("/{name}", userHandler.DeleteTeam)
			})

			ur.Route("/roles", func(rr chi.Router) {
				rr.Route("/permissions", func(rpr chi.Router) {
					rpr.Post("/", userHandler.CreateRolePermission)
					rpr.Get("/", userHandler.ListRolePermissions)
					rpr.Get("/{roleID}", userHandler.ListRolePermissionsByRole)
					rpr.Delete("/{roleID}/{permission}", userHandler.DeleteRolePermission)
				})

				rr.Post("/", userHandler.CreateRole)
				rr.Get("/", userHandler.ListRoles)
				rr.Patch("/{roleID}", userHandler.UpdateRole)
				rr.Delete("/{roleID}", userHandler.DeleteRole)
			})

			ur.Post("/", userHandler.CreateUser)
			ur.Get("/", userHandler.SearchUsers)
			ur.Get("/{username}", userHandler.GetUser)
			ur.Patch("/{username}", userHandler.UpdateUser)
			ur.Delete("/{username}", userHandler.DeleteUser)
		})

		pr.Route("/requisition", func(cr chi.Router) {
			cr.Use(authHandler.RequirePermission(auth.PermManageRequisitionItem))

			cr.Route("/item-types", func(tr chi.Router) {
				tr.Post("/", requisitionHandler.CreateItemType)
				tr.Get("/", requisitionHandler.ListItemTypes)
				tr.Get("/{typeID}", requisitionHandler.GetItemType)
				tr.Patch("/{typeID}", requisitionHandler.UpdateItemType)
				tr.Delete("/{typeID}", requisitionHandler.DeleteItemType)
			})

			cr.Route("/item-brands", func(br chi.Router) {
				br.Post("/", requisitionHandler.CreateItemBrand)
				br.Get("/", requisitionHandler.ListItemBrands)
				br.Get("/{brandID}", requisitionHandler.GetItemBrand)
				br.Patch("/{brandID}", requisitionHandler.UpdateItemBrand)
				br.Delete("/{brandID}", requisitionHandler.DeleteItemBrand)
			})

			cr.Route("/items", func(ir chi.Router) {
				ir.Post("/", requisitionHandler.CreateItem)
				ir.Get("/", requisitionHandler.ListItems)
				ir.Get("/{itemID}", requisitionHandler.GetItem)
				ir.Patch("/{itemID}", requisitionHandler.UpdateItem)
				ir.Delete("/{itemID}", requisitionHandler.DeleteItem)
			})
		})

		pr.Route("/requisitions", func(qr chi.Router) {
			qr.Use(authHandler.RequirePermission(auth.PermManageRequisition))

			qr.Post("/", requisitionHandler.CreateRequisition)
			qr.Get("/", requisitionHandler.ListRequisitions)
			qr.Get("/{requisitionID}", requisitionHandler.GetRequisition)
			qr.Patch("/{requisitionID}", requisitionHandler.TransitionRequisition)
			qr.Delete("/{requisitionID}", requisitionHandler.DeleteRequisition)
		})
	})
}
