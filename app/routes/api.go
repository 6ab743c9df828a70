// Package routes registers the HTTP surface.
package routes

import (
	"net/http"

	gql "github.com/graphql-go/graphql"

	"github.com/plantnet/plantnet/app/controllers"
	"github.com/plantnet/plantnet/app/services"
	"github.com/plantnet/plantnet/pkg/auth"
	"github.com/plantnet/plantnet/pkg/ctx"
	"github.com/plantnet/plantnet/pkg/graphql"
	"github.com/plantnet/plantnet/pkg/metrics"
	"github.com/plantnet/plantnet/pkg/middleware"
	"github.com/plantnet/plantnet/pkg/rbac"
	"github.com/plantnet/plantnet/pkg/router"
)

// Deps is everything the route table needs.
type Deps struct {
	Services     *services.Services
	Issuer       *auth.TokenIssuer
	SecureCookie bool

	// Catalog is served on POST /graphql when non-nil.
	Catalog *gql.Schema

	// LocalFiles is the directory served under /storage. Empty disables it.
	LocalFiles string
}

func RegisterAPI(r *router.Router, d Deps) {
	authController := controllers.NewAuthController(d.Issuer, d.SecureCookie)
	userController := controllers.NewUserController(d.Services.Users)
	plantController := controllers.NewPlantController(d.Services.Plants)
	orderController := controllers.NewOrderController(d.Services.Orders)

	session := middleware.Authenticate(d.Issuer)
	requireAdmin := rbac.RequireAdmin(d.Services.Users)
	requireSeller := rbac.RequireSeller(d.Services.Users)

	r.Get("/", "home", ctx.Wrap(controllers.Home))
	r.Get("/metrics", "metrics", metrics.Handler())

	r.Post("/jwt", "auth.token", ctx.Wrap(authController.IssueToken))
	r.Get("/logout", "auth.logout", ctx.Wrap(authController.Logout))

	r.Post("/users/{email}", "users.register", ctx.Wrap(userController.Register))
	r.Get("/users/role/{email}", "users.role", ctx.Wrap(userController.Role))

	r.Get("/plants", "plants.index", ctx.Wrap(plantController.Index))
	r.Get("/plants/{id}", "plants.show", ctx.Wrap(plantController.Show))

	if d.Catalog != nil {
		r.Post("/graphql", "graphql", ctx.Wrap(graphql.Handler(*d.Catalog)))
	}
	if d.LocalFiles != "" {
		files := http.StripPrefix("/storage/", http.FileServer(http.Dir(d.LocalFiles)))
		r.Get("/storage/*", "storage.files", files.ServeHTTP)
	}

	authed := r.Group("", session)
	authed.Patch("/users/{email}", "users.request", ctx.Wrap(userController.RequestUpgrade))
	authed.Post("/order", "orders.place", ctx.Wrap(orderController.Place))
	authed.Post("/orders/checkout", "orders.checkout", ctx.Wrap(orderController.Checkout))
	authed.Patch("/plants/quantity/{id}", "plants.quantity", ctx.Wrap(plantController.AdjustQuantity))
	authed.Get("/customer-orders/{email}", "orders.customer", ctx.Wrap(orderController.CustomerOrders))
	authed.Delete("/orders/{id}", "orders.cancel", ctx.Wrap(orderController.Cancel))

	admin := authed.Group("", requireAdmin)
	admin.Get("/all-users/{email}", "users.index", ctx.Wrap(userController.Index))
	admin.Patch("/user/role/{email}", "users.grant", ctx.Wrap(userController.GrantRole))

	seller := authed.Group("", requireSeller)
	seller.Get("/plants/seller", "plants.inventory", ctx.Wrap(plantController.Inventory))
	seller.Post("/plants", "plants.store", ctx.Wrap(plantController.Store))
	seller.Post("/plants/image", "plants.image", ctx.Wrap(plantController.UploadImage))
	seller.Delete("/plants/{id}", "plants.destroy", ctx.Wrap(plantController.Destroy))
	seller.Get("/seller-orders/{email}", "orders.seller", ctx.Wrap(orderController.SellerOrders))
	seller.Patch("/orders/{id}", "orders.status", ctx.Wrap(orderController.UpdateStatus))
}
