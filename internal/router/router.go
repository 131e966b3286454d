package router // package router defines how HTTP routes are registered

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/cse-motors/dealership/internal/config"     // rate limit configuration
	"github.com/cse-motors/dealership/internal/handler"    // import the handlers that implement business logic
	"github.com/cse-motors/dealership/internal/middleware" // import middleware for session loading and role enforcement
)

// Deps bundles everything route registration needs.  Handlers arrive fully
// constructed; the router only decides which gate protects which path.
type Deps struct {
	Account   *handler.AccountHandler
	Inventory *handler.InventoryHandler
	Review    *handler.ReviewHandler
	JWTSecret string
	LoginRL   config.LoginLimitConfig
	Redis     *redis.Client
}

// RegisterRoutes wires the whole route surface onto the Echo instance.
//
// Session loading runs globally so every handler can read the verified
// claims (or nil for anonymous visitors).  Gates are layered per group:
// /account/* beyond login/register requires a session, /inv/* management
// requires Employee or Admin, and review mutations require login only -
// ownership is enforced in the service, not by role.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Verified session claims (or nil) become available to all routes below.
	e.Use(middleware.LoadSession(d.JWTSecret))

	// Home page: classification navigation plus any flash notice.
	e.GET("/", d.Inventory.Home)

	// --- Public catalog browsing ---
	e.GET("/inv/type/:classificationId", d.Inventory.ByClassification)
	e.GET("/inv/detail/:invId", d.Inventory.Detail)
	e.GET("/inv/getInventory/:classification_id", d.Inventory.InventoryJSON)
	e.GET("/reviews/:inv_id", d.Review.ReviewsJSON)

	// --- Account: anonymous entry points ---
	acct := e.Group("/account")
	acct.GET("/login", d.Account.LoginView)
	acct.POST("/login", d.Account.Login, middleware.NewLoginRateLimit(d.LoginRL, d.Redis))
	acct.GET("/register", d.Account.RegisterView)
	acct.POST("/register", d.Account.Register)
	acct.GET("/logout", d.Account.Logout)

	// --- Account: requires a valid session ---
	acctAuth := e.Group("/account", middleware.RequireLogin())
	acctAuth.GET("/", d.Account.Management)
	acctAuth.GET("/update/:account_id", d.Account.UpdateView)
	acctAuth.POST("/update", d.Account.Update)
	acctAuth.POST("/update-password", d.Account.UpdatePassword)

	// --- Inventory management: Employee or Admin only ---
	inv := e.Group("/inv", middleware.RequireStaff())
	inv.GET("/", d.Inventory.Management)
	inv.GET("/add-classification", d.Inventory.AddClassificationView)
	inv.POST("/add-classification", d.Inventory.AddClassification)
	inv.GET("/add-inventory", d.Inventory.AddInventoryView)
	inv.POST("/add-inventory", d.Inventory.AddInventory)
	inv.GET("/edit/:inv_id", d.Inventory.EditView)
	inv.POST("/update", d.Inventory.UpdateInventory)
	inv.GET("/delete/:inv_id", d.Inventory.DeleteView)
	inv.POST("/delete", d.Inventory.DeleteInventory)

	// --- Review mutations: any logged-in account ---
	// Role never substitutes for ownership here; the service compares the
	// verified account id against the stored review.
	rev := e.Group("/reviews", middleware.RequireLogin())
	rev.GET("/add/:inv_id", d.Review.AddView)
	rev.POST("/add", d.Review.Add)
	rev.GET("/edit/:review_id", d.Review.EditView)
	rev.POST("/update", d.Review.Update)
	rev.POST("/delete", d.Review.Delete)
}
