package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/fitspark/internal/http/handlers"
	"github.com/geocoder89/fitspark/internal/http/middlewares"
	"github.com/geocoder89/fitspark/internal/http/views"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	serviceName  = "fitspark-web"
	maxBodyBytes = 1 << 20

	// Login, signup and contact posts per client per window.
	formPostLimit  = 10
	formPostWindow = time.Minute
)

type RouterDeps struct {
	handlers.Deps

	// Gatherer serves /metrics. Nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
	// Health serves the probes. Nil gets one with no readiness dependency.
	Health *handlers.HealthHandler
	// ReleaseMode switches gin out of debug mode.
	ReleaseMode bool
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := gin.New()
	r.HTMLRender = views.MustNew()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(d.Sessions.Middleware())

	r.StaticFS("/static", views.Static())

	// health
	health := d.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	base := handlers.NewBase(d.Deps)
	pages := handlers.NewPagesHandler(base)
	auth := handlers.NewAuthHandler(base)
	browse := handlers.NewBrowseHandler(base)
	admin := handlers.NewAdminHandler(base)
	recipes := handlers.NewRecipeEditor(base)
	mealPlans := handlers.NewMealPlanEditor(base)

	limiter := middlewares.NewRateLimiter(formPostLimit, formPostWindow)
	throttle := limiter.RateLimiterMiddleware(middlewares.KeyByIP)

	// public pages
	r.GET("/", pages.Home)
	r.GET("/about", pages.About)
	r.GET("/contact", pages.ContactForm)
	r.POST("/contact", throttle, pages.Contact)

	r.GET("/login", auth.LoginForm)
	r.POST("/login", throttle, auth.Login)
	r.POST("/api/login", throttle, middlewares.RequireJSON(), auth.APILogin)
	r.GET("/signup", auth.SignUpForm)
	r.POST("/signup", throttle, auth.SignUp)
	r.GET("/logout", auth.LogoutForm)
	r.POST("/logout", auth.Logout)

	r.GET("/recipes", browse.ListRecipes)
	r.GET("/recipes/:id", browse.GetRecipe)
	r.GET("/meal-plans", browse.ListMealPlans)
	r.GET("/meal-plans/:id", browse.GetMealPlan)

	r.GET("/profile", middlewares.RequireLogin(), auth.Profile)

	// back office
	a := r.Group("/admin", middlewares.RequireAdmin())
	{
		a.GET("", admin.Dashboard)
		a.GET("/site-content", pages.SiteContent)

		a.GET("/users", admin.Users)
		a.GET("/users/new", admin.NewUser)
		a.POST("/users", admin.CreateUser)
		a.GET("/users/:id/edit", admin.EditUser)
		a.POST("/users/:id", admin.UpdateUser)
		a.POST("/users/:id/delete", admin.DeleteUser)

		a.GET("/recipes", admin.Recipes)
		a.GET("/recipes/new", recipes.New)
		a.GET("/recipes/:id/edit", recipes.Edit)
		a.POST("/recipes/:id/delete", admin.DeleteRecipe)
		a.GET("/recipes/drafts/:draft", recipes.Show)
		a.POST("/recipes/drafts/:draft", recipes.Post)

		a.GET("/meal-plans", admin.MealPlans)
		a.GET("/meal-plans/new", mealPlans.New)
		a.GET("/meal-plans/:id/edit", mealPlans.Edit)
		a.POST("/meal-plans/:id/delete", admin.DeleteMealPlan)
		a.GET("/meal-plans/drafts/:draft", mealPlans.Show)
		a.POST("/meal-plans/drafts/:draft", mealPlans.Post)
	}

	r.NoRoute(pages.NotFound)

	return r
}
