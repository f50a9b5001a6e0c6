package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/openshelf-backend/api/controllers"
	"github.com/openshelf/openshelf-backend/api/middleware"
	"github.com/openshelf/openshelf-backend/internal/auth"
	"github.com/openshelf/openshelf-backend/internal/catalog"
	"github.com/openshelf/openshelf-backend/internal/loans"
	"github.com/openshelf/openshelf-backend/internal/members"
	"github.com/openshelf/openshelf-backend/internal/reviews"
	"github.com/openshelf/openshelf-backend/pkg/auth/session"
	"github.com/openshelf/openshelf-backend/pkg/config"
	"github.com/openshelf/openshelf-backend/pkg/db"
	"github.com/openshelf/openshelf-backend/pkg/logger"
	"github.com/openshelf/openshelf-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager session.AccessSessionChecker,
	authService auth.Service,
	catalogService catalog.Service,
	loanService loans.Service,
	reviewService reviews.Service,
	memberService members.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessionManager, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	// Self-service registration stays outside the authed group.
	r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
		Post("/api/v1/members", controllers.MemberRegister(memberService, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		admin := middleware.RequireAdmin(logg)

		r.Route("/v1/books", func(r chi.Router) {
			r.Get("/", controllers.BookList(catalogService, logg))
			r.With(admin).Post("/", controllers.BookCreate(catalogService, logg))
			r.Get("/{bookId}", controllers.BookDetail(catalogService, logg))
			r.With(admin).Patch("/{bookId}", controllers.BookUpdate(catalogService, logg))
			r.With(admin).Delete("/{bookId}", controllers.BookDelete(catalogService, logg))
			r.Route("/{bookId}/reviews", func(r chi.Router) {
				r.Get("/", controllers.ReviewList(reviewService, logg))
				r.Post("/", controllers.ReviewSubmit(reviewService, logg))
			})
		})

		r.Route("/v1/loans", func(r chi.Router) {
			r.Post("/", controllers.LoanIssue(loanService, logg))
			r.Post("/return", controllers.LoanReturn(loanService, logg))
			r.Get("/history/{memberId}", controllers.LoanHistory(loanService, logg))
			r.With(admin).Get("/overdue", controllers.LoanOverdueList(loanService, logg))
		})

		r.Route("/v1/members", func(r chi.Router) {
			r.With(admin).Get("/", controllers.MemberSearch(memberService, logg))
			r.Get("/me", controllers.MemberProfile(memberService, logg))
			r.Get("/{memberId}", controllers.MemberDetail(memberService, logg))
			r.Patch("/{memberId}", controllers.MemberUpdate(memberService, logg))
			r.Delete("/{memberId}", controllers.MemberDelete(memberService, logg))
		})
	})

	return r
}
