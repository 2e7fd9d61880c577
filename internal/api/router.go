package api

import (
	"net/http"
	"time"

	"github.com/2sn/starfit-server/internal/api/handler"
	"github.com/2sn/starfit-server/internal/common/security"
	"github.com/2sn/starfit-server/internal/domain/catalog"
	"github.com/2sn/starfit-server/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	log "github.com/sirupsen/logrus"
)

// Services are the application services behind the HTTP routes.
type Services struct {
	Jobs        handler.JobSubmitter
	Queue       handler.JobLister
	Auth        handler.Authenticator
	Unsubscribe handler.Unsubscriber
	Catalog     *catalog.Catalog
}

// NewRouter mounts the web form, the unsubscribe link and the operator API.
// requestTimeout bounds interactive runs, which execute inside the request.
func NewRouter(s Services, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestLogger(&chiMiddleware.DefaultLogFormatter{Logger: log.StandardLogger(), NoColor: true}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(requestTimeout))

	// Puts claims in the context; routes that need them add Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/job", handler.NewJobHandler(s.Jobs).RegisterRoutes)
	r.Route("/unsubscribe", handler.NewUnsubscribeHandler(s.Unsubscribe).RegisterRoutes)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/auth", handler.NewAuthHandler(s.Auth).RegisterRoutes)
		v1.Route("/databases", handler.NewCatalogHandler(s.Catalog).RegisterRoutes)
		v1.Route("/jobs", handler.NewJobAdminHandler(s.Queue).RegisterRoutes)
	})

	return r
}
