package httpserver

import (
	"log"
	"net/http"

	"github.com/govind/worker-portal-back/internal/http/handlers"
	"github.com/govind/worker-portal-back/internal/http/middleware"
)

type RouterDependencies struct {
	API            *handlers.API
	Logger         *log.Logger
	AuthToken      string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", deps.API.Health)
	mux.HandleFunc("/jobs", deps.API.Jobs)
	mux.HandleFunc("/workers", deps.API.Workers)
	mux.HandleFunc("/workers/register", deps.API.RegisterWorker)
	mux.HandleFunc("/workers/otp", deps.API.BeginVerification)
	mux.HandleFunc("/workers/verify", deps.API.VerifyWorker)
	mux.HandleFunc("/workers/events", deps.API.WorkerEvents)
	mux.HandleFunc("/complaints", deps.API.Complaints)

	handler := http.Handler(mux)
	handler = middleware.Auth(deps.AuthToken)(handler)
	handler = middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst)(handler)
	handler = middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: deps.CORSOrigins,
	})(handler)
	handler = middleware.Trace(deps.Logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
