package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/fichado-app/fichado-backend-go/internal/config"
	"github.com/fichado-app/fichado-backend-go/internal/handler/http/middleware"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg config.AppConfig,
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	geofenceHandler GeofenceHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "fichado-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", attendanceHandler.ClockIn)
				r.Post("/clock-out", attendanceHandler.ClockOut)
				r.Get("/me", attendanceHandler.GetMyShifts)
				r.Get("/status", attendanceHandler.Status)

				// Supervisor only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSupervisor)
					r.Get("/employees/{employeeID}", attendanceHandler.List)
				})
			})

			r.Route("/geofence", func(r chi.Router) {
				r.Get("/", geofenceHandler.Get)

				// Supervisor only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSupervisor)
					r.Post("/", geofenceHandler.Upsert)
				})
			})
		})
	})
	return r
}
