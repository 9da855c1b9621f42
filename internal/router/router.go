package router

import (
	"net/http"

	"github.com/Dias221467/Habit_Tracker/internal/handlers"
	"github.com/Dias221467/Habit_Tracker/internal/metrics"
	"github.com/Dias221467/Habit_Tracker/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// NewRouter registers the habit routes, /metrics and the middleware chain.
func NewRouter(habitHandler *handlers.HabitHandler, m *metrics.Metrics) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", habitHandler.RootHandler).Methods(http.MethodGet)

	// Habit routes
	router.HandleFunc("/habits", habitHandler.CreateHabitHandler).Methods(http.MethodPost)
	router.HandleFunc("/habits", habitHandler.GetHabitsHandler).Methods(http.MethodGet)
	router.HandleFunc("/habits/{id}", habitHandler.GetHabitHandler).Methods(http.MethodGet)
	router.HandleFunc("/habits/{id}", habitHandler.UpdateHabitHandler).Methods(http.MethodPatch)
	router.HandleFunc("/habits/{id}", habitHandler.DeleteHabitHandler).Methods(http.MethodDelete)
	router.HandleFunc("/habits/{id}/complete", habitHandler.CompleteHabitHandler).Methods(http.MethodPatch)
	router.HandleFunc("/my-habits", habitHandler.GetMyHabitsHandler).Methods(http.MethodGet)
	router.HandleFunc("/public-habits", habitHandler.GetPublicHabitsHandler).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.MetricsMiddleware(m))

	return router
}

// WithCORS wraps h with the cross-origin policy for the given origins. A
// wildcard origin also accepts any request header.
func WithCORS(h http.Handler, origins []string) http.Handler {
	headers := []string{"Content-Type", middleware.RequestIDHeader}
	for _, o := range origins {
		if o == "*" {
			headers = []string{"*"}
			break
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: headers,
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})
	return c.Handler(h)
}
