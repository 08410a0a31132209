package controller

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xyz-retail/salespipe/app/query/types"
)

type Controller struct {
	App *types.App
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	return &Controller{
		App: app,
	}
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods(http.MethodGet)
	r.HandleFunc("/schema", c.HandleSchema).Methods(http.MethodGet)

	r.HandleFunc("/gold/daily-sales", c.HandleDailySales).Methods(http.MethodGet)
	r.HandleFunc("/gold/customers", c.HandleCustomers).Methods(http.MethodGet)
	r.HandleFunc("/gold/customers/{name}", c.HandleCustomerByName).Methods(http.MethodGet)

	r.HandleFunc("/dims/locations", c.HandleDimLocations).Methods(http.MethodGet)
	r.HandleFunc("/dims/customers", c.HandleDimCustomers).Methods(http.MethodGet)
	r.HandleFunc("/dims/products", c.HandleDimProducts).Methods(http.MethodGet)
	r.HandleFunc("/dims/dates", c.HandleDimDates).Methods(http.MethodGet)

	r.HandleFunc("/facts", c.HandleFacts).Methods(http.MethodGet)

	r.HandleFunc("/runs", c.HandleRuns).Methods(http.MethodGet)
	r.HandleFunc("/runs/latest", c.HandleLatestRun).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}", c.HandleRunByID).Methods(http.MethodGet)

	r.HandleFunc("/files", c.HandleFiles).Methods(http.MethodGet)

	r.HandleFunc("/ws/runs", c.HandleWebSocket)

	return r, nil
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type pagedResponse[T any] struct {
	Data   []T    `json:"data"`
	Limit  uint64 `json:"limit"`
	Offset uint64 `json:"offset"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
