package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(handler *CaptureHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", handler.HandleIndex).Methods("GET")
	r.HandleFunc("/capture", handler.HandleCapture).Methods("POST", "OPTIONS")
	r.HandleFunc("/capture/{source}", handler.HandleCapture).Methods("POST", "OPTIONS")
	r.HandleFunc("/pick", handler.HandlePick).Methods("POST", "OPTIONS")
	r.HandleFunc("/state", handler.HandleState).Methods("GET")
	r.HandleFunc("/state/image", handler.HandleStateImage).Methods("GET")
	r.HandleFunc("/alerts", handler.HandleAlerts).Methods("GET")
	r.HandleFunc("/ws", handler.HandleWebSocket).Methods("GET")
	r.HandleFunc("/healthz", handler.HandleHealth).Methods("GET")

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
