package pkg

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// cardsPerHand is how many random cards one catalog request returns.
const cardsPerHand = 6

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// API serves the REST surface in front of the catalog client.
type API struct {
	catalog *CatalogClient
}

func NewAPI(catalog *CatalogClient) *API {
	return &API{catalog: catalog}
}

// CardsHandler returns a fresh hand of random cards.
func (a *API) CardsHandler(w http.ResponseWriter, r *http.Request) {
	cards, err := a.catalog.RandomCards(r.Context(), cardsPerHand)
	if err != nil {
		log.Error("Failed to fetch cards: ", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: "Internal server error while fetching cards.",
		})
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Pokemon cards fetched successfully.",
		Data:    cards,
	})
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
}

// CORSMiddleware mirrors the permissive headers the game frontend expects.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers",
			"Origin, X-Requested-With, Content-Type, Accept")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response: ", err)
	}
}
