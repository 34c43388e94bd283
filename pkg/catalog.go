package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultCatalogBaseURL is the public PokeAPI endpoint.
	DefaultCatalogBaseURL = "https://pokeapi.co/api/v2"

	// maxPokemonID bounds the random draw; PokeAPI currently serves roughly
	// this many Pokémon.
	maxPokemonID = 1025
)

// Card is the simplified catalog record served to clients and carried inside
// card_play payloads.
type Card struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Sprite string   `json:"sprite,omitempty"`
	Types  []string `json:"types,omitempty"`
}

// CatalogClient fetches Pokémon records from PokeAPI and normalizes them to
// Card. It is stateless and safe for concurrent use.
type CatalogClient struct {
	baseURL string
	client  *http.Client
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	if baseURL == "" {
		baseURL = DefaultCatalogBaseURL
	}
	return &CatalogClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Pokemon fetches one record by numeric ID or name. Unknown identifiers map
// to ErrPokemonNotFound; transport failures and upstream errors map to
// ErrCatalogUnavailable.
func (c *CatalogClient) Pokemon(ctx context.Context, identifier string) (*Card, error) {
	url := fmt.Sprintf("%s/pokemon/%s/", c.baseURL, identifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch pokemon %s: %w", identifier, ErrCatalogUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetch pokemon %s: %w", identifier, ErrPokemonNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch pokemon %s: status %d: %w",
			identifier, resp.StatusCode, ErrCatalogUnavailable)
	}

	var payload struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Sprites struct {
			FrontDefault string `json:"front_default"`
		} `json:"sprites"`
		Types []struct {
			Type struct {
				Name string `json:"name"`
			} `json:"type"`
		} `json:"types"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode pokemon %s: %w", identifier, err)
	}

	types := make([]string, 0, len(payload.Types))
	for _, t := range payload.Types {
		types = append(types, t.Type.Name)
	}

	return &Card{
		ID:     payload.ID,
		Name:   payload.Name,
		Sprite: payload.Sprites.FrontDefault,
		Types:  types,
	}, nil
}

// RandomCards draws n distinct random Pokémon. Individual lookup failures are
// logged and skipped; the draw aborts only when the catalog is unreachable.
func (c *CatalogClient) RandomCards(ctx context.Context, n int) ([]*Card, error) {
	cards := make([]*Card, 0, n)
	drawn := make(map[int]bool)

	for len(cards) < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := rand.Intn(maxPokemonID) + 1
		if drawn[id] {
			continue
		}
		drawn[id] = true

		card, err := c.Pokemon(ctx, fmt.Sprintf("%d", id))
		if err != nil {
			if errors.Is(err, ErrCatalogUnavailable) {
				return nil, err
			}
			log.Warn("Skipping pokemon ", id, ": ", err)
			continue
		}

		cards = append(cards, card)
	}

	return cards, nil
}
