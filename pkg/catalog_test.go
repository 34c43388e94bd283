package pkg

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePokeAPI answers /pokemon/<id>/ with a record derived from the id.
func fakePokeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/pokemon/"), "/")
		if id == "404" || id == "missingno" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id": %s,
			"name": "pokemon-%s",
			"sprites": {"front_default": "https://sprites.example/%s.png"},
			"types": [{"type": {"name": "electric"}}, {"type": {"name": "flying"}}]
		}`, id, id, id)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestCatalogPokemon(t *testing.T) {
	srv := fakePokeAPI(t)
	client := NewCatalogClient(srv.URL, time.Second)

	card, err := client.Pokemon(context.Background(), "25")
	require.NoError(t, err)

	assert.Equal(t, 25, card.ID)
	assert.Equal(t, "pokemon-25", card.Name)
	assert.Equal(t, "https://sprites.example/25.png", card.Sprite)
	assert.Equal(t, []string{"electric", "flying"}, card.Types)
}

func TestCatalogPokemonNotFound(t *testing.T) {
	srv := fakePokeAPI(t)
	client := NewCatalogClient(srv.URL, time.Second)

	_, err := client.Pokemon(context.Background(), "missingno")
	require.ErrorIs(t, err, ErrPokemonNotFound)
}

func TestCatalogUnavailable(t *testing.T) {
	t.Run("upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		client := NewCatalogClient(srv.URL, time.Second)
		_, err := client.Pokemon(context.Background(), "25")
		require.ErrorIs(t, err, ErrCatalogUnavailable)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		client := NewCatalogClient(srv.URL, time.Second)
		_, err := client.Pokemon(context.Background(), "25")
		require.ErrorIs(t, err, ErrCatalogUnavailable)
	})
}

func TestCatalogRandomCardsAreDistinct(t *testing.T) {
	srv := fakePokeAPI(t)
	client := NewCatalogClient(srv.URL, time.Second)

	cards, err := client.RandomCards(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, cards, 6)

	seen := make(map[int]bool)
	for _, card := range cards {
		assert.False(t, seen[card.ID], "duplicate card %d", card.ID)
		seen[card.ID] = true
	}
}

func TestCatalogRandomCardsAbortsWhenUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewCatalogClient(srv.URL, time.Second)
	_, err := client.RandomCards(context.Background(), 6)
	require.ErrorIs(t, err, ErrCatalogUnavailable)
}
