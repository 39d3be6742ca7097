// ABOUTME: Tests for the place, category and token tools
// ABOUTME: Checks output shapes, filters and error envelopes

package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/rently-gateway/internal/rently"
)

func iata(s string) *string { return &s }

func testPlaces() []rently.Place {
	return []rently.Place{
		{
			AvailableReturnPlaces: []int{1, 2},
			PlaceDetails: rently.PlaceDetails{
				ID: 1, Name: "Oficina Centro", Category: "Oficinas",
				Address: "Av. Corrientes 1234", City: "Buenos Aires", Country: "Argentina",
				AvailableOperationOptions: "Entrega y devolución",
				Latitude:                  -34.6, Longitude: -58.4,
			},
		},
		{
			PlaceDetails: rently.PlaceDetails{
				ID: 2, Name: "Aeroparque", Category: "Aeropuerto", Price: 1500,
				Address: "Av. Costanera", City: "Buenos Aires", Country: "Argentina",
				BranchOfficeIATACode: iata("AEP"),
			},
		},
		{
			PlaceDetails: rently.PlaceDetails{
				ID: 3, Name: "Oficina Córdoba", Category: "Oficinas",
				City: "Córdoba", Country: "Argentina",
			},
		},
	}
}

func TestGetPlaces_Formatted(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{places: testPlaces()[:2]})

	res := env.call(t, "get_places", nil)
	require.False(t, res.IsError)

	want := "### Oficina Centro (id: 1)\n" +
		"Dirección: Av. Corrientes 1234 — Ciudad: Buenos Aires — País: Argentina — Lugares de devolución (IDs): 1, 2\n" +
		"Categoría: Oficinas — Precio: Gratis\n" +
		"Opciones disponibles: Entrega y devolución\n" +
		"\n" +
		"### Aeroparque (id: 2)\n" +
		"Dirección: Av. Costanera — Ciudad: Buenos Aires — País: Argentina — Lugares de devolución (IDs): No disponibles\n" +
		"Categoría: Aeropuerto — Precio: $1500\n" +
		"Opciones disponibles: \n"
	assert.Equal(t, want, res.Text())
}

func TestGetPlaces_Raw(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{places: testPlaces()[:1]})

	res := env.call(t, "get_places", map[string]any{"format": "raw"})
	require.False(t, res.IsError)
	assert.Contains(t, res.Text(), `"Name": "Oficina Centro"`)
	assert.Contains(t, res.Text(), `"AvailableReturnPlaces": [`)
}

func TestGetPlaces_UpstreamError(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{err: &rently.HTTPError{Status: 500, StatusText: "Internal Server Error"}})

	res := env.call(t, "get_places", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: HTTP Error 500: Internal Server Error", res.Text())
}

func TestRentlyGetPlaces_Filters(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{places: testPlaces()})

	res := env.call(t, "rently_get_places", map[string]any{"category": "Oficinas", "city": "buenos"})
	require.False(t, res.IsError)

	out := decodeText(t, res)
	assert.Equal(t, float64(1), out["total"])
	assert.Equal(t, map[string]any{"category": "Oficinas", "city": "buenos", "includeCoordinates": false}, out["filters"])

	places := out["places"].([]any)
	require.Len(t, places, 1)
	first := places[0].(map[string]any)
	assert.Equal(t, "Oficina Centro", first["name"])
	assert.NotContains(t, first, "coordinates")
}

func TestRentlyGetPlaces_Coordinates(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{places: testPlaces()})

	out := decodeText(t, env.call(t, "rently_get_places", map[string]any{"includeCoordinates": true}))
	assert.Equal(t, float64(3), out["total"])
	assert.Equal(t, map[string]any{"category": "all", "city": "all", "includeCoordinates": true}, out["filters"])

	places := out["places"].([]any)
	assert.Equal(t, map[string]any{"latitude": -34.6, "longitude": -58.4}, places[0].(map[string]any)["coordinates"])
	assert.NotContains(t, places[1].(map[string]any), "coordinates")
	assert.Equal(t, "AEP", places[1].(map[string]any)["iataCode"])
}

func TestRentlyGetPlaces_RejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{places: testPlaces()})

	res := env.call(t, "rently_get_places", map[string]any{"category": "Estaciones"})
	assert.True(t, res.IsError)
}

func TestRentlyGetPlaces_UpstreamError(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{err: &rently.HTTPError{Status: 503, StatusText: "Service Unavailable"}})

	res := env.call(t, "rently_get_places", nil)
	require.True(t, res.IsError)
	out := decodeText(t, res)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "rently_get_places", out["tool"])
	assert.Contains(t, out["error"], "HTTP Error 503")
}

func TestGetCategories(t *testing.T) {
	up := &fakeUpstream{categories: []rently.Category{
		{
			CategoryInfo: rently.CategoryInfo{ID: 7, Name: "Sedan"},
			Models: []rently.Model{
				{ID: 70, Description: "  Toyota Corolla  ", Brand: rently.Brand{Name: "Toyota"}, Doors: 4, Passengers: 5, Gearbox: "Automática", Franchises: rently.Franchises{Franchise: 250000}},
				{ID: 71, Description: "Fiat Cronos"},
			},
		},
		{CategoryInfo: rently.CategoryInfo{ID: 8, Name: "Vacía"}},
	}}
	env := newTestEnv(t, up)

	var out []map[string]any
	res := env.call(t, "get_categories", nil)
	require.False(t, res.IsError)
	require.NoError(t, jsonUnmarshal(res.Text(), &out))
	require.Len(t, out, 2)

	assert.Equal(t, "Sedan", out[0]["categoryName"])
	assert.Equal(t, float64(2), out[0]["vehicleCount"])
	autos := out[0]["autos"].([]any)
	corolla := autos[0].(map[string]any)
	assert.Equal(t, "Toyota Corolla", corolla["name"])
	assert.Equal(t, "Toyota", corolla["brand"])
	assert.Equal(t, "–", corolla["steering"])
	assert.Equal(t, "Automática", corolla["gearbox"])
	assert.Equal(t, float64(250000), corolla["franchise"])
	assert.Equal(t, "-", autos[1].(map[string]any)["brand"])

	assert.Equal(t, []any{}, out[1]["autos"])

	var noDetails []map[string]any
	res = env.call(t, "get_categories", map[string]any{"includeDetails": false})
	require.NoError(t, jsonUnmarshal(res.Text(), &noDetails))
	require.Len(t, noDetails, 2)
	assert.NotContains(t, noDetails[0], "autos")
	assert.Equal(t, "Sedan", noDetails[0]["categoryName"])
}

func TestGetAuthToken(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{token: "fresh-token"})

	out := decodeText(t, env.call(t, "get_auth_token", nil))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "fresh-token", out["token"])
	assert.Equal(t, "Token obtained successfully using client_credentials grant", out["message"])
}

func TestGetAuthToken_Failure(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{err: &rently.AuthenticationError{Status: 401, StatusText: "Unauthorized", Body: "bad client"}})

	res := env.call(t, "get_auth_token", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "Error: ")
}
