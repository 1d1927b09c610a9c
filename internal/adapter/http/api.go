package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/case-map-service/internal/domain"
	"github.com/couchcryptid/case-map-service/internal/provider"
	"github.com/couchcryptid/case-map-service/internal/view"
)

// DataProvider is the read side of the data provider used by the API.
type DataProvider interface {
	LatestCounts() (domain.LatestCounts, bool)
	Dates() []string
	Country(code string) (domain.Country, bool)
	LatestDataPerCountry() (map[string]int, bool)
	AtomicFeaturesByDay() map[string][]*geojson.Feature
	FetchCountryData(ctx context.Context, code string) ([]byte, error)
}

func (s *Server) handleClientConfig(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.deps.Client)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	counts, ok := s.deps.Data.LatestCounts()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "latest counts not loaded")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, counts)
}

func (s *Server) handleDates(w http.ResponseWriter, _ *http.Request) {
	dates := s.deps.Data.Dates()
	if dates == nil {
		dates = []string{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string][]string{"dates": dates})
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	perCapita, err := queryBool(r, "perCapita")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entries := []view.CountryEntry{}
	if latest, ok := s.deps.Data.LatestDataPerCountry(); ok {
		entries = view.BuildCountryList(latest, s.deps.Data, perCapita)
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"countries": entries})
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	body, err := s.deps.Data.FetchCountryData(r.Context(), r.PathValue("code"))
	switch {
	case errors.Is(err, provider.ErrInvalidCountryCode):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrNoData):
		writeError(w, http.StatusNotFound, "no data for country")
		return
	case err != nil:
		s.logger.Error("country data fetch failed", "code", r.PathValue("code"), "error", err)
		writeError(w, http.StatusBadGateway, "upstream fetch failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client may have gone away
}

// handleGraph pivots the loaded features into per-geoid series. The optional
// geoids parameter is a comma-separated filter; prop defaults to "total".
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	prop := r.URL.Query().Get("prop")
	if prop == "" {
		prop = "total"
	}
	byDate := s.deps.Data.AtomicFeaturesByDay()
	if raw := r.URL.Query().Get("geoids"); raw != "" {
		want := make(map[string]bool)
		for _, g := range strings.Split(raw, ",") {
			want[strings.TrimSpace(g)] = true
		}
		filtered := make(map[string][]*geojson.Feature, len(byDate))
		for date, features := range byDate {
			var keep []*geojson.Feature
			for _, f := range features {
				if g, _ := f.Properties["geoid"].(string); want[g] {
					keep = append(keep, f)
				}
			}
			filtered[date] = keep
		}
		byDate = filtered
	}
	sharedobs.WriteJSON(w, http.StatusOK, domain.ConvertFeaturesToGraphData(byDate, prop))
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("invalid " + key)
	}
	return v, nil
}

func queryFloat(r *http.Request, key string) (float64, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, errors.New("invalid " + key)
	}
	return v, true, nil
}
