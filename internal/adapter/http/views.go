package http

import (
	"context"
	"errors"
	"math"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/case-map-service/internal/view/mapview"
	"github.com/couchcryptid/case-map-service/internal/view/rank"
)

func (s *Server) handleViews(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"views": s.deps.Views.List()})
}

// handleActivateView switches views, fetches what the new view needs and
// returns its first frame.
func (s *Server) handleActivateView(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Views.Activate(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := v.FetchData(r.Context()); err != nil {
		s.logger.Warn("view data fetch failed", "view", v.ID(), "error", err)
	}
	s.render(w, v.Render)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	dark, err := queryBool(r, "dark")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.deps.Views.SetTheme(dark)
	sharedobs.WriteJSON(w, http.StatusOK, map[string]bool{"dark": dark})
}

func (s *Server) render(w http.ResponseWriter, fn func() (any, error)) {
	frame, err := fn()
	if err != nil {
		s.logger.Error("render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, frame)
}

func (s *Server) handleMapScene(w http.ResponseWriter, _ *http.Request) {
	s.render(w, s.deps.Map.Render)
}

func (s *Server) handleMapDate(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if date == "latest" {
		s.deps.Map.ShowDataAtLatestDate()
	} else {
		s.deps.Map.ShowDataAtDate(date)
	}
	s.render(w, s.deps.Map.Render)
}

func (s *Server) handleMapStyle(w http.ResponseWriter, r *http.Request) {
	dark, err := queryBool(r, "dark")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.deps.Map.SetStyle(dark)
	s.render(w, s.deps.Map.Render)
}

func (s *Server) handleMapFly(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Map.FlyToCountry(r.PathValue("code")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.render(w, s.deps.Map.Render)
}

func (s *Server) handleMapPopup(w http.ResponseWriter, r *http.Request) {
	geoid := r.URL.Query().Get("geoid")
	if geoid == "" {
		writeError(w, http.StatusBadRequest, "geoid is required")
		return
	}
	lng, _, err := queryFloat(r, "lng")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	history, err := queryBool(r, "history")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	popup, err := s.deps.Map.Popup(geoid, lng, history)
	if errors.Is(err, mapview.ErrUnknownFeature) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, popup)
}

func (s *Server) handleMapLegend(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"legend": s.deps.Map.Legend()})
}

// handleMapAnimate toggles the date animation. The animation outlives the request.
func (s *Server) handleMapAnimate(w http.ResponseWriter, r *http.Request) {
	running := s.deps.Animator.Toggle(context.WithoutCancel(r.Context()))
	sharedobs.WriteJSON(w, http.StatusOK, map[string]bool{"running": running})
}

// handleRank renders the rank view. width sets the longest bar in pixels;
// metric is "cases" or "deaths".
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	width, ok, err := queryFloat(r, "width")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ok {
		s.deps.Rank.SetMaxWidth(int(max(min(width, math.MaxInt32), 0)))
	}
	if raw := r.URL.Query().Get("metric"); raw != "" {
		m, err := rank.ParseMetric(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.deps.Rank.SetMetric(m)
	}
	s.render(w, s.deps.Rank.Render)
}

// handleRankScroll moves the rank cursor from a wheel or touch gesture.
// Exactly one of wheel (deltaY) or touch (drag delta) is expected.
func (s *Server) handleRankScroll(w http.ResponseWriter, r *http.Request) {
	wheel, hasWheel, err := queryFloat(r, "wheel")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	touch, hasTouch, err := queryFloat(r, "touch")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch {
	case hasWheel && !hasTouch:
		sharedobs.WriteJSON(w, http.StatusOK, s.deps.Rank.Wheel(wheel))
	case hasTouch && !hasWheel:
		sharedobs.WriteJSON(w, http.StatusOK, s.deps.Rank.TouchMove(touch))
	default:
		writeError(w, http.StatusBadRequest, "exactly one of wheel or touch is required")
	}
}

func (s *Server) handleSync(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.deps.Sync.Chart())
}
