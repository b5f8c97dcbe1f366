package webserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"f1dashboard/log"
	"f1dashboard/pkg/dashboard"
	"f1dashboard/pkg/ergast"
	"f1dashboard/pkg/laps"
	"f1dashboard/pkg/pager"
	"f1dashboard/pkg/telemetry"
)

const firstSeason = 1950

var templateFuncs = template.FuncMap{
	"stateClass": func(s ergast.State) string {
		switch s {
		case ergast.StateInProgress:
			return "in-progress"
		case ergast.StateUpcoming:
			return "upcoming"
		default:
			return "past"
		}
	},
	"color": func(c string) template.CSS {
		if c == "" {
			return "inherit"
		}
		return template.CSS("#" + c)
	},
}

func vars(r *http.Request) (season, round int) {
	v := mux.Vars(r)
	season, _ = strconv.Atoi(v["season"])
	round, _ = strconv.Atoi(v["round"])
	return season, round
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ergast.ErrRoundNotFound), errors.Is(err, telemetry.ErrDataNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var b bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		log.Error("rendering template", log.String("template", name), log.ErrorField(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = b.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status != http.StatusNotFound {
		log.Warn("page failed", log.String("path", r.URL.Path), log.ErrorField(err))
	}
	w.WriteHeader(status)
	_ = s.tmpl.ExecuteTemplate(w, "error", map[string]any{
		"Status":  status,
		"Message": http.StatusText(status),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		status := statusOf(err)
		if status != http.StatusNotFound {
			log.Warn("api failed", log.String("path", r.URL.Path), log.ErrorField(err))
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) currentSeasonPage(w http.ResponseWriter, r *http.Request) {
	s.renderSeason(w, r, s.pages.CurrentSeason())
}

func (s *Server) seasonsPage(w http.ResponseWriter, r *http.Request) {
	current := s.pages.CurrentSeason()
	seasons := make([]int, 0, current-firstSeason+1)
	for y := current; y >= firstSeason; y-- {
		seasons = append(seasons, y)
	}
	s.render(w, "seasons", map[string]any{"Current": current, "Seasons": seasons})
}

func (s *Server) seasonPage(w http.ResponseWriter, r *http.Request) {
	season, _ := vars(r)
	s.renderSeason(w, r, season)
}

func (s *Server) renderSeason(w http.ResponseWriter, r *http.Request, season int) {
	page, err := s.pages.Season(r.Context(), season)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, "season", page)
}

func (s *Server) roundPage(w http.ResponseWriter, r *http.Request) {
	season, round := vars(r)
	page, err := s.pages.Round(r.Context(), season, round)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, "round", page)
}

func (s *Server) qualifyingPage(w http.ResponseWriter, r *http.Request) {
	season, round := vars(r)
	page, err := s.pages.Qualifying(r.Context(), season, round)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, "quali", page)
}

func (s *Server) racePage(w http.ResponseWriter, r *http.Request) {
	season, round := vars(r)
	page, err := s.pages.Race(r.Context(), season, round)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, "race", page)
}

type pagerLink struct {
	Label    string
	URL      string
	Active   bool
	Disabled bool
}

type driverLink struct {
	Code   string
	URL    string
	Color  string
	Active bool
}

type statsView struct {
	dashboard.StatsPage
	Mode      string
	ModeLinks []pagerLink
	Lap       int
	Pager     []pagerLink
	Selected  laps.DriverLaps
	Links     []driverLink
	Rows      []dashboard.LapRow
}

func statsURL(season, round int, q url.Values) string {
	return fmt.Sprintf("/%d/%d/race/stats?%s", season, round, q.Encode())
}

// newStatsView resolves the mode, driver and lap query parameters of the
// stats page. Unknown modes fall back to driver mode.
func newStatsView(page dashboard.StatsPage, q url.Values) statsView {
	v := statsView{StatsPage: page, Mode: q.Get("mode")}
	if v.Mode != dashboard.ModeLap {
		v.Mode = dashboard.ModeDriver
	}
	link := func(params ...string) string {
		values := url.Values{}
		for i := 0; i+1 < len(params); i += 2 {
			values.Set(params[i], params[i+1])
		}
		return statsURL(page.Season, page.Round, values)
	}
	v.ModeLinks = []pagerLink{
		{Label: dashboard.ModeDriver, URL: link("mode", dashboard.ModeDriver), Active: v.Mode == dashboard.ModeDriver},
		{Label: dashboard.ModeLap, URL: link("mode", dashboard.ModeLap), Active: v.Mode == dashboard.ModeLap},
	}

	if v.Mode == dashboard.ModeLap {
		lap, err := strconv.Atoi(q.Get("lap"))
		if err != nil {
			lap = 1
		}
		v.Lap = pager.Clamp(lap, 1, max(1, page.TotalLaps))
		if snap, ok := laps.ForLap(page.Laps, v.Lap); ok {
			v.Rows = dashboard.LapRows(snap)
		}
		v.Pager = lo.Map(pager.LapWindow(v.Lap, page.TotalLaps), func(item pager.Item, _ int) pagerLink {
			pl := pagerLink{Active: item.Active, URL: link("mode", dashboard.ModeLap, "lap", strconv.Itoa(item.Page))}
			switch item.Kind {
			case pager.KindFirst:
				pl.Label = "«"
			case pager.KindPrev:
				pl.Label = "‹"
				pl.Disabled = v.Lap == 1
			case pager.KindEllipsis:
				pl.Label = "…"
				pl.URL = ""
				pl.Disabled = true
			case pager.KindPage:
				pl.Label = strconv.Itoa(item.Page)
			case pager.KindNext:
				pl.Label = "›"
				pl.Disabled = v.Lap == page.TotalLaps
			case pager.KindLast:
				pl.Label = "»"
			}
			return pl
		})
		return v
	}

	number := q.Get("driver")
	if number == "" {
		number = page.DefaultDriver()
	}
	dl, ok := page.Driver(number)
	if !ok {
		// unknown car numbers show the winner
		dl, ok = page.Driver(page.DefaultDriver())
	}
	if ok {
		v.Selected = dl
		v.Rows = dashboard.DriverRows(dl)
	}
	v.Links = lo.Map(page.DriverLaps, func(dl laps.DriverLaps, _ int) driverLink {
		code := dl.Code
		if code == "" {
			code = dl.Number
		}
		return driverLink{
			Code:   code,
			Color:  dl.TeamColor,
			URL:    link("mode", dashboard.ModeDriver, "driver", dl.Number),
			Active: dl.Number == v.Selected.Number,
		}
	})
	return v
}

func (s *Server) statsPage(w http.ResponseWriter, r *http.Request) {
	season, round := vars(r)
	page, err := s.pages.Stats(r.Context(), season, round)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, "stats", newStatsView(page, r.URL.Query()))
}

func (s *Server) livePage(w http.ResponseWriter, r *http.Request) {
	b, ok := s.live.Board()
	s.render(w, "live", map[string]any{"Board": b, "Live": ok})
}

func (s *Server) apiSeason(w http.ResponseWriter, r *http.Request) {
	season, _ := vars(r)
	page, err := s.pages.Season(r.Context(), season)
	s.writeJSON(w, r, page, err)
}

func (s *Server) apiRound(w http.ResponseWriter, r *http.Request) {
	season, round := vars(r)
	page, err := s.pages.Round(r.Context(), season, round)
	s.writeJSON(w, r, page, err)
}

func (s *Server) apiQualifying(w http.ResponseWriter, r *http.Request) {
	season, round := vars(r)
	page, err := s.pages.Qualifying(r.Context(), season, round)
	s.writeJSON(w, r, page, err)
}

func (s *Server) apiRace(w http.ResponseWriter, r *http.Request) {
	season, round := vars(r)
	page, err := s.pages.Race(r.Context(), season, round)
	s.writeJSON(w, r, page, err)
}

func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
	season, round := vars(r)
	page, err := s.pages.Stats(r.Context(), season, round)
	s.writeJSON(w, r, page, err)
}

func (s *Server) apiLive(w http.ResponseWriter, r *http.Request) {
	b, ok := s.live.Board()
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, r, b, nil)
}
