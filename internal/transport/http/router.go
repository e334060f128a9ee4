package httptransport

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"paddle-arena/internal/session"
	"paddle-arena/internal/store"
	"paddle-arena/internal/tournament"
	"paddle-arena/internal/ws"
)

func NewRouter(st *store.Store, coord *session.Coordinator, mgr *tournament.Manager, wsSrv *ws.Server) *chi.Mux {
	roomHandlers := NewRoomHandlers(coord)
	tournamentHandlers := NewTournamentHandlers(mgr)
	historyHandlers := NewHistoryHandlers(st)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", historyHandlers.Health())
	r.Get("/ws", wsSrv.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/rooms", roomHandlers.List())
		r.Post("/rooms", roomHandlers.Create())
		r.Get("/rooms/{room_id}", roomHandlers.Get())

		r.Get("/tournaments", tournamentHandlers.List())
		r.Post("/tournaments", tournamentHandlers.Create())
		r.Get("/tournaments/{tournament_id}", tournamentHandlers.Get())
		r.Post("/tournaments/{tournament_id}/results", tournamentHandlers.ReportResult())
		r.Post("/tournaments/{tournament_id}/advance", tournamentHandlers.Advance())
		r.Post("/tournaments/{tournament_id}/bind", tournamentHandlers.Bind())

		r.Get("/history/matches", historyHandlers.Matches())
		r.Get("/history/tournaments/{tournament_id}", historyHandlers.TournamentResult())
		r.Get("/xp/leaderboard", historyHandlers.Leaderboard())
		r.Get("/xp/{user_id}", historyHandlers.XPAccount())
		r.Get("/xp/{user_id}/entries", historyHandlers.XPEntries())
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
