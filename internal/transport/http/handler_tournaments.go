package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"paddle-arena/internal/bracket"
	"paddle-arena/internal/tournament"
)

type TournamentHandlers struct {
	mgr *tournament.Manager
}

func NewTournamentHandlers(mgr *tournament.Manager) *TournamentHandlers {
	return &TournamentHandlers{mgr: mgr}
}

type competitorPayload struct {
	Kind string `json:"kind"` // human, named, ai
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (p competitorPayload) toCompetitor() (bracket.Competitor, bool) {
	switch p.Kind {
	case "human":
		if p.ID == "" {
			return bracket.Competitor{}, false
		}
		return bracket.Human(p.ID), true
	case "named":
		if p.Name == "" {
			return bracket.Competitor{}, false
		}
		return bracket.NamedLocal(p.Name), true
	case "ai":
		return bracket.AI(), true
	default:
		return bracket.Competitor{}, false
	}
}

type createTournamentRequest struct {
	Format       string              `json:"format"`
	Participants []competitorPayload `json:"participants"`
}

func (h *TournamentHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTournamentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		format := bracket.Format(req.Format)
		if format != bracket.FormatSingleElim && format != bracket.FormatRoundRobin {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_format")
			return
		}
		participants := make([]bracket.Competitor, 0, len(req.Participants))
		for _, p := range req.Participants {
			c, ok := p.toCompetitor()
			if !ok {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_participant")
				return
			}
			participants = append(participants, c)
		}
		t, err := h.mgr.Create(format, participants)
		if err != nil {
			if errors.Is(err, bracket.ErrInsufficientParticipants) {
				WriteHTTPError(w, http.StatusBadRequest, err.Error())
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(t.Snap())
	}
}

func (h *TournamentHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"tournaments": h.mgr.List()})
	}
}

func (h *TournamentHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := h.mgr.Get(chi.URLParam(r, "tournament_id"))
		if err != nil {
			WriteHTTPError(w, http.StatusNotFound, "tournament_not_found")
			return
		}
		_ = json.NewEncoder(w).Encode(t.Snap())
	}
}

type reportResultRequest struct {
	Round      int               `json:"round"`
	MatchID    string            `json:"match_id"`
	Scores     [2]int            `json:"scores"`
	Winner     competitorPayload `json:"winner"`
	DurationMS int64             `json:"duration_ms"`
}

func (h *TournamentHandlers) ReportResult() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reportResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		winner, ok := req.Winner.toCompetitor()
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_participant")
			return
		}
		id := chi.URLParam(r, "tournament_id")
		err := h.mgr.ReportResult(id, req.Round, req.MatchID, req.Scores, winner, time.Duration(req.DurationMS)*time.Millisecond)
		if err != nil {
			writeTournamentError(w, err)
			return
		}
		t, err := h.mgr.Get(id)
		if err != nil {
			WriteHTTPError(w, http.StatusNotFound, "tournament_not_found")
			return
		}
		_ = json.NewEncoder(w).Encode(t.Snap())
	}
}

func (h *TournamentHandlers) Advance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "tournament_id")
		if err := h.mgr.Advance(id); err != nil {
			writeTournamentError(w, err)
			return
		}
		t, err := h.mgr.Get(id)
		if err != nil {
			WriteHTTPError(w, http.StatusNotFound, "tournament_not_found")
			return
		}
		_ = json.NewEncoder(w).Encode(t.Snap())
	}
}

type bindRoomRequest struct {
	RoomID  string `json:"room_id"`
	Round   int    `json:"round"`
	MatchID string `json:"match_id"`
}

// Bind links a live room to a bracket match so the session outcome
// drives progression automatically.
func (h *TournamentHandlers) Bind() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bindRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomID == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		id := chi.URLParam(r, "tournament_id")
		if err := h.mgr.BindRoom(req.RoomID, id, req.Round, req.MatchID); err != nil {
			writeTournamentError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeTournamentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tournament.ErrNotFound):
		WriteHTTPError(w, http.StatusNotFound, "tournament_not_found")
	case errors.Is(err, tournament.ErrRoundNotFound),
		errors.Is(err, tournament.ErrMatchNotFound):
		WriteHTTPError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tournament.ErrRoundIncomplete),
		errors.Is(err, tournament.ErrTournamentFinished),
		errors.Is(err, bracket.ErrMatchResultIncomplete),
		errors.Is(err, bracket.ErrUnknownCompetitor),
		errors.Is(err, bracket.ErrInsufficientParticipants),
		errors.Is(err, bracket.ErrNoMatchesGenerated):
		WriteHTTPError(w, http.StatusConflict, err.Error())
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
