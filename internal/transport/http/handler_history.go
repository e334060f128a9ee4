package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paddle-arena/internal/store"
)

// HistoryHandlers serves the persisted record: finished matches,
// tournament standings, and XP accounts.
type HistoryHandlers struct {
	store *store.Store
}

func NewHistoryHandlers(st *store.Store) *HistoryHandlers {
	return &HistoryHandlers{store: st}
}

func (h *HistoryHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "db_unavailable")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func (h *HistoryHandlers) Matches() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		matches, err := h.store.ListMatchResults(r.Context(), r.URL.Query().Get("room_id"), limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"matches": matches})
	}
}

func (h *HistoryHandlers) TournamentResult() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, scores, err := h.store.GetTournamentResult(r.Context(), chi.URLParam(r, "tournament_id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "tournament_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"tournament": rec, "scores": scores})
	}
}

func (h *HistoryHandlers) XPAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct, err := h.store.GetXPAccount(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "account_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(acct)
	}
}

func (h *HistoryHandlers) XPEntries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		entries, err := h.store.ListXPEntries(r.Context(), store.XPFilter{UserID: chi.URLParam(r, "user_id")}, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"entries": entries})
	}
}

func (h *HistoryHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := ParsePagination(r)
		accounts, err := h.store.ListXPLeaderboard(r.Context(), limit)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"leaderboard": accounts})
	}
}
