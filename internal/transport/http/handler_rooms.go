package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paddle-arena/internal/session"
)

type RoomHandlers struct {
	coord *session.Coordinator
}

func NewRoomHandlers(coord *session.Coordinator) *RoomHandlers {
	return &RoomHandlers{coord: coord}
}

func (h *RoomHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"rooms": h.coord.Rooms()})
	}
}

type createRoomRequest struct {
	ID              string  `json:"id"`
	Format          string  `json:"format"`
	Owner           string  `json:"owner"`
	MaxRounds       int     `json:"max_rounds"`
	RoundScoreLimit int     `json:"round_score_limit"`
	HazardRate      float64 `json:"hazard_rate"`
}

func (h *RoomHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		cfg := session.Config{
			Format:          session.Format(req.Format),
			MaxRounds:       req.MaxRounds,
			RoundScoreLimit: req.RoundScoreLimit,
		}
		cfg.Tuning.HazardRate = req.HazardRate
		if cfg.Format != "" && cfg.Format != session.FormatDuel && cfg.Format != session.FormatArena {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_format")
			return
		}
		// The owner's socket attaches later; the seat is reserved now.
		id, err := h.coord.CreateRoom(req.ID, cfg, req.Owner, nil)
		if err != nil {
			if errors.Is(err, session.ErrRoomExists) {
				WriteHTTPError(w, http.StatusConflict, err.Error())
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"room_id": id})
	}
}

func (h *RoomHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := h.coord.Info(chi.URLParam(r, "room_id"))
		if err != nil {
			WriteHTTPError(w, http.StatusNotFound, "room_not_found")
			return
		}
		_ = json.NewEncoder(w).Encode(info)
	}
}
