package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"paddle-arena/internal/config"
	"paddle-arena/internal/logging"
	"paddle-arena/internal/notify"
	"paddle-arena/internal/progression"
	"paddle-arena/internal/session"
	"paddle-arena/internal/store"
	"paddle-arena/internal/tournament"
	httptransport "paddle-arena/internal/transport/http"
	"paddle-arena/internal/ws"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if err := st.Bootstrap(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	prog := progression.New(st)
	pipe := progression.NewPipeline(0)
	defer pipe.Close()
	notifier := notify.New(cfg.Server.NotifyWebhookURL, cfg.Server.NotifyQueueSize)
	defer notifier.Close()

	mgr := tournament.NewManager(tournament.Observers{
		OnTournamentCompleted: func(snap tournament.Snapshot, xp map[string]int) {
			pipe.Dispatch("tournament_completed", func() {
				if err := prog.RecordTournament(context.Background(), snap, xp); err != nil {
					log.Error().Str("tournament_id", snap.ID).Err(err).Msg("tournament persist failed")
				}
				notifier.Publish("tournament_won", map[string]any{
					"tournament_id": snap.ID,
					"format":        snap.Format,
					"winner":        snap.Winner,
				})
			})
		},
	})

	coord := session.NewCoordinator(cfg.Game, session.Hooks{
		OnRoundCompleted: func(roomID string, res session.RoundResult) {
			notifier.Publish("round_completed", map[string]any{
				"room_id":     roomID,
				"round":       res.Index,
				"scores":      res.Scores,
				"winner_team": res.WinnerTeam,
			})
		},
		OnMatchCompleted: func(res session.MatchResult) {
			// Hooks run on the room's goroutine; the database work goes
			// through the pipeline so it cannot stall the room.
			pipe.Dispatch("match_completed", func() {
				if _, err := prog.RecordMatch(context.Background(), res); err != nil {
					log.Error().Str("room_id", res.RoomID).Err(err).Msg("match persist failed")
				}
				mgr.HandleMatchCompleted(res)
				notifier.Publish("match_completed", map[string]any{
					"room_id":     res.RoomID,
					"winner_team": res.WinnerTeam,
					"winners":     res.Winners,
					"forfeit":     res.Forfeit,
				})
			})
		},
	})
	defer coord.Shutdown()

	wsSrv := ws.NewServer(coord)
	router := httptransport.NewRouter(st, coord, mgr, wsSrv)
	httptransport.LogRoutes(router)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	<-done
}
