package config

import "github.com/caarlos0/env/v11"

// GameConfig carries simulation defaults applied to new rooms. Per-room
// overrides come in on the room creation request.
type GameConfig struct {
	TickHz          int     `env:"GAME_TICK_HZ" envDefault:"60"`
	MaxRounds       int     `env:"GAME_MAX_ROUNDS" envDefault:"3"`
	RoundScoreLimit int     `env:"GAME_ROUND_SCORE_LIMIT" envDefault:"5"`
	BallSpeedRamp   float64 `env:"GAME_BALL_SPEED_RAMP" envDefault:"1.05"`
	BallMaxSpeed    float64 `env:"GAME_BALL_MAX_SPEED" envDefault:"12"`
	HazardRate      float64 `env:"GAME_HAZARD_RATE" envDefault:"0"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
