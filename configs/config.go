package configs

import (
	"fmt"
	"github.com/caarlos0/env/v6"
)

type BallotBotConfig struct {
	App    App
	Bot    Bot
	DB     DB
	Logger Logger
}

func LoadBallotBotConfig() (BallotBotConfig, error) {
	var config BallotBotConfig

	if err := env.Parse(&config); err != nil {
		return BallotBotConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

type BallotSweeperConfig struct {
	App     App
	Sweeper Sweeper
	DB      DB
	Logger  Logger
}

func LoadBallotSweeperConfig() (BallotSweeperConfig, error) {
	var config BallotSweeperConfig

	if err := env.Parse(&config); err != nil {
		return BallotSweeperConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}
