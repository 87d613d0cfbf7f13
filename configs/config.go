package configs

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

type GovernanceServiceConfig struct {
	App        App
	DB         DB
	Logger     Logger
	Governance Governance
	Scheduler  Scheduler
	API        API
	Services   Services
	Notifier   Notifier
}

type GovernanceBotConfig struct {
	App    App
	DB     DB
	Logger Logger
	Bot    Bot
}

func LoadGovernanceServiceConfig() (GovernanceServiceConfig, error) {
	var config GovernanceServiceConfig

	if err := env.Parse(&config); err != nil {
		return GovernanceServiceConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

func LoadGovernanceBotConfig() (GovernanceBotConfig, error) {
	var config GovernanceBotConfig

	if err := env.Parse(&config); err != nil {
		return GovernanceBotConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}
