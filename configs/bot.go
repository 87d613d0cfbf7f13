package configs

type Bot struct {
	Token         string `env:"TELEGRAM_GOVERNANCE_BOT_TOKEN,notEmpty"`
	UpdateTimeout int    `env:"TELEGRAM_BOT_UPDATE_TIMEOUT" envDefault:"60"`
	CommunityName string `env:"COMMUNITY_NAME" envDefault:"CPS"`
}

type Notifier struct {
	Token  string `env:"TELEGRAM_GOVERNANCE_BOT_TOKEN"`
	ChatID int64  `env:"TELEGRAM_NOTIFY_CHAT_ID"`
}

func (c Notifier) IsEnabled() bool {
	return c.Token != "" && c.ChatID != 0
}
