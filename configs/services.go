package configs

type Services struct {
	LedgerURL     string `env:"LEDGER_API_URL,notEmpty"`
	ValidatorsURL string `env:"VALIDATORS_API_URL,notEmpty"`
	Timeout       int    `env:"SERVICES_TIMEOUT_SECONDS" envDefault:"10"`
}
