package configs

type API struct {
	Address       string `env:"API_ADDRESS" envDefault:":8080"`
	OperatorToken string `env:"API_OPERATOR_TOKEN,notEmpty"`
}
