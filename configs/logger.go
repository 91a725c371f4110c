package configs

type Logger struct {
	AppName string `env:"APP_NAME" envDefault:"ballot_system"`
	URL     string `env:"LOKI_URL"`
}
