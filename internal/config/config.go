package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"4000"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:4000"`

	// JWTSecret no rota: despliegue de proceso único, igual que el original.
	JWTSecret            string `env:"JWT_SECRET,required"`
	JWTSessionTTLMinutes int    `env:"JWT_SESSION_TTL_MINUTES" envDefault:"10080"`
	JWTResetTTLMinutes   int    `env:"JWT_RESET_TTL_MINUTES" envDefault:"15"`

	EmailService  string `env:"EMAIL_SERVICE" envDefault:"gmail"`
	EmailUser     string `env:"EMAIL_USER"`
	EmailPassword string `env:"EMAIL_PASSWORD"`
	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"465"`

	TwilioSID         string `env:"TWILIO_SID"`
	TwilioAuthToken   string `env:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `env:"TWILIO_PHONE_NUMBER"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
