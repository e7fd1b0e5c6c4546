package config

// Config struct holds application configuration
// This is a simple way to make config accessible globally.
// A more advanced approach might use dependency injection.
type Config struct {
	JWTSecret     string
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFrom      string
	SMSGatewayURL string
	SMSGatewayKey string
	DispatchEvery string // cron expression for the unsent-alert sweep
}

// AppConfig holds the application-wide configuration
var AppConfig Config
