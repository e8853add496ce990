package config

type Config interface {
	EnvConfig
	CorsConfig
	GitHubConfig
	SessionConfig
	DatabaseConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetRedirectBase() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	GitHub
	Session
	Database
}

func New() Config {
	return mainConfig{}
}
