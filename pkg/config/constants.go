package config

const EnvPrefix = "GAMEWISH"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "GAMEWISH_APP_ENV"
	EnvPort   = "GAMEWISH_APP_PORT"
	EnvDBDSN  = "GAMEWISH_DB_DSN"
	EnvDBHost = "GAMEWISH_DB_HOST"
	EnvDBUser = "GAMEWISH_DB_USER"
	EnvDBName = "GAMEWISH_DB_NAME"
)
