package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for fields without a tag.
const EnvPrefix = "openshelf"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "OPENSHELF_APP_ENV"
	EnvPort     = "OPENSHELF_APP_PORT"
	EnvDBDSN    = "OPENSHELF_DB_DSN"
	EnvDBHost   = "OPENSHELF_DB_HOST"
	EnvDBUser   = "OPENSHELF_DB_USER"
	EnvDBName   = "OPENSHELF_DB_NAME"
	EnvRedisURL = "OPENSHELF_REDIS_URL"

	EnvJWTSecret              = "OPENSHELF_JWT_SECRET"
	EnvJWTIssuer              = "OPENSHELF_JWT_ISSUER"
	EnvJWTExpMins             = "OPENSHELF_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "OPENSHELF_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
