package config

// EnvPrefix is empty because every field carries its full CELLSPHERE_* name.
const EnvPrefix = ""

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "CELLSPHERE_APP_ENV"
	EnvPort         = "CELLSPHERE_APP_PORT"
	EnvDBDSN        = "CELLSPHERE_DB_DSN"
	EnvDBHost       = "CELLSPHERE_DB_HOST"
	EnvDBUser       = "CELLSPHERE_DB_USER"
	EnvDBName       = "CELLSPHERE_DB_NAME"
	EnvRedisURL     = "CELLSPHERE_REDIS_URL"
	EnvJWTSecret    = "CELLSPHERE_JWT_SECRET"
	EnvUseSQLite    = "CELLSPHERE_USE_SQLITE"
	EnvCODMaxAmount = "CELLSPHERE_ORDER_COD_MAX_AMOUNT"
	EnvWalletFirst  = "CELLSPHERE_ORDER_WALLET_CHECK_FIRST"
	EnvClampFixed   = "CELLSPHERE_COUPON_CLAMP_FIXED_TO_AMOUNT"
	EnvGCPProjectID = "CELLSPHERE_GCP_PROJECT_ID"
	EnvOrdersTopic  = "CELLSPHERE_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
