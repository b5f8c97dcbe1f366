package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	ErgastURL        string // base url of the ergast compatible schedule/results api
	TelemetryURL     string // base url of the telemetry backend (/session/...)
	LiveStreamURL    string // url of the live timing SSE stream
	OpenF1URL        string // base url of the openf1 api (driver metadata)
	TimeZone         string // IANA zone used to render dates
	HTTPTimeout      string // timeout for outgoing http requests
	CacheTTL         string // how long upstream responses are cached
	CacheReset       string // interval after which the in-memory cache is dropped
	RedisAddr        string // if set, responses are cached in redis instead of memory
	RedisPassword    string // password for redis
	RedisDB          int    // redis database number
	LogLevel         string // sets the log level (zap log level values)
	LogFormat        string // text vs json
	TelegramToken    string // telegram bot api token
	TelegramDebug    bool   // enables debug output of the telegram client
	DBFile           string // sqlite file holding notification settings
	LiveSyncInterval string // interval in which the live stream supervisor checks the connection
	WebAddr          string // listen addr of the web dashboard (empty disables it in bot mode)
)
