package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	GrpcHost   string            `yaml:"grpc_host"`
	GrpcPort   int               `yaml:"grpc_port"`
	Realtime   MRealtimeConfig   `yaml:"realtime"`
	History    MHistoryConfig    `yaml:"history"`
	Network    MNetworkConfig    `yaml:"network"`
	Redis      MRedisConfig      `yaml:"redis"`
	Storage    MStorageConfig    `yaml:"storage"`
	NATS       MNATSConfig       `yaml:"nats"`
	LiveSeries MLiveSeriesConfig `yaml:"live_series"`
}

type MRealtimeConfig struct {
	Endpoint                string `yaml:"endpoint"`
	ReconnectDelayMs        int    `yaml:"reconnect_delay_ms"`
	HandshakeTimeoutSeconds int    `yaml:"handshake_timeout_seconds"`
	ReadLimitBytes          int64  `yaml:"read_limit_bytes"`
}

type MHistoryConfig struct {
	Endpoint     string `yaml:"endpoint"`
	CacheTTLMs   int    `yaml:"cache_ttl_ms"`
	AggregateKey string `yaml:"aggregate_key"`
	WarmupEntity string `yaml:"warmup_entity"` // entity fetched at startup to fill the aggregate slot, "" = skip
	Timezone     string `yaml:"timezone"`      // "Local" or an IANA name
	CacheBackend string `yaml:"cache_backend"` // "memory" or "redis"
}

type MNetworkConfig struct {
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"` // seconds, 0 = no timeout
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"`
}

type MRedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // none, sqlite, postgres
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MNATSConfig struct {
	Enabled               bool              `yaml:"enabled"`
	Servers               []string          `yaml:"servers"`
	ClientID              string            `yaml:"client_id"`
	SubjectPrefix         string            `yaml:"subject_prefix"`
	ConnectTimeoutSeconds int               `yaml:"connect_timeout_seconds"`
	ReconnectWaitSeconds  int               `yaml:"reconnect_wait_seconds"`
	MaxReconnects         int               `yaml:"max_reconnects"`
	JetStream             *MJetStreamConfig `yaml:"jetstream"`
}

type MJetStreamConfig struct {
	Enabled     bool     `yaml:"enabled"`
	StreamName  string   `yaml:"stream_name"`
	Subjects    []string `yaml:"subjects"`
	MaxAgeHours int      `yaml:"max_age_hours"`
}

type MLiveSeriesConfig struct {
	Capacity int `yaml:"capacity"`
}
