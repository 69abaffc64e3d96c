package config

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config는 애플리케이션 전체 설정입니다
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	MongoDB       MongoDBConfig       `mapstructure:"mongodb"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig는 애플리케이션 기본 설정입니다
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig는 서버 설정입니다
type ServerConfig struct {
	HTTP HTTPServerConfig `mapstructure:"http"`
}

// HTTPServerConfig는 HTTP 서버 설정입니다
type HTTPServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr은 listen 주소를 반환합니다
func (c HTTPServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MongoDBConfig는 MongoDB 설정입니다.
// Options의 키는 connection string 옵션이 됩니다 (예: auth_source → authSource).
type MongoDBConfig struct {
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	Database string            `mapstructure:"database"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	Options  map[string]string `mapstructure:"options"`
	// UseVault가 true면 Username/Password를 Vault에서 읽은 값으로 대체합니다
	UseVault bool `mapstructure:"use_vault"`
}

// Settings는 mongodb.ParseConfig가 받는 평면 설정 맵을 반환합니다
func (c MongoDBConfig) Settings() map[string]interface{} {
	settings := map[string]interface{}{
		"host":     c.Host,
		"port":     c.Port,
		"database": c.Database,
		"username": c.Username,
		"password": c.Password,
	}
	for k, v := range c.Options {
		settings[k] = v
	}
	return settings
}

// RedisConfig는 Redis 설정입니다. rate limiter와 health check에 사용됩니다.
type RedisConfig struct {
	Enabled      bool            `mapstructure:"enabled"`
	Host         string          `mapstructure:"host"`
	Port         int             `mapstructure:"port"`
	Password     string          `mapstructure:"password"`
	DB           int             `mapstructure:"db"`
	PoolSize     int             `mapstructure:"pool_size"`
	MinIdleConns int             `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration   `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout time.Duration   `mapstructure:"write_timeout"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

// Addr은 host:port를 반환합니다
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RateLimitConfig는 고정 윈도우 rate limit 설정입니다
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Prefix  string        `mapstructure:"prefix"`
	Limit   int64         `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// KafkaConfig는 Kafka 설정입니다
type KafkaConfig struct {
	Enabled  bool                `mapstructure:"enabled"`
	Brokers  []string            `mapstructure:"brokers"`
	ClientID string              `mapstructure:"client_id"`
	Producer KafkaProducerConfig `mapstructure:"producer"`
	Topics   KafkaTopics         `mapstructure:"topics"`
}

// KafkaProducerConfig는 Kafka Producer 설정입니다
type KafkaProducerConfig struct {
	MaxMessageBytes  int           `mapstructure:"max_message_bytes"`
	RequiredAcks     int16         `mapstructure:"required_acks"`
	Compression      string        `mapstructure:"compression"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryBackoff     time.Duration `mapstructure:"retry_backoff"`
	EnableIdempotent bool          `mapstructure:"enable_idempotent"`
}

// KafkaTopics는 이벤트별 토픽 설정입니다. 비어 있는 항목은 Default로 발행됩니다.
type KafkaTopics struct {
	Default        string `mapstructure:"default"`
	ReportCreated  string `mapstructure:"report_created"`
	ReportUpdated  string `mapstructure:"report_updated"`
	ReportDeleted  string `mapstructure:"report_deleted"`
	UserRegistered string `mapstructure:"user_registered"`
	UserDeleted    string `mapstructure:"user_deleted"`
}

// VaultConfig는 Vault 설정입니다
type VaultConfig struct {
	Enabled    bool           `mapstructure:"enabled"`
	Address    string         `mapstructure:"address"`
	Token      string         `mapstructure:"token"`
	AuthMethod string         `mapstructure:"auth_method"`
	RoleID     string         `mapstructure:"role_id"`
	SecretID   string         `mapstructure:"secret_id"`
	K8sRole    string         `mapstructure:"k8s_role"`
	Namespace  string         `mapstructure:"namespace"`
	Timeout    time.Duration  `mapstructure:"timeout"`
	TLS        VaultTLSConfig `mapstructure:"tls"`
	Paths      VaultPaths     `mapstructure:"paths"`
}

// VaultTLSConfig는 Vault TLS 설정입니다
type VaultTLSConfig struct {
	SkipVerify bool   `mapstructure:"skip_verify"`
	CACert     string `mapstructure:"ca_cert"`
}

// VaultPaths는 Vault 경로 설정입니다
type VaultPaths struct {
	MongoDB string `mapstructure:"mongodb"`
	Secrets string `mapstructure:"secrets"`
}

// AuthConfig는 액세스 토큰 설정입니다
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	// RefreshTokenTTL은 리프레시 토큰 유효 기간입니다. TokenTTL보다 길어야 합니다.
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	// Admins는 사용자 플래그(verified, active)를 변경할 수 있는 사용자 이름 목록입니다
	Admins []string `mapstructure:"admins"`
}

// ObservabilityConfig는 관찰성 설정입니다
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig는 로깅 설정입니다
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// TracingConfig는 분산 추적 설정입니다
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// MetricsConfig는 메트릭 설정입니다
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "reports-service")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", 15*time.Second)
	v.SetDefault("server.http.write_timeout", 30*time.Second)
	v.SetDefault("server.http.shutdown_timeout", 10*time.Second)

	v.SetDefault("mongodb.host", "localhost")
	v.SetDefault("mongodb.port", 27017)
	v.SetDefault("mongodb.database", "reports")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.rate_limit.prefix", "ratelimit")
	v.SetDefault("redis.rate_limit.limit", 120)
	v.SetDefault("redis.rate_limit.window", time.Minute)

	v.SetDefault("kafka.client_id", "reports-service")
	v.SetDefault("kafka.producer.required_acks", -1)
	v.SetDefault("kafka.producer.compression", "snappy")
	v.SetDefault("kafka.producer.max_retries", 3)
	v.SetDefault("kafka.producer.retry_backoff", 100*time.Millisecond)
	v.SetDefault("kafka.topics.default", "reports.events")

	v.SetDefault("vault.auth_method", "token")
	v.SetDefault("vault.timeout", 10*time.Second)
	v.SetDefault("vault.paths.mongodb", "database/creds/reports-service")
	v.SetDefault("vault.paths.secrets", "secret/data/reports-service")

	v.SetDefault("auth.issuer", "reports-service")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.refresh_token_ttl", 7*24*time.Hour)

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.tracing.service_name", "reports-service")
	v.SetDefault("observability.tracing.sampling_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.namespace", "reports_service")
}

// LoadConfig는 설정 파일을 로드합니다. 파일이 없으면 기본값과 환경변수만 사용합니다.
func LoadConfig(configPath string, configName string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// 설정 파일 경로 및 이름 설정
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if configName != "" {
		v.SetConfigName(configName)
	} else {
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")

	// 환경변수 바인딩 (APP_MONGODB_HOST → mongodb.host)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 환경변수로 민감한 값 오버라이드
	env := viper.New()
	env.AutomaticEnv()
	overrideFromEnv(env, &config)

	return &config, nil
}

// overrideFromEnv는 접두사 없는 환경변수로 민감한 설정을 오버라이드합니다
func overrideFromEnv(env *viper.Viper, config *Config) {
	// Vault 설정
	if val := env.GetString("VAULT_TOKEN"); val != "" {
		config.Vault.Token = val
	}
	if val := env.GetString("VAULT_ADDRESS"); val != "" {
		config.Vault.Address = val
	}
	if val := env.GetString("VAULT_ROLE_ID"); val != "" {
		config.Vault.RoleID = val
	}
	if val := env.GetString("VAULT_SECRET_ID"); val != "" {
		config.Vault.SecretID = val
	}

	// MongoDB 설정
	if val := env.GetString("MONGODB_HOST"); val != "" {
		config.MongoDB.Host = val
	}
	if val := env.GetInt("MONGODB_PORT"); val != 0 {
		config.MongoDB.Port = val
	}
	if val := env.GetString("MONGODB_DATABASE"); val != "" {
		config.MongoDB.Database = val
	}
	if val := env.GetString("MONGODB_USERNAME"); val != "" {
		config.MongoDB.Username = val
	}
	if val := env.GetString("MONGODB_PASSWORD"); val != "" {
		config.MongoDB.Password = val
	}

	// Redis 설정
	if val := env.GetString("REDIS_HOST"); val != "" {
		config.Redis.Host = val
	}
	if val := env.GetString("REDIS_PASSWORD"); val != "" {
		config.Redis.Password = val
	}

	// Kafka 설정
	if val := env.GetString("KAFKA_BROKERS"); val != "" {
		config.Kafka.Brokers = strings.Split(val, ",")
	}

	// 인증 설정
	if val := env.GetString("JWT_SECRET"); val != "" {
		config.Auth.JWTSecret = val
	}

	// 애플리케이션 설정 (GitLab CI/CD 변수)
	if val := env.GetString("CI_COMMIT_TAG"); val != "" {
		config.App.Version = val
	}
	if val := env.GetString("CI_ENVIRONMENT_NAME"); val != "" {
		config.App.Environment = val
	}

	// Observability 설정
	if val := env.GetString("JAEGER_ENDPOINT"); val != "" {
		config.Observability.Tracing.JaegerEndpoint = val
	}
	if val := env.GetString("LOG_LEVEL"); val != "" {
		config.Observability.Logging.Level = val
	}
}

// Validate는 시작 전에 설정을 검증합니다.
// Vault를 사용하는 값(MongoDB 자격증명, jwt_secret)은 Vault 조회 이후에 다시 확인됩니다.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTP.Port <= 0 || c.Server.HTTP.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.http.port out of range: %d", c.Server.HTTP.Port))
	}
	if c.MongoDB.Host == "" {
		problems = append(problems, "mongodb.host is required")
	}
	if c.MongoDB.Database == "" {
		problems = append(problems, "mongodb.database is required")
	}
	if c.MongoDB.UseVault && !c.Vault.Enabled {
		problems = append(problems, "mongodb.use_vault requires vault.enabled")
	}
	if c.Auth.JWTSecret == "" && !c.Vault.Enabled {
		problems = append(problems, "auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		problems = append(problems, "auth.token_ttl must be positive")
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.TokenTTL {
		problems = append(problems, "auth.refresh_token_ttl must be longer than auth.token_ttl")
	}
	if c.Redis.RateLimit.Enabled {
		if !c.Redis.Enabled {
			problems = append(problems, "redis.rate_limit.enabled requires redis.enabled")
		}
		if c.Redis.RateLimit.Limit <= 0 || c.Redis.RateLimit.Window <= 0 {
			problems = append(problems, "redis.rate_limit limit and window must be positive")
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		problems = append(problems, "kafka.brokers is required when kafka is enabled")
	}
	if c.Observability.Tracing.Enabled && c.Observability.Tracing.JaegerEndpoint == "" {
		problems = append(problems, "observability.tracing.jaeger_endpoint is required when tracing is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction은 운영 환경 여부를 반환합니다
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
