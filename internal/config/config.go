package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	GateSourceStatic = "static"
	GateSourceRedis  = "redis"

	envPrefix = "SHARDWATCH"
)

// Config는 애플리케이션 전체 설정입니다
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Interception  InterceptionConfig  `mapstructure:"interception"`
	Sinks         SinksConfig         `mapstructure:"sinks"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig는 애플리케이션 기본 설정입니다
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	NodeName    string `mapstructure:"node_name"`
}

// ServerConfig는 서버 설정입니다
type ServerConfig struct {
	HTTP HTTPServerConfig `mapstructure:"http"`
	GRPC GRPCServerConfig `mapstructure:"grpc"`
}

// HTTPServerConfig는 관리 HTTP 서버 설정입니다
type HTTPServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AdminRateLimit  int64         `mapstructure:"admin_rate_limit"`
	AdminRateWindow time.Duration `mapstructure:"admin_rate_window"`
}

// GRPCServerConfig는 gRPC 서버 설정입니다
type GRPCServerConfig struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	MaxRecvMsgSize   int    `mapstructure:"max_recv_msg_size"`
	MaxSendMsgSize   int    `mapstructure:"max_send_msg_size"`
	EnableReflection bool   `mapstructure:"enable_reflection"`
}

// InterceptionConfig는 bulk 타이밍 인터셉션 설정입니다
type InterceptionConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	Gate    GateConfig `mapstructure:"gate"`
}

// GateConfig는 인터셉션 게이트의 출처 설정입니다.
// static이면 enabled 값과 설정 파일 변경을, redis면 Redis 키를 따릅니다.
type GateConfig struct {
	Source       string        `mapstructure:"source"`
	RedisKey     string        `mapstructure:"redis_key"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// SinksConfig는 타이밍 레코드 싱크 설정입니다
type SinksConfig struct {
	Log        LogSinkConfig     `mapstructure:"log"`
	Prometheus ToggleConfig      `mapstructure:"prometheus"`
	Kafka      KafkaSinkConfig   `mapstructure:"kafka"`
	Tracing    ToggleConfig      `mapstructure:"tracing"`
	Breaker    BreakerSinkConfig `mapstructure:"breaker"`
}

// ToggleConfig는 켜고 끄기만 있는 싱크 설정입니다
type ToggleConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogSinkConfig는 로그 싱크 설정입니다
type LogSinkConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
}

// KafkaSinkConfig는 Kafka 싱크 설정입니다
type KafkaSinkConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Brokers        []string      `mapstructure:"brokers"`
	Topic          string        `mapstructure:"topic"`
	ClientID       string        `mapstructure:"client_id"`
	Version        string        `mapstructure:"version"`
	Buffer         int           `mapstructure:"buffer"`
	FlushFrequency time.Duration `mapstructure:"flush_frequency"`
	Compression    string        `mapstructure:"compression"`
	RequiredAcks   int16         `mapstructure:"required_acks"`
}

// BreakerSinkConfig는 외부 싱크를 감싸는 circuit breaker 설정입니다
type BreakerSinkConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
	Timeout             time.Duration `mapstructure:"timeout"`
	Interval            time.Duration `mapstructure:"interval"`
	MaxRequests         uint32        `mapstructure:"max_requests"`
}

// RedisConfig는 Redis 설정입니다
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr는 host:port 주소를 반환합니다
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
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
	v.SetDefault("app.name", "shardwatch")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.node_name", "")

	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", 10*time.Second)
	v.SetDefault("server.http.write_timeout", 10*time.Second)
	v.SetDefault("server.http.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.http.admin_rate_limit", 30)
	v.SetDefault("server.http.admin_rate_window", time.Minute)

	v.SetDefault("server.grpc.host", "0.0.0.0")
	v.SetDefault("server.grpc.port", 9090)
	v.SetDefault("server.grpc.max_recv_msg_size", 16<<20)
	v.SetDefault("server.grpc.max_send_msg_size", 16<<20)
	v.SetDefault("server.grpc.enable_reflection", true)

	v.SetDefault("interception.enabled", false)
	v.SetDefault("interception.gate.source", GateSourceStatic)
	v.SetDefault("interception.gate.redis_key", "shardwatch:interception:enabled")
	v.SetDefault("interception.gate.poll_interval", 5*time.Second)

	v.SetDefault("sinks.log.enabled", true)
	v.SetDefault("sinks.log.level", "info")
	v.SetDefault("sinks.prometheus.enabled", true)
	v.SetDefault("sinks.kafka.enabled", false)
	v.SetDefault("sinks.kafka.brokers", []string{})
	v.SetDefault("sinks.kafka.topic", "shardwatch.bulk-timings")
	v.SetDefault("sinks.kafka.client_id", "shardwatch")
	v.SetDefault("sinks.kafka.version", "3.6.0")
	v.SetDefault("sinks.kafka.buffer", 1024)
	v.SetDefault("sinks.kafka.flush_frequency", 500*time.Millisecond)
	v.SetDefault("sinks.kafka.compression", "snappy")
	v.SetDefault("sinks.kafka.required_acks", 1)
	v.SetDefault("sinks.tracing.enabled", false)
	v.SetDefault("sinks.breaker.enabled", true)
	v.SetDefault("sinks.breaker.consecutive_failures", 5)
	v.SetDefault("sinks.breaker.timeout", 30*time.Second)
	v.SetDefault("sinks.breaker.interval", time.Minute)
	v.SetDefault("sinks.breaker.max_requests", 1)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.service_name", "shardwatch")
	v.SetDefault("observability.tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.tracing.sampling_rate", 0.1)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.namespace", "shardwatch")
}

// Loader는 설정 파일을 읽고 변경을 감시합니다
type Loader struct {
	v *viper.Viper

	mu      sync.Mutex
	current *Config
}

// NewLoader는 새 Loader를 생성합니다. 환경변수는 SHARDWATCH_ 접두사로 파일 값을 덮어씁니다.
// 예: SHARDWATCH_SINKS_KAFKA_BROKERS=a:9092,b:9092
func NewLoader(configPath string, configName string) *Loader {
	v := viper.New()

	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if configName == "" {
		configName = "config"
	}
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return &Loader{v: v}
}

// Load는 설정 파일을 읽고 검증합니다
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()
	return cfg, nil
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ConfigFile은 읽은 설정 파일 경로입니다
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Watch는 설정 파일이 바뀔 때마다 다시 읽어 onChange를 호출합니다.
// 새 설정이 검증에 실패하면 onError를 호출하고 이전 설정을 유지합니다.
func (l *Loader) Watch(onChange func(prev, next *Config), onError func(error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		next, err := l.decode()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}

		l.mu.Lock()
		prev := l.current
		l.current = next
		l.mu.Unlock()

		onChange(prev, next)
	})
	l.v.WatchConfig()
}

// LoadConfig는 설정 파일을 로드합니다
func LoadConfig(configPath string, configName string) (*Config, error) {
	return NewLoader(configPath, configName).Load()
}

// Validate는 설정을 검증합니다
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.HTTP.Port <= 0 {
		return fmt.Errorf("server.http.port must be positive")
	}

	if c.Server.GRPC.Port <= 0 {
		return fmt.Errorf("server.grpc.port must be positive")
	}

	switch c.Interception.Gate.Source {
	case GateSourceStatic:
	case GateSourceRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("interception.gate.source=redis requires redis.enabled")
		}
		if c.Interception.Gate.RedisKey == "" {
			return fmt.Errorf("interception.gate.redis_key is required")
		}
	default:
		return fmt.Errorf("interception.gate.source must be %q or %q, got %q",
			GateSourceStatic, GateSourceRedis, c.Interception.Gate.Source)
	}

	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("redis.host is required")
	}

	if c.Sinks.Kafka.Enabled {
		if len(c.Sinks.Kafka.Brokers) == 0 {
			return fmt.Errorf("sinks.kafka.brokers is required")
		}
		if c.Sinks.Kafka.Topic == "" {
			return fmt.Errorf("sinks.kafka.topic is required")
		}
	}

	if c.Sinks.Tracing.Enabled && !c.Observability.Tracing.Enabled {
		return fmt.Errorf("sinks.tracing requires observability.tracing.enabled")
	}

	if r := c.Observability.Tracing.SamplingRate; r < 0 || r > 1 {
		return fmt.Errorf("observability.tracing.sampling_rate must be within [0, 1]")
	}

	return nil
}
