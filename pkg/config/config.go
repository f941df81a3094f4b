package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultHost is the default database host.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the default database port.
	DefaultPort = 5432

	// DefaultUser is the default database user.
	DefaultUser = "postgres"

	// DefaultDatabase is the default database name.
	DefaultDatabase = "shardmark"

	// DefaultNumTopics is the default number of topics in the workload.
	DefaultNumTopics = 300

	// DefaultNumShards is the default shard cardinality.
	DefaultNumShards = 100

	// DefaultNumMessages is the default number of messages per topic.
	DefaultNumMessages = 500

	// DefaultMsgIDRange is the default message ID sampling domain.
	DefaultMsgIDRange = 10_000_000

	// DefaultLookupBatchSize is the default size of the point-lookup sample.
	DefaultLookupBatchSize = 1000

	// DefaultRandomSeed is the default workload seed. A fixed seed keeps
	// runs comparable; set random_seed to 0 for a time-derived seed.
	DefaultRandomSeed = int64(1)

	// envPrefix is the prefix for environment variable overrides.
	envPrefix = "SHARDMARK_"
)

// Config is the root configuration for shardmark.
type Config struct {
	Global    GlobalConfig    `yaml:"global"`
	Database  DatabaseConfig  `yaml:"database"`
	Benchmark BenchmarkConfig `yaml:"benchmark"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig describes the target PostgreSQL endpoint. When DSN is set
// it wins over the discrete fields.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn,omitempty"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database"`
}

// BenchmarkConfig contains workload and measurement settings.
type BenchmarkConfig struct {
	NumTopics       int    `yaml:"num_topics"`
	NumShards       int    `yaml:"num_shards"`
	NumMessages     int    `yaml:"num_messages"`
	MsgIDRange      int    `yaml:"msg_id_range"`
	LookupBatchSize int    `yaml:"lookup_batch_size"`
	RandomSeed      *int64 `yaml:"random_seed,omitempty"`
	KeepTables      bool   `yaml:"keep_tables"`
}

// Load reads and parses a configuration file from the given path.
// Environment variables prefixed with SHARDMARK_ override file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults sets default values for unspecified configuration options.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Database.Host == "" {
		c.Database.Host = DefaultHost
	}

	if c.Database.Port == 0 {
		c.Database.Port = DefaultPort
	}

	if c.Database.User == "" {
		c.Database.User = DefaultUser
	}

	if c.Database.Database == "" {
		c.Database.Database = DefaultDatabase
	}

	if c.Benchmark.NumTopics == 0 {
		c.Benchmark.NumTopics = DefaultNumTopics
	}

	if c.Benchmark.NumShards == 0 {
		c.Benchmark.NumShards = DefaultNumShards
	}

	if c.Benchmark.NumMessages == 0 {
		c.Benchmark.NumMessages = DefaultNumMessages
	}

	if c.Benchmark.MsgIDRange == 0 {
		c.Benchmark.MsgIDRange = DefaultMsgIDRange
	}

	if c.Benchmark.LookupBatchSize == 0 {
		c.Benchmark.LookupBatchSize = DefaultLookupBatchSize
	}

	if c.Benchmark.RandomSeed == nil {
		seed := DefaultRandomSeed
		c.Benchmark.RandomSeed = &seed
	}
}

// applyEnvOverrides applies SHARDMARK_* environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	overrides := []struct {
		key   string
		apply func(value string) error
	}{
		{"GLOBAL_LOG_LEVEL", setString(&c.Global.LogLevel)},
		{"DATABASE_DSN", setString(&c.Database.DSN)},
		{"DATABASE_HOST", setString(&c.Database.Host)},
		{"DATABASE_PORT", setInt(&c.Database.Port)},
		{"DATABASE_USER", setString(&c.Database.User)},
		{"DATABASE_PASSWORD", setString(&c.Database.Password)},
		{"DATABASE_DATABASE", setString(&c.Database.Database)},
		{"BENCHMARK_NUM_TOPICS", setInt(&c.Benchmark.NumTopics)},
		{"BENCHMARK_NUM_SHARDS", setInt(&c.Benchmark.NumShards)},
		{"BENCHMARK_NUM_MESSAGES", setInt(&c.Benchmark.NumMessages)},
		{"BENCHMARK_MSG_ID_RANGE", setInt(&c.Benchmark.MsgIDRange)},
		{"BENCHMARK_LOOKUP_BATCH_SIZE", setInt(&c.Benchmark.LookupBatchSize)},
		{"BENCHMARK_RANDOM_SEED", setInt64Ptr(&c.Benchmark.RandomSeed)},
		{"BENCHMARK_KEEP_TABLES", setBool(&c.Benchmark.KeepTables)},
	}

	for _, o := range overrides {
		value, ok := os.LookupEnv(envPrefix + o.key)
		if !ok {
			continue
		}

		if err := o.apply(value); err != nil {
			return fmt.Errorf("invalid value for %s%s: %w", envPrefix, o.key, err)
		}
	}

	return nil
}

func setString(dst *string) func(string) error {
	return func(value string) error {
		*dst = value

		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}

		*dst = n

		return nil
	}
}

func setInt64Ptr(dst **int64) func(string) error {
	return func(value string) error {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}

		*dst = &n

		return nil
	}
}

func setBool(dst *bool) func(string) error {
	return func(value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}

		*dst = b

		return nil
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required when database.dsn is not set")
		}

		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("database.port %d is out of range", c.Database.Port)
		}

		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required when database.dsn is not set")
		}
	}

	if c.Benchmark.NumTopics <= 0 {
		return fmt.Errorf("benchmark.num_topics must be positive, got %d", c.Benchmark.NumTopics)
	}

	if c.Benchmark.NumShards <= 0 {
		return fmt.Errorf("benchmark.num_shards must be positive, got %d", c.Benchmark.NumShards)
	}

	if c.Benchmark.NumMessages <= 0 {
		return fmt.Errorf("benchmark.num_messages must be positive, got %d", c.Benchmark.NumMessages)
	}

	if c.Benchmark.MsgIDRange <= 0 {
		return fmt.Errorf("benchmark.msg_id_range must be positive, got %d", c.Benchmark.MsgIDRange)
	}

	if c.Benchmark.NumMessages > c.Benchmark.MsgIDRange {
		return fmt.Errorf(
			"benchmark.num_messages (%d) cannot exceed benchmark.msg_id_range (%d): "+
				"message IDs are sampled without replacement",
			c.Benchmark.NumMessages, c.Benchmark.MsgIDRange,
		)
	}

	if c.Benchmark.LookupBatchSize <= 0 {
		return fmt.Errorf("benchmark.lookup_batch_size must be positive, got %d", c.Benchmark.LookupBatchSize)
	}

	return nil
}

// Seed returns the effective workload seed.
func (c *Config) Seed() int64 {
	if c.Benchmark.RandomSeed == nil {
		return DefaultRandomSeed
	}

	return *c.Benchmark.RandomSeed
}
