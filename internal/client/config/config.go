// Package config loads runtime configuration for the market sales client.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. An optional file given with -c/--config, as JSON, YAML or TOML. Durations
//     are strings like "30s" or integer nanoseconds.
//  3. Command-line flags that were set explicitly.
//
// Example YAML:
//
//	database_path: sales.db
//	remote: grpc
//	server_addr: 127.0.0.1:50051
//	schedule_slots: ["00:05", "12:05"]
//	retry_base: 30s
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/marketsales/internal/configx"
	"github.com/dmitrijs2005/marketsales/internal/timex"
	"github.com/spf13/pflag"
)

// Remote backends.
const (
	RemoteGRPC   = "grpc"
	RemoteS3     = "s3"
	RemoteMemory = "memory"
)

// S3 locates the bucket used by the s3 remote backend. Endpoint is only
// needed for S3-compatible services; empty keys select the default AWS
// credential chain.
type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Config holds runtime settings for the client.
//
// UserID names the acting user for backends without tokens (s3, memory).
// With the grpc backend the user comes from AccessToken.
type Config struct {
	DatabasePath string

	Remote         string
	ServerAddr     string
	AccessToken    string
	UserID         string
	S3             S3
	RequestTimeout time.Duration

	// OnlineCheckInterval is how often the schedule daemon probes the remote.
	OnlineCheckInterval time.Duration

	PullWindow        time.Duration
	ImportConcurrency int

	ScheduleSlots []string
	RetryBase     time.Duration
	RetryCap      time.Duration
	RetryMax      int

	LogLevel string
	LogFile  string
}

func (c *Config) LoadDefaults() {
	c.DatabasePath = "marketsales.db"
	c.Remote = RemoteGRPC
	c.ServerAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = time.Minute
	c.S3.Region = "us-east-1"
	c.PullWindow = 30 * 24 * time.Hour
	c.ImportConcurrency = 4
	c.ScheduleSlots = []string{"00:05", "12:05"}
	c.RetryBase = 30 * time.Second
	c.RetryCap = 30 * time.Minute
	c.RetryMax = 5
	c.LogLevel = "info"
}

func (c *Config) validate() error {
	if !slices.Contains([]string{RemoteGRPC, RemoteS3, RemoteMemory}, c.Remote) {
		return fmt.Errorf("unknown remote backend %q", c.Remote)
	}
	if c.Remote == RemoteS3 && c.S3.Bucket == "" {
		return fmt.Errorf("s3 remote needs a bucket")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.ImportConcurrency < 1 {
		return fmt.Errorf("import concurrency must be at least 1")
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
	}
	if c.RetryMax < 0 {
		return fmt.Errorf("retry max must not be negative")
	}
	if c.RetryBase <= 0 || c.RetryCap < c.RetryBase {
		return fmt.Errorf("retry base must be positive and not above the cap")
	}
	return nil
}

type fileS3 struct {
	Bucket    string `json:"bucket" yaml:"bucket" toml:"bucket"`
	Region    string `json:"region" yaml:"region" toml:"region"`
	Endpoint  string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key" toml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" toml:"secret_key"`
}

// fileConfig is the on-disk shape of Config.
type fileConfig struct {
	DatabasePath      string         `json:"database_path" yaml:"database_path" toml:"database_path"`
	Remote            string         `json:"remote" yaml:"remote" toml:"remote"`
	ServerAddr        string         `json:"server_addr" yaml:"server_addr" toml:"server_addr"`
	AccessToken       string         `json:"access_token" yaml:"access_token" toml:"access_token"`
	UserID            string         `json:"user_id" yaml:"user_id" toml:"user_id"`
	S3                fileS3         `json:"s3" yaml:"s3" toml:"s3"`
	RequestTimeout    timex.Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	OnlineCheck       timex.Duration `json:"online_check_interval" yaml:"online_check_interval" toml:"online_check_interval"`
	PullWindow        timex.Duration `json:"pull_window" yaml:"pull_window" toml:"pull_window"`
	ImportConcurrency int            `json:"import_concurrency" yaml:"import_concurrency" toml:"import_concurrency"`
	ScheduleSlots     []string       `json:"schedule_slots" yaml:"schedule_slots" toml:"schedule_slots"`
	RetryBase         timex.Duration `json:"retry_base" yaml:"retry_base" toml:"retry_base"`
	RetryCap          timex.Duration `json:"retry_cap" yaml:"retry_cap" toml:"retry_cap"`
	RetryMax          int            `json:"retry_max" yaml:"retry_max" toml:"retry_max"`
	LogLevel          string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFile           string         `json:"log_file" yaml:"log_file" toml:"log_file"`
}

func toFile(c *Config) fileConfig {
	return fileConfig{
		DatabasePath:      c.DatabasePath,
		Remote:            c.Remote,
		ServerAddr:        c.ServerAddr,
		AccessToken:       c.AccessToken,
		UserID:            c.UserID,
		S3:                fileS3(c.S3),
		RequestTimeout:    timex.Duration{Duration: c.RequestTimeout},
		OnlineCheck:       timex.Duration{Duration: c.OnlineCheckInterval},
		PullWindow:        timex.Duration{Duration: c.PullWindow},
		ImportConcurrency: c.ImportConcurrency,
		ScheduleSlots:     c.ScheduleSlots,
		RetryBase:         timex.Duration{Duration: c.RetryBase},
		RetryCap:          timex.Duration{Duration: c.RetryCap},
		RetryMax:          c.RetryMax,
		LogLevel:          c.LogLevel,
		LogFile:           c.LogFile,
	}
}

func (f fileConfig) apply(c *Config) {
	c.DatabasePath = f.DatabasePath
	c.Remote = f.Remote
	c.ServerAddr = f.ServerAddr
	c.AccessToken = f.AccessToken
	c.UserID = f.UserID
	c.S3 = S3(f.S3)
	c.RequestTimeout = f.RequestTimeout.Duration
	c.OnlineCheckInterval = f.OnlineCheck.Duration
	c.PullWindow = f.PullWindow.Duration
	c.ImportConcurrency = f.ImportConcurrency
	c.ScheduleSlots = f.ScheduleSlots
	c.RetryBase = f.RetryBase.Duration
	c.RetryCap = f.RetryCap.Duration
	c.RetryMax = f.RetryMax
	c.LogLevel = f.LogLevel
	c.LogFile = f.LogFile
}

// Flag names.
const (
	FlagConfig            = "config"
	FlagDatabase          = "db"
	FlagRemote            = "remote"
	FlagServer            = "server"
	FlagToken             = "token"
	FlagUser              = "user"
	FlagS3Bucket          = "s3-bucket"
	FlagS3Region          = "s3-region"
	FlagS3Endpoint        = "s3-endpoint"
	FlagS3AccessKey       = "s3-access-key"
	FlagS3SecretKey       = "s3-secret-key"
	FlagRequestTimeout    = "request-timeout"
	FlagOnlineCheck       = "online-check-interval"
	FlagPullWindow        = "pull-window"
	FlagImportConcurrency = "import-concurrency"
	FlagSlots             = "slots"
	FlagRetryBase         = "retry-base"
	FlagRetryCap          = "retry-cap"
	FlagRetryMax          = "retry-max"
	FlagLogLevel          = "log-level"
	FlagLogFile           = "log-file"
)

// RegisterFlags adds the client flags to fs. Their defaults are only
// documentation: Load applies a flag only when it was set explicitly.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "config file (.json, .yaml, .yml or .toml)")
	fs.String(FlagDatabase, d.DatabasePath, "path of the local SQLite record store")
	fs.StringP(FlagRemote, "r", d.Remote, "remote backend: grpc, s3 or memory")
	fs.StringP(FlagServer, "a", d.ServerAddr, "document server address")
	fs.String(FlagToken, "", "access token for the document server")
	fs.StringP(FlagUser, "u", "", "acting user id for the s3 and memory backends")
	fs.String(FlagS3Bucket, "", "S3 bucket")
	fs.String(FlagS3Region, d.S3.Region, "S3 region")
	fs.String(FlagS3Endpoint, "", "S3-compatible endpoint URL")
	fs.String(FlagS3AccessKey, "", "S3 access key")
	fs.String(FlagS3SecretKey, "", "S3 secret key")
	fs.Duration(FlagRequestTimeout, d.RequestTimeout, "timeout of a single remote call")
	fs.Duration(FlagOnlineCheck, d.OnlineCheckInterval, "how often the schedule daemon probes the remote")
	fs.Duration(FlagPullWindow, d.PullWindow, "how far back the first pull looks")
	fs.Int(FlagImportConcurrency, d.ImportConcurrency, "parallel line fetches during import")
	fs.StringSlice(FlagSlots, d.ScheduleSlots, "daily HH:MM slots for scheduled work")
	fs.Duration(FlagRetryBase, d.RetryBase, "first retry delay")
	fs.Duration(FlagRetryCap, d.RetryCap, "longest retry delay")
	fs.Int(FlagRetryMax, d.RetryMax, "retries before a run is dropped")
	fs.String(FlagLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(FlagLogFile, "", "log file, stderr when empty")
}

// Load builds a Config from defaults, the file named by --config and the
// flags explicitly set in fs.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := fs.GetString(FlagConfig)
	if err != nil {
		return nil, err
	}
	if path != "" {
		fc := toFile(cfg)
		if err := configx.DecodeFile(path, &fc); err != nil {
			return nil, err
		}
		fc.apply(cfg)
	}

	if err := applyFlags(fs, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(fs *pflag.FlagSet, cfg *Config) error {
	var err error
	strs := map[string]*string{
		FlagDatabase:    &cfg.DatabasePath,
		FlagRemote:      &cfg.Remote,
		FlagServer:      &cfg.ServerAddr,
		FlagToken:       &cfg.AccessToken,
		FlagUser:        &cfg.UserID,
		FlagS3Bucket:    &cfg.S3.Bucket,
		FlagS3Region:    &cfg.S3.Region,
		FlagS3Endpoint:  &cfg.S3.Endpoint,
		FlagS3AccessKey: &cfg.S3.AccessKey,
		FlagS3SecretKey: &cfg.S3.SecretKey,
		FlagLogLevel:    &cfg.LogLevel,
		FlagLogFile:     &cfg.LogFile,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		if *dst, err = fs.GetString(name); err != nil {
			return err
		}
	}

	durations := map[string]*time.Duration{
		FlagRequestTimeout: &cfg.RequestTimeout,
		FlagOnlineCheck:    &cfg.OnlineCheckInterval,
		FlagPullWindow:     &cfg.PullWindow,
		FlagRetryBase:      &cfg.RetryBase,
		FlagRetryCap:       &cfg.RetryCap,
	}
	for name, dst := range durations {
		if !fs.Changed(name) {
			continue
		}
		if *dst, err = fs.GetDuration(name); err != nil {
			return err
		}
	}

	ints := map[string]*int{
		FlagImportConcurrency: &cfg.ImportConcurrency,
		FlagRetryMax:          &cfg.RetryMax,
	}
	for name, dst := range ints {
		if !fs.Changed(name) {
			continue
		}
		if *dst, err = fs.GetInt(name); err != nil {
			return err
		}
	}

	if fs.Changed(FlagSlots) {
		if cfg.ScheduleSlots, err = fs.GetStringSlice(FlagSlots); err != nil {
			return err
		}
	}
	return nil
}
