package config

import (
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/fleshka4/pair-resolver/internal/infra/multicall"
)

// Config holds application configuration loaded from file.
type Config struct {
	RPCURL            string        `yaml:"rpc_url"`
	ListenAddr        string        `yaml:"listen_addr"`
	GraceTimeout      time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	ChainID          uint64 `yaml:"chain_id"`
	RegistryAddress  string `yaml:"registry_address"`
	MulticallAddress string `yaml:"multicall_address"`

	CallTimeout      time.Duration `yaml:"call_timeout"`
	BatchWindow      time.Duration `yaml:"batch_window"`
	MaxBatchSize     int           `yaml:"max_batch_size"`
	ResultTTL        time.Duration `yaml:"result_ttl"`
	MaxCachedCalls   int           `yaml:"max_cached_calls"`
	VerifyTokenOrder bool          `yaml:"verify_token_order"`

	LogLevel         string `yaml:"log_level"`
	PostgresDSN      string `yaml:"postgres_dsn"`
	MetricsNamespace string `yaml:"metrics_namespace"`
}

// Registry returns the pair registry address.
func (c Config) Registry() common.Address {
	return common.HexToAddress(c.RegistryAddress)
}

// Multicall returns the Multicall3 address.
func (c Config) Multicall() common.Address {
	return common.HexToAddress(c.MulticallAddress)
}

// Load reads the config from a YAML file path, applies fallbacks and validates it.
func Load(path string) (cfg Config, err error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "os.Open")
	}
	defer func() {
		err = multierr.Append(err, errors.Wrap(f.Close(), "f.Close"))
	}()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoder.Decode")
	}

	cfg.applyFallbacks()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyFallbacks() {
	const defaultTimeout = 5 * time.Second
	if c.ListenAddr == "" {
		c.ListenAddr = ":1337"
	}
	if c.GraceTimeout == 0 {
		c.GraceTimeout = defaultTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaultTimeout
	}
	if c.MulticallAddress == "" {
		c.MulticallAddress = multicall.DefaultAddress.Hex()
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = defaultTimeout
	}
	if c.BatchWindow == 0 {
		c.BatchWindow = 10 * time.Millisecond
	}
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = 100
	}
	if c.ResultTTL == 0 {
		c.ResultTTL = 12 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = "pair_resolver"
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var err error
	if c.RPCURL == "" {
		err = multierr.Append(err, errors.New("rpc_url is required"))
	}
	if c.ChainID == 0 {
		err = multierr.Append(err, errors.New("chain_id is required"))
	}
	if !common.IsHexAddress(c.RegistryAddress) || c.Registry() == (common.Address{}) {
		err = multierr.Append(err, errors.Errorf("registry_address %q is not a valid address", c.RegistryAddress))
	}
	if !common.IsHexAddress(c.MulticallAddress) {
		err = multierr.Append(err, errors.Errorf("multicall_address %q is not a valid address", c.MulticallAddress))
	}
	if c.MaxBatchSize < 0 {
		err = multierr.Append(err, errors.New("max_batch_size cannot be negative"))
	}
	if c.MaxCachedCalls < 0 {
		err = multierr.Append(err, errors.New("max_cached_calls cannot be negative"))
	}
	if c.ResultTTL < 0 {
		err = multierr.Append(err, errors.New("result_ttl cannot be negative"))
	}
	return errors.Wrap(err, "invalid config")
}
