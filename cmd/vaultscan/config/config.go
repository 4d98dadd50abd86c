// Package config loads and validates the vaultscan CLI configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// ClientConfig is the YAML-backed CLI configuration. RPCURL may be overridden
// with the VAULTSCAN_RPC_URL environment variable (typically via .env).
type ClientConfig struct {
	RPCURL        string   `yaml:"rpcUrl"`
	ChainID       uint64   `yaml:"chainId"`
	Vaults        []string `yaml:"vaults"`
	BatchSize     int      `yaml:"batchSize"`
	BatchDelayMS  int      `yaml:"batchDelayMs"`
	CallTimeoutMS int      `yaml:"callTimeoutMs"`
}

// LoadConfig reads the configuration file, applies environment overrides, and
// validates the result.
func LoadConfig(path string) (*ClientConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg ClientConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if url := os.Getenv("VAULTSCAN_RPC_URL"); url != "" {
		cfg.RPCURL = url
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ClientConfig) validate() error {
	if c.RPCURL == "" {
		return errors.New("config: rpcUrl is required")
	}
	if c.ChainID == 0 {
		return errors.New("config: chainId is required")
	}
	if len(c.Vaults) == 0 {
		return errors.New("config: at least one vault address is required")
	}
	for _, v := range c.Vaults {
		if !common.IsHexAddress(v) {
			return fmt.Errorf("config: %q is not a valid address", v)
		}
	}
	return nil
}

// BatchDelay returns the configured pacing delay, or zero when unset.
func (c *ClientConfig) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMS) * time.Millisecond
}

// CallTimeout returns the configured per-call timeout, or zero when unset.
func (c *ClientConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutMS) * time.Millisecond
}

// VaultAddresses converts the configured vault strings to addresses.
func (c *ClientConfig) VaultAddresses() []common.Address {
	addrs := make([]common.Address, 0, len(c.Vaults))
	for _, v := range c.Vaults {
		addrs = append(addrs, common.HexToAddress(v))
	}
	return addrs
}
