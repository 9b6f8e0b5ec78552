package utils

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/pk910/eth-graffiti-explorer/config"
	"github.com/pk910/eth-graffiti-explorer/types"
)

// Config is the globally accessible configuration
var Config *types.Config

// ReadConfig will process a configuration
func ReadConfig(cfg *types.Config, path string) error {
	err := readConfigFile(cfg, path)
	if err != nil {
		return err
	}

	readConfigEnv(cfg)

	// merge defaults for everything the config file leaves unset
	defaults := &types.Config{}
	err = yaml.Unmarshal([]byte(config.DefaultConfigYml), defaults)
	if err != nil {
		return fmt.Errorf("error parsing default config: %v", err)
	}
	err = mergo.Merge(cfg, defaults)
	if err != nil {
		return fmt.Errorf("error merging default config: %v", err)
	}

	if cfg.Chain.GenesisTimestamp == 0 {
		switch cfg.Chain.Name {
		case "mainnet":
			cfg.Chain.GenesisTimestamp = 1606824023
		case "sepolia":
			cfg.Chain.GenesisTimestamp = 1655733600
		case "holesky":
			cfg.Chain.GenesisTimestamp = 1695902400
		default:
			return fmt.Errorf("missing genesis timestamp for chain %v", cfg.Chain.Name)
		}
	}
	if cfg.Chain.SlotsPerEpoch == 0 {
		cfg.Chain.SlotsPerEpoch = 32
	}
	if cfg.Chain.SecondsPerSlot == 0 {
		cfg.Chain.SecondsPerSlot = 12
	}

	if cfg.BeaconApi.Endpoint == "" {
		return fmt.Errorf("missing beacon node endpoint (need an endpoint to run the explorer)")
	}
	if cfg.BeaconApi.Name == "" {
		cfg.BeaconApi.Name = "default"
	}

	log.WithFields(log.Fields{
		"chainName":        cfg.Chain.Name,
		"genesisTimestamp": cfg.Chain.GenesisTimestamp,
		"slotsPerEpoch":    cfg.Chain.SlotsPerEpoch,
		"secondsPerSlot":   cfg.Chain.SecondsPerSlot,
	}).Infof("did init config")

	return nil
}

func readConfigFile(cfg *types.Config, path string) error {
	if path == "" {
		return yaml.Unmarshal([]byte(config.DefaultConfigYml), cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening config file %v: %v", path, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(cfg)
	if err != nil {
		return fmt.Errorf("error decoding config file %v: %v", path, err)
	}

	return nil
}

func readConfigEnv(cfg *types.Config) error {
	return envconfig.Process("", cfg)
}
