package types

import "time"

// Config is a struct to hold the configuration data
type Config struct {
	Logging struct {
		OutputLevel  string `yaml:"outputLevel" envconfig:"LOGGING_OUTPUT_LEVEL"`
		OutputStderr bool   `yaml:"outputStderr" envconfig:"LOGGING_OUTPUT_STDERR"`

		FilePath  string `yaml:"filePath" envconfig:"LOGGING_FILE_PATH"`
		FileLevel string `yaml:"fileLevel" envconfig:"LOGGING_FILE_LEVEL"`
	} `yaml:"logging"`

	Server struct {
		Port string `yaml:"port" envconfig:"SERVER_PORT"`
		Host string `yaml:"host" envconfig:"SERVER_HOST"`

		HttpReadTimeout  time.Duration `yaml:"httpReadTimeout" envconfig:"SERVER_HTTP_READ_TIMEOUT"`
		HttpWriteTimeout time.Duration `yaml:"httpWriteTimeout" envconfig:"SERVER_HTTP_WRITE_TIMEOUT"`
		HttpIdleTimeout  time.Duration `yaml:"httpIdleTimeout" envconfig:"SERVER_HTTP_IDLE_TIMEOUT"`
	} `yaml:"server"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" envconfig:"METRICS_ENABLED"`
		Host    string `yaml:"host" envconfig:"METRICS_HOST"`
		Port    string `yaml:"port" envconfig:"METRICS_PORT"`
	} `yaml:"metrics"`

	Chain struct {
		Name             string `yaml:"name" envconfig:"CHAIN_NAME"`
		GenesisTimestamp uint64 `yaml:"genesisTimestamp" envconfig:"CHAIN_GENESIS_TIMESTAMP"`
		SlotsPerEpoch    uint64 `yaml:"slotsPerEpoch" envconfig:"CHAIN_SLOTS_PER_EPOCH"`
		SecondsPerSlot   uint64 `yaml:"secondsPerSlot" envconfig:"CHAIN_SECONDS_PER_SLOT"`
	} `yaml:"chain"`

	BeaconApi struct {
		Endpoint string `yaml:"endpoint" envconfig:"BEACONAPI_ENDPOINT"`
		Name     string `yaml:"name" envconfig:"BEACONAPI_NAME"`

		Headers map[string]string `yaml:"headers"`

		RequestTimeout time.Duration `yaml:"requestTimeout" envconfig:"BEACONAPI_REQUEST_TIMEOUT"`
	} `yaml:"beaconapi"`

	Indexer struct {
		// fetches per second against the beacon node while syncing a range (0 = unthrottled)
		FetchRateLimit float64 `yaml:"fetchRateLimit" envconfig:"INDEXER_FETCH_RATE_LIMIT"`

		DisableSyncLoop  bool          `yaml:"disableSyncLoop" envconfig:"INDEXER_DISABLE_SYNC_LOOP"`
		SyncLoopInterval time.Duration `yaml:"syncLoopInterval" envconfig:"INDEXER_SYNC_LOOP_INTERVAL"`
	} `yaml:"indexer"`

	Database DatabaseConfig `yaml:"database"`
}
