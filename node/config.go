package node

import (
	"time"

	"github.com/Conflux-Chain/go-conflux-util/viper"
	"github.com/sirupsen/logrus"
)

// Config is the full node settings to resolve block tags against the live chain.
type Config struct {
	URL            string
	Retry          int
	RetryInterval  time.Duration `default:"1s"`
	RequestTimeout time.Duration `default:"3s"`
}

func MustNewConfigFromViper() *Config {
	var cfg Config
	viper.MustUnmarshalKey("node", &cfg)

	logrus.WithField("config", cfg).Debug("Node configurations loaded")

	return &cfg
}
