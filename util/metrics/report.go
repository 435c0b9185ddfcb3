package metrics

import (
	"time"

	"github.com/Conflux-Chain/go-conflux-util/viper"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/metrics/influxdb"
	"github.com/sirupsen/logrus"
)

// Config is the metrics settings, with optional periodical report to InfluxDB.
type Config struct {
	Enabled  bool `default:"true"`
	Influxdb InfluxDBConfig
	Report   struct {
		Enabled  bool
		Interval time.Duration `default:"10s"`
	}
}

type InfluxDBConfig struct {
	Host      string `default:"http://127.0.0.1:8086"`
	DB        string `default:"evmrpc"`
	Username  string
	Password  string
	Namespace string
}

// MustInit enables metrics and starts to report to InfluxDB if configured.
//
// It should be called before any metric created, since `metrics.Enabled` in go-ethereum
// is false by default and noop metrics are created for static variables otherwise. Viper
// and logrus should be initialized already.
func MustInit() {
	var config Config
	viper.MustUnmarshalKey("metrics", &config)

	metrics.Enabled = config.Enabled

	if !metrics.Enabled || !config.Report.Enabled {
		return
	}

	db := config.Influxdb
	go influxdb.InfluxDB(
		EvmRegistry, config.Report.Interval, db.Host, db.DB, db.Username, db.Password, db.Namespace,
	)

	logrus.WithFields(logrus.Fields{
		"host":     db.Host,
		"db":       db.DB,
		"interval": config.Report.Interval,
	}).Info("Start to report metrics to influxdb periodically")
}
