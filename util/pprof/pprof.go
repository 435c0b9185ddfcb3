package pprof

import (
	"net/http"
	"net/http/pprof"

	"github.com/Conflux-Chain/go-conflux-util/viper"
	"github.com/sirupsen/logrus"
)

// Config is the runtime profiling settings.
type Config struct {
	Enabled      bool
	HttpEndpoint string `default:"127.0.0.1:6060"`
}

// NewHandler creates a http handler that serves runtime profiling data under `/debug/pprof/`.
func NewHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return mux
}

// MustInit starts to serve runtime profiling data in background if enabled. It should be
// called after the initialization of viper and logrus.
func MustInit() {
	var config Config
	viper.MustUnmarshalKey("pprof", &config)

	if !config.Enabled {
		return
	}

	logger := logrus.WithField("endpoint", config.HttpEndpoint)

	go func() {
		logger.Info("Start to serve runtime profiling data")

		if err := http.ListenAndServe(config.HttpEndpoint, NewHandler()); err != nil {
			logger.WithError(err).Error("Failed to serve runtime profiling data")
		}
	}()
}
