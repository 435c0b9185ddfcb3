package rpc

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Conflux-Chain/confura-evm/util/rpc/handlers"
	"github.com/openweb3/go-rpc-provider"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Protocol string

const (
	ProtocolHttp = "HTTP"
	ProtocolWS   = "WS"
)

var (
	// DefaultShutdownTimeout is default timeout to shutdown RPC server.
	DefaultShutdownTimeout = 3 * time.Second

	// defaultWsPingInterval the default websocket ping/pong heartbeating interval.
	defaultWsPingInterval = 10 * time.Second
)

// ServerConfig is the HTTP settings of RPC server. CORS is disabled if no origin allowed,
// and only IP hosts are served if no virtual host allowed.
type ServerConfig struct {
	Cors           []string
	VHosts         []string
	WsPingInterval time.Duration `default:"10s"`
}

// Server serves JSON RPC services.
type Server struct {
	name    string
	servers map[Protocol]*http.Server
}

// MustNewServer creates an instance of Server with specified RPC services, or exits on error.
func MustNewServer(
	name string, config *ServerConfig, rpcs map[string]any, middlewares ...handlers.Middleware,
) *Server {
	server, err := NewServer(name, config, rpcs, middlewares...)
	if err != nil {
		logrus.WithError(err).WithField("name", name).Fatal("Failed to create RPC server")
	}

	return server
}

// NewServer creates an instance of Server with specified RPC services. Middlewares are
// applied to HTTP requests in order.
func NewServer(
	name string, config *ServerConfig, rpcs map[string]any, middlewares ...handlers.Middleware,
) (*Server, error) {
	handler := rpc.NewServer()
	servedApis := make([]string, 0, len(rpcs))

	for namespace, impl := range rpcs {
		if err := handler.RegisterName(namespace, impl); err != nil {
			return nil, errors.WithMessagef(err, "failed to register rpc service %v", namespace)
		}
		servedApis = append(servedApis, namespace)
	}

	logrus.WithFields(logrus.Fields{
		"APIs": servedApis,
		"name": name,
	}).Info("RPC server APIs registered")

	httpServer := http.Server{
		Handler: newHTTPHandlerStack(handler, config.Cors, config.VHosts),
	}

	wsPingInterval := config.WsPingInterval
	if wsPingInterval == 0 {
		wsPingInterval = defaultWsPingInterval
	}

	wsServer := http.Server{
		Handler: handler.WebsocketHandler(config.Cors, rpc.WebsocketOption{
			WsPingInterval: wsPingInterval,
		}),
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		httpServer.Handler = middlewares[i](httpServer.Handler)
		wsServer.Handler = middlewares[i](wsServer.Handler)
	}

	return &Server{
		name: name,
		servers: map[Protocol]*http.Server{
			ProtocolHttp: &httpServer,
			ProtocolWS:   &wsServer,
		},
	}, nil
}

// Handler returns the http handler of protocol, or nil if the protocol unsupported.
func (s *Server) Handler(protocol Protocol) http.Handler {
	if server, ok := s.servers[protocol]; ok {
		return server.Handler
	}

	return nil
}

// MustServe serves RPC server in blocking way or panics if failed.
func (s *Server) MustServe(endpoint string, protocol Protocol) {
	logger := logrus.WithFields(logrus.Fields{
		"name":     s.name,
		"endpoint": endpoint,
		"protocol": protocol,
	})

	server, ok := s.servers[protocol]
	if !ok {
		logger.Fatal("RPC protocol unsupported")
	}

	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		logger.WithError(err).Fatal("Failed to listen to endpoint")
	}

	logger.Info("JSON RPC server started")

	server.Serve(listener)
}

// MustServeGraceful serves RPC server in a goroutine until graceful shutdown.
func (s *Server) MustServeGraceful(
	ctx context.Context, wg *sync.WaitGroup, endpoint string, protocol Protocol,
) {
	wg.Add(1)
	defer wg.Done()

	go s.MustServe(endpoint, protocol)

	<-ctx.Done()

	s.shutdown(protocol)
}

func (s *Server) shutdown(protocol Protocol) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	logger := logrus.WithFields(logrus.Fields{
		"name":     s.name,
		"protocol": protocol,
	})

	if err := s.servers[protocol].Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Failed to shutdown RPC server")
	} else {
		logger.Info("Succeed to shutdown RPC server")
	}
}

func (s *Server) String() string { return s.name }
