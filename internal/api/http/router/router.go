package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/examshare/examshare-client/internal/api/http/handler"
	"github.com/examshare/examshare-client/internal/api/http/middleware"
	"github.com/examshare/examshare-client/internal/logger"
	"github.com/examshare/examshare-client/internal/model"
)

// Router wires the local proxy routes.
type Router struct {
	client         handler.Doer
	loginPath      string
	gatherer       prometheus.Gatherer
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates a Router. gatherer may be nil, in which case /metrics is not served.
func New(
	client handler.Doer,
	loginPath string,
	gatherer prometheus.Gatherer,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		client:         client,
		loginPath:      loginPath,
		gatherer:       gatherer,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the handler tree:
//
//	/api/{rest}  forwarded to the API with the stored credentials
//	/metrics     Prometheus exposition
//	/healthz     liveness
func (r *Router) Register() http.Handler {
	requestID := middleware.NewRequestID(r.contextManager)
	logging := middleware.NewLogging(r.logger, r.contextManager)

	m := mux.NewRouter()
	m.Use(requestID.Handle, logging.Handle)

	m.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)
	if r.gatherer != nil {
		m.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	proxy := handler.NewProxy(r.client, r.loginPath, r.contextManager, r.logger)
	m.Handle("/api/{rest:.*}", proxy)

	return m
}
