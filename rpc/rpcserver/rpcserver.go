package rpcserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/virel-project/virel-social/rpc"
	"github.com/virel-project/virel-social/util/ratelimit"

	"github.com/pkg/errors"
)

type Server struct {
	handlers map[string]Handler
	config   Config

	limit   *ratelimit.Limit
	httpSrv *http.Server
}
type Handler = func(c *Context)

type Config struct {
	// When true, the RPC server will block CORS requests from origins other than localhost.
	Restricted bool

	// The username:password used in Basic Auth. Leave blank to disable authentication.
	Authentication string

	// The maximum number of requests per minute from a single IP address. Default is 500.
	RateLimit int
}

func New(config Config) *Server {
	if config.RateLimit == 0 {
		config.RateLimit = 500
	}

	return &Server{
		handlers: make(map[string]Handler),
		config:   config,
		limit:    ratelimit.New(config.RateLimit),
	}
}

func (s *Server) Handle(method string, f Handler) {
	s.handlers[method] = f
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := s.handler(w, r)
	if err != nil {
		rpc.Log.NetDev("rpc request from", r.RemoteAddr, "failed:", err)
	}
}

// Start listens on bind and serves in the background. It returns the address actually bound, which
// differs from bind when the port is 0.
func (s *Server) Start(bind string) (net.Addr, error) {
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, errors.Wrapf(err, "rpc server listen on %s", bind)
	}

	s.httpSrv = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		err := s.httpSrv.Serve(ln)
		if err != nil && err != http.ErrServerClosed {
			rpc.Log.Err("rpc server stopped:", err)
		}
	}()

	rpc.Log.Info("RPC server listening on", ln.Addr())

	return ln.Addr(), nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
