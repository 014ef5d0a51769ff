// Package app assembles the greeting, counter and hash services from the
// shared platform and their route packages.
package app

import (
	"net/http"
	"time"

	"github.com/janisto/huma-hashchain/internal/http/counter"
	"github.com/janisto/huma-hashchain/internal/http/greeting"
	"github.com/janisto/huma-hashchain/internal/http/hash"
	"github.com/janisto/huma-hashchain/internal/http/health"
	"github.com/janisto/huma-hashchain/internal/platform/config"
	"github.com/janisto/huma-hashchain/internal/platform/server"
	svccounter "github.com/janisto/huma-hashchain/internal/service/counter"
	"github.com/janisto/huma-hashchain/internal/service/persistence"
)

// writeTimeoutMargin leaves room to render the 502 after the counter fetch times out.
const writeTimeoutMargin = 5 * time.Second

// Service names, used for the OpenAPI title, health payloads and logs.
const (
	GreetingName = "greeting"
	CounterName  = "counter"
	HashName     = "hash"
)

func newServer(name, version string, cfg config.Config, writeTimeout time.Duration) *server.Server {
	return server.New(server.Config{
		Name:            name,
		Version:         version,
		Port:            cfg.Port,
		AdminPort:       cfg.AdminPort,
		ShutdownTimeout: cfg.ShutdownTimeout,
		WriteTimeout:    writeTimeout,
	})
}

// HashWriteTimeout returns a response write deadline that outlasts the
// counter fetch, so a timed-out fetch still yields a complete 502 body.
func HashWriteTimeout(fetchTimeout time.Duration) time.Duration {
	return max(server.DefaultWriteTimeout, fetchTimeout+writeTimeoutMargin)
}

// NewGreeting builds the greeting service.
func NewGreeting(cfg config.Config, version string) *server.Server {
	s := newServer(GreetingName, version, cfg, 0)
	health.Register(s.AdminAPI(), GreetingName, nil)
	greeting.Register(s.API())
	return s
}

// NewCounter builds the counter service around a fresh counter starting at 1.
func NewCounter(cfg config.Config, version string) *server.Server {
	s := newServer(CounterName, version, cfg, 0)
	c := svccounter.New()
	health.Register(s.AdminAPI(), CounterName, c.Peek)
	counter.Register(s.API(), c)
	return s
}

// NewHash builds the hash service with a client for cfg.PersistenceAddr.
func NewHash(cfg config.Config, version string) *server.Server {
	client := persistence.NewClient(
		&http.Client{Timeout: persistenceTimeout(cfg)},
		persistence.WithAddr(cfg.PersistenceAddr),
	)
	return NewHashWithService(cfg, version, client)
}

// NewHashWithService builds the hash service on an arbitrary persistence.Service.
func NewHashWithService(cfg config.Config, version string, svc persistence.Service) *server.Server {
	s := newServer(HashName, version, cfg, HashWriteTimeout(persistenceTimeout(cfg)))
	health.Register(s.AdminAPI(), HashName, nil)
	hash.Register(s.API(), svc)
	return s
}

func persistenceTimeout(cfg config.Config) time.Duration {
	if cfg.PersistenceTimeout <= 0 {
		return persistence.DefaultTimeout
	}
	return cfg.PersistenceTimeout
}
