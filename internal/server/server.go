// Package server wires the transport, auth, and engine layers into the
// per-connection request/response loop (spec.4.5's control flow). It
// replaces the source's global current_token / is_logged_in / database
// globals with one owned Context, per spec.9's design note on
// consolidating global mutable state into a server-scoped context.
package server

import (
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/Althra/SDSQL/internal/auth"
	"github.com/Althra/SDSQL/internal/engine"
	"github.com/Althra/SDSQL/internal/storage"
	"github.com/Althra/SDSQL/internal/transport"
)

// Config holds server startup parameters, per spec.6's server-startup
// contract.
type Config struct {
	ListenAddr    string
	AdminPassword string
	Backend       storage.Backend
	Logger        *zap.Logger
}

// Context is the server-scoped state every connection handler shares:
// the query engine, the user store, and the session token map. Per
// spec.5's concurrency model, the engine and store guard their own
// catalog/user-store mutation under internal locks; Context itself adds
// no further locking beyond connection bookkeeping.
type Context struct {
	Engine   *engine.Engine
	Users    *auth.Store
	Sessions *auth.SessionManager
	logger   *zap.Logger

	listener *transport.Listener
	wg       sync.WaitGroup
	quit     chan struct{}
}

// New constructs a server Context from cfg, initializing the user store
// (creating the default admin user if absent) and the query engine.
func New(cfg Config) (*Context, error) {
	store, err := auth.NewStore(cfg.Backend, cfg.AdminPassword, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("server: init user store: %w", err)
	}

	eng := engine.New(cfg.Backend, cfg.Logger)
	if lister, ok := cfg.Backend.(storage.DatabaseLister); ok {
		names, err := lister.ListDatabases()
		if err != nil {
			return nil, fmt.Errorf("server: list existing databases: %w", err)
		}
		var userNames []string
		for _, n := range names {
			if n != auth.SystemDatabase {
				userNames = append(userNames, n)
			}
		}
		if err := eng.LoadDatabases(userNames); err != nil {
			return nil, fmt.Errorf("server: hydrate catalog: %w", err)
		}
	}

	return &Context{
		Engine:   eng,
		Users:    store,
		Sessions: auth.NewSessionManager(),
		logger:   cfg.Logger,
		quit:     make(chan struct{}),
	}, nil
}

// ListenAndServe binds addr and runs the accept loop until Stop is
// called, per spec.6's "binds host:port, ... loops forever accepting
// clients" contract. It returns only on listen failure or Stop.
func (c *Context) ListenAndServe(addr string) error {
	listener, err := transport.Listen(addr)
	if err != nil {
		return err
	}
	c.listener = listener
	c.logger.Info("listening", zap.String("addr", listener.Addr().String()))

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-c.quit:
				return nil
			default:
				if isClosedErr(err) {
					return nil
				}
				c.logger.Error("accept failed", zap.Error(err))
				continue
			}
		}

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.handleConnection(conn)
		}()
	}
}

// Stop closes the listener and waits for every in-flight connection
// handler to return.
func (c *Context) Stop() {
	c.logger.Info("stopping server", zap.Int("active_sessions", c.Sessions.ActiveSessions()))
	close(c.quit)
	if c.listener != nil {
		c.listener.Close()
	}
	c.wg.Wait()
}

func isClosedErr(err error) bool {
	var netErr *net.OpError
	if ok := asNetOpError(err, &netErr); ok {
		return netErr.Err.Error() == "use of closed network connection"
	}
	return false
}

func asNetOpError(err error, target **net.OpError) bool {
	opErr, ok := err.(*net.OpError)
	if !ok {
		return false
	}
	*target = opErr
	return true
}
