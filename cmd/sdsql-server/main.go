package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Althra/SDSQL/internal/pkg/logging"
	"github.com/Althra/SDSQL/internal/server"
	"github.com/Althra/SDSQL/internal/storage"
	"github.com/Althra/SDSQL/internal/storage/filestore"
	"github.com/Althra/SDSQL/internal/storage/memstore"
	"github.com/Althra/SDSQL/internal/transport"
)

func main() {
	addr := flag.String("addr", transport.DefaultListenAddr, "address to listen on")
	dataDir := flag.String("data-dir", "", "directory to persist databases under; empty runs in-memory only")
	adminPassword := flag.String("admin-password", "123456", "password for the default admin user")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logConf := logging.DefaultConfig()
	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sdsql-server: invalid log level: %v\n", err)
		os.Exit(1)
	}
	logConf.Level = zap.NewAtomicLevelAt(level)

	logger, err := logConf.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sdsql-server: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var backend storage.Backend
	if *dataDir != "" {
		backend, err = filestore.New(*dataDir, logger)
		if err != nil {
			logger.Error("failed to initialize filestore", zap.Error(err))
			os.Exit(1)
		}
	} else {
		backend = memstore.New()
		logger.Warn("no -data-dir given, running with an in-memory, non-persistent store")
	}

	ctx, err := server.New(server.Config{
		ListenAddr:    *addr,
		AdminPassword: *adminPassword,
		Backend:       backend,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to initialize server", zap.Error(err))
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		ctx.Stop()
	}()

	if err := ctx.ListenAndServe(*addr); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}
