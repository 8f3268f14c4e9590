package main

import (
	"context"
	"fmt"
	"log"

	echoapi "github.com/classpoint/assistant/apps/api/echo"
	"github.com/classpoint/assistant/core"
	"github.com/classpoint/assistant/core/school"
	logsvc "github.com/classpoint/assistant/services/logger"
	"github.com/classpoint/assistant/storage"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zapLogger, err := logsvc.NewZapLogger("api", conf.Debug)
	if err != nil {
		log.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(zapLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer func() { _ = logger.Sync() }()

	storageLogger := logsvc.NewRollbarLogger(zapLogger.Named("storage"), conf)
	storageLogger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up storage
	backend, err := storage.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening %s storage: %v", conf.Storage.Engine, err), err)
	}
	defer func() {
		if err = backend.Close(); err != nil {
			storageLogger.Error("Failed to close", err)
		}
	}()

	store := school.NewStore(backend, storageLogger, school.OptionsFromConfig(conf))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:   conf,
			Logger: logger,
			Store:  store,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
