package main

import (
	"log"
	"os"

	"github.com/classpoint/assistant/core"
	"github.com/classpoint/assistant/core/school"
	logsvc "github.com/classpoint/assistant/services/logger"
	"github.com/classpoint/assistant/storage"
)

func main() {
	conf := core.NewConfig()

	zapLogger, err := logsvc.NewZapLogger("admin", conf.Debug)
	if err != nil {
		log.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(zapLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up storage
	backend, err := storage.Open(conf)
	if err != nil {
		logger.Fatal("opening storage", err)
	}

	// start CLI
	cli := commandLine{
		store: school.NewStore(backend, logger, school.OptionsFromConfig(conf)),
		out:   os.Stdout,
	}
	err = cli.run(os.Args)

	if cErr := backend.Close(); cErr != nil {
		logger.Error("closing storage", cErr)
	}
	_ = logger.Sync()

	if err != nil {
		if err != errHelp {
			log.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
