package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/user"
	logsvc "github.com/vidyalaya/vidyalaya/services/logger"
	"github.com/vidyalaya/vidyalaya/storage"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.Timeout)
	store, err := storage.Open(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal("setting up storage", err)
	}

	var db *sql.DB
	if store.SQL != nil {
		db = store.SQL.DB
	}

	// start CLI
	cli := commandLine{
		db:     db,
		usrSvc: user.NewService(store.Users),
	}
	err = cli.run(os.Args)
	_ = store.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
