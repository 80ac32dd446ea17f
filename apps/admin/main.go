package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
	logsvc "github.com/trezcool/internhub/services/logger"
	"github.com/trezcool/internhub/storage/database"
	sqlxrepos "github.com/trezcool/internhub/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap("admin", conf)
	if err != nil {
		log.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(zl, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)

	// start CLI
	cli := commandLine{
		db:     db.DB,
		usrSvc: user.NewService(usrRepo),
		rptSvc: report.NewService(sqlxrepos.NewReportRepository(db)),
		wfSvc:  workflow.NewService(sqlxrepos.NewWorkflowRepository(db), usrRepo),
		logger: logger,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("admin %v", err), err)
		}
		os.Exit(1)
	}
}
