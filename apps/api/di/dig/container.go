package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/trezcool/internhub/apps/api/echo"
	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/progress"
	"github.com/trezcool/internhub/core/reference"
	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/student"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
	emailsvc "github.com/trezcool/internhub/services/email"
	logsvc "github.com/trezcool/internhub/services/logger"
	"github.com/trezcool/internhub/storage/database"
	dummydb "github.com/trezcool/internhub/storage/database/dummy"
	sqlxrepos "github.com/trezcool/internhub/storage/database/sqlx"
)

// EngineMemory keeps everything in memory: handy for demos, lost on exit.
const EngineMemory = "memory"

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Repositories are the storage implementations picked by Config.Database.Engine.
	Repositories struct {
		dig.Out
		User      user.Repository
		Student   student.Repository
		Report    report.Repository
		Workflow  workflow.Repository
		Reference reference.Repository
	}

	serverParams struct {
		dig.In
		Conf         *core.Config
		Logger       core.Logger
		UserSvc      *user.Service
		StudentSvc   *student.Service
		ReportSvc    *report.Service
		ProgressSvc  *progress.Service
		WorkflowSvc  *workflow.Service
		ReferenceSvc *reference.Service
		Validate     *validator.Validate
		Translator   ut.Translator
	}
)

func newZap(name string, conf *core.Config) *zap.SugaredLogger {
	zl, err := logsvc.NewZap(name, conf)
	if err != nil {
		log.Fatal(errors.Wrap(err, "building zap logger"))
	}
	return zl
}

func newAPIZap(conf *core.Config) *zap.SugaredLogger {
	return newZap("api", conf)
}

func newLogger(zl *zap.SugaredLogger, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zl, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(newZap("db", conf), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

// newDB returns a nil *sqlx.DB with the memory engine.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.Engine == EngineMemory {
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newRepositories(conf *core.Config, db *sqlx.DB) Repositories {
	if conf.Database.Engine == EngineMemory {
		mem := dummydb.Open()
		return Repositories{
			User:      dummydb.NewUserRepository(mem),
			Student:   dummydb.NewStudentRepository(mem),
			Report:    dummydb.NewReportRepository(mem),
			Workflow:  dummydb.NewWorkflowRepository(mem),
			Reference: dummydb.NewReferenceRepository(mem),
		}
	}
	return Repositories{
		User:      sqlxrepos.NewUserRepository(db),
		Student:   sqlxrepos.NewStudentRepository(db),
		Report:    sqlxrepos.NewReportRepository(db),
		Workflow:  sqlxrepos.NewWorkflowRepository(db),
		Reference: sqlxrepos.NewReferenceRepository(db),
	}
}

func newEmailService(zl *zap.SugaredLogger, logger core.Logger, conf *core.Config) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(zl.Named("mail"), logger, conf)
	}
	return emailsvc.NewSendgridService(logger, conf)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newWorkflowQuerier(svc *workflow.Service) progress.WorkflowQuerier {
	return svc
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		UserSvc:      p.UserSvc,
		StudentSvc:   p.StudentSvc,
		ReportSvc:    p.ReportSvc,
		ProgressSvc:  p.ProgressSvc,
		WorkflowSvc:  p.WorkflowSvc,
		ReferenceSvc: p.ReferenceSvc,
		Validate:     p.Validate,
		Translator:   p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newAPIZap))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(report.NewService))
	must(c.Provide(workflow.NewService))
	must(c.Provide(newWorkflowQuerier))
	must(c.Provide(progress.NewService))
	must(c.Provide(reference.NewService))
	must(c.Provide(newServer))

	if os.Getenv("DIG_VISUALIZE") != "" {
		_ = dig.Visualize(c, os.Stdout)
	}

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
