package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
	logsvc "github.com/trezcool/internhub/services/logger"
	dummydb "github.com/trezcool/internhub/storage/database/dummy"
	"github.com/trezcool/internhub/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	conf := core.NewTestConfig()
	zl, err := logsvc.NewZap("admin", conf)
	require.NoError(t, err)

	// set up DB & repos
	db := dummydb.Open()
	usrRepo = dummydb.NewUserRepository(db)

	// start CLI
	return &commandLine{
		usrSvc: user.NewService(usrRepo),
		rptSvc: report.NewService(dummydb.NewReportRepository(db)),
		wfSvc:  workflow.NewService(dummydb.NewWorkflowRepository(db), usrRepo),
		logger: logsvc.NewRollbarLogger(zl, conf),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case err == nil:
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v %s", tt.wantErr, tt.wantErrStr)
		}
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	runMigrationsFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "attachments", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no name", args: []string{"adduser", "-email", "new@test.cd"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "new@test.cd", "-name", "New"}, wantErr: errHelp},
		{
			name: "weak password", args: []string{"adduser", "-email", "new@test.cd", "-name", "New"}, extra: extra{pwd: "12345678"},
			wantErrStr: "invalid password: password cannot be entirely numeric",
		},
		{name: "create student", args: []string{"adduser", "-email", " New@Test.cd", "-name", "New"}, extra: extra{pwd: "S3cure-pwd"}},
		{name: "promote to admin", args: []string{"adduser", "-email", "new@test.cd", "-name", "New Admin", "-admin"}, extra: extra{pwd: "S3cure-pwd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	usr, err := usrRepo.GetUserByEmail(ctx, "new@test.cd")
	require.NoError(t, err)
	assert.Equal(t, "New Admin", usr.Name)
	assert.Equal(t, user.RoleAdmin, usr.Role)
	assert.NoError(t, usr.CheckPassword("S3cure-pwd"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, usrRepo, "User", "awe@test.cd", "0ld-passw0rd", user.RoleStudent, user.StatusActive)
	usr.MustResetPassword = true
	usr, err := usrRepo.UpdateUser(ctx, usr)
	require.NoError(t, err)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "N3w-passw0rd"}, wantErr: user.ErrNotFound},
		{
			name: "weak password", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "short"},
			wantErrStr: "invalid password: password must contain at least 8 characters",
		},
		{name: "reset", args: []string{"resetpassword", "-email", "AWE@test.cd"}, extra: extra{pwd: "N3w-passw0rd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	refreshed, err := usrRepo.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("N3w-passw0rd"))
	assert.False(t, refreshed.MustResetPassword)
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ { // idempotent
		require.NoError(t, cli.run([]string{"admin", "seed"}))
	}

	for _, su := range seedUsers {
		usr, err := usrRepo.GetUserByEmail(ctx, su.Email)
		require.NoError(t, err, su.Email)
		assert.Equal(t, su.Role, usr.Role)
		assert.NoError(t, usr.CheckPassword(su.pwd))
	}
	maria, err := usrRepo.GetUserByEmail(ctx, "maria.garcia@mail.com")
	require.NoError(t, err)
	assert.Equal(t, user.StatusInactive, maria.Status)

	wfs, err := cli.wfSvc.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, wfs, 2)
	for _, wf := range wfs {
		require.Len(t, wf.Assignments, 1)
		assert.Equal(t, workflow.StatusInProgress, wf.Assignments[0].Status)
	}

	rpts, err := cli.rptSvc.Query(ctx, report.Scope{})
	require.NoError(t, err)
	require.Len(t, rpts, 1)
	assert.Len(t, rpts[0].VideoEntries, 1)
	assert.Len(t, rpts[0].QuizEntries, 1)
}
