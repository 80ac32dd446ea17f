package main

import (
	"context"
	"fmt"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/user"
)

// resetPassword sets the password of email and lifts any forced reset.
func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if msg := user.CheckPasswordPolicy(pwd, usr.Name, usr.Email); msg != "" {
		return fmt.Errorf("invalid password: %s", msg)
	}
	if _, err = cli.usrSvc.SetPassword(ctx, usr, pwd); err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("password of %s reset", usr.Email))
	return nil
}
