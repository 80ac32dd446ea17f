package main

import (
	"context"
	"fmt"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/user"
)

// addUser updates or creates the account of email. Its password must pass the policy.
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	if msg := user.CheckPasswordPolicy(pwd, name, email); msg != "" {
		return fmt.Errorf("invalid password: %s", msg)
	}

	usr := user.User{Name: name, Email: email, Role: user.RoleStudent}
	if isAdmin {
		usr.Role = user.RoleAdmin
	}
	usr, err := cli.usrSvc.AddUser(context.Background(), usr, pwd)
	if err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("%s %s saved", usr.Role, usr.Email))
	return nil
}
