package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core/user"
)

// addUser creates an admin user.User, or resets the password of an existing account with that email.
func (cli *commandLine) addUser(name, email, pwd string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !usr.IsAdmin() {
			return errors.Errorf("%s is a %s account", usr.Email, usr.Role)
		}
		_, err = cli.usrSvc.SetPassword(ctx, usr, pwd)
		return err
	case errors.Cause(err) != user.ErrNotFound:
		return err
	}

	usr = user.User{
		Name:  name,
		Email: email,
		Role:  user.RoleAdmin,
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrSvc.Create(ctx, usr)
	return err
}
