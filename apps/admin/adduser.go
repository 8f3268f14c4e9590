package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/classpoint/assistant/core/school"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var name, class string
	var admin bool

	cmd := &cobra.Command{
		Use:   "adduser LOGIN",
		Short: "create a user, or update it if the login is taken; the password is prompted next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			role := school.RoleStudent
			if admin {
				role = school.RoleAdmin
			}
			usr, err := cli.addUser(cmd, args[0], pwd, name, class, role)
			if err != nil {
				return err
			}
			cli.printf("user %q saved (id %d)\n", usr.Login, usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name of the user")
	cmd.Flags().StringVar(&class, "class", "", "class of the student")
	cmd.Flags().BoolVar(&admin, "admin", false, "create an administrator")
	return cmd
}

// addUser updates or creates a school.User
func (cli *commandLine) addUser(cmd *cobra.Command, login, pwd, name, class, role string) (school.User, error) {
	ctx := commandContext(cmd)

	usr, err := cli.store.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Cause(err) != school.ErrNotFound {
			return school.User{}, err
		}
		if name == "" {
			name = login
		}
		return cli.store.Register(ctx, school.NewUser{
			Login:    login,
			Password: pwd,
			Name:     name,
			Class:    class,
			Role:     role,
		})
	}

	data := school.UpdateUser{Password: &pwd, Role: &role}
	if name != "" {
		data.Name = &name
	}
	if class != "" {
		data.Class = &class
	}
	return cli.store.UpdateUser(ctx, usr.ID, data)
}
