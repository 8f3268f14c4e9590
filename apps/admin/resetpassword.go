package main

import (
	"github.com/spf13/cobra"
)

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var login string

	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "reset a user's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if login == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			return cli.store.ResetPassword(commandContext(cmd), login, pwd)
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "the user's login. The password will be prompted next.")
	return cmd
}

func (cli *commandLine) adminPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adminpassword",
		Short: "change the admin panel password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			return cli.store.ChangeAdminPassword(commandContext(cmd), pwd)
		},
	}
}
