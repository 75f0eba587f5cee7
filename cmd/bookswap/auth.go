package main

import (
	"github.com/spf13/cobra"
	"jo3qma.com/bookswap_client/internal/policy"
	"jo3qma.com/bookswap_client/internal/router"
	"jo3qma.com/bookswap_client/internal/usecase"
)

func newLoginCmd(withApp wrapper) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if a.router.Navigate(router.ViewLogin) != router.ViewLogin {
				a.render.Notice("Already logged in.")
				a.render.Session(a.sessions.Current())
				return nil
			}
			if password == "" {
				p, err := a.prompt("Password")
				if err != nil {
					return err
				}
				password = p
			}
			s, err := a.sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return fail(err)
			}
			a.render.Notice("Welcome back, " + s.FullName + "!")
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(withApp wrapper) *cobra.Command {
	var in usecase.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if a.router.Navigate(router.ViewLogin) != router.ViewLogin {
				a.render.Notice("Already logged in. Log out first to create another account.")
				return nil
			}
			if in.Password == "" {
				p, err := a.prompt("Password")
				if err != nil {
					return err
				}
				in.Password = p
			}
			if in.ConfirmPassword == "" {
				p, err := a.prompt("Confirm password")
				if err != nil {
					return err
				}
				in.ConfirmPassword = p
			}
			s, err := a.sessions.Register(cmd.Context(), in)
			if err != nil {
				return fail(err)
			}
			a.render.Notice("Account created. Welcome, " + s.FullName + "!")
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm-password", "", "password confirmation (prompted when omitted)")
	return cmd
}

func newLogoutCmd(withApp wrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			a.sessions.Logout()
			a.render.Notice("Logged out.")
			return nil
		}),
	}
}

func newWhoamiCmd(withApp wrapper) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			s := a.sessions.Current()
			a.render.Session(s)
			if s == nil || !remote {
				return nil
			}
			p, err := a.sessions.Profile(cmd.Context())
			if err != nil {
				return fail(err)
			}
			a.render.Notice("Member since " + p.CreatedAt.Format("2 Jan 2006"))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "verify the session against the server")
	return cmd
}

func newNavCmd(withApp wrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "nav [view]",
		Short: "Show the navigation, optionally moving to a view",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			current := a.router.Current()
			if len(args) == 1 {
				v, err := router.ParseView(args[0])
				if err != nil {
					return err
				}
				current = a.router.Navigate(v)
			}
			a.render.Navigation(policy.Navigation(a.sessions.Current()), current)
			return nil
		}),
	}
}
