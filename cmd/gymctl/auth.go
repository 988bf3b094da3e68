package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/fitness-manager/internal/client"
	"github.com/example/fitness-manager/internal/gym"
)

var (
	loginPassword string

	registerName     string
	registerEmail    string
	registerPassword string
	registerGender   string
	registerAge      int
)

var loginCmd = &cobra.Command{
	Use:   "login EMAIL",
	Short: "Sign in and store the session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFrom(cmd, loginPassword)
		if err != nil {
			return err
		}
		principal, err := agg.Login(cmd.Context(), args[0], password)
		var loadErr *client.LoadError
		if errors.As(err, &loadErr) {
			warn("could not load %s: %v", loadErr.Collection, loadErr.Err)
		} else if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := writeToken(tokenFile, api.Token()); err != nil {
			return err
		}
		color.Green("✓ signed in as %s (%s)", principal.Email, principal.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := agg.Logout(cmd.Context())
		if werr := writeToken(tokenFile, ""); werr != nil {
			return werr
		}
		if err != nil {
			warn("server did not revoke the session: %v", err)
		}
		color.Green("✓ signed out")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a student account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if registerName == "" || registerEmail == "" {
			return errors.New("--name and --email are required")
		}
		password, err := passwordFrom(cmd, registerPassword)
		if err != nil {
			return err
		}

		user := gym.User{Name: registerName, Email: registerEmail}
		if registerGender != "" {
			user.Gender = &registerGender
		}
		if registerAge > 0 {
			user.Age = &registerAge
		}

		created, err := api.Register(cmd.Context(), user, password)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		color.Green("✓ registered user %d, sign in with 'gymctl login %s'", created.UserID, created.Email)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (read from stdin when omitted)")

	registerCmd.Flags().StringVar(&registerName, "name", "", "full name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email address")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "password (read from stdin when omitted)")
	registerCmd.Flags().StringVar(&registerGender, "gender", "", "gender")
	registerCmd.Flags().IntVar(&registerAge, "age", 0, "age in years")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd)
}

func passwordFrom(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}
