package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mizuchi/internal/repository"
	"mizuchi/internal/repository/db"
	"mizuchi/internal/service"
)

func createSuperuserCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an API user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("--username cannot be empty")
			}
			if password == "" {
				password, err = promptPassword()
				if err != nil {
					return err
				}
			}

			conn, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.EnsureSchema(conn); err != nil {
				return err
			}

			repos := repository.NewRepository(conn)
			auth := service.NewAuthService(repos.Auth, cfg.SecretKey)
			id, err := auth.CreateUser(username, password)
			if err != nil {
				return err
			}
			log.Infow("user created", "username", username, "id", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username for the new user")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(0)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Print("Password (again): ")
	second, err := term.ReadPassword(0)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) == 0 {
		return "", errors.New("password cannot be empty")
	}
	return string(first), nil
}
