package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"phPortfolio/internal/config"
	"phPortfolio/internal/database"
	"phPortfolio/internal/portfolio"
	"phPortfolio/internal/store"
)

var (
	seedUsername string
	seedPassword string
	exportPath   string
	importPath   string
)

var seedUserCmd = &cobra.Command{
	Use:     "seed-user",
	Short:   "Add an admin user",
	Example: `phportfolio-admin seed-user --username alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(seedUsername)
		if username == "" {
			return errors.New("missing required flag: --username")
		}
		password := seedPassword
		if password == "" {
			generated, err := generateRandomPassword(18)
			if err != nil {
				return err
			}
			password = generated
		}

		svc, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		id := svc.NewID()
		if _, err := svc.UpdateContent(cmd.Context(), "adminUsers", func(c *portfolio.Content) error {
			_, err := c.AddUser(id, username, password)
			return err
		}); err != nil {
			return fmt.Errorf("add user: %w", err)
		}

		cmd.Println("已创建管理员账号：")
		cmd.Println("用户名:", username)
		if seedPassword == "" {
			cmd.Println("初始密码:", password)
			cmd.Println("提示：该密码仅显示一次。")
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the {theme, portfolioData} backup as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(svc.Export(), "", "  ")
		if err != nil {
			return fmt.Errorf("encode backup: %w", err)
		}
		if exportPath == "" || exportPath == "-" {
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(exportPath, data, 0o600); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		cmd.Println("backup written to", exportPath)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace stored data with a backup file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if importPath == "" || importPath == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(importPath)
		}
		if err != nil {
			return fmt.Errorf("read backup: %w", err)
		}

		svc, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		if err := svc.Import(cmd.Context(), raw); err != nil {
			return err
		}
		cmd.Println("import completed")
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete stored data so defaults are served again",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		if err := svc.Reset(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("stored data removed; defaults will be used on next start")
		return nil
	},
}

func init() {
	seedUserCmd.Flags().StringVarP(&seedUsername, "username", "u", "", "Admin username (required)")
	seedUserCmd.Flags().StringVarP(&seedPassword, "password", "p", "", "Admin password (random when empty)")
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "-", "Output file, - for stdout")
	importCmd.Flags().StringVarP(&importPath, "in", "i", "-", "Input file, - for stdin")

	rootCmd.AddCommand(seedUserCmd, exportCmd, importCmd, resetCmd)
}

func openStore(ctx context.Context) (*store.Service, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dbCfg, err := config.LoadDatabase()
	if err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}
	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	svc := store.NewService(store.NewGormKV(db), slog.Default())
	if err := svc.Init(ctx); err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	return svc, nil
}

func generateRandomPassword(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
