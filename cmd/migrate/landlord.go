package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-core/internal/infrastructure/postgres"
)

func newLandlordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "landlord [up|down|status]",
		Short: "Migraciones de la base central (tenants, domains)",
	}
	for _, action := range migrationActions {
		cmd.AddCommand(&cobra.Command{
			Use:   action.name,
			Short: action.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := bootstrap()
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				pool, err := postgres.NewPool(ctx, cfg.DB)
				if err != nil {
					return fmt.Errorf("conexión landlord: %w", err)
				}
				defer pool.Close()
				m, err := postgres.NewMigrator(pool, postgres.LandlordMigrations, log.Zerolog())
				if err != nil {
					return err
				}
				return action.run(ctx, m)
			},
		})
	}
	return cmd
}

type migrationAction struct {
	name  string
	short string
	run   func(ctx context.Context, m *postgres.Migrator) error
}

var migrationActions = []migrationAction{
	{name: "up", short: "Aplica las migraciones pendientes", run: func(ctx context.Context, m *postgres.Migrator) error {
		return m.Up(ctx)
	}},
	{name: "down", short: "Revierte la última migración aplicada", run: func(ctx context.Context, m *postgres.Migrator) error {
		return m.Down(ctx)
	}},
	{name: "status", short: "Muestra la versión actual y las pendientes", run: printStatus},
}

func printStatus(ctx context.Context, m *postgres.Migrator) error {
	st, err := m.Status(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}
