// Command migrate aplica las migraciones embebidas del landlord y de las bases de tenant,
// y prepara una base de tenant recién creada.
//
//	migrate landlord up|down|status
//	migrate tenant up|down|status --database acme
//	migrate tenant install --database acme --company "Acme" --admin-email admin@acme.test --admin-password ...
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Migraciones del landlord y de las bases de tenant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLandlordCommand())
	root.AddCommand(newTenantCommand())
	return root
}

// bootstrap carga configuración y logger igual que la API.
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	return cfg, log, nil
}
