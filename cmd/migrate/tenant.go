package main

import (
	"context"
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/usecase"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

const (
	companyFlag       = "company"
	currencyFlag      = "currency"
	countryFlag       = "country"
	timezoneFlag      = "timezone"
	adminEmailFlag    = "admin-email"
	adminNameFlag     = "admin-name"
	adminPasswordFlag = "admin-password"
)

// database base del tenant; la comparten todos los subcomandos de tenant.
var database string

var installFlags = map[string]cobraflags.Flag{
	companyFlag: &cobraflags.StringFlag{
		Name:  companyFlag,
		Value: "",
		Usage: "Nombre de la primera empresa (requerido)",
	},
	currencyFlag: &cobraflags.StringFlag{
		Name:  currencyFlag,
		Value: "",
		Usage: "Moneda ISO 4217 de la empresa (por defecto la del sistema)",
	},
	countryFlag: &cobraflags.StringFlag{
		Name:  countryFlag,
		Value: "",
		Usage: "País ISO 3166-1 alfa-2 de la empresa",
	},
	timezoneFlag: &cobraflags.StringFlag{
		Name:  timezoneFlag,
		Value: "",
		Usage: "Zona horaria IANA de la empresa",
	},
	adminEmailFlag: &cobraflags.StringFlag{
		Name:  adminEmailFlag,
		Value: "",
		Usage: "Email del administrador (requerido)",
	},
	adminNameFlag: &cobraflags.StringFlag{
		Name:  adminNameFlag,
		Value: "Administrator",
		Usage: "Nombre del administrador",
	},
	adminPasswordFlag: &cobraflags.StringFlag{
		Name:  adminPasswordFlag,
		Value: "",
		Usage: "Contraseña del administrador, mínimo 8 caracteres (requerido)",
	},
}

func newTenantCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant [up|down|status|seed|install]",
		Short: "Migraciones y preparación de la base de un tenant",
	}
	cmd.PersistentFlags().StringVar(&database, "database", "", "Nombre de la base de datos del tenant (requerido)")

	for _, action := range migrationActions {
		cmd.AddCommand(&cobra.Command{
			Use:   action.name,
			Short: action.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withTenantPool(cmd.Context(), func(cfg *config.Config, log *logger.Logger, pool *pgxpool.Pool) error {
					m, err := postgres.NewMigrator(pool, postgres.TenantMigrations, log.With().Str("database", database).Logger())
					if err != nil {
						return err
					}
					return action.run(cmd.Context(), m)
				})
			},
		})
	}
	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newInstallCommand())
	return cmd
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Crea los roles de sistema que falten (idempotente)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withTenantPool(ctx, func(cfg *config.Config, log *logger.Logger, pool *pgxpool.Pool) error {
				setup := usecase.NewSetupUseCase(singleStore{postgres.NewStore(pool, cfg.Sequence.LockTimeout)})
				if err := setup.SeedSystemRoles(ctx); err != nil {
					return err
				}
				log.Info().Str("database", database).Msg("roles de sistema sembrados")
				return nil
			})
		},
	}
}

func newInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Siembra roles y crea la primera empresa con su administrador",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			in := usecase.InstallRequest{
				Company: dto.CreateCompanyRequest{
					Name:         installFlags[companyFlag].GetString(),
					CurrencyCode: installFlags[currencyFlag].GetString(),
					CountryCode:  installFlags[countryFlag].GetString(),
					Timezone:     installFlags[timezoneFlag].GetString(),
				},
				Admin: dto.CreateUserRequest{
					Email:    installFlags[adminEmailFlag].GetString(),
					Name:     installFlags[adminNameFlag].GetString(),
					Password: installFlags[adminPasswordFlag].GetString(),
				},
			}
			if in.Company.Name == "" || in.Admin.Email == "" || in.Admin.Password == "" {
				return fmt.Errorf("--%s, --%s y --%s son requeridos", companyFlag, adminEmailFlag, adminPasswordFlag)
			}
			return withTenantPool(ctx, func(cfg *config.Config, log *logger.Logger, pool *pgxpool.Pool) error {
				setup := usecase.NewSetupUseCase(singleStore{postgres.NewStore(pool, cfg.Sequence.LockTimeout)})
				company, admin, err := setup.Install(ctx, in)
				if err != nil {
					return err
				}
				fmt.Printf("empresa %s (%s)\nadministrador %s (%s)\n", company.Name, company.ID, admin.Email, admin.ID)
				return nil
			})
		},
	}
	cobraflags.RegisterMap(cmd, installFlags)
	return cmd
}

// withTenantPool abre un pool corto contra la base indicada en --database.
func withTenantPool(ctx context.Context, fn func(cfg *config.Config, log *logger.Logger, pool *pgxpool.Pool) error) error {
	if database == "" {
		return fmt.Errorf("--database es requerido")
	}
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	pool, err := postgres.NewPoolFromDSN(ctx, cfg.Tenancy.TenantDSN(cfg.DB, database), postgres.PoolOptions{MaxConns: 2})
	if err != nil {
		return fmt.Errorf("conexión tenant %s: %w", database, err)
	}
	defer pool.Close()
	return fn(cfg, log, pool)
}

// singleStore entrega siempre el mismo Store: la CLI trabaja sobre una sola base, sin tenant en contexto.
type singleStore struct {
	store repository.Store
}

func (s singleStore) Store(context.Context) (repository.Store, error) { return s.store, nil }
