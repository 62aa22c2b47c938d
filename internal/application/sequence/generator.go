// Package sequence entrega números de documento consecutivos por empresa, tipo y año.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/logger"
)

var typePattern = regexp.MustCompile(`^[a-z][a-z0-9_.-]{0,49}$`)

// Config reintentos ante contención de bloqueo.
type Config struct {
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Generator reserva consecutivos sobre el almacén del tenant.
// Cada valor se entrega una sola vez; con Next un rollback posterior del llamador deja un hueco,
// con NextIn el número se deshace junto con la transacción del documento.
type Generator struct {
	stores repository.StoreProvider
	cfg    Config
	now    func() time.Time
}

// NewGenerator construye el generador. MaxAttempts < 1 se trata como 1.
func NewGenerator(stores repository.StoreProvider, cfg Config) *Generator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Generator{stores: stores, cfg: cfg, now: time.Now}
}

// Next reserva el siguiente número en su propia transacción y lo devuelve formateado.
// year 0 = año en curso. Reintenta la transacción completa ante domain.ErrSequenceContention.
func (g *Generator) Next(ctx context.Context, companyID, docType string, year int) (string, error) {
	key, err := g.key(ctx, companyID, docType, year)
	if err != nil {
		return "", err
	}
	store, err := g.stores.Store(ctx)
	if err != nil {
		return "", err
	}
	var out string
	err = g.Retry(ctx, func(ctx context.Context) error {
		return store.WithinTx(ctx, func(tx repository.Store) error {
			seq, err := tx.Sequences().Increment(ctx, key, entity.DefaultSequenceDefaults(key.Type))
			if err != nil {
				return err
			}
			out = seq.Format(seq.Current)
			return nil
		})
	})
	if err != nil {
		return "", fmt.Errorf("consecutivo %s: %w", key, err)
	}
	return out, nil
}

// NextIn reserva el siguiente número con repo, que normalmente pertenece a la transacción del llamador.
// No reintenta: la contención se propaga para que el llamador repita su unidad de trabajo con Retry.
func (g *Generator) NextIn(ctx context.Context, repo repository.SequenceRepository, companyID, docType string, year int) (string, error) {
	key, err := g.key(ctx, companyID, docType, year)
	if err != nil {
		return "", err
	}
	seq, err := repo.Increment(ctx, key, entity.DefaultSequenceDefaults(key.Type))
	if err != nil {
		return "", fmt.Errorf("consecutivo %s: %w", key, err)
	}
	return seq.Format(seq.Current), nil
}

// Preview muestra el número que entregaría Next sin reservarlo. No modifica nada.
func (g *Generator) Preview(ctx context.Context, companyID, docType string, year int) (string, error) {
	key, err := g.key(ctx, companyID, docType, year)
	if err != nil {
		return "", err
	}
	store, err := g.stores.Store(ctx)
	if err != nil {
		return "", err
	}
	seq, err := store.Sequences().Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("consecutivo %s: %w", key, err)
	}
	if seq == nil {
		d := entity.DefaultSequenceDefaults(key.Type)
		return entity.FormatSequenceNumber(d.Pattern, d.Prefix, key.Year, 1), nil
	}
	return seq.Format(seq.Current + 1), nil
}

// Assign rellena el campo de consecutivo de e si está vacío, usando la empresa de la propia entidad.
func (g *Generator) Assign(ctx context.Context, repo repository.SequenceRepository, e entity.Sequenced) error {
	field := e.SequenceField()
	if field == nil || *field != "" {
		return nil
	}
	companyID := e.OwningCompanyID()
	if companyID == "" {
		return domain.ErrMissingTenantContext
	}
	value, err := g.NextIn(ctx, repo, companyID, e.SequenceType(), 0)
	if err != nil {
		return err
	}
	*field = value
	return nil
}

// Retry ejecuta fn hasta MaxAttempts veces mientras falle con domain.ErrSequenceContention.
// La espera crece linealmente (RetryBackoff, 2*RetryBackoff, ...). Cualquier otro error corta.
func (g *Generator) Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !errors.Is(err, domain.ErrSequenceContention) {
			return err
		}
		if attempt == g.cfg.MaxAttempts {
			break
		}
		logger.FromContext(ctx).Warn().Err(err).Int("attempt", attempt).Msg("contención en consecutivo, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.cfg.RetryBackoff * time.Duration(attempt)):
		}
	}
	return err
}

// key valida la combinación y resuelve el año.
func (g *Generator) key(ctx context.Context, companyID, docType string, year int) (entity.SequenceKey, error) {
	if strings.TrimSpace(companyID) == "" {
		return entity.SequenceKey{}, fmt.Errorf("%w: empresa vacía", domain.ErrInvalidSequenceKey)
	}
	if !typePattern.MatchString(docType) {
		return entity.SequenceKey{}, fmt.Errorf("%w: tipo %q", domain.ErrInvalidSequenceKey, docType)
	}
	if year == 0 {
		year = g.currentYear(ctx, companyID)
	}
	if year < 1 || year > 9999 {
		return entity.SequenceKey{}, fmt.Errorf("%w: año %d", domain.ErrInvalidSequenceKey, year)
	}
	return entity.SequenceKey{CompanyID: companyID, Type: docType, Year: year}, nil
}

// ResolveYear devuelve year o, si es 0, el año en curso con el mismo reloj y zona que usa Next.
// Quien necesite informar el año debe resolverlo antes y pasarlo explícito.
func (g *Generator) ResolveYear(ctx context.Context, companyID string, year int) int {
	if year != 0 {
		return year
	}
	return g.currentYear(ctx, companyID)
}

// currentYear usa la zona horaria de la empresa activa si es la del consecutivo; si no, UTC.
func (g *Generator) currentYear(ctx context.Context, companyID string) int {
	now := g.now()
	if company := tenancy.ActiveCompany(ctx); company != nil && company.ID == companyID {
		return now.In(company.Location()).Year()
	}
	return now.UTC().Year()
}
