package sequence_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func newGenerator(t *testing.T) (*sequence.Generator, *memory.Store, context.Context) {
	t.Helper()
	provider := memory.NewProvider()
	store := memory.NewStore()
	provider.Add("t1", store)
	g := sequence.NewGenerator(provider, sequence.Config{MaxAttempts: 3, RetryBackoff: time.Millisecond})
	sequence.SetClock(g, func() time.Time { return fixedNow })
	ctx := tenancy.WithTenant(context.Background(), &entity.Tenant{ID: "t1"})
	return g, store, ctx
}

func counterOf(t *testing.T, number string) int {
	t.Helper()
	i := strings.LastIndex(number, "-")
	require.GreaterOrEqual(t, i, 0, number)
	n, err := strconv.Atoi(number[i+1:])
	require.NoError(t, err)
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Next
// ──────────────────────────────────────────────────────────────────────────────

func TestNext_PrimerValorYPatronPorDefecto(t *testing.T) {
	g, _, ctx := newGenerator(t)

	first, err := g.Next(ctx, "c1", "invoice", 2026)
	require.NoError(t, err)
	assert.Equal(t, "INV2026-00001", first)

	second, err := g.Next(ctx, "c1", "invoice", 2026)
	require.NoError(t, err)
	assert.Equal(t, "INV2026-00002", second)
}

func TestNext_ClavesIndependientes(t *testing.T) {
	g, _, ctx := newGenerator(t)
	for _, tc := range []struct {
		company, docType string
		year             int
		want             string
	}{
		{"c1", "invoice", 2026, "INV2026-00001"},
		{"c2", "invoice", 2026, "INV2026-00001"},
		{"c1", "invoice", 2025, "INV2025-00001"},
		{"c1", "quote", 2026, "QUO2026-00001"},
		{"c1", "invoice", 2026, "INV2026-00002"},
	} {
		got, err := g.Next(ctx, tc.company, tc.docType, tc.year)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

// N llamadas concurrentes sobre la misma clave devuelven exactamente 1..N.
func TestNext_ConcurrenteSinHuecosNiDuplicados(t *testing.T) {
	g, _, ctx := newGenerator(t)
	const n = 100

	results := make([]string, n)
	var eg errgroup.Group
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			v, err := g.Next(ctx, "c1", "invoice", 2026)
			results[i] = v
			return err
		})
	}
	require.NoError(t, eg.Wait())

	counters := make([]int, 0, n)
	for _, r := range results {
		counters = append(counters, counterOf(t, r))
	}
	sort.Ints(counters)
	for i, c := range counters {
		assert.Equal(t, i+1, c)
	}
}

func TestNext_AnioActualEnZonaDeLaEmpresa(t *testing.T) {
	g, _, ctx := newGenerator(t)
	sequence.SetClock(g, func() time.Time { return time.Date(2026, 12, 31, 20, 0, 0, 0, time.UTC) })

	tokyo := &entity.Company{ID: "c1", Timezone: "Asia/Tokyo"}
	active := tenancy.WithCompany(ctx, tokyo)

	got, err := g.Next(active, "c1", "invoice", 0)
	require.NoError(t, err)
	assert.Equal(t, "INV2027-00001", got, "en Tokio ya es 2027")

	other, err := g.Next(active, "c2", "invoice", 0)
	require.NoError(t, err)
	assert.Equal(t, "INV2026-00001", other, "otra empresa usa UTC")
}

func TestResolveYear_MismoRelojQueNext(t *testing.T) {
	g, _, ctx := newGenerator(t)
	sequence.SetClock(g, func() time.Time { return time.Date(2026, 12, 31, 20, 0, 0, 0, time.UTC) })
	active := tenancy.WithCompany(ctx, &entity.Company{ID: "c1", Timezone: "Asia/Tokyo"})

	year := g.ResolveYear(active, "c1", 0)
	assert.Equal(t, 2027, year)
	assert.Equal(t, 2026, g.ResolveYear(active, "c2", 0), "otra empresa usa UTC")
	assert.Equal(t, 2019, g.ResolveYear(active, "c1", 2019), "un año explícito no cambia")

	got, err := g.Next(active, "c1", "invoice", year)
	require.NoError(t, err)
	assert.Equal(t, "INV2027-00001", got)
}

func TestNext_ClaveInvalida(t *testing.T) {
	g, _, ctx := newGenerator(t)
	cases := []struct {
		company, docType string
		year             int
	}{
		{"", "invoice", 2026},
		{"c1", "", 2026},
		{"c1", "Invoice", 2026},
		{"c1", "1nvoice", 2026},
		{"c1", "inv oice", 2026},
		{"c1", strings.Repeat("a", 51), 2026},
		{"c1", "invoice", -1},
		{"c1", "invoice", 10000},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q/%q/%d", tc.company, tc.docType, tc.year), func(t *testing.T) {
			_, err := g.Next(ctx, tc.company, tc.docType, tc.year)
			assert.ErrorIs(t, err, domain.ErrInvalidSequenceKey)
		})
	}
}

func TestNext_SinTenant(t *testing.T) {
	g, _, _ := newGenerator(t)
	_, err := g.Next(context.Background(), "c1", "invoice", 2026)
	assert.ErrorIs(t, err, domain.ErrTenantNotResolved)
}

// ──────────────────────────────────────────────────────────────────────────────
// Preview
// ──────────────────────────────────────────────────────────────────────────────

func TestPreview_NoModifica(t *testing.T) {
	g, store, ctx := newGenerator(t)

	p, err := g.Preview(ctx, "c1", "invoice", 2026)
	require.NoError(t, err)
	assert.Equal(t, "INV2026-00001", p)

	seq, err := store.Sequences().Get(ctx, entity.SequenceKey{CompanyID: "c1", Type: "invoice", Year: 2026})
	require.NoError(t, err)
	assert.Nil(t, seq, "preview no crea la fila")

	for i := 0; i < 3; i++ {
		_, err := g.Next(ctx, "c1", "invoice", 2026)
		require.NoError(t, err)
	}
	p1, _ := g.Preview(ctx, "c1", "invoice", 2026)
	p2, _ := g.Preview(ctx, "c1", "invoice", 2026)
	assert.Equal(t, "INV2026-00004", p1)
	assert.Equal(t, p1, p2)

	next, err := g.Next(ctx, "c1", "invoice", 2026)
	require.NoError(t, err)
	assert.Equal(t, p1, next)
}

// ──────────────────────────────────────────────────────────────────────────────
// NextIn / Assign
// ──────────────────────────────────────────────────────────────────────────────

func TestNextIn_RollbackDelDocumentoNoDejaHueco(t *testing.T) {
	g, store, ctx := newGenerator(t)
	boom := errors.New("falló la creación del documento")

	err := store.WithinTx(ctx, func(tx repository.Store) error {
		v, err := g.NextIn(ctx, tx.Sequences(), "c1", "invoice", 2026)
		require.NoError(t, err)
		assert.Equal(t, "INV2026-00001", v)
		return boom
	})
	require.ErrorIs(t, err, boom)

	next, err := g.Next(ctx, "c1", "invoice", 2026)
	require.NoError(t, err)
	assert.Equal(t, "INV2026-00001", next)
}

func TestAssign(t *testing.T) {
	g, store, ctx := newGenerator(t)

	c := &entity.Contact{CompanyID: "c1"}
	require.NoError(t, g.Assign(ctx, store.Sequences(), c))
	assert.Equal(t, "CON2026-00001", c.Code)

	manual := &entity.Contact{CompanyID: "c1", Code: "MANUAL-1"}
	require.NoError(t, g.Assign(ctx, store.Sequences(), manual))
	assert.Equal(t, "MANUAL-1", manual.Code, "un valor existente no se sobreescribe")

	orphan := &entity.Contact{}
	assert.ErrorIs(t, g.Assign(ctx, store.Sequences(), orphan), domain.ErrMissingTenantContext)
}

// ──────────────────────────────────────────────────────────────────────────────
// Retry
// ──────────────────────────────────────────────────────────────────────────────

func TestRetry_ReintentaSoloContencion(t *testing.T) {
	g, _, ctx := newGenerator(t)

	calls := 0
	err := g.Retry(ctx, func(context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("lock: %w", domain.ErrSequenceContention)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = g.Retry(ctx, func(context.Context) error {
		calls++
		return domain.ErrInvalidSequenceKey
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSequenceKey)
	assert.Equal(t, 1, calls, "un error no reintentable corta de inmediato")

	calls = 0
	err = g.Retry(ctx, func(context.Context) error {
		calls++
		return domain.ErrSequenceContention
	})
	assert.ErrorIs(t, err, domain.ErrSequenceContention)
	assert.Equal(t, 3, calls, "se agota el número máximo de intentos")
}

func TestRetry_RespetaCancelacion(t *testing.T) {
	provider := memory.NewProvider()
	g := sequence.NewGenerator(provider, sequence.Config{MaxAttempts: 5, RetryBackoff: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := g.Retry(ctx, func(context.Context) error {
		calls++
		cancel()
		return domain.ErrSequenceContention
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
