package modules_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/audit"
	"github.com/jhoicas/erp-core/internal/application/modules"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
)

type recorder struct {
	mu   sync.Mutex
	muts []audit.Mutation
}

func (r *recorder) OnMutation(_ context.Context, m audit.Mutation) {
	r.mu.Lock()
	r.muts = append(r.muts, m)
	r.mu.Unlock()
}

func newService(t *testing.T) (*modules.Service, *modules.Registry, *recorder) {
	t.Helper()
	provider, _ := newStore(t)
	reg := modules.NewRegistry(provider, time.Hour)
	reg.MustRegister(sampleModules()...)
	rec := &recorder{}
	return modules.NewService(reg, provider, rec), reg, rec
}

func TestService_SetActiveInvalidaCache(t *testing.T) {
	svc, reg, rec := newService(t)
	ctx := tenantCtx()

	ok, err := reg.IsActive(ctx, "contacts")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.SetActive(ctx, "contacts", true))
	ok, err = reg.IsActive(ctx, "contacts")
	require.NoError(t, err)
	assert.True(t, ok, "el cambio se ve de inmediato aunque el TTL sea largo")

	require.Len(t, rec.muts, 1)
	assert.Equal(t, audit.EventCreated, rec.muts[0].Event)
	assert.Equal(t, "contacts", rec.muts[0].EntityID)
}

func TestService_Dependencias(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := tenantCtx()

	err := svc.SetActive(ctx, "sales", true)
	assert.ErrorIs(t, err, domain.ErrModuleDependency)

	require.NoError(t, svc.Apply(ctx, map[string]bool{"sales": true, "contacts": true}),
		"activar la dependencia en la misma llamada es válido")

	states, err := svc.States(ctx)
	require.NoError(t, err)
	require.Len(t, states, 3)
	for _, st := range states {
		switch st.ID {
		case "contacts", "sales":
			assert.True(t, st.Active, st.ID)
			assert.NotNil(t, st.ActivatedAt)
		default:
			assert.False(t, st.Active, st.ID)
		}
	}
}

func TestService_ModuloDesconocido(t *testing.T) {
	svc, _, _ := newService(t)
	assert.ErrorIs(t, svc.SetActive(tenantCtx(), "hr", true), domain.ErrNotFound)
}

func TestService_SinCambioNoAudita(t *testing.T) {
	svc, _, rec := newService(t)
	ctx := tenantCtx()
	require.NoError(t, svc.SetActive(ctx, "contacts", true))
	require.NoError(t, svc.SetActive(ctx, "contacts", true))
	assert.Len(t, rec.muts, 1)
}

func TestService_DesactivarNoTocaConsecutivos(t *testing.T) {
	provider, store := newStore(t)
	reg := modules.NewRegistry(provider, 0)
	reg.MustRegister(sampleModules()...)
	svc := modules.NewService(reg, provider, nil)
	ctx := tenantCtx()

	key := entity.SequenceKey{CompanyID: "c1", Type: "contact", Year: 2026}
	for i := 0; i < 3; i++ {
		_, err := store.Sequences().Increment(ctx, key, entity.DefaultSequenceDefaults("contact"))
		require.NoError(t, err)
	}

	require.NoError(t, svc.SetActive(ctx, "contacts", true))
	require.NoError(t, svc.SetActive(ctx, "contacts", false))
	require.NoError(t, svc.SetActive(ctx, "contacts", true))

	seq, err := store.Sequences().Get(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 3, seq.Current)

	next, err := store.Sequences().Increment(ctx, key, entity.DefaultSequenceDefaults("contact"))
	require.NoError(t, err)
	assert.EqualValues(t, 4, next.Current, "el contador continúa tras reactivar")
}
