// Package audit notifica las mutaciones confirmadas a observadores inyectados.
package audit

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-core/internal/application/tenancy"
)

// Event tipo de mutación.
type Event string

const (
	EventCreated Event = "created"
	EventUpdated Event = "updated"
	EventDeleted Event = "deleted"
)

// Mutation describe un cambio ya confirmado en la base del tenant.
type Mutation struct {
	Event     Event
	Entity    string
	EntityID  string
	CompanyID string
	UserID    string
	Old       map[string]any
	New       map[string]any
	At        time.Time
}

// Observer recibe las mutaciones. Se invoca de forma síncrona tras el commit;
// un observador lento retrasa la respuesta, así que debe ser rápido o delegar.
type Observer interface {
	OnMutation(ctx context.Context, m Mutation)
}

// sensitiveKeys nunca salen hacia un observador.
var sensitiveKeys = map[string]struct{}{
	"password":                  {},
	"password_hash":             {},
	"remember_token":            {},
	"two_factor_secret":         {},
	"two_factor_recovery_codes": {},
}

// Redact devuelve una copia de values sin claves sensibles. nil si queda vacío.
func Redact(values map[string]any) map[string]any {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Record completa la mutación con datos del contexto (hora, usuario, empresa activa),
// elimina campos sensibles y la entrega a obs. obs nil no hace nada.
func Record(ctx context.Context, obs Observer, m Mutation) {
	if obs == nil {
		return
	}
	if m.At.IsZero() {
		m.At = time.Now().UTC()
	}
	if m.CompanyID == "" {
		m.CompanyID = tenancy.ActiveCompanyID(ctx)
	}
	if m.UserID == "" {
		if u := tenancy.UserFromContext(ctx); u != nil {
			m.UserID = u.ID
		}
	}
	m.Old = Redact(m.Old)
	m.New = Redact(m.New)
	obs.OnMutation(ctx, m)
}

// Nop descarta todo.
type Nop struct{}

func (Nop) OnMutation(context.Context, Mutation) {}

// Multi reparte la mutación entre varios observadores en orden.
type Multi []Observer

func (m Multi) OnMutation(ctx context.Context, mut Mutation) {
	for _, o := range m {
		if o != nil {
			o.OnMutation(ctx, mut)
		}
	}
}

// LogObserver escribe cada mutación como un evento de log estructurado.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver crea el observador sobre un logger; se marca con component=audit.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log.With().Str("component", "audit").Logger()}
}

func (o *LogObserver) OnMutation(_ context.Context, m Mutation) {
	o.log.Info().
		Str("event", string(m.Event)).
		Str("entity", m.Entity).
		Str("entity_id", m.EntityID).
		Str("company_id", m.CompanyID).
		Str("user_id", m.UserID).
		Interface("old", m.Old).
		Interface("new", m.New).
		Time("at", m.At).
		Msg("audit")
}
