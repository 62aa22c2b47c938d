package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Formato de consecutivos
// ──────────────────────────────────────────────────────────────────────────────

func TestFormatSequenceNumber_PatronPorDefecto(t *testing.T) {
	got := entity.FormatSequenceNumber(entity.DefaultSequencePattern, "INV", 2026, 7)
	assert.Equal(t, "INV2026-00007", got)
}

func TestFormatSequenceNumber_NoTrunca(t *testing.T) {
	got := entity.FormatSequenceNumber(entity.DefaultSequencePattern, "INV", 2026, 123456)
	assert.Equal(t, "INV2026-123456", got, "el ancho es un mínimo, no un máximo")
}

func TestFormatSequenceNumber_Casos(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
		prefix  string
		year    int
		n       int64
		want    string
	}{
		{"prefijo vacío", "{prefix}{year}-{number:03}", "", 2025, 4, "2025-004"},
		{"token desconocido intacto", "{prefix}-{month}-{number:2}", "FAC", 2025, 1, "FAC-{month}-01"},
		{"number sin ancho intacto", "{number}", "X", 2025, 9, "{number}"},
		{"año con ceros", "{year}/{number:1}", "", 999, 12, "0999/12"},
		{"sin tokens", "LITERAL", "P", 2025, 3, "LITERAL"},
		{"prefijo con token no se re-expande", "{prefix}{number:02}", "{year}", 2025, 5, "{year}05"},
		{"tokens repetidos", "{number:02}-{number:04}", "", 2025, 7, "07-0007"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, entity.FormatSequenceNumber(tc.pattern, tc.prefix, tc.year, tc.n))
		})
	}
}

func TestDefaultSequencePrefix(t *testing.T) {
	assert.Equal(t, "INV", entity.DefaultSequencePrefix("invoice"))
	assert.Equal(t, "CO", entity.DefaultSequencePrefix("co"))
	assert.Equal(t, "ÑAN", entity.DefaultSequencePrefix("ñandu"))
}

func TestDocumentSequence_FormatPrefijoNulo(t *testing.T) {
	seq := &entity.DocumentSequence{Pattern: entity.DefaultSequencePattern, Year: 2026}
	assert.Equal(t, "2026-00010", seq.Format(10))
}
