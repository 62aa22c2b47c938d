package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// SequenceRepository persiste los consecutivos de documentos.
type SequenceRepository interface {
	// Increment suma uno al contador de key de forma atómica y devuelve la fila resultante.
	// Si la fila no existe la crea con defaults y Current = 1.
	// Retorna domain.ErrSequenceContention si no obtiene el bloqueo a tiempo.
	Increment(ctx context.Context, key entity.SequenceKey, defaults entity.SequenceDefaults) (*entity.DocumentSequence, error)
	// Get devuelve nil, nil si la fila no existe. Solo lectura.
	Get(ctx context.Context, key entity.SequenceKey) (*entity.DocumentSequence, error)
}
