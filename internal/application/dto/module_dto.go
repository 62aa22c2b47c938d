package dto

// UpdateModulesRequest activación de módulos en lote: id -> activo.
type UpdateModulesRequest struct {
	Modules map[string]bool `json:"modules"`
}

// SequenceResponse número de documento emitido o previsto.
type SequenceResponse struct {
	Type   string `json:"type"`
	Year   int    `json:"year"`
	Number string `json:"number"`
}
