package entity

// CompanyOwned lo implementa toda entidad particionada por empresa.
// El company_id se fija al crear y no cambia después.
type CompanyOwned interface {
	OwningCompanyID() string
	SetCompanyID(id string)
}

// Sequenced lo implementan las entidades que reciben un número de documento al crearse.
type Sequenced interface {
	CompanyOwned
	// SequenceType es el tipo de consecutivo ("invoice", "contact").
	SequenceType() string
	// SequenceField apunta al campo que recibe el número formateado.
	SequenceField() *string
}
