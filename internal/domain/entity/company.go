package entity

import "time"

// Valores por defecto de una empresa nueva.
const (
	DefaultCurrencyCode = "EUR"
	DefaultCountryCode  = "ES"
	DefaultLocale       = "es_ES"
	DefaultTimezone     = "Europe/Madrid"
)

// Company es la unidad de partición de datos dentro de un tenant.
// Nunca se elimina físicamente: se desactiva (IsActive = false).
type Company struct {
	ID              string
	Name            string
	LegalName       string
	TaxID           string
	CurrencyCode    string
	CountryCode     string
	Locale          string
	Timezone        string
	FiscalYearStart int // mes 1..12
	Settings        map[string]any
	IsActive        bool
	ParentID        *string // jerarquía; nunca forma un ciclo
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Location devuelve la zona horaria de la empresa; UTC si no se puede cargar.
func (c *Company) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Setting lee un valor de Settings con valor por defecto.
func (c *Company) Setting(key string, def any) any {
	if c == nil || c.Settings == nil {
		return def
	}
	if v, ok := c.Settings[key]; ok {
		return v
	}
	return def
}
