package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSequencePattern es el patrón con el que se crea un consecutivo nuevo.
const DefaultSequencePattern = "{prefix}{year}-{number:05}"

// DocumentSequence es el contador por (empresa, tipo, año).
// Current nunca decrece y un valor entregado nunca se vuelve a entregar.
type DocumentSequence struct {
	ID        string
	CompanyID string
	Type      string
	Prefix    *string
	Year      int
	Current   int64
	Pattern   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwningCompanyID implementa CompanyOwned.
func (s *DocumentSequence) OwningCompanyID() string { return s.CompanyID }

// SetCompanyID implementa CompanyOwned.
func (s *DocumentSequence) SetCompanyID(id string) { s.CompanyID = id }

// Format aplica el patrón del consecutivo al número n.
func (s *DocumentSequence) Format(n int64) string {
	prefix := ""
	if s.Prefix != nil {
		prefix = *s.Prefix
	}
	return FormatSequenceNumber(s.Pattern, prefix, s.Year, n)
}

// SequenceKey identifica un consecutivo.
type SequenceKey struct {
	CompanyID string
	Type      string
	Year      int
}

func (k SequenceKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.CompanyID, k.Type, k.Year)
}

// SequenceDefaults son los valores con los que se crea la fila si no existe.
type SequenceDefaults struct {
	Prefix  string
	Pattern string
}

// DefaultSequenceDefaults deriva prefijo y patrón por defecto del tipo.
func DefaultSequenceDefaults(docType string) SequenceDefaults {
	return SequenceDefaults{Prefix: DefaultSequencePrefix(docType), Pattern: DefaultSequencePattern}
}

// DefaultSequencePrefix son los tres primeros caracteres del tipo en mayúsculas ("invoice" -> "INV").
func DefaultSequencePrefix(docType string) string {
	r := []rune(docType)
	if len(r) > 3 {
		r = r[:3]
	}
	// Un Caser no se comparte entre goroutines.
	return cases.Upper(language.Und).String(string(r))
}

var sequenceToken = regexp.MustCompile(`\{(prefix|year|number:(\d+))\}`)

// FormatSequenceNumber sustituye {prefix}, {year} y {number:N} en una sola pasada.
// {number:N} rellena con ceros hasta N dígitos sin truncar; cualquier otro token queda intacto.
// El texto sustituido no se vuelve a expandir.
func FormatSequenceNumber(pattern, prefix string, year int, n int64) string {
	return sequenceToken.ReplaceAllStringFunc(pattern, func(tok string) string {
		m := sequenceToken.FindStringSubmatch(tok)
		switch {
		case m[1] == "prefix":
			return prefix
		case m[1] == "year":
			return fmt.Sprintf("%04d", year)
		default:
			width, err := strconv.Atoi(m[2])
			if err != nil {
				return tok
			}
			return fmt.Sprintf("%0*d", width, n)
		}
	})
}
