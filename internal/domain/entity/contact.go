package entity

import (
	"strings"
	"time"
)

// Tipos de contacto.
const (
	ContactPerson       = "person"
	ContactOrganization = "organization"
)

// SequenceTypeContact es el tipo de consecutivo usado para el código de contacto.
const SequenceTypeContact = "contact"

// Contact es una persona u organización de la empresa.
type Contact struct {
	ID             string
	CompanyID      string
	Code           string // consecutivo asignado al crear (CON2026-00001)
	Type           string
	FirstName      string
	LastName       string
	JobTitle       string
	OrganizationID *string
	Name           string
	Industry       string
	Email          string
	Phone          string
	Mobile         string
	Website        string
	Notes          string
	Tags           []string
	IsActive       bool
	Source         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (c *Contact) OwningCompanyID() string { return c.CompanyID }
func (c *Contact) SetCompanyID(id string)  { c.CompanyID = id }
func (c *Contact) SequenceType() string    { return SequenceTypeContact }
func (c *Contact) SequenceField() *string  { return &c.Code }

// DisplayName nombre visible según el tipo.
func (c *Contact) DisplayName() string {
	if c.Type == ContactOrganization {
		return c.Name
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
