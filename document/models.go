package document

import (
	"strings"
	"time"
)

// Document statuses as stored in the registry.
const (
	StatusRegistered = "Зарегистрирован"
	StatusProcessing = "В обработке"
)

// Filter values that disable the corresponding condition.
const (
	AnyType   = "all"
	AnyStatus = "all-status"
)

var statusAliases = map[string]string{
	"registered": StatusRegistered,
	"processing": StatusProcessing,
}

// Document is a registry row joined with the name of the user who created it.
type Document struct {
	ID               int64
	Number           string
	Type             string
	Date             time.Time
	RegistrationDate time.Time
	Status           string
	Party1Name       string
	Party1Passport   string
	Party2Name       *string
	Party2Passport   *string
	Subject          string
	Notes            *string
	CreatedByName    *string
}

// Filter narrows a document listing. Zero values match everything.
type Filter struct {
	Search string
	Type   string
	Status string
}

// normalize trims the filter, drops the "match all" markers and resolves
// status aliases.
func (f Filter) normalize() Filter {
	out := Filter{
		Search: strings.TrimSpace(f.Search),
		Type:   strings.TrimSpace(f.Type),
		Status: strings.TrimSpace(f.Status),
	}
	if out.Type == AnyType {
		out.Type = ""
	}
	if out.Status == AnyStatus {
		out.Status = ""
	}
	if mapped, ok := statusAliases[out.Status]; ok {
		out.Status = mapped
	}
	return out
}

// CreateParams is a registration request. DocumentDate is a YYYY-MM-DD date.
type CreateParams struct {
	DocumentType   string
	DocumentDate   string
	Party1Name     string
	Party1Passport string
	Party2Name     *string
	Party2Passport *string
	Subject        string
	Notes          *string
	CreatedBy      int64
}

// InsertParams is a validated, numbered row ready for the documents table.
type InsertParams struct {
	Number         string
	Type           string
	Date           time.Time
	Status         string
	Party1Name     string
	Party1Passport string
	Party2Name     *string
	Party2Passport *string
	Subject        string
	Notes          *string
	CreatedBy      int64
}

// Created identifies a freshly registered document.
type Created struct {
	ID               int64
	Number           string
	RegistrationDate time.Time
}
