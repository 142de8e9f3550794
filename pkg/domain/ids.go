// Package domain holds typed identifiers shared across the publishing pipeline.
//
// Each identifier is a distinct named UUID type so an organization ID can never
// be passed where an obligation ID is expected. Parse functions are the trust
// boundary: they reject empty, malformed and nil UUIDs with CodeInvalidInput.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "obligo/pkg/domain-errors"
)

type (
	ObligationID   uuid.UUID
	OrganizationID uuid.UUID
	LegalActID     uuid.UUID
	BatchID        uuid.UUID
	AssignmentID   uuid.UUID
)

// maxIDLength bounds input before it reaches uuid.Parse. The longest accepted
// form is the urn:uuid: prefix plus 36 characters.
const maxIDLength = 45

func parseUUID(kind, s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be nil")
	}
	return parsed, nil
}

func ParseObligationID(s string) (ObligationID, error) {
	u, err := parseUUID("obligation_id", s)
	return ObligationID(u), err
}

func ParseOrganizationID(s string) (OrganizationID, error) {
	u, err := parseUUID("organization_id", s)
	return OrganizationID(u), err
}

func ParseLegalActID(s string) (LegalActID, error) {
	u, err := parseUUID("legal_act_id", s)
	return LegalActID(u), err
}

func ParseBatchID(s string) (BatchID, error) {
	u, err := parseUUID("batch_id", s)
	return BatchID(u), err
}

func NewBatchID() BatchID           { return BatchID(uuid.New()) }
func NewAssignmentID() AssignmentID { return AssignmentID(uuid.New()) }

func (id ObligationID) String() string   { return uuid.UUID(id).String() }
func (id OrganizationID) String() string { return uuid.UUID(id).String() }
func (id LegalActID) String() string     { return uuid.UUID(id).String() }
func (id BatchID) String() string        { return uuid.UUID(id).String() }
func (id AssignmentID) String() string   { return uuid.UUID(id).String() }

func (id ObligationID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id OrganizationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id BatchID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

// MarshalText keeps JSON output in canonical string form.
func (id ObligationID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id OrganizationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id LegalActID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id BatchID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }

func (id *ObligationID) UnmarshalText(b []byte) error {
	parsed, err := ParseObligationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *OrganizationID) UnmarshalText(b []byte) error {
	parsed, err := ParseOrganizationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Compare orders IDs by their canonical string form, which matches byte order.
func (id ObligationID) Compare(other ObligationID) int {
	return strings.Compare(id.String(), other.String())
}
