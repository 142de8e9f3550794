package models

import (
	id "obligo/pkg/domain"
)

// Obligation is an approved legal duty together with the country and domain
// metadata of the legal act it was extracted from. Read-only here.
type Obligation struct {
	ID         id.ObligationID
	LegalActID id.LegalActID
	Title      string
	// CountryCode is the legal act's ISO country code.
	CountryCode string
	// Domain is the legal act's industry classification key; empty when unclassified.
	Domain string
}

// Organization is a client organization. Read-only here.
type Organization struct {
	ID             id.OrganizationID
	Name           string
	CUI            string
	CountryCode    string
	IndustryDomain string
}

// HasIndustryDomain reports whether the organization profile carries a domain.
func (o Organization) HasIndustryDomain() bool {
	return o.IndustryDomain != ""
}

// OrganizationFilter narrows ListOrganizations. A zero filter lists everything.
type OrganizationFilter struct {
	CountryCodes []string
}

// IsZero reports whether the filter matches all organizations.
func (f OrganizationFilter) IsZero() bool {
	return len(f.CountryCodes) == 0
}
