// ABOUTME: Field-group schema for contact records
// ABOUTME: Enumerates People API person fields plus the detail, list and read-only sets
package models

import (
	"fmt"
	"strings"
)

// FieldGroup names one category of person attributes (e.g. phoneNumbers).
type FieldGroup string

const (
	FieldAddresses      FieldGroup = "addresses"
	FieldAgeRanges      FieldGroup = "ageRanges"
	FieldBiographies    FieldGroup = "biographies"
	FieldBirthdays      FieldGroup = "birthdays"
	FieldCoverPhotos    FieldGroup = "coverPhotos"
	FieldEmailAddresses FieldGroup = "emailAddresses"
	FieldGenders        FieldGroup = "genders"
	FieldMemberships    FieldGroup = "memberships"
	FieldMetadata       FieldGroup = "metadata"
	FieldNames          FieldGroup = "names"
	FieldNicknames      FieldGroup = "nicknames"
	FieldOccupations    FieldGroup = "occupations"
	FieldOrganizations  FieldGroup = "organizations"
	FieldPhoneNumbers   FieldGroup = "phoneNumbers"
	FieldPhotos         FieldGroup = "photos"
	FieldURLs           FieldGroup = "urls"
)

// knownFields is the canonical order used when building field masks.
var knownFields = []FieldGroup{
	FieldNames,
	FieldOrganizations,
	FieldNicknames,
	FieldBirthdays,
	FieldPhotos,
	FieldAddresses,
	FieldEmailAddresses,
	FieldPhoneNumbers,
	FieldGenders,
	FieldMemberships,
	FieldMetadata,
	FieldBiographies,
	FieldURLs,
	FieldOccupations,
	FieldCoverPhotos,
	FieldAgeRanges,
}

// DetailFields is the field set requested when a single contact is shown or exported.
var DetailFields = []FieldGroup{
	FieldNames,
	FieldOrganizations,
	FieldNicknames,
	FieldBirthdays,
	FieldPhotos,
	FieldAddresses,
	FieldEmailAddresses,
	FieldPhoneNumbers,
	FieldGenders,
	FieldMemberships,
	FieldMetadata,
	FieldBiographies,
	FieldURLs,
}

// ListFields is the lighter field set requested when listing or searching.
var ListFields = []FieldGroup{
	FieldNames,
	FieldOrganizations,
	FieldNicknames,
	FieldBirthdays,
	FieldAddresses,
	FieldEmailAddresses,
	FieldPhoneNumbers,
	FieldMemberships,
	FieldMetadata,
}

// Valid reports whether g is part of the supported schema.
func (g FieldGroup) Valid() bool {
	for _, k := range knownFields {
		if k == g {
			return true
		}
	}
	return false
}

// ReadOnly reports whether the service refuses g in an update mask.
func (g FieldGroup) ReadOnly() bool {
	switch g {
	case FieldPhotos, FieldCoverPhotos, FieldAgeRanges, FieldMetadata:
		return true
	}
	return false
}

// ParseFieldGroup validates a single field group name.
func ParseFieldGroup(name string) (FieldGroup, error) {
	g := FieldGroup(strings.TrimSpace(name))
	if !g.Valid() {
		return "", NewError(CodeValidation, "parse field group", fmt.Sprintf("unknown field group %q", name))
	}
	return g, nil
}

// ParseFieldGroups parses a comma-joined list such as "names,phoneNumbers".
func ParseFieldGroups(list string) ([]FieldGroup, error) {
	var groups []FieldGroup
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		g, err := ParseFieldGroup(part)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return NormalizeFields(groups), nil
}

// NormalizeFields drops unknown and duplicate groups and returns them in canonical order.
func NormalizeFields(groups []FieldGroup) []FieldGroup {
	want := make(map[FieldGroup]bool, len(groups))
	for _, g := range groups {
		want[g] = true
	}
	out := make([]FieldGroup, 0, len(want))
	for _, g := range knownFields {
		if want[g] {
			out = append(out, g)
		}
	}
	return out
}

// WritableFields removes the read-only groups from a field mask.
func WritableFields(groups []FieldGroup) []FieldGroup {
	out := make([]FieldGroup, 0, len(groups))
	for _, g := range NormalizeFields(groups) {
		if !g.ReadOnly() {
			out = append(out, g)
		}
	}
	return out
}

// JoinFields renders a mask as the comma-joined personFields parameter.
func JoinFields(groups []FieldGroup) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = string(g)
	}
	return strings.Join(parts, ",")
}
