// ABOUTME: Contact record wrapping a People API person plus its requested field mask
// ABOUTME: Provides display name, primary-entry, membership and metadata helpers
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/api/people/v1"
)

const (
	// UnsetDisplayName is shown when a contact has neither a name nor an organization.
	UnsetDisplayName = "[unset]"
	// SourceTypeContact is the metadata source type of user-owned contacts.
	SourceTypeContact = "CONTACT"
)

// System contact group resource names.
const (
	GroupStarred     = "contactGroups/starred"
	GroupChatBuddies = "contactGroups/chatBuddies"
	GroupAll         = "contactGroups/all"
	GroupMyContacts  = "contactGroups/myContacts"
	GroupFriends     = "contactGroups/friends"
	GroupFamily      = "contactGroups/family"
	GroupCoworkers   = "contactGroups/coworkers"
	GroupBlocked     = "contactGroups/blocked"
)

// Contact is a single person record as exchanged with the directory.
type Contact struct {
	person *people.Person
	fields []FieldGroup
}

// NewEmpty returns a template with one empty entry per requested entry group.
func NewEmpty(groups ...FieldGroup) *Contact {
	c := &Contact{person: &people.Person{}, fields: maskOrDefault(groups)}
	for _, g := range c.fields {
		c.appendEmpty(g)
	}
	c.SetMetadata(SourceTypeContact, "", "")
	return c
}

// FromJSON decodes a person JSON document into a contact.
func FromJSON(data []byte, groups ...FieldGroup) (*Contact, error) {
	var p people.Person
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, WrapError(CodeParse, "decode person", err)
	}
	return FromPerson(&p, groups...), nil
}

// FromPerson wraps a person returned by the service.
func FromPerson(p *people.Person, groups ...FieldGroup) *Contact {
	if p == nil {
		p = &people.Person{}
	}
	c := &Contact{person: p, fields: maskOrDefault(groups)}
	if p.Metadata == nil || len(p.Metadata.Sources) == 0 {
		c.SetMetadata(SourceTypeContact, "", p.Etag)
	}
	return c
}

func maskOrDefault(groups []FieldGroup) []FieldGroup {
	if len(groups) == 0 {
		return append([]FieldGroup(nil), DetailFields...)
	}
	return NormalizeFields(groups)
}

// Clone returns a deep copy with the same field mask.
func (c *Contact) Clone() (*Contact, error) {
	data, err := json.Marshal(c.person)
	if err != nil {
		return nil, WrapError(CodeParse, "copy person", err)
	}
	var p people.Person
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, WrapError(CodeParse, "copy person", err)
	}
	return &Contact{person: &p, fields: append([]FieldGroup(nil), c.fields...)}, nil
}

// Person exposes the underlying wire record.
func (c *Contact) Person() *people.Person {
	return c.person
}

// Fields returns the requested field mask in canonical order.
func (c *Contact) Fields() []FieldGroup {
	return append([]FieldGroup(nil), c.fields...)
}

// ResourceName returns the server identifier, empty before creation.
func (c *Contact) ResourceName() string {
	return c.person.ResourceName
}

// SetResourceName sets the server identifier.
func (c *Contact) SetResourceName(rn string) {
	c.person.ResourceName = rn
}

// DisplayName resolves the label shown for the contact.
func (c *Contact) DisplayName() string {
	p := c.person
	if len(p.Names) > 0 && p.Names[0] != nil && p.Names[0].DisplayName != "" {
		return p.Names[0].DisplayName
	}
	if len(p.Organizations) > 0 && p.Organizations[0] != nil && p.Organizations[0].Name != "" {
		return p.Organizations[0].Name
	}
	return UnsetDisplayName
}

// SetMetadata overwrites the single metadata source entry.
func (c *Contact) SetMetadata(sourceType, id, etag string) {
	p := c.person
	if p.Metadata == nil {
		p.Metadata = &people.PersonMetadata{}
	}
	src := &people.Source{Type: sourceType, Id: id, Etag: etag}
	if len(p.Metadata.Sources) == 0 {
		p.Metadata.Sources = []*people.Source{src}
		return
	}
	p.Metadata.Sources[0] = src
}

func (c *Contact) source() *people.Source {
	p := c.person
	if p.Metadata == nil || len(p.Metadata.Sources) == 0 {
		return nil
	}
	return p.Metadata.Sources[0]
}

// Etag returns the version tag of the metadata source, falling back to the person etag.
func (c *Contact) Etag() string {
	if src := c.source(); src != nil && src.Etag != "" {
		return src.Etag
	}
	return c.person.Etag
}

// LastModified returns the source update time, or the zero time when unknown.
func (c *Contact) LastModified() time.Time {
	src := c.source()
	if src == nil || src.UpdateTime == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, src.UpdateTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Memberships returns the contact group resource names the contact belongs to.
func (c *Contact) Memberships() []string {
	var out []string
	for _, m := range c.person.Memberships {
		if rn := membershipGroup(m); rn != "" {
			out = append(out, rn)
		}
	}
	return out
}

// BelongsToGroup reports membership in the given contact group.
func (c *Contact) BelongsToGroup(resourceName string) bool {
	for _, rn := range c.Memberships() {
		if rn == resourceName {
			return true
		}
	}
	return false
}

// IsStarred reports membership in the starred system group.
func (c *Contact) IsStarred() bool {
	return c.BelongsToGroup(GroupStarred)
}

// AddMembership adds a group reference unless already present.
func (c *Contact) AddMembership(resourceName string) {
	if resourceName == "" || c.BelongsToGroup(resourceName) {
		return
	}
	c.person.Memberships = append(c.person.Memberships, &people.Membership{
		ContactGroupMembership: &people.ContactGroupMembership{ContactGroupResourceName: resourceName},
	})
}

// RemoveMembership drops every reference to the given group.
func (c *Contact) RemoveMembership(resourceName string) {
	kept := c.person.Memberships[:0]
	for _, m := range c.person.Memberships {
		if membershipGroup(m) != resourceName {
			kept = append(kept, m)
		}
	}
	c.person.Memberships = kept
}

func membershipGroup(m *people.Membership) string {
	if m == nil || m.ContactGroupMembership == nil {
		return ""
	}
	return m.ContactGroupMembership.ContactGroupResourceName
}

// Len returns the number of entries in a group.
func (c *Contact) Len(g FieldGroup) int {
	return len(c.entryMetas(g))
}

// SetPrimaryItem marks entry index of group g as primary and clears its siblings.
func (c *Contact) SetPrimaryItem(g FieldGroup, index int) error {
	metas := c.entryMetas(g)
	if index < 0 || index >= len(metas) {
		return &Error{
			Code:    CodeValidation,
			Op:      "set primary item",
			Message: fmt.Sprintf("%s index %d out of range (%d entries)", g, index, len(metas)),
			Err:     ErrIndexOutOfRange,
		}
	}
	for i, slot := range metas {
		if *slot == nil {
			*slot = &people.FieldMetadata{}
		}
		(*slot).Primary = i == index
		(*slot).SourcePrimary = i == index
	}
	return nil
}

// PrimaryItemIndex returns the index of the first primary entry, or -1.
func (c *Contact) PrimaryItemIndex(g FieldGroup) int {
	for i, slot := range c.entryMetas(g) {
		if *slot != nil && (*slot).Primary {
			return i
		}
	}
	return -1
}

// IsPrimary reports whether entry index of group g carries the primary flag.
func (c *Contact) IsPrimary(g FieldGroup, index int) bool {
	metas := c.entryMetas(g)
	if index < 0 || index >= len(metas) || *metas[index] == nil {
		return false
	}
	return (*metas[index]).Primary
}

// MarshalJSON writes the person with sourcePrimary mirrored from primary.
func (c *Contact) MarshalJSON() ([]byte, error) {
	for _, g := range knownFields {
		for _, slot := range c.entryMetas(g) {
			if *slot != nil {
				(*slot).SourcePrimary = (*slot).Primary
			}
		}
	}
	return json.Marshal(c.person)
}

// Compact removes entries that carry no non-empty attribute.
func (c *Contact) Compact() {
	p := c.person
	p.Names = compact(p.Names, func(n *people.Name) bool {
		return n.DisplayName == "" && n.GivenName == "" && n.FamilyName == "" && n.MiddleName == "" &&
			n.HonorificPrefix == "" && n.HonorificSuffix == "" && n.UnstructuredName == ""
	})
	p.Organizations = compact(p.Organizations, func(o *people.Organization) bool {
		return o.Name == "" && o.Title == "" && o.Department == ""
	})
	p.Nicknames = compact(p.Nicknames, func(n *people.Nickname) bool { return n.Value == "" })
	p.Birthdays = compact(p.Birthdays, func(b *people.Birthday) bool {
		return b.Text == "" && (b.Date == nil || b.Date.Month == 0 || b.Date.Day == 0)
	})
	p.Photos = compact(p.Photos, func(ph *people.Photo) bool { return ph.Url == "" })
	p.Addresses = compact(p.Addresses, func(a *people.Address) bool {
		return a.StreetAddress == "" && a.ExtendedAddress == "" && a.City == "" && a.Region == "" &&
			a.PostalCode == "" && a.PoBox == "" && a.Country == "" && a.CountryCode == "" && a.FormattedValue == ""
	})
	p.EmailAddresses = compact(p.EmailAddresses, func(e *people.EmailAddress) bool { return e.Value == "" })
	p.PhoneNumbers = compact(p.PhoneNumbers, func(ph *people.PhoneNumber) bool { return ph.Value == "" })
	p.Genders = compact(p.Genders, func(g *people.Gender) bool { return g.Value == "" })
	p.Memberships = compact(p.Memberships, func(m *people.Membership) bool {
		return membershipGroup(m) == "" && m.DomainMembership == nil
	})
	p.Biographies = compact(p.Biographies, func(b *people.Biography) bool { return b.Value == "" })
	p.Urls = compact(p.Urls, func(u *people.Url) bool { return u.Value == "" })
	p.Occupations = compact(p.Occupations, func(o *people.Occupation) bool { return o.Value == "" })
	p.CoverPhotos = compact(p.CoverPhotos, func(cp *people.CoverPhoto) bool { return cp.Url == "" })
}

func compact[T any](items []*T, blank func(*T) bool) []*T {
	if items == nil {
		return nil
	}
	kept := make([]*T, 0, len(items))
	for _, it := range items {
		if it != nil && !blank(it) {
			kept = append(kept, it)
		}
	}
	return kept
}

func (c *Contact) appendEmpty(g FieldGroup) {
	p := c.person
	switch g {
	case FieldNames:
		p.Names = append(p.Names, &people.Name{})
	case FieldOrganizations:
		p.Organizations = append(p.Organizations, &people.Organization{})
	case FieldNicknames:
		p.Nicknames = append(p.Nicknames, &people.Nickname{})
	case FieldBirthdays:
		p.Birthdays = append(p.Birthdays, &people.Birthday{})
	case FieldAddresses:
		p.Addresses = append(p.Addresses, &people.Address{})
	case FieldEmailAddresses:
		p.EmailAddresses = append(p.EmailAddresses, &people.EmailAddress{})
	case FieldPhoneNumbers:
		p.PhoneNumbers = append(p.PhoneNumbers, &people.PhoneNumber{})
	case FieldGenders:
		p.Genders = append(p.Genders, &people.Gender{})
	case FieldMemberships:
		p.Memberships = append(p.Memberships, &people.Membership{})
	case FieldBiographies:
		p.Biographies = append(p.Biographies, &people.Biography{})
	case FieldURLs:
		p.Urls = append(p.Urls, &people.Url{})
	case FieldOccupations:
		p.Occupations = append(p.Occupations, &people.Occupation{})
	}
	// photos, coverPhotos and ageRanges are server-owned; metadata is set separately.
}

type metaSlot = **people.FieldMetadata

func slots[T any](items []*T, slot func(*T) metaSlot) []metaSlot {
	out := make([]metaSlot, 0, len(items))
	for i, it := range items {
		if it == nil {
			it = new(T)
			items[i] = it
		}
		out = append(out, slot(it))
	}
	return out
}

// entryMetas returns the metadata slot of every entry in group g.
func (c *Contact) entryMetas(g FieldGroup) []metaSlot {
	p := c.person
	switch g {
	case FieldNames:
		return slots(p.Names, func(e *people.Name) metaSlot { return &e.Metadata })
	case FieldOrganizations:
		return slots(p.Organizations, func(e *people.Organization) metaSlot { return &e.Metadata })
	case FieldNicknames:
		return slots(p.Nicknames, func(e *people.Nickname) metaSlot { return &e.Metadata })
	case FieldBirthdays:
		return slots(p.Birthdays, func(e *people.Birthday) metaSlot { return &e.Metadata })
	case FieldPhotos:
		return slots(p.Photos, func(e *people.Photo) metaSlot { return &e.Metadata })
	case FieldAddresses:
		return slots(p.Addresses, func(e *people.Address) metaSlot { return &e.Metadata })
	case FieldEmailAddresses:
		return slots(p.EmailAddresses, func(e *people.EmailAddress) metaSlot { return &e.Metadata })
	case FieldPhoneNumbers:
		return slots(p.PhoneNumbers, func(e *people.PhoneNumber) metaSlot { return &e.Metadata })
	case FieldGenders:
		return slots(p.Genders, func(e *people.Gender) metaSlot { return &e.Metadata })
	case FieldMemberships:
		return slots(p.Memberships, func(e *people.Membership) metaSlot { return &e.Metadata })
	case FieldBiographies:
		return slots(p.Biographies, func(e *people.Biography) metaSlot { return &e.Metadata })
	case FieldURLs:
		return slots(p.Urls, func(e *people.Url) metaSlot { return &e.Metadata })
	case FieldOccupations:
		return slots(p.Occupations, func(e *people.Occupation) metaSlot { return &e.Metadata })
	case FieldCoverPhotos:
		return slots(p.CoverPhotos, func(e *people.CoverPhoto) metaSlot { return &e.Metadata })
	case FieldAgeRanges:
		return slots(p.AgeRanges, func(e *people.AgeRangeType) metaSlot { return &e.Metadata })
	}
	return nil
}
