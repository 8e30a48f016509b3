// ABOUTME: Converts vCard cards into contact records
// ABOUTME: Maps N, ADR, TEL, EMAIL, URL, ORG, NICKNAME, NOTE, ROLE, BDAY and GENDER
package mapping

import (
	"strings"

	"github.com/emersion/go-vcard"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcard/models"
)

// Entry types written to the People API.
const (
	TypeHome          = "home"
	TypeWork          = "work"
	TypeMobile        = "mobile"
	TypeOther         = "other"
	GenderMale        = "male"
	GenderFemale      = "female"
	GenderUnspecified = "unspecified"
)

// FromCard builds a new contact from a parsed card.
// Categories and photos are left to the caller; see Categories and Photo.
func FromCard(card vcard.Card) (*models.Contact, error) {
	c := models.NewEmpty(models.DetailFields...)
	p := c.Person()

	name := card.Name()
	formatted := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName))
	if (name == nil || isBlankName(name)) && formatted == "" {
		return nil, models.NewError(models.CodeValidation, "map vcard", "card has neither N nor FN")
	}
	n := &people.Name{DisplayName: formatted}
	if name != nil {
		n.HonorificPrefix = name.HonorificPrefix
		n.FamilyName = name.FamilyName
		n.GivenName = name.GivenName
		n.MiddleName = name.AdditionalName
		n.HonorificSuffix = name.HonorificSuffix
	}
	if isBlankName(name) {
		n.UnstructuredName = formatted
	}
	p.Names = []*people.Name{n}

	p.Addresses = nil
	for _, a := range card.Addresses() {
		p.Addresses = append(p.Addresses, addressFromCard(a))
	}
	markPreferred(c, models.FieldAddresses, card[vcard.FieldAddress])

	p.PhoneNumbers = nil
	for _, f := range card[vcard.FieldTelephone] {
		p.PhoneNumbers = append(p.PhoneNumbers, &people.PhoneNumber{Value: f.Value, Type: phoneType(f)})
	}
	markPreferred(c, models.FieldPhoneNumbers, card[vcard.FieldTelephone])

	p.EmailAddresses = nil
	for _, f := range card[vcard.FieldEmail] {
		p.EmailAddresses = append(p.EmailAddresses, &people.EmailAddress{Value: f.Value, Type: TypeOther})
	}
	markPreferred(c, models.FieldEmailAddresses, card[vcard.FieldEmail])

	p.Urls = nil
	for _, f := range card[vcard.FieldURL] {
		p.Urls = append(p.Urls, &people.Url{Value: f.Value, Type: TypeOther})
	}
	markPreferred(c, models.FieldURLs, card[vcard.FieldURL])

	org := &people.Organization{}
	if v := card.PreferredValue(vcard.FieldOrganization); v != "" {
		parts := strings.SplitN(v, ";", 2)
		org.Name = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			org.Department = strings.TrimSpace(strings.ReplaceAll(parts[1], ";", " "))
		}
	}
	org.Title = card.PreferredValue(vcard.FieldTitle)
	p.Organizations = []*people.Organization{org}

	p.Nicknames = nil
	for _, v := range card.Values(vcard.FieldNickname) {
		for _, nick := range strings.Split(v, ",") {
			if nick = strings.TrimSpace(nick); nick != "" {
				p.Nicknames = append(p.Nicknames, &people.Nickname{Value: nick})
			}
		}
	}

	if note := card.Value(vcard.FieldNote); note != "" {
		p.Biographies = []*people.Biography{{Value: note, ContentType: "TEXT_PLAIN"}}
	}
	if role := card.Value(vcard.FieldRole); role != "" {
		p.Occupations = []*people.Occupation{{Value: role}}
	}

	// An unparseable BDAY is dropped rather than failing the whole card.
	_ = c.SetDateOfBirthString(card.Value(vcard.FieldBirthday))

	if card.Get(vcard.FieldGender) != nil {
		sex, _ := card.Gender()
		p.Genders = []*people.Gender{{Value: genderFromSex(sex)}}
	}

	c.Compact()
	return c, nil
}

func isBlankName(n *vcard.Name) bool {
	return n == nil || (n.FamilyName == "" && n.GivenName == "" && n.AdditionalName == "" &&
		n.HonorificPrefix == "" && n.HonorificSuffix == "")
}

func addressFromCard(a *vcard.Address) *people.Address {
	out := &people.Address{
		PoBox:           a.PostOfficeBox,
		ExtendedAddress: a.ExtendedAddress,
		StreetAddress:   a.StreetAddress,
		City:            a.Locality,
		Region:          a.Region,
		PostalCode:      a.PostalCode,
		Type:            TypeOther,
	}
	switch {
	case typeContains(a.Field, "HOME"):
		out.Type = TypeHome
	case typeContains(a.Field, "WORK"):
		out.Type = TypeWork
	}
	country := strings.TrimSpace(a.Country)
	if len(country) == 2 {
		out.CountryCode = strings.ToUpper(country)
	} else {
		out.Country = country
	}
	return out
}

func phoneType(f *vcard.Field) string {
	switch {
	case typeContains(f, "HOME"):
		return TypeHome
	case typeContains(f, "CELL"):
		return TypeMobile
	case typeContains(f, "WORK"):
		return TypeWork
	}
	return TypeOther
}

func genderFromSex(sex vcard.Sex) string {
	switch sex {
	case vcard.SexMale:
		return GenderMale
	case vcard.SexFemale:
		return GenderFemale
	}
	return GenderUnspecified
}

// markPreferred makes the first preferred property of a group the primary entry.
func markPreferred(c *models.Contact, g models.FieldGroup, fields []*vcard.Field) {
	for i, f := range fields {
		if isPreferred(f) {
			_ = c.SetPrimaryItem(g, i)
			return
		}
	}
}
