// ABOUTME: Converts contact records into vCard 3.0 cards
// ABOUTME: Handles TYPE mapping, preferred entries, group categories and photos
package mapping

import (
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"

	"github.com/harperreed/gcard/models"
)

// ExportOptions controls what ToCard writes besides the plain fields.
type ExportOptions struct {
	// MapGroupsToCategory writes memberships found in Groups as CATEGORIES.
	MapGroupsToCategory bool
	// MapSystemGroups lets callers include system groups when building Groups.
	MapSystemGroups bool
	// ExportPhoto writes a PHOTO property.
	ExportPhoto bool
	// UseDefaultPhoto allows the service's placeholder photo to be exported.
	UseDefaultPhoto bool
	// StarredCategory replaces contactGroups/starred when set.
	StarredCategory string
	// Groups maps group resource names to display names.
	Groups map[string]string
}

// DefaultExportOptions exports photos and maps user groups to categories.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{MapGroupsToCategory: true, ExportPhoto: true}
}

// ToCard renders a contact as a card.
func ToCard(c *models.Contact, opts ExportOptions) (vcard.Card, error) {
	p := c.Person()
	if len(p.Names) == 0 || p.Names[0] == nil {
		return nil, models.NewError(models.CodeValidation, "map contact", "contact "+c.ResourceName()+" has no name")
	}

	card := vcard.Card{}
	card.SetValue(vcard.FieldVersion, CardVersion)
	if rn := c.ResourceName(); rn != "" {
		card.SetValue(vcard.FieldUID, "urn:uuid:"+uuid.NewSHA1(uuid.NameSpaceURL, []byte(rn)).String())
	}

	n := p.Names[0]
	card.SetName(&vcard.Name{
		Field:           &vcard.Field{},
		FamilyName:      n.FamilyName,
		GivenName:       n.GivenName,
		AdditionalName:  n.MiddleName,
		HonorificPrefix: n.HonorificPrefix,
		HonorificSuffix: n.HonorificSuffix,
	})
	card.SetValue(vcard.FieldFormattedName, c.DisplayName())

	if len(p.Organizations) > 0 && p.Organizations[0] != nil {
		org := p.Organizations[0]
		if org.Name != "" || org.Department != "" {
			value := org.Name
			if org.Department != "" {
				value += ";" + org.Department
			}
			card.SetValue(vcard.FieldOrganization, value)
		}
		if org.Title != "" {
			card.SetValue(vcard.FieldTitle, org.Title)
		}
	}

	for _, nick := range p.Nicknames {
		if nick != nil && nick.Value != "" {
			card.AddValue(vcard.FieldNickname, nick.Value)
		}
	}

	if bday := c.DateOfBirthString(models.DefaultDateLayout); bday != "" {
		card.SetValue(vcard.FieldBirthday, bday)
	}

	if len(p.Genders) > 0 && p.Genders[0] != nil {
		switch strings.ToLower(p.Genders[0].Value) {
		case GenderMale:
			card.SetGender(vcard.SexMale, "")
		case GenderFemale:
			card.SetGender(vcard.SexFemale, "")
		}
	}

	if len(p.Biographies) > 0 && p.Biographies[0] != nil && p.Biographies[0].Value != "" {
		card.SetValue(vcard.FieldNote, p.Biographies[0].Value)
	}
	if len(p.Occupations) > 0 && p.Occupations[0] != nil && p.Occupations[0].Value != "" {
		card.SetValue(vcard.FieldRole, p.Occupations[0].Value)
	}

	for i, ph := range p.PhoneNumbers {
		if ph == nil || ph.Value == "" {
			continue
		}
		card.Add(vcard.FieldTelephone, newTypedField(ph.Value, phoneCardType(ph.Type), prefType(c, models.FieldPhoneNumbers, i)))
	}

	for i, a := range p.Addresses {
		if a == nil {
			continue
		}
		country := a.Country
		if country == "" {
			country = a.CountryCode
		}
		field := newTypedField("", addressCardType(a.Type), prefType(c, models.FieldAddresses, i))
		card.AddAddress(&vcard.Address{
			Field:           field,
			PostOfficeBox:   a.PoBox,
			ExtendedAddress: a.ExtendedAddress,
			StreetAddress:   a.StreetAddress,
			Locality:        a.City,
			Region:          a.Region,
			PostalCode:      a.PostalCode,
			Country:         country,
		})
	}

	for i, e := range p.EmailAddresses {
		if e == nil || e.Value == "" {
			continue
		}
		card.Add(vcard.FieldEmail, newTypedField(e.Value, "INTERNET", prefType(c, models.FieldEmailAddresses, i)))
	}

	for i, u := range p.Urls {
		if u == nil || u.Value == "" {
			continue
		}
		card.Add(vcard.FieldURL, newTypedField(u.Value, prefType(c, models.FieldURLs, i)))
	}

	if opts.MapGroupsToCategory {
		if cats := categoriesFor(c, opts); len(cats) > 0 {
			card.SetCategories(cats)
		}
	}

	if opts.ExportPhoto {
		if url := photoURL(c, opts.UseDefaultPhoto); url != "" {
			card.Add(vcard.FieldPhoto, &vcard.Field{Value: url, Params: vcard.Params{paramValue: {"uri"}}})
		}
	}

	if t := c.LastModified(); !t.IsZero() {
		card.SetRevision(t)
	}

	return card, nil
}

func phoneCardType(t string) string {
	switch strings.ToLower(t) {
	case TypeHome:
		return "HOME"
	case TypeMobile:
		return "CELL"
	case TypeWork:
		return "WORK"
	}
	return "VOICE"
}

func addressCardType(t string) string {
	switch strings.ToLower(t) {
	case TypeHome:
		return "HOME"
	case TypeWork:
		return "WORK"
	}
	return ""
}

func prefType(c *models.Contact, g models.FieldGroup, i int) string {
	if c.IsPrimary(g, i) {
		return "pref"
	}
	return ""
}

func categoriesFor(c *models.Contact, opts ExportOptions) []string {
	var cats []string
	for _, rn := range c.Memberships() {
		if rn == models.GroupStarred && opts.StarredCategory != "" {
			cats = append(cats, opts.StarredCategory)
			continue
		}
		if name, ok := opts.Groups[rn]; ok && name != "" {
			cats = append(cats, name)
		}
	}
	return cats
}

func photoURL(c *models.Contact, useDefault bool) string {
	var fallback string
	for _, ph := range c.Person().Photos {
		if ph == nil || ph.Url == "" {
			continue
		}
		if !ph.Default {
			return ph.Url
		}
		if fallback == "" {
			fallback = ph.Url
		}
	}
	if useDefault {
		return fallback
	}
	return ""
}
