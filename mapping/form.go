// ABOUTME: Decodes flat form fields (group_index_attribute) into contact records
// ABOUTME: Applies primary selectors, metadata fields and the birthday field
package mapping

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcard/models"
)

// Form keys outside the group_index_attribute scheme.
const (
	FormResourceName = "resourceName"
	FormMetadataType = "metadataType"
	FormMetadataID   = "metadataId"
	FormMetadataEtag = "metadataEtag"
	FormBirthday     = "birthday"
)

// maxFormIndex bounds entry indexes so a crafted key cannot allocate unbounded slices.
const maxFormIndex = 100

// primarySelectors are form keys whose value is the index of the primary entry.
var primarySelectors = []models.FieldGroup{
	models.FieldAddresses,
	models.FieldEmailAddresses,
	models.FieldPhoneNumbers,
	models.FieldURLs,
}

type attrSetter func(p *people.Person, index int, attr, value string) bool

var formSetters = map[models.FieldGroup]attrSetter{
	models.FieldNames: func(p *people.Person, i int, attr, v string) bool {
		n := entryAt(&p.Names, i)
		switch attr {
		case "displayName":
			n.DisplayName = v
		case "givenName":
			n.GivenName = v
		case "familyName":
			n.FamilyName = v
		case "middleName":
			n.MiddleName = v
		case "honorificPrefix":
			n.HonorificPrefix = v
		case "honorificSuffix":
			n.HonorificSuffix = v
		default:
			return false
		}
		return true
	},
	models.FieldOrganizations: func(p *people.Person, i int, attr, v string) bool {
		o := entryAt(&p.Organizations, i)
		switch attr {
		case "name":
			o.Name = v
		case "title":
			o.Title = v
		case "department":
			o.Department = v
		default:
			return false
		}
		return true
	},
	models.FieldNicknames: func(p *people.Person, i int, attr, v string) bool {
		if attr != "value" {
			return false
		}
		entryAt(&p.Nicknames, i).Value = v
		return true
	},
	models.FieldAddresses: func(p *people.Person, i int, attr, v string) bool {
		a := entryAt(&p.Addresses, i)
		switch attr {
		case "type":
			a.Type = v
		case "streetAddress":
			a.StreetAddress = v
		case "extendedAddress":
			a.ExtendedAddress = v
		case "city":
			a.City = v
		case "region":
			a.Region = v
		case "postalCode":
			a.PostalCode = v
		case "poBox":
			a.PoBox = v
		case "country":
			a.Country = v
		case "countryCode":
			a.CountryCode = strings.ToUpper(v)
		default:
			return false
		}
		return true
	},
	models.FieldEmailAddresses: func(p *people.Person, i int, attr, v string) bool {
		e := entryAt(&p.EmailAddresses, i)
		switch attr {
		case "type":
			e.Type = v
		case "value":
			e.Value = v
		case "displayName":
			e.DisplayName = v
		default:
			return false
		}
		return true
	},
	models.FieldPhoneNumbers: func(p *people.Person, i int, attr, v string) bool {
		ph := entryAt(&p.PhoneNumbers, i)
		switch attr {
		case "type":
			ph.Type = v
		case "value":
			ph.Value = v
		default:
			return false
		}
		return true
	},
	models.FieldURLs: func(p *people.Person, i int, attr, v string) bool {
		u := entryAt(&p.Urls, i)
		switch attr {
		case "type":
			u.Type = v
		case "value":
			u.Value = v
		default:
			return false
		}
		return true
	},
	models.FieldBiographies: func(p *people.Person, i int, attr, v string) bool {
		if attr != "value" {
			return false
		}
		b := entryAt(&p.Biographies, i)
		b.Value = v
		b.ContentType = "TEXT_PLAIN"
		return true
	},
	models.FieldOccupations: func(p *people.Person, i int, attr, v string) bool {
		if attr != "value" {
			return false
		}
		entryAt(&p.Occupations, i).Value = v
		return true
	},
	models.FieldGenders: func(p *people.Person, i int, attr, v string) bool {
		if attr != "value" {
			return false
		}
		entryAt(&p.Genders, i).Value = v
		return true
	},
	models.FieldMemberships: func(p *people.Person, i int, attr, v string) bool {
		if attr != "contactGroupResourceName" {
			return false
		}
		m := entryAt(&p.Memberships, i)
		m.ContactGroupMembership = &people.ContactGroupMembership{ContactGroupResourceName: v}
		return true
	},
}

func entryAt[T any](items *[]*T, index int) *T {
	for len(*items) <= index {
		*items = append(*items, new(T))
	}
	if (*items)[index] == nil {
		(*items)[index] = new(T)
	}
	return (*items)[index]
}

// formFields is the field mask of a decoded form. Memberships are only part
// of it when the form carries membership keys, so an update from a form
// without them leaves the contact's groups alone.
func formFields(values url.Values) []models.FieldGroup {
	for key := range values {
		if strings.HasPrefix(key, string(models.FieldMemberships)+"_") {
			return models.DetailFields
		}
	}
	out := make([]models.FieldGroup, 0, len(models.DetailFields))
	for _, g := range models.DetailFields {
		if g != models.FieldMemberships {
			out = append(out, g)
		}
	}
	return out
}

// DecodeForm builds a contact from submitted form values.
func DecodeForm(values url.Values) (*models.Contact, error) {
	c := models.NewEmpty(formFields(values)...)
	p := c.Person()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, "_")
		if len(parts) != 3 {
			continue
		}
		group, err := models.ParseFieldGroup(parts[0])
		if err != nil {
			return nil, err
		}
		setter, ok := formSetters[group]
		if !ok {
			return nil, models.NewError(models.CodeValidation, "decode form", fmt.Sprintf("field group %s is not editable", group))
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil || index < 0 || index >= maxFormIndex {
			return nil, models.NewError(models.CodeValidation, "decode form", fmt.Sprintf("invalid entry index in %q", key))
		}
		if !setter(p, index, parts[2], strings.TrimSpace(values.Get(key))) {
			return nil, models.NewError(models.CodeValidation, "decode form", fmt.Sprintf("unknown attribute %q for %s", parts[2], group))
		}
	}

	for _, g := range primarySelectors {
		raw := strings.TrimSpace(values.Get(string(g)))
		if raw == "" {
			continue
		}
		index, err := strconv.Atoi(raw)
		if err != nil {
			return nil, models.NewError(models.CodeValidation, "decode form", fmt.Sprintf("invalid primary index %q for %s", raw, g))
		}
		if err := c.SetPrimaryItem(g, index); err != nil {
			return nil, err
		}
	}

	if err := c.SetDateOfBirthString(values.Get(FormBirthday)); err != nil {
		return nil, err
	}

	c.SetResourceName(strings.TrimSpace(values.Get(FormResourceName)))
	sourceType := values.Get(FormMetadataType)
	if sourceType == "" {
		sourceType = models.SourceTypeContact
	}
	c.SetMetadata(sourceType, values.Get(FormMetadataID), values.Get(FormMetadataEtag))

	c.Compact()
	return c, nil
}
