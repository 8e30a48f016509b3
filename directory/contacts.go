// ABOUTME: Contact directory client over the People API
// ABOUTME: Paged listing, search, get/create/update/delete and starring of contacts
package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcard/models"
)

// SortOrder orders connection listings.
type SortOrder string

const (
	SortLastModifiedAscending  SortOrder = "LAST_MODIFIED_ASCENDING"
	SortLastModifiedDescending SortOrder = "LAST_MODIFIED_DESCENDING"
	SortFirstNameAscending     SortOrder = "FIRST_NAME_ASCENDING"
	SortLastNameAscending      SortOrder = "LAST_NAME_ASCENDING"
)

// DefaultSortOrder is used when no order is given.
const DefaultSortOrder = SortLastNameAscending

// ParseSortOrder accepts the service names or the short forms
// modified, modified-desc, first and last.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last", strings.ToLower(string(SortLastNameAscending)):
		return SortLastNameAscending, nil
	case "first", strings.ToLower(string(SortFirstNameAscending)):
		return SortFirstNameAscending, nil
	case "modified", strings.ToLower(string(SortLastModifiedAscending)):
		return SortLastModifiedAscending, nil
	case "modified-desc", strings.ToLower(string(SortLastModifiedDescending)):
		return SortLastModifiedDescending, nil
	}
	return "", models.NewError(models.CodeValidation, "parse sort order", "unknown sort order "+s)
}

// Contacts is the contact directory client.
type Contacts struct {
	svc *people.Service
	options
}

// NewContacts creates a contact client.
func NewContacts(svc *people.Service, opts ...Option) *Contacts {
	return &Contacts{svc: svc, options: buildOptions(DefaultContactPageSize, MaxContactPageSize, opts)}
}

// DetailFields returns the mask used for single-contact reads and writes.
func (c *Contacts) DetailFields() []models.FieldGroup {
	return append([]models.FieldGroup(nil), c.detailFields...)
}

// List returns every connection with the list fields, optionally only
// members of groupFilter. A failure on any page fails the whole call.
func (c *Contacts) List(ctx context.Context, sort SortOrder, groupFilter string) ([]*models.Contact, error) {
	return c.list(ctx, sort, groupFilter, c.listFields)
}

// ListDetailed is List with the detail fields, as needed for export.
func (c *Contacts) ListDetailed(ctx context.Context, sort SortOrder, groupFilter string) ([]*models.Contact, error) {
	return c.list(ctx, sort, groupFilter, c.detailFields)
}

func (c *Contacts) list(ctx context.Context, sort SortOrder, groupFilter string, fields []models.FieldGroup) ([]*models.Contact, error) {
	if sort == "" {
		sort = DefaultSortOrder
	}
	log := c.log.WithFields(logrus.Fields{"sort": sort, "group": groupFilter})

	var out []*models.Contact
	pageToken := ""
	pages := 0
	for {
		call := c.svc.People.Connections.List("people/me").
			PersonFields(models.JoinFields(fields)).
			PageSize(c.pageSize).
			SortOrder(string(sort)).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, classify("list contacts", err)
		}
		pages++

		for _, p := range resp.Connections {
			contact := models.FromPerson(p, fields...)
			if groupFilter != "" && !contact.BelongsToGroup(groupFilter) {
				continue
			}
			out = append(out, contact)
		}

		if resp.NextPageToken == "" {
			break
		}
		if resp.NextPageToken == pageToken {
			return nil, models.NewError(models.CodeRemoteAPI, "list contacts", "service repeated page token "+pageToken)
		}
		pageToken = resp.NextPageToken
	}

	log.WithFields(logrus.Fields{"pages": pages, "contacts": len(out)}).Debug("listed contacts")
	return out, nil
}

// Search returns the contacts matching query, at most MaxSearchPageSize.
// The service reports no total, so the result is exactly what it returned.
func (c *Contacts) Search(ctx context.Context, query string) ([]*models.Contact, error) {
	mask := models.JoinFields(c.listFields)

	// The search cache is only refreshed by a request with an empty query.
	if _, err := c.svc.People.SearchContacts().Query("").ReadMask(mask).Context(ctx).Do(); err != nil {
		c.log.WithError(err).Debug("search warm-up failed")
	}

	resp, err := c.svc.People.SearchContacts().
		Query(query).
		ReadMask(mask).
		PageSize(MaxSearchPageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("search contacts", err)
	}

	out := make([]*models.Contact, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Person != nil {
			out = append(out, models.FromPerson(r.Person, c.listFields...))
		}
	}
	c.log.WithFields(logrus.Fields{"query": query, "results": len(out)}).Debug("searched contacts")
	return out, nil
}

// Get fetches a single contact with the detail fields.
func (c *Contacts) Get(ctx context.Context, resourceName string) (*models.Contact, error) {
	if resourceName == "" {
		return nil, models.NewError(models.CodeValidation, "get contact", "resource name is required")
	}
	p, err := c.svc.People.Get(resourceName).
		PersonFields(models.JoinFields(c.detailFields)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("get contact "+resourceName, err)
	}
	return models.FromPerson(p, c.detailFields...), nil
}

// writable returns a pruned copy of the contact's person ready to send.
// The caller's record is left untouched.
func writable(contact *models.Contact) (people.Person, error) {
	out, err := contact.Clone()
	if err != nil {
		return people.Person{}, err
	}
	out.Compact()
	for _, g := range models.DetailFields {
		if idx := out.PrimaryItemIndex(g); idx >= 0 {
			_ = out.SetPrimaryItem(g, idx)
		}
	}
	p := *out.Person()
	p.Metadata = nil
	p.Photos = nil
	p.CoverPhotos = nil
	p.AgeRanges = nil
	return p, nil
}

// Create stores a new contact and returns the server's version.
func (c *Contacts) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	p, err := writable(contact)
	if err != nil {
		return nil, err
	}
	p.ResourceName = ""
	p.Etag = ""

	created, err := c.svc.People.CreateContact(&p).
		PersonFields(models.JoinFields(c.detailFields)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("create contact", err)
	}
	c.log.WithField("resource", created.ResourceName).Info("created contact")
	return models.FromPerson(created, c.detailFields...), nil
}

// Update writes the contact's writable field groups, guarded by etag.
func (c *Contacts) Update(ctx context.Context, resourceName, etag string, contact *models.Contact) (*models.Contact, error) {
	if resourceName == "" {
		return nil, models.NewError(models.CodeValidation, "update contact", "resource name is required")
	}
	if etag == "" {
		return nil, models.NewError(models.CodeValidation, "update contact", "etag is required")
	}

	mask := models.WritableFields(contact.Fields())
	if len(mask) == 0 {
		return nil, models.NewError(models.CodeValidation, "update contact", "no writable field groups requested")
	}

	p, err := writable(contact)
	if err != nil {
		return nil, err
	}
	p.ResourceName = resourceName
	p.Etag = etag
	p.Metadata = &people.PersonMetadata{Sources: []*people.Source{{Type: models.SourceTypeContact, Etag: etag}}}

	updated, err := c.svc.People.UpdateContact(resourceName, &p).
		UpdatePersonFields(models.JoinFields(mask)).
		PersonFields(models.JoinFields(c.detailFields)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("update contact "+resourceName, err)
	}
	c.log.WithFields(logrus.Fields{"resource": resourceName, "fields": models.JoinFields(mask)}).Info("updated contact")
	return models.FromPerson(updated, c.detailFields...), nil
}

// Delete removes a contact.
func (c *Contacts) Delete(ctx context.Context, resourceName string) error {
	if resourceName == "" {
		return models.NewError(models.CodeValidation, "delete contact", "resource name is required")
	}
	if _, err := c.svc.People.DeleteContact(resourceName).Context(ctx).Do(); err != nil {
		return classify("delete contact "+resourceName, err)
	}
	c.log.WithField("resource", resourceName).Info("deleted contact")
	return nil
}

// SetStarred adds the contact to, or removes it from, the starred group.
func (c *Contacts) SetStarred(ctx context.Context, resourceName string, starred bool) error {
	var add, remove []string
	if starred {
		add = []string{resourceName}
	} else {
		remove = []string{resourceName}
	}
	if err := modifyMembers(ctx, c.svc, models.GroupStarred, add, remove); err != nil {
		return fmt.Errorf("failed to set starred on %s: %w", resourceName, err)
	}
	c.log.WithFields(logrus.Fields{"resource": resourceName, "starred": starred}).Info("updated starred")
	return nil
}
