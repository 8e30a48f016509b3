// ABOUTME: Functional options shared by the contact and group clients
// ABOUTME: Page size, field masks, logger and the HTTP client used for photo downloads
package directory

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/gcard/logger"
	"github.com/harperreed/gcard/models"
)

// Page size limits of the service.
const (
	DefaultContactPageSize = 200
	MaxContactPageSize     = 1000
	MaxSearchPageSize      = 30
	DefaultGroupPageSize   = 50
	MaxGroupPageSize       = 1000
)

type options struct {
	log          logrus.FieldLogger
	pageSize     int64
	detailFields []models.FieldGroup
	listFields   []models.FieldGroup
	download     *http.Client
}

// Option configures a client.
type Option func(*options)

// WithLogger sets the logger; the default is the process logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithPageSize overrides the page size, clamped to the service maximum.
func WithPageSize(n int64) Option {
	return func(o *options) { o.pageSize = n }
}

// WithFields overrides the detail and list field masks. A nil list keeps the default.
func WithFields(detail, list []models.FieldGroup) Option {
	return func(o *options) {
		if detail != nil {
			o.detailFields = models.NormalizeFields(detail)
		}
		if list != nil {
			o.listFields = models.NormalizeFields(list)
		}
	}
}

// WithDownloadClient sets the client used to fetch photos by URL.
func WithDownloadClient(c *http.Client) Option {
	return func(o *options) { o.download = c }
}

func buildOptions(defaultPage, maxPage int64, opts []Option) options {
	o := options{
		pageSize:     defaultPage,
		detailFields: models.DetailFields,
		listFields:   models.ListFields,
		download:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetLogger()
	}
	if o.pageSize <= 0 {
		o.pageSize = defaultPage
	}
	if o.pageSize > maxPage {
		o.pageSize = maxPage
	}
	return o
}
