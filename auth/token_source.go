// ABOUTME: Token source that refreshes expired tokens and writes them back to the store
// ABOUTME: Produces the authenticated HTTP client and People service used by the directory clients
package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcard/models"
)

type persistingSource struct {
	base  oauth2.TokenSource
	store TokenStore
	log   logrus.FieldLogger

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, models.WrapError(models.CodeAuth, "refresh token", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(tok); err != nil {
			s.log.WithError(err).Warn("failed to persist refreshed token")
		} else {
			s.log.WithField("expiry", tok.Expiry).Debug("persisted refreshed token")
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

// NewTokenSource loads the stored token and returns a source that refreshes it at most once
// per expiry and saves every new token.
func NewTokenSource(ctx context.Context, oc *oauth2.Config, store TokenStore, log logrus.FieldLogger) (oauth2.TokenSource, error) {
	tok, err := store.Load()
	if err != nil {
		return nil, err
	}
	if !tok.Valid() && tok.RefreshToken == "" {
		return nil, models.NewError(models.CodeAuth, "token source", "token expired and no refresh token is stored, run 'gcard login'")
	}
	src := &persistingSource{
		base:  oc.TokenSource(ctx, tok),
		store: store,
		log:   log,
		last:  tok.AccessToken,
	}
	return oauth2.ReuseTokenSource(tok, src), nil
}

// NewHTTPClient returns an HTTP client that authorizes every request.
func NewHTTPClient(ctx context.Context, oc *oauth2.Config, store TokenStore, log logrus.FieldLogger) (*http.Client, error) {
	src, err := NewTokenSource(ctx, oc, store, log)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, src), nil
}

// NewPeopleService creates the People API service over an authorized client.
func NewPeopleService(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*people.Service, error) {
	if client == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	service, err := people.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}
	return service, nil
}
