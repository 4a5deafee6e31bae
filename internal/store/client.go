// Package store implements the document store client: fetching and
// replacing configuration documents by id over the authenticated
// transport.
package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/agentstation/glossync/internal/transport"
	"github.com/agentstation/glossync/pkg/document"
	"github.com/agentstation/glossync/pkg/errors"
	"github.com/agentstation/glossync/pkg/logging"
)

// ConfigurationPath is the configuration collection endpoint.
const ConfigurationPath = "/analysis/v2/configuration"

// Client reads and writes configuration documents.
type Client struct {
	transport *transport.Client
}

// New creates a store client on top of an authenticated transport.
func New(t *transport.Client) *Client {
	return &Client{transport: t}
}

// Fetch retrieves the configuration document with the given id.
func (c *Client) Fetch(ctx context.Context, id string) (document.Document, error) {
	log := logging.FromContext(ctx)
	log.Debug().Str("config_id", id).Msg("Retrieving configuration")

	body, err := c.transport.Get(ctx, fmt.Sprintf("%s/%s", ConfigurationPath, id))
	if err != nil {
		return nil, c.mapError(err, id)
	}

	log.Info().Str("config_id", id).Msg("Retrieved configuration")
	return document.Document(body), nil
}

// Write replaces the configuration document with the given id and
// returns the document as stored.
func (c *Client) Write(ctx context.Context, id string, doc document.Document) (document.Document, error) {
	log := logging.FromContext(ctx)
	log.Debug().Str("config_id", id).Msg("Updating configuration")

	body, err := c.transport.Put(ctx, fmt.Sprintf("%s/%s", ConfigurationPath, id), map[string]any(doc))
	if err != nil {
		return nil, c.mapError(err, id)
	}

	log.Info().Str("config_id", id).Msg("Updated configuration")
	return document.Document(body), nil
}

// TestConnection verifies that the store is reachable and the login
// token is accepted.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.transport.Get(ctx, ConfigurationPath)
	return err
}

// mapError translates store responses into the pipeline's error
// taxonomy. Validation rejections keep the server's message.
func (c *Client) mapError(err error, id string) error {
	var apiErr *errors.APIError
	if !stderrors.As(err, &apiErr) {
		return err
	}

	switch apiErr.StatusCode {
	case http.StatusNotFound:
		return errors.NewNotFoundError("configuration", id)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return errors.NewValidationError("configuration", id, apiErr.Message)
	default:
		return err
	}
}
