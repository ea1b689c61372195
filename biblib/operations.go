// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblib

import (
	"context"
	"net/http"

	"github.com/pdiddy/adsabs/transport"
)

// operationRequest is the wire shape of a set-algebra request.
type operationRequest struct {
	Action      string   `json:"action"`
	Libraries   []string `json:"libraries,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Public      *bool    `json:"public,omitempty"`
}

// operate runs a set operation rooted at the receiver. Every participant
// must already exist on the server.
func (l *Library) operate(ctx context.Context, action, name, description string, others ...*Library) (*Library, error) {
	if l.ID == "" {
		return nil, transport.Validationf("library has not been saved")
	}
	ids := make([]string, 0, len(others))
	for _, o := range others {
		if o.ID == "" {
			return nil, transport.Validationf("operand library has not been saved")
		}
		ids = append(ids, o.ID)
	}

	endpoint := endpointOperations + "/" + l.ID
	resp, err := l.c.t.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Body: operationRequest{
			Action:      action,
			Libraries:   ids,
			Name:        name,
			Description: description,
		},
	})
	if err != nil {
		return nil, err
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, &transport.ParseError{Endpoint: endpoint, Err: err}
	}
	if body.ID == "" {
		return nil, nil
	}
	return l.c.Get(ctx, body.ID)
}

// Union creates a new library holding every document in l or any of the
// others.
func (l *Library) Union(ctx context.Context, name, description string, others ...*Library) (*Library, error) {
	return l.operate(ctx, "union", name, description, others...)
}

// Intersection creates a new library holding the documents common to l
// and every other.
func (l *Library) Intersection(ctx context.Context, name, description string, others ...*Library) (*Library, error) {
	return l.operate(ctx, "intersection", name, description, others...)
}

// Difference creates a new library holding the documents of l that appear
// in none of the others.
func (l *Library) Difference(ctx context.Context, name, description string, others ...*Library) (*Library, error) {
	return l.operate(ctx, "difference", name, description, others...)
}

// CopyTo replaces dst's documents with l's. dst is refreshed from the
// server afterwards.
func (l *Library) CopyTo(ctx context.Context, dst *Library) error {
	if _, err := l.operate(ctx, "copy", "", "", dst); err != nil {
		return err
	}
	return dst.refresh(ctx)
}

// Empty removes every document from the library on the server and locally.
func (l *Library) Empty(ctx context.Context) error {
	if _, err := l.operate(ctx, "empty", "", ""); err != nil {
		return err
	}
	l.Documents = nil
	l.snap.bibcodes = nil
	l.NumDocuments = 0
	return nil
}

// refresh reloads documents and metadata from the server in place.
func (l *Library) refresh(ctx context.Context) error {
	fresh, err := l.c.Get(ctx, l.ID)
	if err != nil {
		return err
	}
	perms := l.Permissions
	snapPerms := l.snap.permissions
	*l = *fresh
	l.Permissions = perms
	l.snap.permissions = snapPerms
	return nil
}
