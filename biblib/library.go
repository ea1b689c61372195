// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package biblib manages user-owned libraries of bibliographic records.
// A Library is mutated in memory; Save computes the minimal difference
// against the last-known server state and issues only the requests that
// difference requires.
package biblib

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pdiddy/adsabs/pkg/types"
	"github.com/pdiddy/adsabs/transport"
)

const (
	endpointLibraries   = "biblib/libraries"
	endpointDocuments   = "biblib/documents"
	endpointPermissions = "biblib/permissions"
	endpointOperations  = "biblib/libraries/operations"
	endpointTransfer    = "biblib/transfer"
)

// Client issues library requests over a shared transport.
type Client struct {
	t   *transport.Client
	log zerolog.Logger
}

// NewClient builds a library client.
func NewClient(t *transport.Client, log zerolog.Logger) *Client {
	return &Client{t: t, log: log}
}

// Library is a server-side collection of bibcodes. The exported fields are
// the desired state; Save reconciles the server with them. ID is assigned
// by the server on first save. NumUsers, DateCreated and DateLastModified
// are server-owned: changing them makes Save fail. Not safe for concurrent
// use.
type Library struct {
	c *Client

	ID               string
	Name             string
	Description      string
	Public           bool
	Owner            string
	NumDocuments     int
	NumUsers         int
	DateCreated      string
	DateLastModified string

	// Documents is the ordered member bibcode list.
	Documents []string

	// Permissions maps collaborator email to granted rights.
	Permissions map[string]Permission

	snap snapshot
}

// snapshot is the last-known server state, the baseline Save diffs against.
type snapshot struct {
	name             string
	description      string
	public           bool
	owner            string
	numUsers         int
	dateCreated      string
	dateLastModified string

	// bibcodes is the pre-save member list.
	bibcodes    []string
	permissions map[string]Permission
}

// NewLibrary starts an in-memory library. It exists on the server only
// after the first Save.
func (c *Client) NewLibrary(name, description string, public bool) *Library {
	return &Library{
		c:           c,
		Name:        name,
		Description: description,
		Public:      public,
		Permissions: make(map[string]Permission),
	}
}

// libraryMetadata is the wire shape of library metadata.
type libraryMetadata struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Public           bool   `json:"public"`
	Owner            string `json:"owner"`
	NumDocuments     int    `json:"num_documents"`
	NumUsers         int    `json:"num_users"`
	DateCreated      string `json:"date_created"`
	DateLastModified string `json:"date_last_modified"`
}

// List returns the metadata of every library the user can see.
func (c *Client) List(ctx context.Context) ([]*Library, error) {
	resp, err := c.t.Do(ctx, transport.Request{Method: http.MethodGet, Endpoint: endpointLibraries})
	if err != nil {
		return nil, err
	}
	var body struct {
		Libraries []libraryMetadata `json:"libraries"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, &transport.ParseError{Endpoint: endpointLibraries, Err: err}
	}

	out := make([]*Library, len(body.Libraries))
	for i, meta := range body.Libraries {
		lib := &Library{c: c, Permissions: make(map[string]Permission)}
		lib.applyMetadata(meta)
		out[i] = lib
	}
	return out, nil
}

// Get fetches one library with its full document list.
func (c *Client) Get(ctx context.Context, id string) (*Library, error) {
	endpoint := endpointLibraries + "/" + id
	resp, err := c.t.Do(ctx, transport.Request{Method: http.MethodGet, Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	var body struct {
		Documents []string        `json:"documents"`
		Metadata  libraryMetadata `json:"metadata"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, &transport.ParseError{Endpoint: endpoint, Err: err}
	}

	lib := &Library{c: c, Permissions: make(map[string]Permission)}
	lib.applyMetadata(body.Metadata)
	if lib.ID == "" {
		lib.ID = id
	}
	lib.Documents = append([]string(nil), body.Documents...)
	lib.snap.bibcodes = append([]string(nil), body.Documents...)
	return lib, nil
}

// FetchPermissions loads the library's permission map from the server and
// resets the permission baseline.
func (l *Library) FetchPermissions(ctx context.Context) error {
	if l.ID == "" {
		return transport.Validationf("library has not been saved")
	}
	endpoint := endpointPermissions + "/" + l.ID
	resp, err := l.c.t.Do(ctx, transport.Request{Method: http.MethodGet, Endpoint: endpoint})
	if err != nil {
		return err
	}
	var body []map[string][]string
	if err := resp.Decode(&body); err != nil {
		return &transport.ParseError{Endpoint: endpoint, Err: err}
	}

	l.Permissions = make(map[string]Permission)
	for _, entry := range body {
		for email, names := range entry {
			p, err := ParsePermission(names)
			if err != nil {
				return err
			}
			l.Permissions[email] = p
		}
	}
	l.snap.permissions = clonePermissions(l.Permissions)
	return nil
}

// Add appends bibcodes to the member list, skipping ones already present.
// Invalid bibcodes are rejected.
func (l *Library) Add(bibcodes ...string) error {
	for _, code := range bibcodes {
		if err := validateBibcode(code); err != nil {
			return err
		}
	}
	present := make(map[string]struct{}, len(l.Documents))
	for _, code := range l.Documents {
		present[code] = struct{}{}
	}
	for _, code := range bibcodes {
		if _, ok := present[code]; ok {
			continue
		}
		present[code] = struct{}{}
		l.Documents = append(l.Documents, code)
	}
	return nil
}

// Remove drops bibcodes from the member list. Unknown bibcodes are ignored.
func (l *Library) Remove(bibcodes ...string) {
	drop := make(map[string]struct{}, len(bibcodes))
	for _, code := range bibcodes {
		drop[code] = struct{}{}
	}
	kept := l.Documents[:0]
	for _, code := range l.Documents {
		if _, ok := drop[code]; !ok {
			kept = append(kept, code)
		}
	}
	l.Documents = kept
}

// Contains reports whether the bibcode is a member.
func (l *Library) Contains(bibcode string) bool {
	for _, code := range l.Documents {
		if code == bibcode {
			return true
		}
	}
	return false
}

// SetPermission stages a permission change for a collaborator. An all-false
// permission revokes access.
func (l *Library) SetPermission(email string, p Permission) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if l.Permissions == nil {
		l.Permissions = make(map[string]Permission)
	}
	l.Permissions[email] = p
	return nil
}

// applyMetadata copies server metadata into the library and refreshes the
// metadata baseline.
func (l *Library) applyMetadata(meta libraryMetadata) {
	l.ID = meta.ID
	l.Name = meta.Name
	l.Description = meta.Description
	l.Public = meta.Public
	l.Owner = meta.Owner
	l.NumDocuments = meta.NumDocuments
	l.NumUsers = meta.NumUsers
	l.DateCreated = meta.DateCreated
	l.DateLastModified = meta.DateLastModified

	l.snap.name = meta.Name
	l.snap.description = meta.Description
	l.snap.public = meta.Public
	l.snap.owner = meta.Owner
	l.snap.numUsers = meta.NumUsers
	l.snap.dateCreated = meta.DateCreated
	l.snap.dateLastModified = meta.DateLastModified
}

func validateBibcode(code string) error {
	if !types.Bibcode(code).Valid() {
		return transport.Validationf("invalid bibcode %q", code)
	}
	return nil
}

func clonePermissions(m map[string]Permission) map[string]Permission {
	out := make(map[string]Permission, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (l *Library) String() string {
	return fmt.Sprintf("<Library %s: %q, %d documents>", l.ID, l.Name, len(l.Documents))
}
