// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblib

import (
	"context"
	"net/http"

	"github.com/pdiddy/adsabs/transport"
)

// Save reconciles the server with the library's in-memory state. Changes
// are applied in a fixed order: metadata, document additions, document
// removals, permission grants, then ownership transfer. A library with no
// ID is created first. When nothing differs from the baseline no request
// is sent.
func (l *Library) Save(ctx context.Context) error {
	if err := l.checkImmutable(); err != nil {
		return err
	}
	for _, code := range l.Documents {
		if err := validateBibcode(code); err != nil {
			return err
		}
	}

	if l.ID == "" {
		if err := l.create(ctx); err != nil {
			return err
		}
	} else if err := l.saveMetadata(ctx); err != nil {
		return err
	}

	added, removed := diffBibcodes(l.snap.bibcodes, l.Documents)
	if err := l.postDocuments(ctx, added, "add"); err != nil {
		return err
	}
	if err := l.postDocuments(ctx, removed, "remove"); err != nil {
		return err
	}
	if err := l.savePermissions(ctx); err != nil {
		return err
	}
	if err := l.saveOwner(ctx); err != nil {
		return err
	}

	l.NumDocuments = len(l.Documents)
	l.snap.bibcodes = append([]string(nil), l.Documents...)
	l.snap.permissions = clonePermissions(l.Permissions)
	return nil
}

// checkImmutable rejects edits to server-owned fields. For an unsaved
// library the zero-valued snapshot is the baseline, so setting any of these
// before the first save fails too.
func (l *Library) checkImmutable() error {
	switch {
	case l.NumUsers != l.snap.numUsers:
		return transport.Validationf("num_users is set by the server")
	case l.DateCreated != l.snap.dateCreated:
		return transport.Validationf("date_created is set by the server")
	case l.DateLastModified != l.snap.dateLastModified:
		return transport.Validationf("date_last_modified is set by the server")
	}
	return nil
}

// create makes the library on the server and records the assigned id.
// Initial documents ride along in the creation request.
func (l *Library) create(ctx context.Context) error {
	payload := map[string]any{
		"name":        l.Name,
		"description": l.Description,
		"public":      l.Public,
	}
	if len(l.Documents) > 0 {
		payload["bibcode"] = l.Documents
	}
	resp, err := l.c.t.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Endpoint: endpointLibraries,
		Body:     payload,
	})
	if err != nil {
		return err
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := resp.Decode(&body); err != nil {
		return &transport.ParseError{Endpoint: endpointLibraries, Err: err}
	}
	l.ID = body.ID

	l.snap.name = l.Name
	l.snap.description = l.Description
	l.snap.public = l.Public
	l.snap.owner = l.Owner
	l.snap.bibcodes = append([]string(nil), l.Documents...)
	l.c.log.Info().Str("id", l.ID).Str("name", l.Name).Msg("created library")
	return nil
}

// saveMetadata pushes name, description and visibility when any changed.
func (l *Library) saveMetadata(ctx context.Context) error {
	payload := map[string]any{}
	if l.Name != l.snap.name {
		payload["name"] = l.Name
	}
	if l.Description != l.snap.description {
		payload["description"] = l.Description
	}
	if l.Public != l.snap.public {
		payload["public"] = l.Public
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := l.c.t.Do(ctx, transport.Request{
		Method:   http.MethodPut,
		Endpoint: endpointDocuments + "/" + l.ID,
		Body:     payload,
	})
	if err != nil {
		return err
	}
	l.snap.name = l.Name
	l.snap.description = l.Description
	l.snap.public = l.Public
	return nil
}

func (l *Library) postDocuments(ctx context.Context, bibcodes []string, action string) error {
	if len(bibcodes) == 0 {
		return nil
	}
	_, err := l.c.t.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Endpoint: endpointDocuments + "/" + l.ID,
		Body: map[string]any{
			"bibcode": bibcodes,
			"action":  action,
		},
	})
	return err
}

// savePermissions posts one grant per collaborator whose rights changed.
// Collaborators removed from the map are revoked with an all-false
// permission. Emails are visited in sorted order so request order is
// stable.
func (l *Library) savePermissions(ctx context.Context) error {
	desired := l.Permissions
	baseline := l.snap.permissions

	changed := make(map[string]Permission)
	for email, p := range desired {
		if prev, ok := baseline[email]; !ok || prev != p {
			changed[email] = p
		}
	}
	for email := range baseline {
		if _, ok := desired[email]; !ok {
			changed[email] = Permission{}
		}
	}
	for _, email := range sortedEmails(changed) {
		if err := validateEmail(email); err != nil {
			return err
		}
		_, err := l.c.t.Do(ctx, transport.Request{
			Method:   http.MethodPost,
			Endpoint: endpointPermissions + "/" + l.ID,
			Body: map[string]any{
				"email":      email,
				"permission": changed[email],
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// saveOwner transfers ownership when Owner changed.
func (l *Library) saveOwner(ctx context.Context) error {
	if l.Owner == "" || l.Owner == l.snap.owner {
		return nil
	}
	if err := validateEmail(l.Owner); err != nil {
		return err
	}
	_, err := l.c.t.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Endpoint: endpointTransfer + "/" + l.ID,
		Body:     map[string]any{"email": l.Owner},
	})
	if err != nil {
		return err
	}
	l.snap.owner = l.Owner
	l.c.log.Info().Str("id", l.ID).Str("owner", l.Owner).Msg("transferred library")
	return nil
}

// Delete removes the library from the server. The documents endpoint
// handles deletion, an upstream quirk kept for compatibility.
func (l *Library) Delete(ctx context.Context) error {
	if l.ID == "" {
		return transport.Validationf("library has not been saved")
	}
	_, err := l.c.t.Do(ctx, transport.Request{
		Method:   http.MethodDelete,
		Endpoint: endpointDocuments + "/" + l.ID,
	})
	if err != nil {
		return err
	}
	l.ID = ""
	return nil
}

// diffBibcodes returns members only in want (added) and only in have
// (removed), preserving input order.
func diffBibcodes(have, want []string) (added, removed []string) {
	haveSet := make(map[string]struct{}, len(have))
	for _, code := range have {
		haveSet[code] = struct{}{}
	}
	wantSet := make(map[string]struct{}, len(want))
	for _, code := range want {
		wantSet[code] = struct{}{}
	}
	for _, code := range want {
		if _, ok := haveSet[code]; !ok {
			added = append(added, code)
		}
	}
	for _, code := range have {
		if _, ok := wantSet[code]; !ok {
			removed = append(removed, code)
		}
	}
	return added, removed
}
