// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblib

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/adsabs/transport"
)

func TestUnion(t *testing.T) {
	srv := &fakeServer{responses: map[string]any{
		"POST /biblib/libraries/operations/aaa": map[string]any{"id": "merged"},
		"GET /biblib/libraries/merged": map[string]any{
			"documents": []string{testBibcode(1), testBibcode(2), testBibcode(3)},
			"metadata":  map[string]any{"id": "merged", "name": "all papers", "num_documents": 3},
		},
	}}
	c := newTestClient(t, srv)
	a := &Library{c: c, ID: "aaa"}
	b := &Library{c: c, ID: "bbb"}

	merged, err := a.Union(context.Background(), "all papers", "union of a and b", b)
	require.NoError(t, err)
	assert.Equal(t, "merged", merged.ID)
	assert.Len(t, merged.Documents, 3)

	req := srv.requests[0]
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/biblib/libraries/operations/aaa", req.Path)
	assert.Equal(t, "union", req.Body["action"])
	assert.Equal(t, []any{"bbb"}, req.Body["libraries"])
	assert.Equal(t, "all papers", req.Body["name"])
}

func TestIntersectionAndDifferenceActions(t *testing.T) {
	srv := &fakeServer{responses: map[string]any{
		"POST /biblib/libraries/operations/aaa": map[string]any{"id": "out"},
		"GET /biblib/libraries/out": map[string]any{
			"documents": []string{},
			"metadata":  map[string]any{"id": "out"},
		},
	}}
	c := newTestClient(t, srv)
	a := &Library{c: c, ID: "aaa"}
	b := &Library{c: c, ID: "bbb"}

	_, err := a.Intersection(context.Background(), "common", "", b)
	require.NoError(t, err)
	assert.Equal(t, "intersection", srv.requests[0].Body["action"])

	_, err = a.Difference(context.Background(), "mine only", "", b)
	require.NoError(t, err)
	assert.Equal(t, "difference", srv.requests[2].Body["action"])
}

func TestOperationRequiresSavedLibraries(t *testing.T) {
	c := newTestClient(t, &fakeServer{})
	saved := &Library{c: c, ID: "aaa"}
	unsaved := c.NewLibrary("draft", "", false)

	var verr *transport.ValidationError

	_, err := unsaved.Union(context.Background(), "x", "", saved)
	require.True(t, errors.As(err, &verr))

	_, err = saved.Union(context.Background(), "x", "", unsaved)
	require.True(t, errors.As(err, &verr))
}

func TestCopyTo(t *testing.T) {
	srv := &fakeServer{responses: map[string]any{
		"GET /biblib/libraries/bbb": map[string]any{
			"documents": []string{testBibcode(1)},
			"metadata":  map[string]any{"id": "bbb", "name": "target", "num_documents": 1},
		},
	}}
	c := newTestClient(t, srv)
	a := &Library{c: c, ID: "aaa"}
	b := &Library{c: c, ID: "bbb"}

	require.NoError(t, a.CopyTo(context.Background(), b))

	req := srv.requests[0]
	assert.Equal(t, "/biblib/libraries/operations/aaa", req.Path)
	assert.Equal(t, "copy", req.Body["action"])
	assert.Equal(t, []any{"bbb"}, req.Body["libraries"])
	// Destination refreshed from the server.
	assert.Equal(t, []string{testBibcode(1)}, b.Documents)
}

func TestEmpty(t *testing.T) {
	srv := &fakeServer{}
	c := newTestClient(t, srv)
	lib := &Library{c: c, ID: "aaa", Documents: []string{testBibcode(1)}, NumDocuments: 1}
	lib.snap.bibcodes = []string{testBibcode(1)}

	require.NoError(t, lib.Empty(context.Background()))
	assert.Equal(t, "empty", srv.requests[0].Body["action"])
	assert.Empty(t, lib.Documents)
	assert.Zero(t, lib.NumDocuments)

	// Saving after an empty must not re-remove the documents.
	require.NoError(t, lib.Save(context.Background()))
	assert.Len(t, srv.requests, 1)
}
