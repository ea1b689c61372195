// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package biblib

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/adsabs/transport"
)

func TestParsePermission(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  Permission
	}{
		{"empty", nil, Permission{}},
		{"read only", []string{"read"}, Permission{Read: true}},
		{"read write", []string{"read", "write"}, Permission{Read: true, Write: true}},
		{"admin", []string{"admin"}, Permission{Admin: true}},
		{"owner implies all", []string{"owner"}, Permission{Read: true, Write: true, Admin: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePermission(tt.names)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePermissionUnknown(t *testing.T) {
	_, err := ParsePermission([]string{"read", "superuser"})
	var verr *transport.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestPermissionNames(t *testing.T) {
	assert.Nil(t, Permission{}.Names())
	assert.Equal(t, []string{"read", "admin"}, Permission{Read: true, Admin: true}.Names())
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, validateEmail("peer@example.com"))
	assert.Error(t, validateEmail("no-at-sign"))
	assert.Error(t, validateEmail("spaces in@example.com"))
	assert.Error(t, validateEmail("noperiod@example"))
}
