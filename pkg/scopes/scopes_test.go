package scopes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/filevault/pkg/scopes"
)

func TestMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scope, pattern string
		want           bool
	}{
		{"file.share", "file.share", true},
		{"file.share", "file.*", true},
		{"file.share", "*", true},
		{"file.share", "file.rename", false},
		{"files.share", "file.*", false},
		{"file", "file.*", false},
		{"file.collaborator.remove", "file.*", true},
	}

	for _, tt := range tests {
		t.Run(tt.scope+"~"+tt.pattern, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scopes.Matches(tt.scope, tt.pattern))
		})
	}
}

func TestHasAndHasAll(t *testing.T) {
	t.Parallel()

	granted := []string{"file.read", "file.share"}
	assert.True(t, scopes.Has(granted, "file.share"))
	assert.False(t, scopes.Has(granted, "file.delete"))
	assert.True(t, scopes.HasAll(granted, []string{"file.read", "file.share"}))
	assert.False(t, scopes.HasAll(granted, []string{"file.read", "file.delete"}))
	assert.True(t, scopes.HasAll(granted, nil))
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b"}, scopes.Normalize([]string{" b", "a", "", "b"}))
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, scopes.Valid("file.share"))
	assert.True(t, scopes.Valid("file.*"))
	assert.True(t, scopes.Valid("*"))
	assert.False(t, scopes.Valid(""))
	assert.False(t, scopes.Valid("file..share"))
	assert.False(t, scopes.Valid("*.share"))
	assert.False(t, scopes.Valid("file.sh*re"))
	assert.False(t, scopes.Valid("file share"))
}
