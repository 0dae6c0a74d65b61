package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("update post: %w", NewNotFoundError("post", 7))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConstraint))
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Equal(t, "update post: post with ID 7 not found", err.Error())
}

func TestAppError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewUnavailableError(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "database unavailable: disk I/O error", err.Error())
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, "", CodeOf(errors.New("boom")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		in    string
		want  Tag
		known bool
	}{
		{"", TagGeneral, true},
		{"question", TagQuestion, true},
		{" Spoiler ", TagSpoiler, true},
		{"Meme", Tag("Meme"), false},
	}
	for _, tt := range tests {
		got, ok := ParseTag(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.known, ok, tt.in)
	}
}

func TestTag_IsSensitive(t *testing.T) {
	assert.True(t, TagNsfw.IsSensitive())
	assert.True(t, TagSpoiler.IsSensitive())
	assert.False(t, TagGeneral.IsSensitive())
	assert.False(t, Tag("nsfw").IsSensitive())
}
