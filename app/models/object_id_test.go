package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewObjectID(t *testing.T) {
	id := NewObjectID()
	assert.Len(t, id, 24)
	assert.True(t, IsObjectID(id))
	assert.NotEqual(t, id, NewObjectID())
}

func TestNormalizeObjectID(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "64B7F0C2A1D3E4F5A6B7C8D9", want: "64b7f0c2a1d3e4f5a6b7c8d9", wantOK: true},
		{in: "  64b7f0c2a1d3e4f5a6b7c8d9 ", want: "64b7f0c2a1d3e4f5a6b7c8d9", wantOK: true},
		{in: "64b7f0c2a1d3e4f5a6b7c8d", wantOK: false},
		{in: "zzb7f0c2a1d3e4f5a6b7c8d9", wantOK: false},
		{in: "", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := NormalizeObjectID(tt.in)
		assert.Equal(t, tt.wantOK, ok, "NormalizeObjectID(%q)", tt.in)
		assert.Equal(t, tt.want, got, "NormalizeObjectID(%q)", tt.in)
	}
}

func TestEnsureObjectIDKeepsExisting(t *testing.T) {
	id := "64b7f0c2a1d3e4f5a6b7c8d9"
	ensureObjectID(&id)
	assert.Equal(t, "64b7f0c2a1d3e4f5a6b7c8d9", id)

	empty := ""
	ensureObjectID(&empty)
	assert.True(t, IsObjectID(empty))
}
