package requests

import (
	"testing"

	"github.com/brettbedarf/filetree"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNodeType(t *testing.T) {
	typ, err := GetNodeType([]byte(`{"type":"file","path":"a/b"}`))
	require.NoError(t, err)
	assert.Equal(t, filetree.FileNodeType, typ)

	_, err = GetNodeType([]byte(`{`))
	assert.Error(t, err)
}

func TestUnmarshalFileRequest(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		contents string
		err      error
	}{
		{"plain content", `{"type":"file","path":"a/f","content":"hello"}`, "hello", nil},
		{"base64 content", `{"type":"file","path":"a/f","content_base64":"aGVsbG8="}`, "hello", nil},
		{"no content", `{"type":"file","path":"a/f"}`, "", nil},
		{"both contents", `{"type":"file","path":"a/f","content":"x","content_base64":"eA=="}`, "", ErrContent},
		{"bad base64", `{"type":"file","path":"a/f","content_base64":"***"}`, "", ErrContent},
		{"missing path", `{"type":"file","content":"x"}`, "", ErrMissingPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := UnmarshalFileRequest([]byte(tt.data))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a/f", req.Path)
			assert.Equal(t, filetree.FileNodeType, req.Type)
			assert.Equal(t, tt.contents, string(req.Contents))
		})
	}
}

func TestUnmarshalDirRequest_UUID(t *testing.T) {
	req, err := UnmarshalDirRequest([]byte(`{"type":"dir","path":"a","uuid":"req-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "req-1", req.UUID)

	req, err = UnmarshalDirRequest([]byte(`{"type":"dir","path":"a"}`))
	require.NoError(t, err)
	_, err = uuid.Parse(req.UUID)
	assert.NoError(t, err, "generated UUID must be valid")
}
