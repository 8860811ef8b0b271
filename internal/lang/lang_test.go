package lang

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".rs", "rust"},
		{".stderr", ""},
		{".py", ""},
		{".RS", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ForExtension(tt.ext))
		})
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	p := NewParser()
	require.NotNil(t, p)
	defer p.Close()

	tree, err := p.ParseCtx(context.Background(), nil, []byte("fn main() {}\n"))
	require.NoError(t, err)
	defer tree.Close()
	assert.Equal(t, "source_file", tree.RootNode().Type())
	assert.False(t, tree.RootNode().HasError())
}
