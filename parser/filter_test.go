package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileEntryPointFilter(t *testing.T) {
	allow, err := compileEntryPointFilter([]string{"*ARB", "Tex{Image,SubImage}[23]D"})
	require.NoError(t, err)

	tests := []struct {
		name string
		want bool
	}{
		{"ActiveTextureARB", true},
		{"ActiveTexture", false},
		{"TexImage2D", true},
		{"TexSubImage3D", true},
		{"TexImage1D", false},
		{"TexImage3DEXT", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, allow(tt.name))
		})
	}
}

func TestApplyFiltersWithoutPatterns(t *testing.T) {
	assert.NoError(t, applyFilters(nil, nil))
}
