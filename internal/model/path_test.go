package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Path
	}{
		{
			name:  "simple path",
			input: "Technology/AI/NLP",
			want:  Path{"Technology", "AI", "NLP"},
		},
		{
			name:  "extra separators and spaces",
			input: "/Technology//AI /",
			want:  Path{"Technology", "AI"},
		},
		{
			name:  "single label",
			input: "Sensitive",
			want:  Path{"Sensitive"},
		},
		{
			name:  "empty string",
			input: "",
			want:  Path{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePath(tt.input))
		})
	}
}

func TestPathEqual(t *testing.T) {
	assert.True(t, Path{"A", "B"}.Equal(Path{"A", "B"}))
	assert.False(t, Path{"A", "B"}.Equal(Path{"A"}))
	assert.False(t, Path{"A", "B"}.Equal(Path{"A", "C"}))
	assert.True(t, Path{}.Equal(Path{}))
}

func TestPathCommonPrefixLen(t *testing.T) {
	tests := []struct {
		name string
		a    Path
		b    Path
		want int
	}{
		{
			name: "identical paths",
			a:    Path{"A", "B", "C"},
			b:    Path{"A", "B", "C"},
			want: 3,
		},
		{
			name: "partial overlap",
			a:    Path{"A", "B", "C"},
			b:    Path{"A", "B", "X"},
			want: 2,
		},
		{
			name: "no overlap",
			a:    Path{"A"},
			b:    Path{"X"},
			want: 0,
		},
		{
			name: "different lengths",
			a:    Path{"A", "B"},
			b:    Path{"A", "B", "C"},
			want: 2,
		},
		{
			name: "empty against non-empty",
			a:    Path{},
			b:    Path{"A"},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.CommonPrefixLen(tt.b))
		})
	}
}

func TestPathClone(t *testing.T) {
	original := Path{"A", "B"}
	clone := original.Clone()
	clone[0] = "X"

	assert.Equal(t, Path{"A", "B"}, original)
	assert.Nil(t, Path(nil).Clone())
}
