package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		in      string
		want    Path
		wantErr bool
	}{
		{in: "", want: Path{}},
		{in: "0", want: Path{0}},
		{in: "0.2.1", want: Path{0, 2, 1}},
		{in: " 1.0 ", want: Path{1, 0}},
		{in: "0..1", wantErr: true},
		{in: "a", wantErr: true},
		{in: "-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestPathHelpers(t *testing.T) {
	p := Path{0, 1, 2}

	assert.Equal(t, Path{0, 1}, p.Parent())
	assert.Equal(t, Path{}, Path{}.Parent())
	assert.Equal(t, Path{0, 1, 2, 3}, p.Child(3))
	assert.Equal(t, Path{0, 1, 2}, p, "Child must not alias the receiver")

	assert.True(t, p.HasPrefix(Path{0, 1}))
	assert.True(t, p.HasPrefix(Path{}))
	assert.True(t, p.HasPrefix(p))
	assert.False(t, p.HasPrefix(Path{0, 2}))
	assert.False(t, Path{0}.HasPrefix(p))

	assert.True(t, Path{0, 0, 0}.IsMainline())
	assert.True(t, Path{}.IsMainline())
	assert.False(t, p.IsMainline())
}

func TestResolveDegradesToDeepestNode(t *testing.T) {
	s := sampleState()

	n, depth := Resolve(s.Root, Path{0, 1, 0})
	assert.Equal(t, "Nc3", n.SAN)
	assert.Equal(t, 3, depth)

	n, depth = Resolve(s.Root, Path{0, 5, 0})
	assert.Equal(t, "e4", n.SAN)
	assert.Equal(t, 1, depth)

	n, depth = Resolve(s.Root, Path{7})
	assert.Same(t, s.Root, n)
	assert.Equal(t, 0, depth)

	assert.Nil(t, NodeAt(s.Root, Path{0, 5}))
	assert.Equal(t, "d5", NodeAt(s.Root, Path{1, 0}).SAN)
}

func TestLine(t *testing.T) {
	s := sampleState()

	assert.Equal(t, []string{"", "e4", "c5", "Nc3"}, sans(Line(s.Root, Path{0, 1, 0})))
	assert.Equal(t, []string{"", "d4"}, sans(Line(s.Root, Path{1, 3})))
	assert.Len(t, Line(s.Root, Path{}), 1)
}
