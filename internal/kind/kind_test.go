package kind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Kind
		want bool
	}{
		{"type=type", Type{}, Type{}, true},
		{"type!=effect", Type{}, Effect{}, false},
		{"row(type)=row(type)", RowOfType(), RowOfType(), true},
		{"row(type)!=row(effect)", RowOfType(), RowOfEffect(), false},
		{"arrow=arrow", Arrow{Dom: Type{}, Cod: Type{}}, Arrow{Dom: Type{}, Cod: Type{}}, true},
		{"arrow!=arrow-diff-dom", Arrow{Dom: Type{}, Cod: Type{}}, Arrow{Dom: Effect{}, Cod: Type{}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, Equal(c.a, c.b))
		})
	}
}

func TestFunctionKind(t *testing.T) {
	got := FunctionKind([]Kind{Type{}, Type{}}, Type{})
	want := Arrow{Dom: Type{}, Cod: Arrow{Dom: Type{}, Cod: Type{}}}
	require.True(t, Equal(want, got))
}

func TestString(t *testing.T) {
	require.Equal(t, "Type", Type{}.String())
	require.Equal(t, "Effect", Effect{}.String())
	require.Equal(t, "Row(Type)", RowOfType().String())
	require.Equal(t, "(Type -> Effect)", Arrow{Dom: Type{}, Cod: Effect{}}.String())
}
