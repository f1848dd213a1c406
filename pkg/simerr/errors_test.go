package simerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "kind only",
			err:  &Error{Kind: ErrUnsolvableSystem},
			want: "unsolvable system",
		},
		{
			name: "line and component",
			err:  New(ErrInvalidComponentValue, "negative resistance %g", -5.0).AtLine(3, "R1 a GND -5").For("R1"),
			want: `invalid component value at line 3 "R1 a GND -5" (component R1): negative resistance -5`,
		},
		{
			name: "floating groups",
			err: &Error{
				Kind:   ErrDisconnectedCircuit,
				Groups: [][]string{{"N2", "N3"}, {"N4"}},
				Err:    errors.New("rank 2 is below 3"),
			},
			want: "disconnected circuit floating nodes {N2 N3} {N4}: rank 2 is below 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_IsAndAs(t *testing.T) {
	cause := errors.New("short read")
	err := fmt.Errorf("loading: %w", Wrap(ErrInputUnavailable, cause))

	assert.ErrorIs(t, err, ErrInputUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMalformedNetlist)

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ErrInputUnavailable, se.Kind)
	assert.Equal(t, 0, se.Line)
}

func TestKindsAreDistinct(t *testing.T) {
	kinds := []error{
		ErrInputUnavailable,
		ErrMalformedNetlist,
		ErrInvalidComponentValue,
		ErrDisconnectedCircuit,
		ErrUnsolvableSystem,
	}
	for i, a := range kinds {
		for j, b := range kinds {
			if i != j {
				assert.NotErrorIs(t, New(a, "x"), b)
			}
		}
	}
}
