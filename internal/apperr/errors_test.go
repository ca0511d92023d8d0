package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := map[*Error]int{
		Auth("no"):                     401,
		Validation("", "species"):      400,
		NotFound("gone"):               404,
		Storage("db", errors.New("x")): 500,
	}
	for e, want := range cases {
		assert.Equal(t, want, e.Status(), e.Kind)
	}
}

func TestValidationListsFields(t *testing.T) {
	e := Validation("", "quantity", "species")
	assert.Equal(t, "missing or invalid fields: quantity, species", e.Message)
	assert.Equal(t, []string{"quantity", "species"}, e.Fields)

	e = Validation("User already exists", "username")
	assert.Equal(t, "User already exists", e.Message)
}

func TestKindSurvivesWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("loading chain: %w", Storage("Could not load chain", cause))

	assert.True(t, Is(err, KindStorage))
	assert.False(t, Is(err, KindNotFound))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindNotFound, KindOf(NotFound("x")))
	assert.Equal(t, KindStorage, KindOf(errors.New("plain")))
}
