package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"usersvc/pkg/domain"
)

func TestUserID_StringAndParse(t *testing.T) {
	raw := uuid.New()
	id := domain.UserID(raw)
	require.Equal(t, raw.String(), id.String())
	require.False(t, id.IsZero())

	parsed, err := domain.ParseUserID(raw.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestUserID_Zero(t *testing.T) {
	require.True(t, domain.UserID{}.IsZero())

	_, err := domain.ParseUserID("not-a-uuid")
	require.Error(t, err)
}
