package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) ByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserFinder)
	users.On("ByExternalID", mock.Anything, "ext|alice").Return(&domain.User{ID: "u1"}, nil)
	users.On("ByExternalID", mock.Anything, "ext|new").Return(nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist."))
	users.On("ByExternalID", mock.Anything, "ext|broken").Return(nil, errors.New("connection refused"))
	r := NewResolver(users)

	id, ok, err := r.Resolve(ctx, "ext|alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	_, ok, err = r.Resolve(ctx, "ext|new")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.Resolve(ctx, "")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, _, err = r.Resolve(ctx, "ext|broken")
	assert.Error(t, err)

	actor, err := r.Actor(ctx, "ext|new")
	require.NoError(t, err)
	assert.True(t, actor.Authenticated())
	assert.False(t, actor.Resolved())

	users.AssertExpectations(t)
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, domain.Actor{}, GetActor(ctx))
	assert.Nil(t, GetClaims(ctx))

	ctx = SetActor(ctx, domain.Actor{ExternalID: "e", UserID: "u"})
	ctx = SetClaims(ctx, &Claims{Email: "a@example.com"})
	assert.Equal(t, "u", GetActor(ctx).UserID)
	assert.Equal(t, "a@example.com", GetClaims(ctx).Email)
}
