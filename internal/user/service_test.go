package user

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Register(t *testing.T) {
	t.Run("creates with normalized email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().EmailExists(gomock.Any(), "reader@example.com").Return(false, nil)
		repo.EXPECT().AliasExists(gomock.Any(), "reader_1").Return(false, nil)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *User) error {
			u.ID = "u1"
			return nil
		})

		u, err := NewService(repo).Register(context.Background(), " Reader@Example.com ", "reader_1", "hash")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, "reader@example.com", u.Email)
	})

	t.Run("email taken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().EmailExists(gomock.Any(), "a@b.io").Return(true, nil)

		_, err := NewService(repo).Register(context.Background(), "a@b.io", "reader_1", "hash")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("alias taken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().EmailExists(gomock.Any(), "a@b.io").Return(false, nil)
		repo.EXPECT().AliasExists(gomock.Any(), "reader_1").Return(true, nil)

		_, err := NewService(repo).Register(context.Background(), "a@b.io", "reader_1", "hash")
		assert.ErrorIs(t, err, ErrAliasTaken)
	})

	t.Run("store error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().EmailExists(gomock.Any(), "a@b.io").Return(false, errors.New("down"))

		_, err := NewService(repo).Register(context.Background(), "a@b.io", "reader_1", "hash")
		assert.ErrorContains(t, err, "check email")
	})
}
