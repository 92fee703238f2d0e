package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/httpx"
)

func TestHTTPHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	h := NewHTTPHandler(NewService(repo))

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Me(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deleted account", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), "gone").Return(User{}, ErrNotFound)
		r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		w := httptest.NewRecorder()
		h.Me(w, r.WithContext(httpx.ContextWithUser(r.Context(), "gone")))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ok hides password hash", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), "u1").Return(User{ID: "u1", Email: "a@b.io", Alias: "reader_1", PasswordHash: "hash"}, nil)
		r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		w := httptest.NewRecorder()
		h.Me(w, r.WithContext(httpx.ContextWithUser(r.Context(), "u1")))

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "hash")
		var resp struct {
			Data User `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "reader_1", resp.Data.Alias)
	})
}
