package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/magabrotheeeer/library-management/internal/lib/jwt"
	"github.com/magabrotheeeer/library-management/internal/lib/password"
	"github.com/magabrotheeeer/library-management/internal/models"
	"github.com/magabrotheeeer/library-management/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(userID, email, role string) (string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		role      string
		repoErr   error
		wantRole  string
		wantErr   error
		wantSaved bool
	}{
		{name: "student by default", email: "Alice@Library.local ", password: "secret1", wantRole: models.RoleStudent, wantSaved: true},
		{name: "admin role", email: "admin@library.local", password: "secret1", role: models.RoleAdmin, wantRole: models.RoleAdmin, wantSaved: true},
		{name: "unknown role", email: "a@library.local", password: "secret1", role: "Librarian", wantErr: models.ErrInvalidInput},
		{name: "empty password", email: "a@library.local", password: "", wantErr: models.ErrInvalidInput},
		{name: "too long password", email: "a@library.local", password: strings.Repeat("x", 73), wantErr: models.ErrInvalidInput},
		{name: "duplicate email", email: "a@library.local", password: "secret1", repoErr: models.ErrAlreadyExists, wantErr: models.ErrAlreadyExists, wantSaved: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc := auth.NewService(repo, new(JwtMakerMock))

			if tt.wantSaved {
				wantEmail := strings.ToLower(strings.TrimSpace(tt.email))
				var saved *models.User
				if tt.repoErr == nil {
					saved = &models.User{ID: uuid.New(), Name: "Alice", Email: wantEmail, Role: tt.wantRole}
				}
				repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					if u.ID == uuid.Nil || u.Email != wantEmail {
						return false
					}
					if saved != nil {
						saved.PasswordHash = u.PasswordHash
					}
					return true
				})).Return(saved, tt.repoErr)
			}

			user, err := svc.Register(context.Background(), "Alice", tt.email, tt.password, tt.role)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				if !tt.wantSaved {
					repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, user.Role)
			assert.NoError(t, password.CompareHash(user.PasswordHash, tt.password))
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	hash, err := password.GetHash("correct")
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Name: "Alice", Email: "alice@library.local", PasswordHash: hash, Role: models.RoleStudent}

	tests := []struct {
		name      string
		password  string
		repoUser  *models.User
		repoErr   error
		wantErr   error
		wantToken string
	}{
		{name: "success", password: "correct", repoUser: user, wantToken: "signed.jwt"},
		{name: "wrong password", password: "wrong", repoUser: user, wantErr: models.ErrInvalidCredentials},
		{name: "unknown email", password: "correct", repoErr: models.ErrNotFound, wantErr: models.ErrInvalidCredentials},
		{name: "database error", password: "correct", repoErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, maker := new(UserRepoMock), new(JwtMakerMock)
			svc := auth.NewService(repo, maker)

			repo.On("GetUserByEmail", mock.Anything, "alice@library.local").Return(tt.repoUser, tt.repoErr)
			maker.On("GenerateToken", user.ID.String(), user.Email, user.Role).Return("signed.jwt", nil)

			res, err := svc.Login(context.Background(), " Alice@library.local", tt.password)
			switch {
			case tt.wantToken != "":
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, res.Token)
				assert.Equal(t, user.ID, res.User.ID)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				maker.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything, mock.Anything)
			default:
				require.Error(t, err)
				assert.NotErrorIs(t, err, models.ErrInvalidCredentials)
			}
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name     string
		claims   *customjwt.CustomClaims
		parseErr error
		wantRole string
		wantErr  bool
	}{
		{name: "admin", claims: &customjwt.CustomClaims{UserID: userID.String(), Email: "a@l", Role: models.RoleAdmin}, wantRole: models.RoleAdmin},
		{name: "student", claims: &customjwt.CustomClaims{UserID: userID.String(), Email: "s@l", Role: models.RoleStudent}, wantRole: models.RoleStudent},
		{name: "invalid token", parseErr: customjwt.ErrInvalidToken, wantErr: true},
		{name: "malformed user id", claims: &customjwt.CustomClaims{UserID: "42", Role: models.RoleStudent}, wantErr: true},
		{name: "unknown role", claims: &customjwt.CustomClaims{UserID: userID.String(), Role: "Root"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maker := new(JwtMakerMock)
			svc := auth.NewService(new(UserRepoMock), maker)
			if tt.claims != nil {
				maker.On("ParseToken", "tok").Return(tt.claims, nil)
			} else {
				maker.On("ParseToken", "tok").Return(nil, tt.parseErr)
			}

			p, err := svc.ValidateToken(context.Background(), "tok")
			if tt.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidCredentials)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, p.UserID)
			assert.Equal(t, tt.wantRole, p.Role)
		})
	}
}

func TestService_EnsureAdmin(t *testing.T) {
	t.Run("creates missing admin", func(t *testing.T) {
		repo := new(UserRepoMock)
		svc := auth.NewService(repo, new(JwtMakerMock))
		repo.On("GetUserByEmail", mock.Anything, "admin@library.local").Return(nil, models.ErrNotFound)
		repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleAdmin && u.Email == "admin@library.local"
		})).Return(&models.User{Role: models.RoleAdmin}, nil)

		created, err := svc.EnsureAdmin(context.Background(), "Administrator", "admin@library.local", "admin123")
		require.NoError(t, err)
		assert.True(t, created)
		repo.AssertExpectations(t)
	})

	t.Run("existing admin untouched", func(t *testing.T) {
		repo := new(UserRepoMock)
		svc := auth.NewService(repo, new(JwtMakerMock))
		repo.On("GetUserByEmail", mock.Anything, "admin@library.local").Return(&models.User{Role: models.RoleAdmin}, nil)

		created, err := svc.EnsureAdmin(context.Background(), "Administrator", "admin@library.local", "admin123")
		require.NoError(t, err)
		assert.False(t, created)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := new(UserRepoMock)
		svc := auth.NewService(repo, new(JwtMakerMock))
		repo.On("GetUserByEmail", mock.Anything, "admin@library.local").Return(nil, errors.New("db down"))

		_, err := svc.EnsureAdmin(context.Background(), "Administrator", "admin@library.local", "admin123")
		require.Error(t, err)
	})
}
