package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonepengu/backend/internal/domain"
	"github.com/lonepengu/backend/internal/repository/postgres"
	"github.com/lonepengu/backend/internal/service"
	"github.com/lonepengu/backend/internal/testutil"
)

func newAuthService(t *testing.T) (*service.AuthService, *testutil.TestDB) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	cfg := testutil.TestConfig()
	services := service.NewServices(postgres.NewStore(testDB.DB), cfg)
	return services.Auth, testDB
}

func strPtr(s string) *string { return &s }

func TestAuthService_Login(t *testing.T) {
	authService, testDB := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.LoginInput
		setup   func(t *testing.T)
		wantErr error
		check   func(t *testing.T, result *service.LoginResult)
	}{
		{
			name: "first login creates user and preferences",
			input: service.LoginInput{
				Email:    "a@x.com",
				Provider: domain.ProviderEmail,
				Name:     strPtr("Alice"),
			},
			check: func(t *testing.T, result *service.LoginResult) {
				assert.True(t, result.IsNewUser)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
				assert.NotEqual(t, result.AccessToken, result.RefreshToken)
				assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), result.ExpiresAt, 10*time.Second)

				var userCount, prefsCount, sessionCount int64
				testDB.DB.Model(&domain.User{}).Where("email = ?", "a@x.com").Count(&userCount)
				testDB.DB.Model(&domain.UserPreferences{}).Where("user_id = ?", result.User.ID).Count(&prefsCount)
				testDB.DB.Model(&domain.Session{}).Where("user_id = ?", result.User.ID).Count(&sessionCount)
				assert.EqualValues(t, 1, userCount)
				assert.EqualValues(t, 1, prefsCount)
				assert.EqualValues(t, 1, sessionCount)
			},
		},
		{
			name: "repeat login reuses the user",
			input: service.LoginInput{
				Email:    "b@x.com",
				Provider: domain.ProviderGoogle,
			},
			setup: func(t *testing.T) {
				_, err := authService.Login(ctx, service.LoginInput{
					Email:    "b@x.com",
					Provider: domain.ProviderGoogle,
					Name:     strPtr("Bob"),
				})
				require.NoError(t, err)
			},
			check: func(t *testing.T, result *service.LoginResult) {
				assert.False(t, result.IsNewUser)

				// Omitting the name must not null out the stored one.
				var user domain.User
				require.NoError(t, testDB.DB.First(&user, "email = ?", "b@x.com").Error)
				require.NotNil(t, user.Name)
				assert.Equal(t, "Bob", *user.Name)

				// One session per login, no dedup by device.
				var sessionCount int64
				testDB.DB.Model(&domain.Session{}).Where("user_id = ?", result.User.ID).Count(&sessionCount)
				assert.EqualValues(t, 2, sessionCount)

				// Still exactly one user and one preferences row.
				var userCount, prefsCount int64
				testDB.DB.Model(&domain.User{}).Where("email = ?", "b@x.com").Count(&userCount)
				testDB.DB.Model(&domain.UserPreferences{}).Where("user_id = ?", result.User.ID).Count(&prefsCount)
				assert.EqualValues(t, 1, userCount)
				assert.EqualValues(t, 1, prefsCount)
			},
		},
		{
			name: "invalid provider rejected before any storage work",
			input: service.LoginInput{
				Email:    "c@x.com",
				Provider: "facebook",
			},
			wantErr: domain.ErrInvalidProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup(t)
			}

			result, err := authService.Login(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				var userCount int64
				testDB.DB.Model(&domain.User{}).Where("email = ?", tt.input.Email).Count(&userCount)
				assert.EqualValues(t, 0, userCount)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result.User)
			if tt.check != nil {
				tt.check(t, result)
			}
		})
	}
}

func TestAuthService_Login_ConcurrentSameEmail(t *testing.T) {
	authService, testDB := newAuthService(t)
	ctx := context.Background()

	const n = 5
	var wg sync.WaitGroup
	results := make([]*service.LoginResult, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = authService.Login(ctx, service.LoginInput{
				Email:    "race@x.com",
				Provider: domain.ProviderEmail,
				Name:     strPtr("Racer"),
			})
		}(i)
	}
	wg.Wait()

	newUsers := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i], "login %d failed", i)
		if results[i].IsNewUser {
			newUsers++
		}
		assert.Equal(t, results[0].User.ID, results[i].User.ID, "all logins must resolve to the same user")
	}
	assert.Equal(t, 1, newUsers, "exactly one login should observe the user as new")

	var userCount, prefsCount, sessionCount int64
	testDB.DB.Model(&domain.User{}).Where("email = ?", "race@x.com").Count(&userCount)
	testDB.DB.Model(&domain.UserPreferences{}).Where("user_id = ?", results[0].User.ID).Count(&prefsCount)
	testDB.DB.Model(&domain.Session{}).Where("user_id = ?", results[0].User.ID).Count(&sessionCount)
	assert.EqualValues(t, 1, userCount)
	assert.EqualValues(t, 1, prefsCount)
	assert.EqualValues(t, n, sessionCount)
}

func TestAuthService_Validate(t *testing.T) {
	authService, testDB := newAuthService(t)
	ctx := context.Background()

	login, err := authService.Login(ctx, service.LoginInput{
		Email:    "v@x.com",
		Provider: domain.ProviderEmail,
		Name:     strPtr("Val"),
	})
	require.NoError(t, err)

	t.Run("active session validates and touches last_used", func(t *testing.T) {
		result, err := authService.Validate(ctx, login.AccessToken)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		require.NotNil(t, result.User)
		assert.Equal(t, "v@x.com", result.User.Email)

		var session domain.Session
		require.NoError(t, testDB.DB.First(&session, "access_token = ?", login.AccessToken).Error)
		assert.NotNil(t, session.LastUsedAt)
	})

	t.Run("unknown token fails closed without error", func(t *testing.T) {
		result, err := authService.Validate(ctx, "no-such-token")
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Nil(t, result.User)
	})

	t.Run("expired session fails closed", func(t *testing.T) {
		expired, err := authService.Login(ctx, service.LoginInput{
			Email:    "v@x.com",
			Provider: domain.ProviderEmail,
		})
		require.NoError(t, err)

		require.NoError(t, testDB.DB.Model(&domain.Session{}).
			Where("access_token = ?", expired.AccessToken).
			Update("expires_at", time.Now().Add(-time.Hour)).Error)

		result, err := authService.Validate(ctx, expired.AccessToken)
		require.NoError(t, err)
		assert.False(t, result.Valid)
	})

	t.Run("logout flips validation to false", func(t *testing.T) {
		require.NoError(t, authService.Logout(ctx, login.AccessToken))

		result, err := authService.Validate(ctx, login.AccessToken)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Nil(t, result.User)
	})
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	authService, _ := newAuthService(t)
	ctx := context.Background()

	login, err := authService.Login(ctx, service.LoginInput{
		Email:    "out@x.com",
		Provider: domain.ProviderEmail,
	})
	require.NoError(t, err)

	assert.NoError(t, authService.Logout(ctx, login.AccessToken))
	assert.NoError(t, authService.Logout(ctx, login.AccessToken))
	assert.NoError(t, authService.Logout(ctx, "never-issued-token"))
}

func TestAuthService_Refresh(t *testing.T) {
	authService, testDB := newAuthService(t)
	ctx := context.Background()

	login, err := authService.Login(ctx, service.LoginInput{
		Email:    "r@x.com",
		Provider: domain.ProviderEmail,
		Name:     strPtr("Ref"),
	})
	require.NoError(t, err)

	t.Run("rotation replaces the access token in place", func(t *testing.T) {
		refreshed, err := authService.Refresh(ctx, login.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, login.AccessToken, refreshed.AccessToken)

		// Same row, new token: the old literal string no longer matches
		// any session.
		var sessionCount int64
		require.NoError(t, testDB.DB.Model(&domain.Session{}).Count(&sessionCount).Error)
		assert.EqualValues(t, 1, sessionCount)

		stale, err := authService.Validate(ctx, login.AccessToken)
		require.NoError(t, err)
		assert.False(t, stale.Valid)

		fresh, err := authService.Validate(ctx, refreshed.AccessToken)
		require.NoError(t, err)
		assert.True(t, fresh.Valid)

		login.AccessToken = refreshed.AccessToken
	})

	t.Run("access token has the wrong purpose", func(t *testing.T) {
		_, err := authService.Refresh(ctx, login.AccessToken)
		assert.ErrorIs(t, err, domain.ErrWrongTokenPurpose)
	})

	t.Run("garbage is an invalid refresh token", func(t *testing.T) {
		_, err := authService.Refresh(ctx, "garbage")
		assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
	})

	t.Run("logged-out session is gone even though the token decodes", func(t *testing.T) {
		require.NoError(t, authService.Logout(ctx, login.AccessToken))

		_, err := authService.Refresh(ctx, login.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}
