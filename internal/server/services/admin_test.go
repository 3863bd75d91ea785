package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/voicetasker/voicetasker/internal/common"
	"github.com/voicetasker/voicetasker/internal/server/models"
)

func adminRecord(t *testing.T, username, password string) *models.AdminCredential {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.AdminCredential{
		Name:         common.AdminCredentialName,
		Username:     username,
		PasswordHash: hash,
	}
}

func TestAdminLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		admins:  &fakeAdminsRepo{getOut: adminRecord(t, "admin", "s3cret")},
		refresh: &fakeRefreshRepo{},
	}
	s := NewAdminService(db, rm, testConfig())

	pair, err := s.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, []string{pair.RefreshToken}, rm.refresh.createdTokens,
		"the refresh token must be stored server-side")
}

func TestAdminLogin_MissingFields(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{admins: &fakeAdminsRepo{}}
	s := NewAdminService(db, rm, testConfig())

	_, err := s.Login(context.Background(), "", "pw")
	require.ErrorIs(t, err, common.ErrMissingFields)

	_, err = s.Login(context.Background(), "admin", "")
	require.ErrorIs(t, err, common.ErrMissingFields)
}

func TestAdminLogin_NoCredentialRecord(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{admins: &fakeAdminsRepo{getErr: common.ErrorNotFound}}
	s := NewAdminService(db, rm, testConfig())

	_, err := s.Login(context.Background(), "admin", "pw")
	require.ErrorIs(t, err, common.ErrAdminConfigMissing)
}

func TestAdminLogin_WrongUsernameOrPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		admins:  &fakeAdminsRepo{getOut: adminRecord(t, "admin", "s3cret")},
		refresh: &fakeRefreshRepo{},
	}
	s := NewAdminService(db, rm, testConfig())

	_, err := s.Login(context.Background(), "intruder", "s3cret")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = s.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestAdminVerifyAccessToken_RoundTrip(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		admins:  &fakeAdminsRepo{getOut: adminRecord(t, "admin", "s3cret")},
		refresh: &fakeRefreshRepo{},
	}
	s := NewAdminService(db, rm, testConfig())

	pair, err := s.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)

	require.NoError(t, s.VerifyAccessToken(pair.AccessToken))
	require.Error(t, s.VerifyAccessToken("not-a-token"))
}

func TestAdminRefreshToken_RotatesTransactionally(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{
		refresh: &fakeRefreshRepo{
			findOut: &models.RefreshToken{Token: "refresh-xyz", Expires: time.Now().Add(10 * time.Minute)},
		},
	}
	s := NewAdminService(db, rm, testConfig())

	pair, err := s.RefreshToken(context.Background(), "refresh-xyz")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, "refresh-xyz", pair.RefreshToken)

	assert.Equal(t, []string{"refresh-xyz"}, rm.refresh.deletedTokens, "the old token is revoked")
	assert.Equal(t, []string{pair.RefreshToken}, rm.refresh.createdTokens)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRefreshToken_ExpiredToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		refresh: &fakeRefreshRepo{
			findOut: &models.RefreshToken{Token: "old", Expires: time.Now().Add(-time.Minute)},
		},
	}
	s := NewAdminService(db, rm, testConfig())

	_, err := s.RefreshToken(context.Background(), "old")
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.Empty(t, rm.refresh.deletedTokens, "an expired token is not rotated")
}

func TestAdminRefreshToken_UnknownToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{refresh: &fakeRefreshRepo{findErr: common.ErrorNotFound}}
	s := NewAdminService(db, rm, testConfig())

	_, err := s.RefreshToken(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestAdminProvision_StoresBcryptHash(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{admins: &fakeAdminsRepo{}}
	s := NewAdminService(db, rm, testConfig())

	require.NoError(t, s.Provision(context.Background(), "admin", "s3cret"))

	cred := rm.admins.upserted
	require.NotNil(t, cred)
	assert.Equal(t, common.AdminCredentialName, cred.Name)
	assert.Equal(t, "admin", cred.Username)
	assert.NotContains(t, string(cred.PasswordHash), "s3cret", "the password is never stored in clear")
	require.NoError(t, bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte("s3cret")))
}
