package user

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/grouproster/grouproster/internal/db/dbtest"
	"github.com/grouproster/grouproster/internal/db/models"
	"github.com/grouproster/grouproster/internal/validation"
)

func newUser(name, email, password string) *models.User {
	return &models.User{Name: name, Email: email, Password: password}
}

// createUser inserts a valid user and fails the test otherwise.
func createUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()

	u := newUser("Alice", email, "password")
	require.NoError(t, s.Create(context.Background(), u), "failed to seed user")

	return u
}

func TestNilDB(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.Create(ctx, newUser("Alice", "a@b.com", "password")), ErrDBNil)

	_, err := s.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrDBNil)

	_, err = s.Authenticate(ctx, "a@b.com", "password")
	assert.ErrorIs(t, err, ErrDBNil)
}

func TestCreate(t *testing.T) {
	testCases := []struct {
		name    string
		user    *models.User
		seed    string
		field   string
		kind    validation.Kind
		message string
	}{
		{
			name: "valid user",
			user: newUser("Alice", "hello@world.com", "password"),
		},
		{
			name:    "missing name",
			user:    newUser("", "amy@alice.com", "some valid password"),
			field:   "name",
			kind:    validation.KindPresence,
			message: validation.MsgBlank,
		},
		{
			name:    "invalid email",
			user:    newUser("Alice", "helloworld.com", "password"),
			field:   "email",
			kind:    validation.KindFormat,
			message: validation.MsgInvalid,
		},
		{
			name:    "missing password",
			user:    newUser("Alice", "hello@world.com", ""),
			field:   "password",
			kind:    validation.KindPresence,
			message: validation.MsgBlank,
		},
		{
			name:    "short password",
			user:    newUser("Alice", "hello@world.com", "123"),
			field:   "password",
			kind:    validation.KindLength,
			message: "is too short (minimum is 8 characters)",
		},
		{
			name:    "duplicate email in another case",
			seed:    "hello@world.com",
			user:    newUser("Bob", "HELLO@World.com", "password"),
			field:   "email",
			kind:    validation.KindUniqueness,
			message: validation.MsgTaken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(dbtest.Open(t))

			if tc.seed != "" {
				createUser(t, s, tc.seed)
			}

			err := s.Create(context.Background(), tc.user)

			if tc.field == "" {
				require.NoError(t, err)
				assert.NotZero(t, tc.user.ID)
				assert.Empty(t, tc.user.Password)
				assert.NotEmpty(t, tc.user.PasswordDigest)

				return
			}

			require.Error(t, err)

			errs, ok := validation.As(err)
			require.True(t, ok, "expected validation errors, got %v", err)
			assert.True(t, errs.Has(tc.field, tc.kind), "errors: %v", errs)
			assert.Contains(t, errs.On(tc.field), tc.message)
			assert.Zero(t, tc.user.ID)
		})
	}
}

func TestCreateStoresLowerCaseEmail(t *testing.T) {
	s := New(dbtest.Open(t))

	u := createUser(t, s, "HELLO@WORLD.COM")
	assert.Equal(t, "hello@world.com", u.Email)

	got, err := s.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello@world.com", got.Email)
	assert.NotContains(t, got.PasswordDigest, "password")
}

func TestAuthenticate(t *testing.T) {
	s := New(dbtest.Open(t))
	ctx := context.Background()

	created := createUser(t, s, "hello@world.com")

	testCases := []struct {
		name     string
		email    string
		password string
		found    bool
	}{
		{name: "correct password", email: "hello@world.com", password: "password", found: true},
		{name: "email in other case", email: "Hello@World.COM", password: "password", found: true},
		{name: "wrong password", email: "hello@world.com", password: "passw0rd"},
		{name: "unknown email", email: "nobody@world.com", password: "password"},
		{name: "empty email", email: "", password: "password"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := s.Authenticate(ctx, tc.email, tc.password)
			require.NoError(t, err)

			if !tc.found {
				assert.Nil(t, u)

				return
			}

			require.NotNil(t, u)
			assert.Equal(t, created.ID, u.ID)
		})
	}
}

func TestAuthenticateUpgradesBcryptDigest(t *testing.T) {
	db := dbtest.Open(t)
	s := New(db)
	ctx := context.Background()

	u := createUser(t, s, "legacy@world.com")

	legacy, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Model(u).UpdateColumn("password_digest", string(legacy)).Error)

	got, err := s.Authenticate(ctx, "legacy@world.com", "password")
	require.NoError(t, err)
	require.NotNil(t, got)

	stored, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordDigest, "$argon2id$"), stored.PasswordDigest)

	again, err := s.Authenticate(ctx, "legacy@world.com", "password")
	require.NoError(t, err)
	assert.NotNil(t, again)
}

func TestUpdate(t *testing.T) {
	s := New(dbtest.Open(t))
	ctx := context.Background()

	u := createUser(t, s, "hello@world.com")
	digest := u.PasswordDigest

	reloaded, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Password)

	reloaded.Email = "GoodBye@World.com"
	reloaded.Name = "Alice B."
	require.NoError(t, s.Update(ctx, reloaded))

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "goodbye@world.com", got.Email)
	assert.Equal(t, "Alice B.", got.Name)
	assert.Equal(t, digest, got.PasswordDigest)
}

func TestUpdateValidation(t *testing.T) {
	s := New(dbtest.Open(t))
	ctx := context.Background()

	first := createUser(t, s, "first@world.com")
	second := createUser(t, s, "second@world.com")

	second.Email = "FIRST@world.com"
	err := s.Update(ctx, second)
	assert.ErrorIs(t, err, validation.ErrUniqueness)

	first.Name = " "
	err = s.Update(ctx, first)
	assert.ErrorIs(t, err, validation.ErrPresence)

	err = s.Update(ctx, &models.User{ID: 9999, Name: "Ghost", Email: "ghost@world.com"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateKeepsOwnEmail(t *testing.T) {
	s := New(dbtest.Open(t))

	u := createUser(t, s, "hello@world.com")
	u.Name = "Renamed"

	require.NoError(t, s.Update(context.Background(), u))
}

func TestUpdateWithPassword(t *testing.T) {
	s := New(dbtest.Open(t))
	ctx := context.Background()

	u := createUser(t, s, "hello@world.com")
	digest := u.PasswordDigest

	u.Password = "123"
	err := s.Update(ctx, u)

	errs, ok := validation.As(err)
	require.True(t, ok, "expected validation errors, got %v", err)
	assert.True(t, errs.Has("password", validation.KindLength))
	assert.Equal(t, "123", u.Password)
	assert.Equal(t, digest, u.PasswordDigest)

	u.Password = "brand-new-password"
	require.NoError(t, s.Update(ctx, u))
	assert.Empty(t, u.Password)
	assert.NotEqual(t, digest, u.PasswordDigest)

	got, err := s.Authenticate(ctx, "hello@world.com", "brand-new-password")
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = s.Authenticate(ctx, "hello@world.com", "password")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateCanBeRetriedAfterStorageViolation(t *testing.T) {
	s := New(dbtest.Open(t))
	ctx := context.Background()

	first := createUser(t, s, "first@world.com")

	tok, err := s.RotateAccessToken(ctx, first.ID)
	require.NoError(t, err)

	second := newUser("Bob", "second@world.com", "password")
	second.AccessToken = &tok

	err = s.Create(ctx, second)
	assert.ErrorIs(t, err, validation.ErrUniqueness)
	assert.Equal(t, "password", second.Password)
	assert.Empty(t, second.PasswordDigest)

	second.AccessToken = nil
	second.ID = 0
	require.NoError(t, s.Create(ctx, second))
	assert.NotZero(t, second.ID)
	assert.Empty(t, second.Password)

	got, err := s.Authenticate(ctx, "second@world.com", "password")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := New(dbtest.Open(t))
	ctx := context.Background()

	u := createUser(t, s, "hello@world.com")

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Preferences)
	assert.Empty(t, got.Preferences)

	got.Preferences.Set("tea", "chai")
	require.NoError(t, s.Update(ctx, got))

	reloaded, err := s.Get(ctx, u.ID)
	require.NoError(t, err)

	tea, ok := reloaded.Preferences.Get("tea")
	require.True(t, ok)
	assert.Equal(t, "chai", tea)
	assert.Equal(t, models.Preferences{"tea": "chai"}, reloaded.Preferences)
}

func TestChangePassword(t *testing.T) {
	s := New(dbtest.Open(t))
	ctx := context.Background()

	u := createUser(t, s, "hello@world.com")

	err := s.ChangePassword(ctx, u.ID, "wrong password", "new password")
	require.ErrorIs(t, err, ErrInvalidCurrentPassword)

	err = s.ChangePassword(ctx, u.ID, "password", "short")
	require.ErrorIs(t, err, validation.ErrLength)

	require.NoError(t, s.ChangePassword(ctx, u.ID, "password", "new password"))

	got, err := s.Authenticate(ctx, "hello@world.com", "new password")
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = s.Authenticate(ctx, "hello@world.com", "password")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetPassword(t *testing.T) {
	s := New(dbtest.Open(t))
	ctx := context.Background()

	u := createUser(t, s, "hello@world.com")

	require.ErrorIs(t, s.SetPassword(ctx, u.ID, ""), validation.ErrPresence)
	require.ErrorIs(t, s.SetPassword(ctx, 9999, "new password"), ErrUserNotFound)
	require.NoError(t, s.SetPassword(ctx, u.ID, "reset password"))

	got, err := s.Authenticate(ctx, "hello@world.com", "reset password")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestTokens(t *testing.T) {
	s := New(dbtest.Open(t))
	ctx := context.Background()

	u := createUser(t, s, "hello@world.com")

	first, err := s.RotateAccessToken(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := s.RotateAccessToken(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = s.GetByAccessToken(ctx, first)
	require.ErrorIs(t, err, ErrUserNotFound)

	got, err := s.GetByAccessToken(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	reset, err := s.RotateToken(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, second, reset)

	require.NoError(t, s.RevokeAccessToken(ctx, u.ID))

	_, err = s.GetByAccessToken(ctx, second)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.RotateAccessToken(ctx, 9999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUsersWithoutTokensDoNotCollide(t *testing.T) {
	s := New(dbtest.Open(t))

	createUser(t, s, "one@world.com")
	createUser(t, s, "two@world.com")
}

func TestStorageUniqueViolationIsTranslated(t *testing.T) {
	db := dbtest.Open(t)
	s := New(db)
	ctx := context.Background()

	first := createUser(t, s, "first@world.com")
	second := createUser(t, s, "second@world.com")

	tok, err := s.RotateAccessToken(ctx, first.ID)
	require.NoError(t, err)

	// no application check guards access_token; the unique index does
	second.AccessToken = &tok
	err = s.Update(ctx, second)

	errs, ok := validation.As(err)
	require.True(t, ok, "expected validation errors, got %v", err)
	assert.True(t, errs.Has("access_token", validation.KindUniqueness))

	// bypass validation entirely, as a concurrent writer would
	raw := db.Create(&models.User{
		Name:           "Racer",
		Email:          "first@world.com",
		PasswordDigest: "x",
		Preferences:    models.Preferences{},
	}).Error
	require.Error(t, raw)

	errs, ok = validation.As(translate(raw, "failed to create user"))
	require.True(t, ok)
	assert.True(t, errs.Has("email", validation.KindUniqueness))
}

func TestList(t *testing.T) {
	s := New(dbtest.Open(t))
	ctx := context.Background()

	for _, email := range []string{"a@world.com", "b@world.com", "c@world.com"} {
		createUser(t, s, email)
	}

	users, total, err := s.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 2)
	assert.Equal(t, "a@world.com", users[0].Email)

	users, _, err = s.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "c@world.com", users[0].Email)
}

func TestDelete(t *testing.T) {
	s := New(dbtest.Open(t))
	ctx := context.Background()

	u := createUser(t, s, "hello@world.com")

	require.NoError(t, s.Delete(ctx, u.ID))
	require.ErrorIs(t, s.Delete(ctx, u.ID), ErrUserNotFound)

	_, err := s.Get(ctx, u.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}
