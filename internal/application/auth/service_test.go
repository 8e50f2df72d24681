package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rumera-ai/rumera/internal/domain/user"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type memUsers struct {
	mu   sync.Mutex
	byID map[user.ID]*user.User
	down bool
}

func newMemUsers() *memUsers { return &memUsers{byID: map[user.ID]*user.User{}} }

func (m *memUsers) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return fmt.Errorf("%w: dial tcp: connection refused", user.ErrStoreUnavailable)
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return user.ErrAlreadyExists
		}
	}
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, fmt.Errorf("%w: timeout", user.ErrStoreUnavailable)
	}
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id user.ID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, fmt.Errorf("%w: timeout", user.ErrStoreUnavailable)
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

var epoch = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo user.Repository, demo bool) (*Service, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: epoch}
	svc, err := NewService(repo, Config{Secret: "s3cret", DemoMode: demo, BcryptCost: bcrypt.MinCost}, clock, nil)
	require.NoError(t, err)
	return svc, clock
}

func TestNewService_SecretRequiredOutsideDemo(t *testing.T) {
	_, err := NewService(nil, Config{}, nil, nil)
	assert.Error(t, err)

	svc, err := NewService(nil, Config{DemoMode: true}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DemoSecret, svc.cfg.Secret)
}

func TestSignupLoginMe(t *testing.T) {
	repo := newMemUsers()
	svc, _ := newTestService(t, repo, false)
	ctx := context.Background()

	sess, err := svc.Signup(ctx, "Ana", "  Ana@Example.com ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.False(t, sess.Demo)
	assert.NotEmpty(t, sess.Token)

	stored := repo.byID[sess.User.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter22", stored.PasswordHash)

	_, err = svc.Signup(ctx, "Ana", "ana@example.com", "other")
	assert.ErrorIs(t, err, user.ErrAlreadyExists)

	login, err := svc.Login(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)

	me, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.Name)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newMemUsers()
	svc, _ := newTestService(t, repo, false)
	ctx := context.Background()
	_, err := svc.Signup(ctx, "Ana", "ana@example.com", "right")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "bob@example.com", "right")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestValidation(t *testing.T) {
	svc, _ := newTestService(t, newMemUsers(), false)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "", "a@b.co", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Signup(ctx, "A", "not-an-email", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Login(ctx, "a@b.co", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStoreDown_WithoutDemoMode(t *testing.T) {
	repo := newMemUsers()
	svc, _ := newTestService(t, repo, false)
	ctx := context.Background()
	sess, err := svc.Signup(ctx, "Ana", "ana@example.com", "pw")
	require.NoError(t, err)

	repo.down = true
	_, err = svc.Signup(ctx, "Bob", "bob@example.com", "pw")
	assert.ErrorIs(t, err, user.ErrStoreUnavailable)
	_, err = svc.Login(ctx, "ana@example.com", "pw")
	assert.ErrorIs(t, err, user.ErrStoreUnavailable)
	_, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, user.ErrStoreUnavailable)
}

func TestStoreDown_DemoMode(t *testing.T) {
	repo := newMemUsers()
	repo.down = true
	svc, _ := newTestService(t, repo, true)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "carol@example.com", "anything")
	require.NoError(t, err)
	assert.True(t, sess.Demo)
	assert.Equal(t, DemoMessage, sess.Message)
	assert.Equal(t, "carol", sess.User.Name)
	assert.Equal(t, user.ID(fmt.Sprintf("demo_%d", epoch.UnixMilli())), sess.User.ID)

	me, err := svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", me.Email)
}

func TestNoStore_DemoSignup(t *testing.T) {
	svc, _ := newTestService(t, nil, true)
	sess, err := svc.Signup(context.Background(), "Dan", "dan@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(sess.User.ID), "demo_"))
}

func TestAuthenticate_UnknownUserOutsideDemo(t *testing.T) {
	svc, _ := newTestService(t, newMemUsers(), false)
	token, err := svc.Issue(user.Public{ID: "ghost", Email: "g@example.com"})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, user.ErrUnauthorized)
}

func TestVerify(t *testing.T) {
	svc, clock := newTestService(t, nil, true)
	token, err := svc.Issue(user.Public{ID: "u1", Email: "a@b.co", Name: "A"})
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ID)
	assert.Equal(t, epoch.Add(TokenTTL).Unix(), claims.ExpiresAt.Unix())

	// expired after seven days
	clock.t = epoch.Add(TokenTTL + time.Minute)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, user.ErrUnauthorized)
	clock.t = epoch

	// wrong secret
	other, err := NewService(nil, Config{Secret: "other", DemoMode: true}, clock, nil)
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, user.ErrUnauthorized)

	// alg none is rejected
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(unsigned)
	assert.ErrorIs(t, err, user.ErrUnauthorized)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, user.ErrUnauthorized)
}
