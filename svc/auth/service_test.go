package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/filevault/pkg/email"
	"github.com/dmitrymomot/filevault/pkg/ratelimiter"
	"github.com/dmitrymomot/filevault/pkg/session"
	"github.com/dmitrymomot/filevault/pkg/validator"
	"github.com/dmitrymomot/filevault/svc/auth"
	"github.com/dmitrymomot/filevault/svc/users"
)

var codePattern = regexp.MustCompile(`letter-spacing:6px">(\d{6})<`)

// captureSender records sent messages so tests can read the code back.
type captureSender struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	err  error
}

func (c *captureSender) SendEmail(_ context.Context, p email.SendEmailParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, p)
	return nil
}

func (c *captureSender) lastCode(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent)
	m := codePattern.FindStringSubmatch(c.sent[len(c.sent)-1].BodyHTML)
	require.Len(t, m, 2, "code not found in email body")
	return m[1]
}

type fixture struct {
	svc      *auth.Service
	users    *users.MemoryStore
	codes    *auth.MemoryCodeStore
	mailer   *captureSender
	sessions *session.Manager
	now      *time.Time
}

func newFixture(t *testing.T, opts ...auth.Option) *fixture {
	t.Helper()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	f := &fixture{
		users:  users.NewMemoryStore(),
		codes:  auth.NewMemoryCodeStore(),
		mailer: &captureSender{},
		now:    &now,
	}
	f.sessions = session.NewManager(
		session.WithTransport(session.HeaderTransport{}),
		session.WithClock(func() time.Time { return *f.now }),
	)

	cfg := auth.DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	all := append([]auth.Option{
		auth.WithConfig(cfg),
		auth.WithClock(func() time.Time { return *f.now }),
	}, opts...)
	f.svc = auth.NewService(f.users, f.codes, f.mailer, f.sessions, all...)
	return f
}

func TestService_CreateAccount(t *testing.T) {
	t.Parallel()

	t.Run("registers user and sends code", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ref, err := f.svc.CreateAccount(context.Background(), "Alice Smith", "Alice@Example.com")
		require.NoError(t, err)
		require.NotEmpty(t, ref.AccountID)

		u, err := f.users.GetByAccountID(context.Background(), ref.AccountID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)

		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, "alice@example.com", f.mailer.sent[0].SendTo)

		pending, err := f.codes.Get(context.Background(), ref.AccountID)
		require.NoError(t, err)
		code := f.mailer.lastCode(t)
		assert.NotContains(t, string(pending.Hash), code)
		assert.NoError(t, bcrypt.CompareHashAndPassword(pending.Hash, []byte(code)))
	})

	t.Run("existing email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.CreateAccount(context.Background(), "Alice", "alice@example.com")
		require.NoError(t, err)

		_, err = f.svc.CreateAccount(context.Background(), "Alice Again", "alice@example.com")
		assert.ErrorIs(t, err, users.ErrUserExists)
		assert.Equal(t, "User already exists", users.ErrUserExists.Error())
	})

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.CreateAccount(context.Background(), "A", "a@example.com")
		assert.True(t, validator.ExtractValidationErrors(err).Has("fullName"))
		assert.Empty(t, f.mailer.sent)
	})
}

func TestService_SignIn(t *testing.T) {
	t.Parallel()

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.SignIn(context.Background(), "ghost@example.com")
		assert.ErrorIs(t, err, users.ErrUserNotFound)
		assert.Equal(t, "User not found", users.ErrUserNotFound.Error())
	})

	t.Run("mailer failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.CreateAccount(context.Background(), "Bob", "bob@example.com")
		require.NoError(t, err)

		f.mailer.err = errors.New("smtp down")
		_, err = f.svc.SignIn(context.Background(), "bob@example.com")
		assert.ErrorIs(t, err, auth.ErrSendCodeFailed)
	})

	t.Run("rate limited per email", func(t *testing.T) {
		t.Parallel()
		bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.PerWindow(2, 10*time.Minute))
		require.NoError(t, err)
		f := newFixture(t, auth.WithRateLimiter(bucket))

		_, err = f.svc.CreateAccount(context.Background(), "Carol", "carol@example.com")
		require.NoError(t, err)
		_, err = f.svc.SignIn(context.Background(), "carol@example.com")
		require.NoError(t, err)
		_, err = f.svc.SignIn(context.Background(), "carol@example.com")
		assert.ErrorIs(t, err, auth.ErrTooManyRequests)
	})
}

func TestService_VerifySecret(t *testing.T) {
	t.Parallel()

	signUp := func(t *testing.T, f *fixture) (string, string) {
		t.Helper()
		ref, err := f.svc.CreateAccount(context.Background(), "Dana", "dana@example.com")
		require.NoError(t, err)
		return ref.AccountID, f.mailer.lastCode(t)
	}

	t.Run("valid code starts session once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		accountID, code := signUp(t, f)

		rec := httptest.NewRecorder()
		u, err := f.svc.VerifySecret(context.Background(), rec, accountID, code)
		require.NoError(t, err)
		assert.Equal(t, "dana@example.com", u.Email)
		assert.NotEmpty(t, rec.Header().Get("X-Session-Token"))

		_, err = f.svc.VerifySecret(context.Background(), httptest.NewRecorder(), accountID, code)
		assert.ErrorIs(t, err, auth.ErrInvalidCode)
	})

	t.Run("wrong code counts attempts", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		accountID, code := signUp(t, f)
		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}

		for range 4 {
			_, err := f.svc.VerifySecret(context.Background(), httptest.NewRecorder(), accountID, wrong)
			assert.ErrorIs(t, err, auth.ErrInvalidCode)
		}
		pending, err := f.codes.Get(context.Background(), accountID)
		require.NoError(t, err)
		assert.Equal(t, 4, pending.Attempts)

		_, err = f.svc.VerifySecret(context.Background(), httptest.NewRecorder(), accountID, wrong)
		assert.ErrorIs(t, err, auth.ErrInvalidCode)

		_, err = f.codes.Get(context.Background(), accountID)
		assert.ErrorIs(t, err, auth.ErrCodeNotFound, "code is discarded after the last attempt")

		_, err = f.svc.VerifySecret(context.Background(), httptest.NewRecorder(), accountID, code)
		assert.ErrorIs(t, err, auth.ErrInvalidCode)
	})

	t.Run("concurrent wrong guesses share the attempt limit", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		accountID, code := signUp(t, f)
		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}

		counted := &countingCodeStore{MemoryCodeStore: f.codes}
		cfg := auth.DefaultConfig()
		cfg.BcryptCost = bcrypt.MinCost
		svc := auth.NewService(f.users, counted, f.mailer, f.sessions,
			auth.WithConfig(cfg),
			auth.WithClock(func() time.Time { return *f.now }))

		var wg sync.WaitGroup
		for range 200 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.VerifySecret(context.Background(), httptest.NewRecorder(), accountID, wrong)
				assert.True(t, errors.Is(err, auth.ErrInvalidCode) || errors.Is(err, auth.ErrTooManyAttempts), "unexpected error: %v", err)
			}()
		}
		wg.Wait()

		assert.Equal(t, cfg.MaxAttempts, counted.withinLimit(cfg.MaxAttempts))
		_, err := svc.VerifySecret(context.Background(), httptest.NewRecorder(), accountID, code)
		assert.ErrorIs(t, err, auth.ErrInvalidCode)
	})

	t.Run("concurrent valid codes start one session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		accountID, code := signUp(t, f)

		var (
			wg  sync.WaitGroup
			mu  sync.Mutex
			oks int
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.svc.VerifySecret(context.Background(), httptest.NewRecorder(), accountID, code); err == nil {
					mu.Lock()
					oks++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, oks)
	})

	t.Run("expired code", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		accountID, code := signUp(t, f)

		*f.now = f.now.Add(16 * time.Minute)
		_, err := f.svc.VerifySecret(context.Background(), httptest.NewRecorder(), accountID, code)
		assert.ErrorIs(t, err, auth.ErrCodeExpired)
	})

	t.Run("malformed code", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		accountID, _ := signUp(t, f)
		_, err := f.svc.VerifySecret(context.Background(), httptest.NewRecorder(), accountID, "12ab")
		assert.True(t, validator.ExtractValidationErrors(err).Has("code"))
	})
}

// countingCodeStore records every attempt count handed out.
type countingCodeStore struct {
	*auth.MemoryCodeStore
	mu     sync.Mutex
	issued []int
}

func (c *countingCodeStore) IncrementAttempts(ctx context.Context, accountID string) (int, error) {
	n, err := c.MemoryCodeStore.IncrementAttempts(ctx, accountID)
	if err == nil {
		c.mu.Lock()
		c.issued = append(c.issued, n)
		c.mu.Unlock()
	}
	return n, err
}

func (c *countingCodeStore) withinLimit(limit int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.issued {
		if v <= limit {
			n++
		}
	}
	return n
}

type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Create(ctx context.Context, w http.ResponseWriter, accountID string) (*session.Session, error) {
	args := m.Called(ctx, w, accountID)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *MockSessions) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	args := m.Called(ctx, w, r)
	return args.Error(0)
}

func TestService_SignOut(t *testing.T) {
	t.Parallel()

	sessions := &MockSessions{}
	sessions.On("Destroy", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	svc := auth.NewService(users.NewMemoryStore(), auth.NewMemoryCodeStore(), &captureSender{}, sessions)
	require.NoError(t, svc.SignOut(context.Background(), httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/auth/sign-out", nil)))
	sessions.AssertExpectations(t)
}
