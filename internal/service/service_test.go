package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chote-app/chote/internal/db/memorystorage"
	"github.com/chote-app/chote/internal/hasher"
	"github.com/chote-app/chote/internal/models"
	"github.com/chote-app/chote/internal/shortcode"
	"github.com/chote-app/chote/internal/token"
)

func newTestService(t *testing.T) (*Service, *token.Service) {
	t.Helper()

	storage, err := memorystorage.New()
	require.NoError(t, err)

	tokens, err := token.New([]byte("test-secret"), "HS256", 10*time.Minute)
	require.NoError(t, err)

	svc, err := New(
		storage,
		hasher.New(),
		tokens,
		shortcode.New(),
		nil,
		"http://sh.rt/",
		[]string{"gmail.com", "cvr.ac.in"},
	)
	require.NoError(t, err)

	return svc, tokens
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.Register(ctx, "a@gmail.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "a@gmail.com", info.Email)
	assert.True(t, info.IsActive)

	_, err = svc.Register(ctx, "a@gmail.com", "other")
	assert.ErrorIs(t, err, models.ErrEmailAlreadyRegistered)

	second, err := svc.Register(ctx, "b@cvr.ac.in", "pw")
	require.NoError(t, err)
	assert.NotEqual(t, info.ID, second.ID)
}

func TestRegisterEmailAllowlist(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, email := range []string{
		"user@example.com",
		"user@gmail.com.evil.org",
		"@gmail.com",
		"user@",
		"no-at-sign",
	} {
		_, err := svc.Register(ctx, email, "pw")
		assert.ErrorIs(t, err, models.ErrEmailNotAllowed, email)
	}
}

func TestLogin(t *testing.T) {
	svc, tokens := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@gmail.com", "pw")
	require.NoError(t, err)

	tokenString, err := svc.Login(ctx, "a@gmail.com", "pw")
	require.NoError(t, err)

	subject, err := tokens.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "a@gmail.com", subject)
}

func TestLoginFailsUniformly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@gmail.com", "pw")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "a@gmail.com", "not-pw")
	_, unknownEmail := svc.Login(ctx, "nobody@gmail.com", "pw")

	assert.ErrorIs(t, wrongPassword, models.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, models.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownEmail)
}

func TestShortenAndResolve(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.Shorten(ctx, "http://x.com", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "http://x.com", info.LongURL)
	assert.Equal(t, "http://sh.rt/"+info.ShortCode, info.ShortURL)
	assert.Equal(t, "owner-1", info.OwnerID)
	assert.Len(t, info.ShortCode, 10)

	longURL, err := svc.Resolve(ctx, info.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "http://x.com", longURL)

	_, err = svc.Resolve(ctx, "neverissued")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestShortenConcurrentCodesAreUnique(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const workers = 50

	var (
		mu    sync.Mutex
		codes = map[string]bool{}
		wg    sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			info, err := svc.Shorten(ctx, "http://x.com", "owner-1")
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			assert.False(t, codes[info.ShortCode], "duplicate code %q", info.ShortCode)
			codes[info.ShortCode] = true
		}()
	}
	wg.Wait()

	assert.Len(t, codes, workers)
}

func TestLinksByOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Shorten(ctx, "http://one.com", "owner-1")
	require.NoError(t, err)
	_, err = svc.Shorten(ctx, "http://other.com", "owner-2")
	require.NoError(t, err)

	urls, err := svc.LinksByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.Equal(t, first.ShortURL, urls[0].ShortURL)
	assert.Equal(t, "http://one.com", urls[0].LongURL)
}
