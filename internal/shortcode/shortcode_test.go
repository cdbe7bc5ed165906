package shortcode

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chote-app/chote/internal/models"
)

var urlSafePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{10}$`)

type fakeChecker struct {
	existing map[string]bool
	always   bool
}

func (f *fakeChecker) IsCodeExists(_ context.Context, code string) (bool, error) {
	if f.always {
		return true, nil
	}
	return f.existing[code], nil
}

func TestNewCodeIsURLSafe(t *testing.T) {
	g := New()

	for i := 0; i < 100; i++ {
		code, err := g.NewCode()
		require.NoError(t, err)
		assert.Regexp(t, urlSafePattern, code)
	}
}

func TestNewCodeDoesNotRepeat(t *testing.T) {
	g := New()

	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		code, err := g.NewCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %q", code)
		seen[code] = true
	}
}

func TestNewUniqueCodeSkipsExisting(t *testing.T) {
	g := New()
	checker := &fakeChecker{existing: map[string]bool{}}

	code, err := g.NewUniqueCode(context.Background(), checker)
	require.NoError(t, err)
	assert.Regexp(t, urlSafePattern, code)
	assert.False(t, checker.existing[code])
}

func TestNewUniqueCodeGivesUpEventually(t *testing.T) {
	g := New()

	_, err := g.NewUniqueCode(context.Background(), &fakeChecker{always: true})
	assert.ErrorIs(t, err, models.ErrCodeRetriesExhausted)
}
