package browserswitch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "trident/pkg/domain-errors"
)

func TestNewPanicsWithoutOpener(t *testing.T) {
	assert.Panics(t, func() { New(nil, []string{"com.example.app"}) })
}

func TestAssert(t *testing.T) {
	s := New(func(context.Context, string) error { return nil }, []string{"com.example.app"})

	t.Run("passes for a registered scheme", func(t *testing.T) {
		assert.NoError(t, s.Assert("com.example.app"))
	})

	t.Run("fails non-retriably for an unregistered scheme", func(t *testing.T) {
		err := s.Assert("com.other.app")
		assert.True(t, domainerrors.HasCode(err, domainerrors.CodeConfiguration))
	})
}

func TestStartUsesTheOpener(t *testing.T) {
	var opened string
	s := New(func(_ context.Context, rawURL string) error {
		opened = rawURL
		return nil
	}, []string{"com.example.app"})

	require.NoError(t, s.Start(context.Background(), "https://assets.example/index.html"))
	assert.Equal(t, "https://assets.example/index.html", opened)
}

func TestParseReturn(t *testing.T) {
	t.Run("extracts the callback query", func(t *testing.T) {
		values, err := ParseReturn("com.example.app://x-callback-url/braintree/threedsecure?auth_response=%7B%7D")

		require.NoError(t, err)
		assert.Equal(t, "{}", values.Get("auth_response"))
	})

	t.Run("rejects a malformed callback", func(t *testing.T) {
		_, err := ParseReturn("://broken")
		assert.True(t, domainerrors.HasCode(err, domainerrors.CodeValidation))
	})
}
