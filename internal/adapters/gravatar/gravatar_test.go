package gravatar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup_URL(t *testing.T) {
	l := New()

	// md5("myemailaddress@example.com") from Gravatar's docs
	url, err := l.URL("  MyEmailAddress@example.com ")
	require.NoError(t, err)
	require.Equal(t, "https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?d=identicon&s=200", url)

	l.Size = 0
	url, err = l.URL("myemailaddress@example.com")
	require.NoError(t, err)
	require.Equal(t, "https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?d=identicon", url)
}

func TestLookup_Empty(t *testing.T) {
	_, err := New().URL(" ")
	require.Error(t, err)
}
