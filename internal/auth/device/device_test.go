package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	t.Run("empty header", func(t *testing.T) {
		assert.Equal(t, "Unknown Device", ParseUserAgent(""))
		assert.Equal(t, "Unknown Device", ParseUserAgent("   "))
	})

	t.Run("chrome on desktop", func(t *testing.T) {
		got := ParseUserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.Contains(t, got, "Chrome")
		assert.Contains(t, got, "on")
		assert.NotContains(t, got, "  ")
	})

	t.Run("safari on iphone names the platform", func(t *testing.T) {
		got := ParseUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
		assert.Contains(t, got, "iPhone")
		assert.Contains(t, got, "on")
	})

	t.Run("firefox on linux", func(t *testing.T) {
		got := ParseUserAgent("Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
		assert.Contains(t, got, "Firefox")
		assert.Contains(t, got, "on")
	})

	t.Run("unparseable agent still yields a label", func(t *testing.T) {
		got := ParseUserAgent("Unknown/1.0")
		assert.NotEmpty(t, got)
		assert.Contains(t, got, "on")
	})

	t.Run("no surrounding whitespace", func(t *testing.T) {
		got := ParseUserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
		assert.Equal(t, strings.TrimSpace(got), got)
	})
}
