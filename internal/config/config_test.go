package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields empty config", func(t *testing.T) {
		require := require.New(t)
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(err)
		require.Equal(&Config{}, cfg)
	})
	t.Run("yaml fields and durations", func(t *testing.T) {
		require := require.New(t)
		path := filepath.Join(t.TempDir(), "linkpub.yaml")
		err := os.WriteFile(path, []byte(`
domain: links.example.com
username: links
page_size: 5
delivery_delay: 250ms
verify_signatures: true
`), 0644)
		require.NoError(err)

		cfg, err := Load(path)
		require.NoError(err)
		require.Equal("links.example.com", cfg.Domain)
		require.Equal("links", cfg.Username)
		require.Equal(5, cfg.PageSize)
		require.Equal(250*time.Millisecond, cfg.DeliveryDelay)
		require.True(cfg.VerifySignatures)
	})
	t.Run("malformed yaml", func(t *testing.T) {
		require := require.New(t)
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(os.WriteFile(path, []byte("domain: [unterminated"), 0644))
		_, err := Load(path)
		require.Error(err)
	})
}

func TestSetDefaults(t *testing.T) {
	require := require.New(t)
	cfg := &Config{Domain: "links.example.com", Username: "links"}
	cfg.SetDefaults()
	require.Equal(DefaultPageSize, cfg.PageSize)
	require.Equal(DefaultDeliveryDelay, cfg.DeliveryDelay)
	require.Equal(DefaultRequestTimeout, cfg.RequestTimeout)
	require.Equal(DefaultLogRetention, cfg.LogRetention)
	require.Equal(DefaultLinks, cfg.Links)
	require.Equal("links", cfg.DisplayName)
	require.Equal("https://links.example.com/", cfg.SiteURL)
	require.NoError(cfg.Validate())

	require.Error((&Config{Username: "links"}).Validate())
	require.Error((&Config{Domain: "links.example.com"}).Validate())
}
