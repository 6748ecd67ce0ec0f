package main_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	main "github.com/fwojciec/linkmigrator/cmd/linkmigrate"
	"github.com/fwojciec/linkmigrator/resourcemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := main.ParseConfig([]byte(`
fix_relative_urls: false
destination_hosts:
  - new.example.edu
domain_substitutions:
  http://old.example.edu: https://new.example.edu
embedded_images_dir: /tmp/images
`))

	require.NoError(t, err)
	require.NotNil(t, cfg.FixRelativeURLs)
	assert.False(t, *cfg.FixRelativeURLs)
	assert.Equal(t, []string{"new.example.edu"}, cfg.DestinationHosts)
	assert.Equal(t, map[string]string{"http://old.example.edu": "https://new.example.edu"}, cfg.DomainSubstitutions)
	assert.Equal(t, "/tmp/images", cfg.EmbeddedImagesDir)

	svc := resourcemap.NewService(&resourcemap.MigrationData{DestinationHosts: []string{"apple.edu"}})
	cfg.Apply(svc)

	assert.False(t, svc.FixRelativeURLs())
	assert.True(t, svc.SupportsEmbeddedImages())
	assert.Equal(t, []string{"new.example.edu"}, svc.ContextHosts())
	assert.Equal(t, "https://new.example.edu/x", svc.ProcessDomainSubstitutions("http://old.example.edu/x"))
}

func TestParseConfig_Invalid(t *testing.T) {
	t.Parallel()

	_, err := main.ParseConfig([]byte("destination_hosts: {"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty path yields defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := main.LoadConfig("")
		require.NoError(t, err)
		assert.Nil(t, cfg.FixRelativeURLs)

		svc := resourcemap.NewService(nil)
		cfg.Apply(svc)
		assert.True(t, svc.FixRelativeURLs())
		assert.False(t, svc.SupportsEmbeddedImages())
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig("/nonexistent/config.yaml")
		assert.Error(t, err)
	})
}

func TestNewConverter_EmbeddedImages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := &main.Config{EmbeddedImagesDir: dir}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	conv, err := main.NewConverter(main.ConverterConfig{ResourceMap: resourceMapPath}, cfg, logger)
	require.NoError(t, err)

	// "aGk=" is base64 for "hi"
	out, bad, err := conv.ConvertExportedHTML(context.Background(), `<img src="data:image/png;base64,aGk=">`)

	require.NoError(t, err)
	require.Len(t, bad, 1)
	assert.Regexp(t, `^<img src="/courses/2/file_contents/course%20files/embedded_images/[0-9a-f]{16}\.png"/>$`, out)
}
