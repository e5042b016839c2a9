package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 0.9, cfg.Pipeline.ConfidenceThreshold)
	assert.Equal(t, 1, cfg.Pipeline.MaxRetries)
	assert.Equal(t, 15*time.Second, cfg.Pipeline.StageTimeout)
	assert.Equal(t, "clarifai", cfg.Classifier.Provider)
	assert.Equal(t, "food-item-recognition", cfg.Clarifai.Model)
	assert.Equal(t, "data/food_recommendations.json", cfg.Recommendations.Source)
	assert.True(t, cfg.Database.Enabled)
}

func TestLoad_FileAndSecrets(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: "9090"
pipeline:
  stage_timeout: 3s
  max_retries: 0
classifier:
  provider: Rekognition
database:
  enabled: false
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	t.Setenv("USDA_API_KEY", "usda-key")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Pipeline.StageTimeout)
	assert.Equal(t, 0, cfg.Pipeline.MaxRetries)
	assert.Equal(t, "rekognition", cfg.Classifier.Provider)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "usda-key", cfg.USDA.APIKey)
	assert.NoError(t, cfg.ValidatePipeline())
	assert.NoError(t, cfg.ValidateAuth())
}

func TestValidatePipeline(t *testing.T) {
	t.Setenv("CLARIFAI_API_KEY", "")
	t.Setenv("USDA_API_KEY", "")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	err = cfg.ValidatePipeline()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLARIFAI_API_KEY")

	cfg.Clarifai.APIKey = "k"
	err = cfg.ValidatePipeline()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USDA_API_KEY")

	cfg.USDA.APIKey = "k"
	assert.NoError(t, cfg.ValidatePipeline())

	cfg.Classifier.Provider = "tesseract"
	assert.Error(t, cfg.ValidatePipeline())
}
