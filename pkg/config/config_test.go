package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("DOC_TEST_STR", "value")
	t.Setenv("DOC_TEST_INT", "42")
	t.Setenv("DOC_TEST_BAD_INT", "x")
	t.Setenv("DOC_TEST_DUR", "15s")
	t.Setenv("DOC_TEST_BAD_DUR", "-1s")

	assert.Equal(t, "value", EnvDefault("DOC_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefault("DOC_TEST_MISSING", "def"))
	assert.Equal(t, 42, EnvIntDefault("DOC_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("DOC_TEST_BAD_INT", 1))
	assert.Equal(t, 15*time.Second, EnvDurationDefault("DOC_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, EnvDurationDefault("DOC_TEST_BAD_DUR", time.Second))
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOC_TEST_DOTENV=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DOC_TEST_DOTENV") })

	LoadDotenv(filepath.Join(dir, "missing.env"), path)

	assert.Equal(t, "from-file", os.Getenv("DOC_TEST_DOTENV"))
}

func TestLoadRedis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "2")

	r := LoadRedis()
	assert.Equal(t, Redis{Addr: "localhost:6379", Password: "pw", DB: 2}, r)
}
