package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexwork/nexwork/internal/config"
)

// TestMain runs before all tests and loads .env if available
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	os.Exit(m.Run())
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestQuestionsCommand_EmbeddedBank(t *testing.T) {
	out, err := runCommand(t, "questions", "--file", "")
	require.NoError(t, err)
	assert.Contains(t, out, "easy")
	assert.Contains(t, out, "medium")
	assert.Contains(t, out, "hard")
}

func TestQuestionsCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`easy:
  - id: sum
    title: Sum two numbers
    description: Return a + b.
`), 0644))

	out, err := runCommand(t, "questions", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "easy   1")
	assert.Contains(t, out, "hard   0")
}

func TestQuestionsCommand_InvalidBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`easy:
  - title: Missing id and description
`), 0644))

	_, err := runCommand(t, "questions", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid question bank")
}

func TestMigrateCommand_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := runCommand(t, "migrate", "--database-url", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestBuildApp_MemoryStore(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("k", 32))
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg := &config.Config{
		Port:                 0,
		UseMemoryStore:       true,
		SessionIdleTimeout:   config.Duration(time.Minute),
		SessionSweepInterval: config.Duration(time.Second),
	}
	a, err := buildApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.server)
	require.NotNil(t, a.sweeper)

	w := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuildApp_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := buildApp(context.Background(), &config.Config{UseMemoryStore: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT")
}

func TestLoadQuestionBank_MissingFile(t *testing.T) {
	_, err := loadQuestionBank("/nonexistent/bank.yaml")
	assert.Error(t, err)
}

func TestRehearseCommand_PassesWithStaticGraders(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	input := strings.Repeat("I would profile first, then fix the hot path.\n", 5) +
		"func a() {}\n.\n" +
		"func b() {\n\treturn\n}\n.\n"
	rootCmd.SetIn(strings.NewReader(input))
	defer rootCmd.SetIn(nil)

	out, err := runCommand(t, "rehearse", "--title", "Go Developer", "--skills", "Go,SQL", "--tests", "easy,medium", "--question-bank", "")
	require.NoError(t, err)

	assert.Contains(t, out, "Go Developer")
	assert.Contains(t, out, "VOICE QUESTION 1/5")
	assert.Contains(t, out, "CODING QUESTION 2/2")
	assert.Contains(t, out, "Status:           HR")
	assert.Contains(t, out, "Interview score:  100")
}

func TestRehearseCommand_SilenceIsRejected(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	rootCmd.SetIn(strings.NewReader(""))
	defer rootCmd.SetIn(nil)

	out, err := runCommand(t, "rehearse", "--title", "Tester", "--skills", "", "--tests", "easy", "--question-bank", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:           Rejected")
	assert.NotContains(t, out, "CODING QUESTION")
}

func TestRehearseCommand_UnknownDifficulty(t *testing.T) {
	_, err := runCommand(t, "rehearse", "--tests", "impossible", "--question-bank", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown difficulty")
}

func TestReadBlock(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("line one\nline two\n.\nnext\n"))
	block, err := readBlock(r)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", block)

	rest, err := readBlock(r)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "next\n", rest)
}
