package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tutorgen/internal/auth"
	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/registry"
	"github.com/phrazzld/tutorgen/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// writeConfig writes a minimal config file and returns its path and the
// registry root.
func writeConfig(t *testing.T, secret string) (path, root string) {
	t.Helper()
	dir := t.TempDir()
	root = filepath.Join(dir, "data")
	body := fmt.Sprintf(`server:
  port: 8080
  log_level: error
llm:
  provider: ollama
  model_name: test
auth:
  jwt_secret: %q
registry:
  root_dir: %q
  contents_dir: %q
`, secret, root, filepath.Join(dir, "contents"))
	path = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path, root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	path, _ := writeConfig(t, testSecret)

	out, err := execute(t, "--config", path, "token", "--subject", "grader")
	require.NoError(t, err)

	tokens, err := auth.NewTokens(testSecret, time.Hour)
	require.NoError(t, err)
	claims, err := tokens.Validate(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "grader", claims.Subject)
}

func TestTokenCommandWithoutSecret(t *testing.T) {
	path, _ := writeConfig(t, "")

	_, err := execute(t, "--config", path, "token", "--subject", "grader")
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestRegistryListCommand(t *testing.T) {
	path, root := writeConfig(t, "")

	reg, err := registry.NewSet(root, nil).Open(service.QuestionsCollection, []string{registry.ComboKey([]string{"fractions"})})
	require.NoError(t, err)
	_, err = reg.Persist(context.Background(), []registry.Item{
		&domain.Question{
			Type:         domain.QuestionShortAnswer,
			Text:         "What is one half of one quarter?",
			SampleAnswer: "One eighth",
		},
	}, []string{"fractions"}, registry.Meta{Difficulty: "easy"})
	require.NoError(t, err)

	out, err := execute(t, "--config", path, "registry", "list", "--contents", "fractions", "--json")
	require.NoError(t, err)

	var entries []registry.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries), out)
	require.Len(t, entries, 1)
	assert.Equal(t, "easy", entries[0].Difficulty)
	assert.Equal(t, 1, entries[0].Sequence)

	out, err = execute(t, "--config", path, "registry", "list", "--contents", "fractions")
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, "What is one half of one quarter?")
}

func TestRegistryListRejectsUnknownCollection(t *testing.T) {
	path, _ := writeConfig(t, "")

	_, err := execute(t, "--config", path, "registry", "list", "--collection", "cards", "--contents", "x")
	assert.ErrorContains(t, err, "unknown collection")
}

func TestMigrateRequiresDatabase(t *testing.T) {
	path, _ := writeConfig(t, "")

	_, err := execute(t, "--config", path, "migrate", "up")
	assert.ErrorContains(t, err, "database.url")

	_, err = execute(t, "--config", path, "migrate", "sideways")
	assert.Error(t, err)
}

func TestReadData(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "student.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"Ana"}`), 0o600))
	textPath := filepath.Join(dir, "student.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("Ana finished unit 3."), 0o600))

	cmd := NewRootCommand()
	data, err := readData(cmd, jsonPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ana"}, data)

	data, err = readData(cmd, textPath)
	require.NoError(t, err)
	assert.Equal(t, "Ana finished unit 3.", data)

	cmd.SetIn(strings.NewReader(`[1,2]`))
	data, err = readData(cmd, "-")
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, data)
}
