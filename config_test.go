package videocourse

import (
	"os"
	"path/filepath"
	"testing"
)

var configEnv = []string{
	"NEBIUS_API_KEY", "LLM_BASE_URL", "TITLE_MODEL", "QUIZ_MODEL",
	"OPENAI_API_KEY", "TRANSCRIPTION_BASE_URL", "TRANSCRIPTION_MODEL",
	"YTDLP_PATH", "FFMPEG_PATH", "TEMP_DIR", "CACHE_BACKEND", "SQLITE_PATH", "REDIS_ADDR",
	"REDIS_PREFIX", "CASSANDRA_HOSTS", "CASSANDRA_KEYSPACE", "LLM_LOG_DIR",
	"RABBITMQ_URL", "PORT", "SESSION_KEY", "QUESTIONS_PER_MODULE",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnv {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.CacheBackend != BackendSQLite {
		t.Errorf("Expected sqlite backend, got %q", cfg.CacheBackend)
	}
	if cfg.TitleModel != DefaultTitleModel || cfg.QuizModel != DefaultQuizModel {
		t.Errorf("Unexpected models %q, %q", cfg.TitleModel, cfg.QuizModel)
	}
	if cfg.QuestionsPerModule != DefaultQuestionsPerModule {
		t.Errorf("Expected %d questions per module, got %d", DefaultQuestionsPerModule, cfg.QuestionsPerModule)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, `
cache_backend: redis
redis_addr: cache:6379
quiz_model: some/other-model
questions_per_module: 4
cassandra_hosts: [a, b]
`)
	t.Setenv("REDIS_ADDR", "override:6380")
	t.Setenv("NEBIUS_API_KEY", "secret")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.CacheBackend != BackendRedis {
		t.Errorf("Expected redis backend, got %q", cfg.CacheBackend)
	}
	if cfg.RedisAddr != "override:6380" {
		t.Errorf("Expected the environment to win, got %q", cfg.RedisAddr)
	}
	if cfg.QuizModel != "some/other-model" || cfg.QuestionsPerModule != 4 {
		t.Errorf("Unexpected file values %q, %d", cfg.QuizModel, cfg.QuestionsPerModule)
	}
	if len(cfg.CassandraHosts) != 2 {
		t.Errorf("Expected 2 cassandra hosts, got %v", cfg.CassandraHosts)
	}
	if cfg.LLMAPIKey != "secret" {
		t.Errorf("Expected the API key from the environment")
	}
	if cfg.TitleModel != DefaultTitleModel {
		t.Errorf("Expected unset values to keep their defaults, got %q", cfg.TitleModel)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "unknown backend", file: "cache_backend: memcached\n"},
		{name: "zero questions", file: "questions_per_module: 0\n"},
		{name: "bad yaml", file: "cache_backend: [\n"},
		{name: "bad env count", env: map[string]string{"QUESTIONS_PER_MODULE": "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearConfigEnv(t)
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}
