package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mixdown/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "mixdown", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.HistoryDB != filepath.Join(tempHome, ".local", "share", "mixdown", "history.db") {
		t.Fatalf("unexpected history db: %q", cfg.Paths.HistoryDB)
	}
	if cfg.FFmpegBinary() != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.FFmpegBinary())
	}
	if cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.FFprobeBinary())
	}
	if cfg.Output.AudioCodec != "aac" || cfg.Output.AudioBitrate != "192k" {
		t.Fatalf("unexpected output defaults: %+v", cfg.Output)
	}
	if cfg.Output.Extension != ".mp4" {
		t.Fatalf("unexpected output extension: %q", cfg.Output.Extension)
	}
	if cfg.Output.BatchSuffix != "_mixed" {
		t.Fatalf("unexpected batch suffix: %q", cfg.Output.BatchSuffix)
	}
	if len(cfg.Batch.Extensions) != 2 {
		t.Fatalf("unexpected batch extensions: %v", cfg.Batch.Extensions)
	}
	if cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("expected empty ntfy topic, got %q", cfg.Notifications.NtfyTopic)
	}
	if !cfg.Notifications.Batch || !cfg.Notifications.Errors {
		t.Fatalf("expected notification toggles on by default: %+v", cfg.Notifications)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.HistoryDB)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mixdown.toml")

	type payload struct {
		Tools struct {
			FFmpeg string `toml:"ffmpeg"`
		} `toml:"tools"`
		Output struct {
			AudioBitrate string `toml:"audio_bitrate"`
			Extension    string `toml:"extension"`
		} `toml:"output"`
		Batch struct {
			Extensions []string `toml:"extensions"`
		} `toml:"batch"`
	}
	custom := payload{}
	custom.Tools.FFmpeg = "/opt/ffmpeg/bin/ffmpeg"
	custom.Output.AudioBitrate = "256K"
	custom.Output.Extension = "mkv"
	custom.Batch.Extensions = []string{"MP4", ".m4v", ".m4v"}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected ffmpeg override, got %q", cfg.FFmpegBinary())
	}
	if cfg.Output.AudioBitrate != "256k" {
		t.Fatalf("expected bitrate lowered to 256k, got %q", cfg.Output.AudioBitrate)
	}
	if cfg.Output.Extension != ".mkv" {
		t.Fatalf("expected extension normalized to .mkv, got %q", cfg.Output.Extension)
	}
	want := []string{".mp4", ".m4v"}
	if len(cfg.Batch.Extensions) != len(want) {
		t.Fatalf("unexpected extensions: %v", cfg.Batch.Extensions)
	}
	for i, ext := range want {
		if cfg.Batch.Extensions[i] != ext {
			t.Fatalf("extensions[%d] = %q, want %q", i, cfg.Batch.Extensions[i], ext)
		}
	}
}

func TestEnvVarSuppliesNtfyTopic(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mixdown.toml")
	if err := os.WriteFile(configPath, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MIXDOWN_NTFY_TOPIC", "env-topic")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "env-topic" {
		t.Fatalf("expected topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "ntfy_topic") {
		t.Fatalf("sample config missing ntfy topic entry: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}

	// On Windows join uses backslashes; skip path expectation specifics when running there to avoid
	// differences in drive letters during CI.
	if runtime.GOOS != "windows" {
		if !strings.Contains(cfg.Paths.StagingDir, "mixdown") {
			t.Fatalf("expected staging dir to contain mixdown, got %q", cfg.Paths.StagingDir)
		}
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Extension = "mp4"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for extension without dot")
	}

	cfg = config.Default()
	cfg.Batch.Extensions = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty batch extensions")
	}

	cfg = config.Default()
	cfg.Batch.MinFreeGiB = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative min_free_gib")
	}

	cfg = config.Default()
	cfg.Notifications.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive request timeout")
	}

	cfg = config.Default()
	cfg.Staging.RetentionHours = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive retention")
	}
}
