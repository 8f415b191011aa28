package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mixdown/internal/config"
	"mixdown/internal/testsupport"
)

// probeFixtureJSON is what the stubbed ffprobe prints for every input: one
// video stream plus two audio streams (stereo main, 5.1 commentary).
const probeFixtureJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2, "channel_layout": "stereo", "duration": "4203.8", "tags": {"language": "eng"}},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "sample_rate": "48000", "channels": 6, "channel_layout": "5.1(side)", "duration": "4203.8", "tags": {"language": "eng", "title": "Director Commentary"}}
  ],
  "format": {"filename": "movie.mkv", "nb_streams": 3, "duration": "4203.84", "size": "1073741824", "bit_rate": "2043590", "format_name": "matroska,webm"}
}
`

// ffmpegStubScript creates its last argument, which is always the output path
// in the argument order the mixer builds.
const ffmpegStubScript = `#!/bin/sh
for arg in "$@"; do last="$arg"; done
: > "$last"
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	sourceDir  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("MIXDOWN_NTFY_TOPIC", "")

	binDir := filepath.Join(base, "bin")
	fixturePath := filepath.Join(base, "probe.json")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	if err := os.WriteFile(fixturePath, []byte(probeFixtureJSON), 0o644); err != nil {
		t.Fatalf("write probe fixture: %v", err)
	}
	writeStubScript(t, filepath.Join(binDir, "ffprobe"), "#!/bin/sh\ncat \""+fixturePath+"\"\n")
	writeStubScript(t, filepath.Join(binDir, "ffmpeg"), ffmpegStubScript)

	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfgVal.Tools.FFmpeg = filepath.Join(binDir, "ffmpeg")
	cfgVal.Tools.FFprobe = filepath.Join(binDir, "ffprobe")
	cfgVal.Batch.MinFreeGiB = 0
	cfgVal.Notifications.NtfyTopic = ""
	cfg := &cfgVal

	configPath := filepath.Join(homeDir, ".config", "mixdown", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		sourceDir:  filepath.Join(base, "media"),
	}
}

// writeVideo drops a dummy container file under the env's media directory and
// returns its absolute path.
func (env *cliTestEnv) writeVideo(t *testing.T, rel string) string {
	t.Helper()
	path := filepath.Join(env.sourceDir, rel)
	testsupport.WriteFile(t, path, 2048)
	return path
}

// stubFFmpegFailure makes every mix invocation fail.
func (env *cliTestEnv) stubFFmpegFailure(t *testing.T) {
	t.Helper()
	writeStubScript(t, env.cfg.Tools.FFmpeg, "#!/bin/sh\necho 'conversion failed' >&2\nexit 1\n")
}

// stubFFmpegFailureFor makes mixes whose output path contains marker fail
// while the rest still succeed.
func (env *cliTestEnv) stubFFmpegFailureFor(t *testing.T, marker string) {
	t.Helper()
	script := fmt.Sprintf(`#!/bin/sh
for arg in "$@"; do last="$arg"; done
case "$last" in
  *%s*) echo 'conversion failed' >&2; exit 1 ;;
esac
: > "$last"
`, marker)
	writeStubScript(t, env.cfg.Tools.FFmpeg, script)
}

// chdir switches the working directory to dir for the duration of the test and
// restores the previous directory on cleanup; it mirrors testing.T.Chdir,
// which is unavailable before Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	if !filepath.IsAbs(dir) {
		dir, err = os.Getwd()
		if err != nil {
			t.Fatalf("getwd: %v", err)
		}
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			panic("chdir cleanup: " + err.Error())
		}
	})
}

func writeStubScript(t *testing.T, path, script string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
staging_dir = %q
log_dir = %q
history_db = %q

[tools]
ffmpeg = %q
ffprobe = %q

[batch]
min_free_gib = %d

[notifications]
ntfy_topic = %q
`,
		cfg.Paths.StagingDir,
		cfg.Paths.LogDir,
		cfg.Paths.HistoryDB,
		cfg.Tools.FFmpeg,
		cfg.Tools.FFprobe,
		cfg.Batch.MinFreeGiB,
		cfg.Notifications.NtfyTopic,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
