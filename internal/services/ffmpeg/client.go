package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"mixdown/internal/media/audio"
	"mixdown/internal/media/ffprobe"
	"mixdown/internal/services"
)

const stderrTailLines = 20

// MixRequest describes a single mix operation: combine the input's audio
// streams at the given per-stream volumes into one track while copying video.
type MixRequest struct {
	Input  string
	Output string
	// Volumes maps audio stream indices (a:N selectors) to volume
	// multipliers. Every listed stream joins the mix; unlisted streams are
	// dropped. Must not be empty.
	Volumes map[int]float64
}

// Mixer defines the behaviour required by the batch runner and CLI.
type Mixer interface {
	ExtractAudioStreams(ctx context.Context, path string) ([]audio.StreamInfo, error)
	Mix(ctx context.Context, req MixRequest) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// ProbeFunc abstracts ffprobe inspection for testability.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithProber injects a custom probe function (primarily for tests).
func WithProber(probe ProbeFunc) Option {
	return func(c *Client) {
		if probe != nil {
			c.probe = probe
		}
	}
}

// WithEncoding overrides the output audio codec and bitrate.
func WithEncoding(codec, bitrate string) Option {
	return func(c *Client) {
		if codec = strings.TrimSpace(codec); codec != "" {
			c.codec = codec
		}
		if bitrate = strings.TrimSpace(bitrate); bitrate != "" {
			c.bitrate = bitrate
		}
	}
}

// Client wraps ffmpeg and ffprobe CLI interactions.
type Client struct {
	ffmpeg  string
	ffprobe string
	codec   string
	bitrate string
	exec    Executor
	probe   ProbeFunc
}

// New constructs a client. Empty binary names fall back to the tools'
// well-known names resolved through PATH.
func New(ffmpegBinary, ffprobeBinary string, opts ...Option) *Client {
	client := &Client{
		ffmpeg:  strings.TrimSpace(ffmpegBinary),
		ffprobe: strings.TrimSpace(ffprobeBinary),
		codec:   "aac",
		bitrate: "192k",
		exec:    commandExecutor{},
		probe:   ffprobe.Inspect,
	}
	if client.ffmpeg == "" {
		client.ffmpeg = "ffmpeg"
	}
	if client.ffprobe == "" {
		client.ffprobe = "ffprobe"
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Probe inspects the container and returns the full ffprobe result.
func (c *Client) Probe(ctx context.Context, path string) (ffprobe.Result, error) {
	result, err := c.probe(ctx, c.ffprobe, path)
	if err != nil {
		return ffprobe.Result{}, services.Wrap(services.ErrProbe, "ffprobe", "inspect", path, err)
	}
	return result, nil
}

// ExtractAudioStreams probes the container and catalogs its audio streams.
// A container without audio yields an empty slice, not an error.
func (c *Client) ExtractAudioStreams(ctx context.Context, path string) ([]audio.StreamInfo, error) {
	result, err := c.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	return audio.FromProbe(result), nil
}

// Mix combines the requested audio streams into a single encoded track while
// stream-copying the first video stream. The output is overwritten when it
// already exists. A failed run may leave a partial output file behind.
func (c *Client) Mix(ctx context.Context, req MixRequest) error {
	if strings.TrimSpace(req.Input) == "" {
		return services.Wrap(services.ErrInvalidInput, "ffmpeg", "mix", "input path required", nil)
	}
	if strings.TrimSpace(req.Output) == "" {
		return services.Wrap(services.ErrInvalidInput, "ffmpeg", "mix", "output path required", nil)
	}
	if len(req.Volumes) == 0 {
		return services.Wrap(services.ErrInvalidInput, "ffmpeg", "mix", "no audio streams specified in volume map", nil)
	}

	graph, outLabel := buildFilterGraph(req.Volumes)
	args := c.mixArgs(req, graph, outLabel)

	tail := newTailBuffer(stderrTailLines)
	if err := c.exec.Run(ctx, c.ffmpeg, args, tail.Append); err != nil {
		return services.Wrap(services.ErrProcessing, "ffmpeg", "mix", tail.String(), err)
	}
	return nil
}

func (c *Client) mixArgs(req MixRequest, graph, outLabel string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-i", req.Input,
		"-filter_complex", graph,
		"-map", "0:v:0",
		"-c:v", "copy",
		"-map", outLabel,
		"-c:a", c.codec,
		"-b:a", c.bitrate,
		req.Output,
	}
}

// tailBuffer retains the last max lines written to it.
type tailBuffer struct {
	lines []string
	max   int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Append(line string) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *tailBuffer) String() string {
	return strings.Join(t.lines, "\n")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			forward(scanner.Text(), onOutput)
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

func forward(line string, onOutput func(string)) {
	if onOutput != nil {
		onOutput(line)
		return
	}
	fmt.Fprintln(os.Stderr, line)
}

var _ Mixer = (*Client)(nil)
