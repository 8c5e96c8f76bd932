// SPDX-License-Identifier: MPL-2.0

package jvm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// EngineNative runs the probe with a local java binary.
	EngineNative Engine = "native"
	// EngineDocker runs the probe in a docker container.
	EngineDocker Engine = "docker"
	// EnginePodman runs the probe in a podman container.
	EnginePodman Engine = "podman"

	// DefaultImage is the JDK image used by container engines.
	DefaultImage = "eclipse-temurin:21-jdk"
	// DefaultTimeout bounds a single probe run.
	DefaultTimeout = 30 * time.Second

	containerProbeDir = "/tapfind/probe"
	containerCPDir    = "/tapfind/cp"
)

var (
	// ErrNoJava is returned when no java binary can be found.
	ErrNoJava = errors.New("java executable not found")
	// ErrNoEngine is returned when the container engine binary is missing.
	ErrNoEngine = errors.New("container engine not found")
	// ErrInvalidEngine is the sentinel behind InvalidEngineError.
	ErrInvalidEngine = errors.New("invalid jvm engine")
)

type (
	// Engine selects how the probe is executed.
	Engine string

	// InvalidEngineError reports an unknown engine name.
	InvalidEngineError struct {
		Value Engine
	}

	// Request describes one probe run.
	Request struct {
		Bootstrap string
		Shape     Shape
		Form      Form
		// Classpath is the ordered class lookup path (project classes first).
		Classpath []string
	}

	// Runner executes the probe.
	Runner interface {
		Run(ctx context.Context, req Request) (*Outcome, error)
	}

	// ExecCommandFunc creates commands; tests replace it.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Option configures a runner.
	Option func(*runnerOptions)

	runnerOptions struct {
		timeout     time.Duration
		execCommand ExecCommandFunc
		logger      *log.Logger
		sandbox     Sandbox
	}

	// NativeRunner runs the probe with the source-file launcher of a local JDK.
	NativeRunner struct {
		java string
		opts runnerOptions
	}

	// ContainerRunner runs the probe inside a JDK container, mounting the
	// classpath read-only.
	ContainerRunner struct {
		engine Engine
		binary string
		image  string
		opts   runnerOptions
	}

	// Config selects and configures a runner.
	Config struct {
		Engine  Engine
		Java    string
		Image   string
		Timeout time.Duration
	}
)

// Error implements the error interface.
func (e *InvalidEngineError) Error() string {
	return fmt.Sprintf("invalid jvm engine %q (expected native, docker or podman)", e.Value)
}

// Unwrap returns ErrInvalidEngine for errors.Is() compatibility.
func (e *InvalidEngineError) Unwrap() error { return ErrInvalidEngine }

// Validate returns an error if the engine is not known.
func (e Engine) Validate() error {
	switch e {
	case EngineNative, EngineDocker, EnginePodman:
		return nil
	default:
		return &InvalidEngineError{Value: e}
	}
}

// String returns the engine name.
func (e Engine) String() string { return string(e) }

// WithTimeout bounds each probe run.
func WithTimeout(d time.Duration) Option {
	return func(o *runnerOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithExecCommand overrides command creation.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(o *runnerOptions) { o.execCommand = fn }
}

// WithSandbox overrides sandbox detection.
func WithSandbox(s Sandbox) Option {
	return func(o *runnerOptions) { o.sandbox = s }
}

// WithLogger sets the logger for probe diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *runnerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) runnerOptions {
	o := runnerOptions{
		timeout:     DefaultTimeout,
		execCommand: exec.CommandContext,
		logger:      log.New(io.Discard),
		sandbox:     DetectSandbox(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates the runner selected by cfg.
func New(cfg Config, opts ...Option) (Runner, error) {
	if cfg.Timeout > 0 {
		opts = append([]Option{WithTimeout(cfg.Timeout)}, opts...)
	}
	engine := cfg.Engine
	if engine == "" {
		engine = EngineNative
	}
	if err := engine.Validate(); err != nil {
		return nil, err
	}
	if engine == EngineNative {
		return NewNativeRunner(cfg.Java, opts...)
	}
	return NewContainerRunner(engine, cfg.Image, opts...)
}

// NewNativeRunner resolves the java binary: the given path, then
// $JAVA_HOME/bin/java, then java on PATH.
func NewNativeRunner(java string, opts ...Option) (*NativeRunner, error) {
	candidates := []string{java}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		candidates = append(candidates, filepath.Join(home, "bin", "java"))
	}
	candidates = append(candidates, "java")

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if p, err := exec.LookPath(c); err == nil {
			return &NativeRunner{java: p, opts: newOptions(opts)}, nil
		}
	}
	return nil, ErrNoJava
}

// Args returns the java arguments for a probe file.
func (r *NativeRunner) Args(probeFile string, req Request) []string {
	return []string{"-cp", strings.Join(req.Classpath, string(os.PathListSeparator)), probeFile}
}

// Run executes the probe.
func (r *NativeRunner) Run(ctx context.Context, req Request) (*Outcome, error) {
	return runProbe(ctx, r.opts, req, func(dir string) (string, []string) {
		return r.java, r.Args(filepath.Join(dir, ProbeFileName), req)
	})
}

// NewContainerRunner resolves the engine binary on PATH.
func NewContainerRunner(engine Engine, image string, opts ...Option) (*ContainerRunner, error) {
	if err := engine.Validate(); err != nil {
		return nil, err
	}
	if engine == EngineNative {
		return nil, &InvalidEngineError{Value: engine}
	}
	binary, err := exec.LookPath(string(engine))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoEngine, engine)
	}
	if image == "" {
		image = DefaultImage
	}
	return &ContainerRunner{engine: engine, binary: binary, image: image, opts: newOptions(opts)}, nil
}

// Args returns the engine arguments. Missing classpath elements are not
// mounted.
func (r *ContainerRunner) Args(probeDir string, req Request) []string {
	mode := "ro"
	if r.engine == EnginePodman {
		mode = "ro,z"
	}

	args := []string{"run", "--rm", "--network", "none", "-v", probeDir + ":" + containerProbeDir + ":" + mode}
	var cp []string
	for i, elem := range req.Classpath {
		if _, err := os.Stat(elem); err != nil {
			continue
		}
		target := path.Join(containerCPDir, fmt.Sprintf("%d-%s", i, filepath.Base(elem)))
		args = append(args, "-v", elem+":"+target+":"+mode)
		cp = append(cp, target)
	}
	args = append(args, r.image, "java", "-cp", strings.Join(cp, ":"), path.Join(containerProbeDir, ProbeFileName))
	return args
}

// Run executes the probe in a fresh container.
func (r *ContainerRunner) Run(ctx context.Context, req Request) (*Outcome, error) {
	return runProbe(ctx, r.opts, req, func(dir string) (string, []string) {
		return r.opts.sandbox.HostCommand(r.binary, r.Args(dir, req))
	})
}

func runProbe(ctx context.Context, o runnerOptions, req Request, command func(dir string) (string, []string)) (*Outcome, error) {
	src, err := RenderProbe(req)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "tapfind-probe-")
	if err != nil {
		return nil, fmt.Errorf("create probe dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if err := os.WriteFile(filepath.Join(dir, ProbeFileName), src, 0o644); err != nil {
		return nil, fmt.Errorf("write probe: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	name, args := command(dir)
	var stdout, stderr bytes.Buffer
	cmd := o.execCommand(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	o.logger.Debug("running probe", "bootstrap", req.Bootstrap, "shape", req.Shape, "form", req.Form, "command", name)
	runErr := cmd.Run()

	outcome, parseErr := ParseOutput(&stdout)
	if parseErr != nil {
		return nil, parseErr
	}
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("probe for %s: %w", req.Bootstrap, ctxErr)
		}
		return nil, fmt.Errorf("probe for %s: %w: %s", req.Bootstrap, runErr, strings.TrimSpace(stderr.String()))
	}
	return outcome, nil
}
