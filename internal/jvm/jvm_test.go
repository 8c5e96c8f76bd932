// SPDX-License-Identifier: MPL-2.0

package jvm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type mockCommand struct {
	stdout   string
	stderr   string
	exitCode int
	names    []string
	args     [][]string
}

func (m *mockCommand) fn(ctx context.Context, name string, args ...string) *exec.Cmd {
	m.names = append(m.names, name)
	m.args = append(m.args, args)

	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	//nolint:gosec // TestHelperProcess is a test-only pattern
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{
		"GO_WANT_HELPER_PROCESS=1",
		fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", m.exitCode),
		"GO_HELPER_STDOUT=" + m.stdout,
		"GO_HELPER_STDERR=" + m.stderr,
	}
	return cmd
}

// TestHelperProcess is not a real test; it stands in for java and container
// engines when invoked through mockCommand.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Fprint(os.Stdout, os.Getenv("GO_HELPER_STDOUT"))
	fmt.Fprint(os.Stderr, os.Getenv("GO_HELPER_STDERR"))
	code := 0
	fmt.Sscanf(os.Getenv("GO_HELPER_EXIT_CODE"), "%d", &code)
	os.Exit(code)
}

func TestRenderProbe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		shape   Shape
		form    Form
		want    []string
		notWant []string
	}{
		{
			name:    "collection first",
			shape:   ShapeCollectionFirst,
			form:    FormSingle,
			want:    []string{`ctor.newInstance(collected, "serviceId", mapping, null)`, `module.getMethod("contributeComponentClassResolver", configuration)`},
			notWant: []string{"FAULT", TypeCoercerClass},
		},
		{
			name:  "type first with logger",
			shape: ShapeTypeFirst,
			form:  FormWithLogger,
			want: []string{
				`ctor.newInstance(mapping, null, collected, "serviceId")`,
				`Class.forName("org.slf4j.Logger", false, cl)`,
				"instanceof NullPointerException",
			},
		},
		{
			name:  "with coercer",
			shape: ShapeWithCoercer,
			form:  FormSingle,
			want: []string{
				`Class.forName("org.apache.tapestry5.ioc.internal.TypeCoercerProxyImpl", false, cl)`,
				`ctor.newInstance(mapping, null, coercer, collected, "serviceId")`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := RenderProbe(Request{Bootstrap: "com.example.services.AppModule", Shape: tt.shape, Form: tt.form})
			if err != nil {
				t.Fatalf("RenderProbe() error = %v", err)
			}
			text := string(src)
			if !strings.Contains(text, "public class "+ProbeClassName+" {") {
				t.Errorf("probe does not declare %s", ProbeClassName)
			}
			if !strings.Contains(text, `Class.forName("com.example.services.AppModule", false, cl)`) {
				t.Error("probe does not load the bootstrap class")
			}
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("probe missing %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(text, w) {
					t.Errorf("probe unexpectedly contains %q", w)
				}
			}
		})
	}
}

func TestRenderProbe_Rejects(t *testing.T) {
	t.Parallel()

	if _, err := RenderProbe(Request{Bootstrap: "a.B", Shape: ShapeUnrecognized}); !errors.Is(err, ErrUnrecognizedShape) {
		t.Errorf("RenderProbe(unrecognized) error = %v, want ErrUnrecognizedShape", err)
	}
	if _, err := RenderProbe(Request{Bootstrap: `a.B"); System.exit(1); ("`, Shape: ShapeTypeFirst}); err == nil {
		t.Error("RenderProbe() accepted a bootstrap class that is not a qualified name")
	}
}

func TestParseOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		out       string
		want      []Mapping
		wantFault bool
		wantKind  ProbeErrorKind
		wantErr   error
	}{
		{
			name: "mappings in order",
			out:  "MAPPING\tck\torg.chenillekit.tapestry.core\nMAPPING\tjquery\torg.got5.tapestry5.jquery\n",
			want: []Mapping{
				{Prefix: "ck", RootPackage: "org.chenillekit.tapestry.core", HasPrefix: true, HasRootPackage: true},
				{Prefix: "jquery", RootPackage: "org.got5.tapestry5.jquery", HasPrefix: true, HasRootPackage: true},
			},
		},
		{
			name: "null and empty fields",
			out:  "MAPPING\t\t\\N\r\n",
			want: []Mapping{{Prefix: "", HasPrefix: true, HasRootPackage: false}},
		},
		{
			name:      "fault after contribution",
			out:       "log noise from a static initializer\nMAPPING\tck\torg.ck\nFAULT\tnull-logger\n",
			want:      []Mapping{{Prefix: "ck", RootPackage: "org.ck", HasPrefix: true, HasRootPackage: true}},
			wantFault: true,
		},
		{
			name:     "probe error",
			out:      "ERROR\tclass-not-found\tjava.lang.ClassNotFoundException: com.example.Boot\n",
			wantKind: KindClassNotFound,
			wantErr:  ErrProbe,
		},
		{
			name:    "truncated mapping",
			out:     "MAPPING\tck\n",
			wantErr: ErrProbeOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOutput(strings.NewReader(tt.out))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseOutput() error = %v, want %v", err, tt.wantErr)
				}
				var pe *ProbeError
				if tt.wantKind != "" && (!errors.As(err, &pe) || pe.Kind != tt.wantKind) {
					t.Errorf("ParseOutput() error = %v, want kind %s", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOutput() error = %v", err)
			}
			if !slices.Equal(got.Mappings, tt.want) {
				t.Errorf("Mappings = %+v, want %+v", got.Mappings, tt.want)
			}
			if got.FaultAfterContribution != tt.wantFault {
				t.Errorf("FaultAfterContribution = %v, want %v", got.FaultAfterContribution, tt.wantFault)
			}
		})
	}
}

func TestOutcome_Last(t *testing.T) {
	t.Parallel()

	var none *Outcome
	if _, ok := none.Last(); ok {
		t.Error("Last() on nil outcome reported a mapping")
	}

	o := &Outcome{Mappings: []Mapping{{Prefix: "first"}, {Prefix: "second"}}}
	if m, ok := o.Last(); !ok || m.Prefix != "second" {
		t.Errorf("Last() = %+v, %v, want the second mapping", m, ok)
	}
}

func TestNativeRunner_Run(t *testing.T) {
	t.Parallel()

	mock := &mockCommand{stdout: "MAPPING\tck\torg.ck\n"}
	r := &NativeRunner{java: "/opt/jdk/bin/java", opts: newOptions([]Option{WithExecCommand(mock.fn)})}

	out, err := r.Run(context.Background(), Request{
		Bootstrap: "org.ck.services.CkModule",
		Shape:     ShapeTypeFirst,
		Classpath: []string{"/w/shop/bin", "/w/shop/lib/ck.jar"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if m, _ := out.Last(); m.Prefix != "ck" || m.RootPackage != "org.ck" {
		t.Errorf("Last() = %+v", m)
	}

	if len(mock.names) != 1 || mock.names[0] != "/opt/jdk/bin/java" {
		t.Fatalf("commands = %v", mock.names)
	}
	args := mock.args[0]
	wantCP := strings.Join([]string{"/w/shop/bin", "/w/shop/lib/ck.jar"}, string(os.PathListSeparator))
	if len(args) != 3 || args[0] != "-cp" || args[1] != wantCP || filepath.Base(args[2]) != ProbeFileName {
		t.Errorf("args = %v", args)
	}
}

func TestNativeRunner_RunFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mock    *mockCommand
		wantErr error
	}{
		{
			name:    "probe error",
			mock:    &mockCommand{stdout: "ERROR\tlinkage\tjava.lang.NoClassDefFoundError: org/slf4j/Logger\n", exitCode: 3},
			wantErr: ErrProbe,
		},
		{
			name: "jvm crash",
			mock: &mockCommand{stderr: "Error: Could not find or load main class", exitCode: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &NativeRunner{java: "java", opts: newOptions([]Option{WithExecCommand(tt.mock.fn)})}
			_, err := r.Run(context.Background(), Request{Bootstrap: "a.B", Shape: ShapeTypeFirst})
			if err == nil {
				t.Fatal("Run() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestContainerRunner_Args(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jar := filepath.Join(dir, "ck.jar")
	if err := os.WriteFile(jar, []byte("PK"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &ContainerRunner{engine: EnginePodman, binary: "podman", image: DefaultImage, opts: newOptions(nil)}
	args := r.Args("/tmp/probe", Request{Classpath: []string{filepath.Join(dir, "missing"), jar}})

	want := []string{
		"run", "--rm", "--network", "none",
		"-v", "/tmp/probe:/tapfind/probe:ro,z",
		"-v", jar + ":/tapfind/cp/1-ck.jar:ro,z",
		DefaultImage, "java", "-cp", "/tapfind/cp/1-ck.jar", "/tapfind/probe/" + ProbeFileName,
	}
	if !slices.Equal(args, want) {
		t.Errorf("Args() = %v\nwant %v", args, want)
	}
}

func TestEngine_Validate(t *testing.T) {
	t.Parallel()

	for _, e := range []Engine{EngineNative, EngineDocker, EnginePodman} {
		if err := e.Validate(); err != nil {
			t.Errorf("Engine(%q).Validate() error = %v", e, err)
		}
	}
	if err := Engine("lxc").Validate(); !errors.Is(err, ErrInvalidEngine) {
		t.Errorf("Engine(lxc).Validate() error = %v, want ErrInvalidEngine", err)
	}
	if _, err := New(Config{Engine: "lxc"}); !errors.Is(err, ErrInvalidEngine) {
		t.Errorf("New(lxc) error = %v, want ErrInvalidEngine", err)
	}
}

func TestSandbox_HostCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sandbox  Sandbox
		wantName string
		wantArgs []string
	}{
		{SandboxNone, "/usr/bin/docker", []string{"run", "--rm"}},
		{SandboxFlatpak, "flatpak-spawn", []string{"--host", "/usr/bin/docker", "run", "--rm"}},
		{SandboxSnap, "snap", []string{"run", "--shell", "/usr/bin/docker", "run", "--rm"}},
	}
	for _, tt := range tests {
		t.Run("sandbox="+string(tt.sandbox), func(t *testing.T) {
			t.Parallel()
			name, args := tt.sandbox.HostCommand("/usr/bin/docker", []string{"run", "--rm"})
			if name != tt.wantName || !slices.Equal(args, tt.wantArgs) {
				t.Errorf("HostCommand() = %q %v, want %q %v", name, args, tt.wantName, tt.wantArgs)
			}
		})
	}
}

func TestDetectSandboxFrom(t *testing.T) {
	t.Parallel()

	missing := func(string) error { return os.ErrNotExist }
	present := func(string) error { return nil }
	snapEnv := func(k string) string {
		if k == "SNAP_NAME" {
			return "tapfind"
		}
		return ""
	}
	noEnv := func(string) string { return "" }

	if got := detectSandboxFrom(noEnv, missing); got != SandboxNone {
		t.Errorf("no indicators = %q", got)
	}
	if got := detectSandboxFrom(snapEnv, missing); got != SandboxSnap {
		t.Errorf("SNAP_NAME = %q", got)
	}
	if got := detectSandboxFrom(snapEnv, present); got != SandboxFlatpak {
		t.Errorf("flatpak precedence = %q", got)
	}
}

func TestContainerRunner_RunOnHost(t *testing.T) {
	t.Parallel()

	mock := &mockCommand{stdout: "MAPPING\tck\torg.ck\n"}
	r := &ContainerRunner{
		engine: EngineDocker,
		binary: "/usr/bin/docker",
		image:  DefaultImage,
		opts:   newOptions([]Option{WithExecCommand(mock.fn), WithSandbox(SandboxFlatpak)}),
	}
	if _, err := r.Run(context.Background(), Request{Bootstrap: "org.ck.services.CkModule", Shape: ShapeTypeFirst}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(mock.names) != 1 || mock.names[0] != "flatpak-spawn" {
		t.Fatalf("commands = %v", mock.names)
	}
	if args := mock.args[0]; len(args) < 3 || args[0] != "--host" || args[1] != "/usr/bin/docker" || args[2] != "run" {
		t.Errorf("args = %v", args)
	}
}
