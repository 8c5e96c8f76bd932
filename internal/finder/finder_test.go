// SPDX-License-Identifier: MPL-2.0

package finder

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/webtools/tapfind/internal/classpath"
	"github.com/webtools/tapfind/internal/jvm"
	"github.com/webtools/tapfind/internal/registry"
	"github.com/webtools/tapfind/internal/resolver"
	"github.com/webtools/tapfind/internal/testutil"
	"github.com/webtools/tapfind/pkg/feature"
	"github.com/webtools/tapfind/pkg/types"
)

type (
	fakeRoot struct {
		name    string
		kind    classpath.RootKind
		project *classpath.Project
		core    bool
		pkgs    []classpath.Package
		pkgErr  error
		hasErr  error
	}

	fakePackage struct {
		name    types.QualifiedName
		classes []classpath.TypeRoot
	}

	fakeTypeRoot struct {
		name string
		pkg  types.QualifiedName
	}

	fakeInvoker struct {
		info  resolver.PackageInfo
		err   error
		calls int
	}

	fakeRunner struct {
		calls int
	}

	// cancellingInvoker cancels the scan while the module is being invoked.
	cancellingInvoker struct {
		cancel context.CancelFunc
		info   resolver.PackageInfo
	}
)

func (r *fakeRoot) Name() string                           { return r.name }
func (r *fakeRoot) Path() string                           { return "/fake/" + r.name }
func (r *fakeRoot) Kind() classpath.RootKind               { return r.kind }
func (r *fakeRoot) Project() *classpath.Project            { return r.project }
func (r *fakeRoot) Exists() bool                           { return true }
func (r *fakeRoot) Packages() ([]classpath.Package, error) { return r.pkgs, r.pkgErr }

func (r *fakeRoot) HasPackage(name types.QualifiedName) (bool, error) {
	return r.core && name == CorePackage, r.hasErr
}

func (r *fakeRoot) Resource(name string) (io.ReadCloser, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

func (p *fakePackage) Name() types.QualifiedName                       { return p.name }
func (p *fakePackage) Path() string                                    { return "/fake" }
func (p *fakePackage) ClassFiles() ([]classpath.TypeRoot, error)       { return p.classes, nil }
func (p *fakePackage) CompilationUnits() ([]classpath.TypeRoot, error) { return nil, nil }

func (f *fakeTypeRoot) Name() string { return f.name }
func (f *fakeTypeRoot) Exists() bool { return true }

func (f *fakeTypeRoot) PrimaryType() (*types.JavaType, error) {
	return &types.JavaType{Name: strings.TrimSuffix(f.name, ".class"), Package: f.pkg, Binary: true}, nil
}

func (f *fakeInvoker) Invoke(context.Context, string) (resolver.PackageInfo, error) {
	f.calls++
	return f.info, f.err
}

func (f *cancellingInvoker) Invoke(ctx context.Context, _ string) (resolver.PackageInfo, error) {
	f.cancel()
	if err := ctx.Err(); err != nil {
		return resolver.PackageInfo{}, err
	}
	return f.info, nil
}

func (f *fakeRunner) Run(context.Context, jvm.Request) (*jvm.Outcome, error) {
	f.calls++
	return nil, errors.New("runner should not be reached")
}

// coreRoot returns a fake core library holding the given component classes.
func coreRoot(name string, components ...string) *fakeRoot {
	pkg := &fakePackage{name: CorePackage + ".components"}
	for _, c := range components {
		pkg.classes = append(pkg.classes, &fakeTypeRoot{name: c + ".class", pkg: pkg.name})
	}
	return &fakeRoot{name: name, kind: classpath.KindArchive, core: true, pkgs: []classpath.Package{pkg}}
}

func openProject(t *testing.T, dir, name string) (*classpath.Workspace, *classpath.Project) {
	t.Helper()
	ws, err := classpath.Open(dir)
	if err != nil {
		t.Fatalf("classpath.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	p, ok := ws.Project(name)
	if !ok {
		t.Fatalf("project %s not found", name)
	}
	return ws, p
}

func scanProject(t *testing.T, dir, name string, opts Options) (*feature.Model, *Result) {
	t.Helper()
	ws, p := openProject(t, dir, name)
	m := feature.NewModel(name)
	return m, New(ws, p, m, opts).Run(t.Context())
}

// fakeScan runs a finder over injected roots.
func fakeScan(ctx context.Context, t *testing.T, opts Options, roots ...classpath.Root) (*feature.Model, *Result) {
	t.Helper()
	dir := t.TempDir()
	testutil.Project(t, dir, "shop").Source("src").Write()
	ws, p := openProject(t, dir, "shop")
	m := feature.NewModel("shop")
	f := New(ws, p, m, opts)
	f.listRoots = func() ([]classpath.Root, error) { return roots, nil }
	return m, f.Run(ctx)
}

func logicalNames(m *feature.Model, k feature.Kind) []string {
	var out []string
	for _, r := range m.All(k) {
		out = append(out, r.LogicalName())
	}
	slices.Sort(out)
	return out
}

func hasDiagnostic(res *Result, code DiagnosticCode) bool {
	return slices.ContainsFunc(res.Diagnostics, func(d Diagnostic) bool { return d.Code == code })
}

func libraryJar(t *testing.T, path, module string, classes ...string) {
	t.Helper()
	entries := testutil.Classes(classes...)
	if module != "" {
		entries[manifestPath] = testutil.Manifest(map[string]string{"Tapestry-Module-Classes": module})
	}
	testutil.WriteJar(t, path, entries)
}

const manifestPath = "META-INF/MANIFEST.MF"

func TestRun_CoreLibrary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	shop := testutil.Project(t, dir, "shop").Source("src/main/java").Lib("lib/tapestry-core.jar").Write()
	libraryJar(t, filepath.Join(shop.Dir, "lib", "tapestry-core.jar"), "org.apache.tapestry5.services.TapestryModule",
		"org.apache.tapestry5.corelib.components.Grid",
		"org.apache.tapestry5.corelib.components.Grid$Row",
		"org.apache.tapestry5.corelib.pages.ExceptionReport",
		"org.apache.tapestry5.corelib.mixins.Autocomplete",
		"org.apache.tapestry5.corelib.base.AbstractField",
	)

	m, res := scanProject(t, dir, "shop", Options{})

	if res.Status != StatusOK {
		t.Fatalf("Status = %s (%s), want ok", res.Status, res.Message)
	}
	if got := logicalNames(m, feature.Component); !slices.Equal(got, []string{"Grid"}) {
		t.Errorf("components = %v, want [Grid]", got)
	}
	if got := logicalNames(m, feature.Page); !slices.Equal(got, []string{"ExceptionReport"}) {
		t.Errorf("pages = %v", got)
	}
	if got := logicalNames(m, feature.Mixin); !slices.Equal(got, []string{"Autocomplete"}) {
		t.Errorf("mixins = %v", got)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}

	if len(res.Roots) != 2 {
		t.Fatalf("Roots = %d, want 2", len(res.Roots))
	}
	if res.Roots[0].Class != ClassProjectSource || res.Roots[0].Walked {
		t.Errorf("source root report = %+v, want unwalked project source", res.Roots[0])
	}
	core := res.Roots[1]
	if core.Class != ClassCoreLibrary || core.Features != 3 || core.Bootstrap != "" {
		t.Errorf("core root report = %+v", core)
	}
	grid, ok := m.Find(feature.Component, "Grid")
	if !ok {
		t.Fatal("Find(Component, Grid) found nothing")
	}
	if grid.Source != filepath.Join(shop.Dir, "lib", "tapestry-core.jar") || grid.Type.Package != "org.apache.tapestry5.corelib.components" {
		t.Errorf("Grid record = %+v", grid)
	}
}

func TestRun_RegistryWhenInvocationFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	shop := testutil.Project(t, dir, "shop").Source("src/main/java").Lib("lib/jquery.jar").Write()
	libraryJar(t, filepath.Join(shop.Dir, "lib", "jquery.jar"), "org.got5.tapestry5.jquery.services.JQueryModule",
		"org.got5.tapestry5.jquery.components.Dialog",
		"org.got5.tapestry5.jquery.mixins.Confirm",
	)

	reg := registry.New(
		registry.Entry{AppModule: "org.got5.tapestry5.jquery.services.JQueryModule", Prefix: "old", Package: "org.got5.tapestry5.jquery"},
		registry.Entry{AppModule: "org.got5.tapestry5.jquery.services.JQueryModule", Prefix: "jquery", Package: "org.got5.tapestry5.jquery"},
	)
	runner := &fakeRunner{}
	m, res := scanProject(t, dir, "shop", Options{Registry: reg, Runner: runner})

	if res.Status != StatusOK {
		t.Fatalf("Status = %s (%s)", res.Status, res.Message)
	}
	if runner.calls != 0 {
		t.Errorf("runner called %d times without Tapestry on the classpath", runner.calls)
	}
	if got := logicalNames(m, feature.Component); !slices.Equal(got, []string{"jquery/Dialog"}) {
		t.Errorf("components = %v, want [jquery/Dialog]", got)
	}
	if got := logicalNames(m, feature.Mixin); !slices.Equal(got, []string{"jquery/Confirm"}) {
		t.Errorf("mixins = %v, want [jquery/Confirm]", got)
	}
	lib := res.Roots[1]
	if lib.Class != ClassApplicationLibrary || lib.Info.Tier != resolver.TierRegistry {
		t.Errorf("library report = %+v", lib)
	}
	if hasDiagnostic(res, CodeLoaderUnavailable) {
		t.Errorf("unexpected loader diagnostic: %+v", res.Diagnostics)
	}
}

func TestRun_Deduction(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	shop := testutil.Project(t, dir, "shop").Source("src/main/java").Lib("lib/myapp.jar").Write()
	libraryJar(t, filepath.Join(shop.Dir, "lib", "myapp.jar"), "com.example.myapp.services.AppModule",
		"com.example.myapp.components.Foo",
	)

	m, res := scanProject(t, dir, "shop", Options{Registry: registry.New()})

	if got := logicalNames(m, feature.Component); !slices.Equal(got, []string{"?/Foo"}) {
		t.Errorf("components = %v, want [?/Foo]", got)
	}
	info := res.Roots[1].Info
	if info.Prefix != resolver.UnknownPrefix || info.RootPackage != "com.example.myapp" || info.Tier != resolver.TierDeduction {
		t.Errorf("Info = %+v", info)
	}
	idx := slices.IndexFunc(res.Diagnostics, func(d Diagnostic) bool { return d.Code == CodePrefixUnknown })
	if idx < 0 {
		t.Fatalf("missing %s diagnostic: %+v", CodePrefixUnknown, res.Diagnostics)
	}
	if msg := res.Diagnostics[idx].Message; !strings.Contains(msg, "com.example.myapp.services.AppModule") {
		t.Errorf("Message = %q, want the module class", msg)
	}
}

func TestRun_UnresolvedLibraryIsNotWalked(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	shop := testutil.Project(t, dir, "shop").Source("src/main/java").Lib("lib/boot.jar").Write()
	libraryJar(t, filepath.Join(shop.Dir, "lib", "boot.jar"), "com.example.Boot",
		"com.example.components.Foo",
	)

	m, res := scanProject(t, dir, "shop", Options{})

	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
	lib := res.Roots[1]
	if lib.Walked || lib.Bootstrap != "com.example.Boot" {
		t.Errorf("library report = %+v", lib)
	}
	if !hasDiagnostic(res, CodeBootstrapUnresolved) {
		t.Errorf("missing %s diagnostic: %+v", CodeBootstrapUnresolved, res.Diagnostics)
	}
}

func TestRun_LibraryWithoutManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	shop := testutil.Project(t, dir, "shop").Source("src/main/java").Lib("lib/plain.jar").Write()
	libraryJar(t, filepath.Join(shop.Dir, "lib", "plain.jar"), "", "com.example.components.Foo")

	m, res := scanProject(t, dir, "shop", Options{})

	if m.Len() != 0 || len(res.Diagnostics) != 0 {
		t.Errorf("Len() = %d, diagnostics = %+v, want nothing", m.Len(), res.Diagnostics)
	}
}

func TestRun_ProjectSourceBoundary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.Project(t, dir, "shop").
		Source("src/main/java").
		WebXML("src/main/webapp", "com.example.app").
		JavaSource("src/main/java", "com.example.app.components.Layout").
		JavaSource("src/main/java", "com.example.app.components.sub.Box").
		JavaSource("src/main/java", "com.example.app.componentsExtra.Nope").
		JavaSource("src/main/java", "com.example.app.pages.Index").
		JavaSource("src/main/java", "com.example.app.services.AppModule").
		Write()

	m, res := scanProject(t, dir, "shop", Options{})

	if got := logicalNames(m, feature.Component); !slices.Equal(got, []string{"Layout", "sub/Box"}) {
		t.Errorf("components = %v, want [Layout sub/Box]", got)
	}
	if got := logicalNames(m, feature.Page); !slices.Equal(got, []string{"Index"}) {
		t.Errorf("pages = %v, want [Index]", got)
	}
	if got := logicalNames(m, feature.Service); !slices.Equal(got, []string{"AppModule"}) {
		t.Errorf("services = %v, want [AppModule]", got)
	}
	box, ok := m.Find(feature.Component, "sub/Box")
	if !ok || box.SubPackage != "sub" || box.Prefix != "" {
		t.Errorf("sub/Box record = %+v", box)
	}
	if res.Roots[0].Class != ClassProjectSource || res.Roots[0].Info.RootPackage != "com.example.app" {
		t.Errorf("source root report = %+v", res.Roots[0])
	}
}

func TestRun_DependencyProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.Project(t, dir, "comps").
		Source("src/main/java").
		Source("src/main/resources").
		File("src/main/resources/META-INF/MANIFEST.MF", testutil.Manifest(map[string]string{
			"Tapestry-Module-Classes": "com.acme.comps.services.CompsModule, com.acme.comps.services.OtherModule",
		})).
		JavaSource("src/main/java", "com.acme.comps.components.Widget").
		Write()
	testutil.Project(t, dir, "shop").Source("src/main/java").Require("comps").Write()

	inv := &fakeInvoker{info: resolver.PackageInfo{Prefix: "acme", RootPackage: "com.acme.comps", HasPrefix: true, HasRootPackage: true}}
	m, res := scanProject(t, dir, "shop", Options{Invoker: inv})

	if got := logicalNames(m, feature.Component); !slices.Equal(got, []string{"acme/Widget"}) {
		t.Errorf("components = %v, want [acme/Widget]", got)
	}
	if inv.calls != 1 {
		t.Errorf("invoker called %d times, want 1", inv.calls)
	}
	deps := 0
	for _, r := range res.Roots {
		if r.Class != ClassDependencySource {
			continue
		}
		deps++
		if r.Bootstrap != "com.acme.comps.services.CompsModule" || r.Info.Tier != resolver.TierInvocation {
			t.Errorf("dependency root report = %+v", r)
		}
	}
	if deps != 2 {
		t.Errorf("dependency roots = %d, want 2", deps)
	}
}

func TestRun_RootsUnavailable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.Project(t, dir, "shop").Source("src").Require("missing").Write()

	m, res := scanProject(t, dir, "shop", Options{})

	if res.Status != StatusError || res.Message != "can't load the packages" {
		t.Errorf("Status = %s (%s), want error", res.Status, res.Message)
	}
	if len(res.Roots) != 0 || m.Len() != 0 {
		t.Errorf("processed %d roots", len(res.Roots))
	}
	if !hasDiagnostic(res, CodeRootsUnavailable) {
		t.Errorf("missing %s diagnostic", CodeRootsUnavailable)
	}
}

func TestRun_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	opts := Options{OnRoot: func(RootReport) { cancel() }}
	m, res := fakeScan(ctx, t, opts,
		coreRoot("one.jar", "Grid"),
		coreRoot("two.jar", "Form"),
		coreRoot("three.jar", "Zone"),
	)

	if res.Status != StatusCancel {
		t.Fatalf("Status = %s, want cancelled", res.Status)
	}
	if res.Message != "job cancelled before two.jar" {
		t.Errorf("Message = %q", res.Message)
	}
	if len(res.Roots) != 1 {
		t.Errorf("Roots = %d, want 1", len(res.Roots))
	}
	if got := logicalNames(m, feature.Component); !slices.Equal(got, []string{"Grid"}) {
		t.Errorf("components = %v, want [Grid] kept from the first root", got)
	}
}

func TestRun_CancelDuringResolutionFinishesRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	shop := testutil.Project(t, dir, "shop").Source("src/main/java").Lib("lib/myapp.jar").Lib("lib/other.jar").Write()
	libraryJar(t, filepath.Join(shop.Dir, "lib", "myapp.jar"), "com.example.myapp.services.AppModule",
		"com.example.myapp.components.Foo",
	)
	libraryJar(t, filepath.Join(shop.Dir, "lib", "other.jar"), "com.example.other.services.OtherModule",
		"com.example.other.components.Bar",
	)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	inv := &cancellingInvoker{
		cancel: cancel,
		info:   resolver.PackageInfo{Prefix: "myapp", RootPackage: "com.example.myapp", HasPrefix: true, HasRootPackage: true},
	}

	ws, p := openProject(t, dir, "shop")
	m := feature.NewModel("shop")
	res := New(ws, p, m, Options{Invoker: inv, Registry: registry.New()}).Run(ctx)

	if res.Status != StatusCancel || res.Message != "job cancelled before other.jar" {
		t.Fatalf("Status = %s, Message = %q", res.Status, res.Message)
	}
	if got := logicalNames(m, feature.Component); !slices.Equal(got, []string{"myapp/Foo"}) {
		t.Errorf("components = %v, want [myapp/Foo]", got)
	}
	if len(res.Roots) != 2 {
		t.Fatalf("Roots = %d, want 2", len(res.Roots))
	}
	if info := res.Roots[1].Info; info.Tier != resolver.TierInvocation || info.Prefix != "myapp" {
		t.Errorf("Info = %+v, want the invocation result", info)
	}
	if hasDiagnostic(res, CodePrefixUnknown) {
		t.Errorf("unexpected %s diagnostic: %+v", CodePrefixUnknown, res.Diagnostics)
	}
}

func TestRun_UnlistableRootIsReported(t *testing.T) {
	t.Parallel()

	broken := &fakeRoot{name: "broken.jar", kind: classpath.KindArchive, hasErr: errors.New("zip: not a valid zip file")}
	m, res := fakeScan(t.Context(), t, Options{}, broken, coreRoot("good.jar", "Grid"))

	if res.Status != StatusOK || len(res.Roots) != 2 {
		t.Fatalf("Status = %s, Roots = %d", res.Status, len(res.Roots))
	}
	if res.Roots[0].Class != ClassApplicationLibrary || res.Roots[0].Walked {
		t.Errorf("broken root report = %+v", res.Roots[0])
	}
	if got := logicalNames(m, feature.Component); !slices.Equal(got, []string{"Grid"}) {
		t.Errorf("components = %v, want [Grid]", got)
	}
	idx := slices.IndexFunc(res.Diagnostics, func(d Diagnostic) bool { return d.Code == CodeRootChildrenFailed })
	if idx < 0 {
		t.Fatalf("missing %s diagnostic: %+v", CodeRootChildrenFailed, res.Diagnostics)
	}
	if d := res.Diagnostics[idx]; d.Path != "/fake/broken.jar" || d.Cause == nil {
		t.Errorf("diagnostic = %+v", d)
	}
}

func TestRun_FailingRootDoesNotStopSiblings(t *testing.T) {
	t.Parallel()

	broken := coreRoot("broken.jar")
	broken.pkgErr = errors.New("zip: not a valid zip file")

	m, res := fakeScan(t.Context(), t, Options{}, broken, coreRoot("good.jar", "Grid", "Grid$Row"))

	if res.Status != StatusOK || len(res.Roots) != 2 {
		t.Fatalf("Status = %s, Roots = %d", res.Status, len(res.Roots))
	}
	if got := logicalNames(m, feature.Component); !slices.Equal(got, []string{"Grid"}) {
		t.Errorf("components = %v, want [Grid]", got)
	}
	idx := slices.IndexFunc(res.Diagnostics, func(d Diagnostic) bool { return d.Code == CodeRootChildrenFailed })
	if idx < 0 {
		t.Fatalf("missing %s diagnostic", CodeRootChildrenFailed)
	}
	d := res.Diagnostics[idx]
	if d.Severity != SeverityError || d.Path != "/fake/broken.jar" || d.Cause == nil {
		t.Errorf("diagnostic = %+v", d)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.Project(t, dir, "comps").Source("src").Write()
	testutil.Project(t, dir, "shop").Source("src").Write()
	ws, shop := openProject(t, dir, "shop")
	comps, _ := ws.Project("comps")

	tests := []struct {
		name string
		root *fakeRoot
		want Class
	}{
		{"core archive", &fakeRoot{kind: classpath.KindArchive, core: true}, ClassCoreLibrary},
		{"core folder", &fakeRoot{kind: classpath.KindSource, project: comps, core: true}, ClassCoreLibrary},
		{"archive", &fakeRoot{kind: classpath.KindArchive, project: shop}, ClassApplicationLibrary},
		{"own source", &fakeRoot{kind: classpath.KindSource, project: shop}, ClassProjectSource},
		{"own class folder", &fakeRoot{kind: classpath.KindOutput, project: shop}, ClassProjectSource},
		{"dependency source", &fakeRoot{kind: classpath.KindSource, project: comps}, ClassDependencySource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Classify(tt.root, shop)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveBootstrapClass(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.Project(t, dir, "comps").
		Source("src/main/java").
		Source("src/main/resources").
		File("src/main/resources/META-INF/MANIFEST.MF", testutil.Manifest(map[string]string{
			"Tapestry-Module-Classes": "com.acme.comps.services.CompsModule",
		})).
		Write()
	testutil.Project(t, dir, "plain").Source("src").Write()
	ws, comps := openProject(t, dir, "comps")
	plain, _ := ws.Project("plain")

	got, err := ResolveBootstrapClass(comps)
	if err != nil || got != "com.acme.comps.services.CompsModule" {
		t.Errorf("ResolveBootstrapClass(comps) = %q, %v", got, err)
	}
	if _, err := ResolveBootstrapClass(plain); !errors.Is(err, ErrNoBootstrap) {
		t.Errorf("ResolveBootstrapClass(plain) error = %v, want ErrNoBootstrap", err)
	}
}

func TestSubPackage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"a.components", "", true},
		{"a.components.sub", "sub", true},
		{"a.components.sub.deeper", "sub.deeper", true},
		{"a.componentsExtra", "", false},
		{"a.pages", "", false},
	}
	for _, tt := range tests {
		got, ok := subPackage(tt.name, "a.components")
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("subPackage(%q) = %q, %v, want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDiagnosticCode_IsValid(t *testing.T) {
	t.Parallel()

	for code := range knownCodes {
		if ok, errs := code.IsValid(); !ok || errs != nil {
			t.Errorf("%s.IsValid() = %v, %v", code, ok, errs)
		}
	}
	ok, errs := DiagnosticCode("bogus").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidDiagnosticCode) {
		t.Errorf("bogus.IsValid() = %v, %v", ok, errs)
	}
	if ok, errs := Severity("fatal").IsValid(); ok || !errors.Is(errs[0], ErrInvalidSeverity) {
		t.Errorf("fatal.IsValid() = %v, %v", ok, errs)
	}
}
