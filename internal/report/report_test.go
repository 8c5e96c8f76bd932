// SPDX-License-Identifier: MPL-2.0

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/webtools/tapfind/internal/finder"
	"github.com/webtools/tapfind/internal/resolver"
	"github.com/webtools/tapfind/pkg/feature"
	"github.com/webtools/tapfind/pkg/types"
)

func sampleScan() (*finder.Result, *feature.Model) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res := &finder.Result{
		ID:       uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		Project:  "shop",
		Status:   finder.StatusOK,
		Started:  started,
		Finished: started.Add(1500 * time.Millisecond),
		Roots: []finder.RootReport{
			{
				Root: "tapestry-core.jar", Class: finder.ClassCoreLibrary, Walked: true, Features: 2,
				Info: resolver.PackageInfo{RootPackage: "org.apache.tapestry5.corelib", HasPrefix: true, HasRootPackage: true},
			},
			{Root: "commons-io.jar", Class: finder.ClassApplicationLibrary},
			{
				Root: "src/main/java", Class: finder.ClassProjectSource, Walked: true, Features: 1,
				Info: resolver.PackageInfo{RootPackage: "com.example.shop", HasPrefix: true, HasRootPackage: true},
			},
		},
		Diagnostics: []finder.Diagnostic{
			{Severity: finder.SeverityWarning, Code: finder.CodePrefixUnknown, Message: "prefix of lib.jar is unknown", Path: "/libs/lib.jar"},
			{Severity: finder.SeverityError, Code: finder.CodeRootChildrenFailed, Message: "broken.jar is unreadable"},
		},
	}

	m := feature.NewModel("shop")
	core := types.QualifiedName("org.apache.tapestry5.corelib")
	m.AddComponent(feature.New(feature.Component, "", types.JavaType{Name: "Grid", Package: core.Child("components"), Binary: true}, "tapestry-core.jar", ""))
	m.AddPage(feature.New(feature.Page, "", types.JavaType{Name: "ExceptionReport", Package: core.Child("pages"), Binary: true}, "tapestry-core.jar", ""))
	m.AddPage(feature.New(feature.Page, "", types.JavaType{Name: "Index", Package: "com.example.shop.pages.admin"}, "src/main/java", "admin"))
	return res, m
}

func TestBuild(t *testing.T) {
	t.Parallel()

	res, m := sampleScan()
	doc := Build(res, m)

	if doc.Duration != "1.5s" {
		t.Errorf("Duration = %q, want 1.5s", doc.Duration)
	}
	want := Summary{Components: 1, Pages: 2, Roots: 3, Walked: 2, Warnings: 1, Errors: 1}
	if doc.Summary != want {
		t.Errorf("Summary = %+v, want %+v", doc.Summary, want)
	}
	if doc.Summary.Total() != 3 {
		t.Errorf("Total() = %d, want 3", doc.Summary.Total())
	}
	if len(doc.Features) != 3 {
		t.Fatalf("len(Features) = %d, want 3", len(doc.Features))
	}
	// Features are grouped in kind walk order.
	if doc.Features[0].Kind != feature.Component {
		t.Errorf("first feature kind = %v, want component", doc.Features[0].Kind)
	}
	admin := doc.Features[2]
	if admin.LogicalName != "admin/Index" || admin.Class != "com.example.shop.pages.admin.Index" {
		t.Errorf("admin page = %+v", admin)
	}
}

func TestBuild_KindFilter(t *testing.T) {
	t.Parallel()

	res, m := sampleScan()
	doc := Build(res, m, feature.Page)

	if len(doc.Features) != 2 {
		t.Fatalf("len(Features) = %d, want 2", len(doc.Features))
	}
	for _, f := range doc.Features {
		if f.Kind != feature.Page {
			t.Errorf("unexpected kind %v in filtered document", f.Kind)
		}
	}
	if doc.Summary.Components != 1 {
		t.Errorf("summary must count filtered kinds too, Components = %d", doc.Summary.Components)
	}
}

func TestBuild_NilModel(t *testing.T) {
	t.Parallel()

	doc := Build(&finder.Result{Project: "p", Status: finder.StatusError, Message: "can't load the packages"}, nil)
	if doc.Features == nil || doc.Roots == nil || doc.Diagnostics == nil {
		t.Error("Build() must return empty slices, not nil, so encoders emit []")
	}
	if doc.Duration != "" {
		t.Errorf("Duration = %q, want empty for an unfinished scan", doc.Duration)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, f := range Formats() {
		got, err := ParseFormat(string(f))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %q, %v", f, got, err)
		}
	}
	_, err := ParseFormat("html")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseFormat(html) error = %v, want ErrInvalidFormat", err)
	}
	var fe *InvalidFormatError
	if !errors.As(err, &fe) || fe.Value != "html" {
		t.Errorf("errors.As() InvalidFormatError = %v", fe)
	}
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	res, m := sampleScan()
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, Build(res, m), Options{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var got struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Features []struct {
			Kind        string `json:"kind"`
			LogicalName string `json:"logical_name"`
		} `json:"features"`
		Roots []struct {
			Class string `json:"class"`
			Info  struct {
				Tier string `json:"tier"`
			} `json:"info"`
		} `json:"roots"`
		Diagnostics []struct {
			Code string `json:"code"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.ID != "7d444840-9dc0-11d1-b245-5ffdce74fad2" || got.Status != "ok" {
		t.Errorf("id/status = %q/%q", got.ID, got.Status)
	}
	if got.Features[0].Kind != "component" || got.Features[0].LogicalName != "Grid" {
		t.Errorf("first feature = %+v", got.Features[0])
	}
	if got.Roots[0].Class != "core-library" {
		t.Errorf("root class = %q, want core-library", got.Roots[0].Class)
	}
	if got.Diagnostics[0].Code != "prefix_unknown" {
		t.Errorf("diagnostic code = %q", got.Diagnostics[0].Code)
	}
}

func TestWrite_YAML(t *testing.T) {
	t.Parallel()

	res, m := sampleScan()
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, Build(res, m), Options{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if got["project"] != "shop" || got["status"] != "ok" {
		t.Errorf("project/status = %v/%v", got["project"], got["status"])
	}
	features, ok := got["features"].([]any)
	if !ok || len(features) != 3 {
		t.Fatalf("features = %#v", got["features"])
	}
	first, _ := features[0].(map[string]any)
	if first["kind"] != "component" {
		t.Errorf("first feature kind = %v", first["kind"])
	}
}

func TestWrite_Text(t *testing.T) {
	t.Parallel()

	res, m := sampleScan()
	var buf bytes.Buffer
	if err := Write(&buf, FormatText, Build(res, m), Options{Verbose: true}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Project shop",
		"1 components, 2 pages, 0 mixins, 0 services from 2 of 3 roots",
		"Components",
		"Grid",
		"admin/Index",
		"com.example.shop.pages.admin.Index",
		"commons-io.jar (application-library)",
		"[prefix_unknown] prefix of lib.jar is unknown",
		"/libs/lib.jar",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Mixins") {
		t.Error("empty kinds must not get a heading")
	}
}

func TestWrite_Text_NotVerbose(t *testing.T) {
	t.Parallel()

	res, m := sampleScan()
	out := Text(Build(res, m), Options{})
	if strings.Contains(out, "Roots") {
		t.Errorf("root table rendered without Verbose:\n%s", out)
	}
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	res, m := sampleScan()
	md := Markdown(Build(res, m), true)

	for _, want := range []string{
		"# shop",
		"Status: **ok** in 1.5s",
		"| Pages | 2 |",
		"## Pages",
		"| `admin/Index` | `com.example.shop.pages.admin.Index` |",
		"## Roots",
		"## Diagnostics",
		"- **error** `root_children_failed`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestWrite_MarkdownRaw(t *testing.T) {
	t.Parallel()

	res, m := sampleScan()
	doc := Build(res, m)
	var buf bytes.Buffer
	if err := Write(&buf, FormatMarkdown, doc, Options{RawMarkdown: true}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if buf.String() != Markdown(doc, false) {
		t.Error("raw markdown output differs from Markdown()")
	}
}

func TestWrite_MarkdownRendered(t *testing.T) {
	t.Parallel()

	res, m := sampleScan()
	var buf bytes.Buffer
	if err := Write(&buf, FormatMarkdown, Build(res, m), Options{GlamourStyle: "notty"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "shop") {
		t.Errorf("rendered markdown lost content:\n%s", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	err := Write(&bytes.Buffer{}, Format("xml"), Document{}, Options{})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Write() error = %v, want ErrInvalidFormat", err)
	}
}

func TestMdEscape(t *testing.T) {
	t.Parallel()

	if got := mdEscape("a|b_c*"); got != `a\|b\_c\*` {
		t.Errorf("mdEscape() = %q", got)
	}
}
