// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// AppPackageParam is the web.xml context parameter naming the application
// root package.
const AppPackageParam = "tapestry.app-package"

// ErrNoAppPackage is returned when no web.xml declares the app package.
var ErrNoAppPackage = errors.New("no " + AppPackageParam + " context parameter")

// conventional web roots, tried before a full glob of the project.
var webRoots = []string{"src/main/webapp", "WebContent", "web", "WebRoot"}

type (
	webApp struct {
		XMLName xml.Name       `xml:"web-app"`
		Params  []contextParam `xml:"context-param"`
	}

	contextParam struct {
		Name  string `xml:"param-name"`
		Value string `xml:"param-value"`
	}
)

func findAppPackage(dir string) (string, error) {
	var candidates []string
	for _, root := range webRoots {
		candidates = append(candidates, filepath.Join(dir, root, "WEB-INF", "web.xml"))
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "**/WEB-INF/web.xml", doublestar.WithFilesOnly())
	if err == nil {
		for _, m := range matches {
			candidates = append(candidates, filepath.Join(dir, filepath.FromSlash(m)))
		}
	}

	for _, path := range candidates {
		pkg, err := readAppPackage(path)
		if err == nil {
			return pkg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, ErrNoAppPackage) {
			return "", err
		}
	}
	return "", ErrNoAppPackage
}

func readAppPackage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var app webApp
	if err := xml.Unmarshal(data, &app); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	for _, p := range app.Params {
		if strings.TrimSpace(p.Name) == AppPackageParam {
			if v := strings.TrimSpace(p.Value); v != "" {
				return v, nil
			}
		}
	}
	return "", ErrNoAppPackage
}
