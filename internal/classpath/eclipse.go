// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

type (
	eclipseProject struct {
		XMLName xml.Name `xml:"projectDescription"`
		Name    string   `xml:"name"`
	}

	eclipseClasspath struct {
		XMLName xml.Name              `xml:"classpath"`
		Entries []eclipseClasspathRow `xml:"classpathentry"`
	}

	eclipseClasspathRow struct {
		Kind     string `xml:"kind,attr"`
		Path     string `xml:"path,attr"`
		Output   string `xml:"output,attr"`
		Exported bool   `xml:"exported,attr"`
	}
)

func readEclipseProjectName(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var desc eclipseProject
	if err := xml.Unmarshal(data, &desc); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	return strings.TrimSpace(desc.Name), nil
}

// readEclipseClasspath parses a .classpath file. Output attributes are
// converted to workspace paths of the given project.
func readEclipseClasspath(path, project string) (*classpathFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw eclipseClasspath
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cf := &classpathFile{output: workspacePath(project, defaultOutput)}
	for _, row := range raw.Entries {
		switch row.Kind {
		case "src":
			if strings.HasPrefix(row.Path, "/") {
				cf.entries = append(cf.entries, Entry{Kind: EntryProject, Path: row.Path, Exported: row.Exported})
				continue
			}
			e := Entry{Kind: EntrySource, Path: row.Path, Exported: row.Exported}
			if row.Output != "" {
				e.Output = workspacePath(project, row.Output)
			}
			cf.entries = append(cf.entries, e)
		case "lib":
			cf.entries = append(cf.entries, Entry{Kind: EntryLibrary, Path: row.Path, Exported: row.Exported})
		case "output":
			cf.output = workspacePath(project, row.Path)
			cf.entries = append(cf.entries, Entry{Kind: EntryOutput, Path: row.Path})
		case "con", "var":
			cf.entries = append(cf.entries, Entry{Kind: EntryContainer, Path: row.Path})
		default:
			return nil, fmt.Errorf("parse %s: unsupported classpath entry kind %q", path, row.Kind)
		}
	}
	return cf, nil
}
