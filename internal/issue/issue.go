// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

const (
	WorkspaceNotFoundId Id = iota + 1
	ProjectNotFoundId
	ConfigLoadFailedId
	RegistryInvalidId
	JavaNotFoundId
	ContainerEngineNotFoundId
	ScanFailedId
	ScanCancelledId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue with a glamour style ("auto", "dark", "light",
// "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	workspaceNotFoundIssue = &Issue{
		id: WorkspaceNotFoundId,
		mdMsg: `
# No projects found in the workspace!

tapfind looks for projects in the workspace directory itself and in its
immediate subdirectories.

## A directory is a project when it holds one of:
1. ` + "`tapfind.toml`" + ` (the tapfind project descriptor)
2. ` + "`.classpath`" + ` (Eclipse JDT classpath)
3. ` + "`.project`" + ` (Eclipse project description)

## Things you can try:
- Point tapfind at the right directory:
~~~
$ tapfind scan --workspace ~/code/shop
~~~

- Describe the project with a descriptor:
~~~toml
name = "shop"
app_package = "com.example.shop"
output = "target/classes"
libs = ["target/dependency/*.jar"]

[[sources]]
path = "src/main/java"
~~~`,
	}

	projectNotFoundIssue = &Issue{
		id: ProjectNotFoundId,
		mdMsg: `
# Project not found!

The workspace does not contain a project with that name. Project names come
from the descriptor's ` + "`name`" + `, the ` + "`.project`" + ` file, or the directory name.

## Things you can try:
- List the classpath of the workspace projects:
~~~
$ tapfind scan --workspace . --format json
~~~
- Omit ` + "`--project`" + ` when the workspace has a single project`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file is not valid CUE or does not match the schema.

## Things you can try:
- Print the defaults and compare:
~~~
$ tapfind config show
~~~
- Check durations such as ` + "`jvm.timeout`" + ` use Go syntax (` + "`30s`" + `, ` + "`1m`" + `)
- Check ` + "`jvm.engine`" + ` is one of native, docker or podman`,
	}

	registryInvalidIssue = &Issue{
		id: RegistryInvalidId,
		mdMsg: `
# Invalid registry file!

Registry files declare the prefix and root package of libraries whose
module cannot be executed.

## Example registry file:
~~~cue
entries: [
  {
    app_module: "org.got5.tapestry5.jquery.services.JQueryModule"
    prefix:     "jquery"
    package:    "org.got5.tapestry5.jquery"
  },
]
~~~

## Things you can try:
- Validate the file:
~~~
$ tapfind registry check my-registry.cue
~~~`,
	}

	javaNotFoundIssue = &Issue{
		id: JavaNotFoundId,
		mdMsg: `
# Java not found!

Library modules are executed on a JVM to learn the prefix they contribute.
No ` + "`java`" + ` executable was found via ` + "`jvm.java`" + `, ` + "`JAVA_HOME`" + ` or ` + "`PATH`" + `.

## Things you can try:
- Install a JDK 11 or later and set ` + "`JAVA_HOME`" + `
- Run the probe in a container instead:
~~~
$ tapfind scan --engine docker
~~~
- Disable the invocation tier and rely on the registry:
~~~
$ tapfind scan --no-jvm
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

` + "`jvm.engine`" + ` selects docker or podman but the executable is not on ` + "`PATH`" + `.

## Things you can try:
- Install Docker or Podman
- Switch to a local JVM with ` + "`--engine native`" + ``,
	}

	scanFailedIssue = &Issue{
		id: ScanFailedId,
		mdMsg: `
# Scan failed!

The classpath of the project could not be enumerated, so no feature was
discovered.

## Things you can try:
- Check that every project listed as a dependency exists in the workspace
- Check the ` + "`.classpath`" + ` or ` + "`tapfind.toml`" + ` of the project for typos
- Re-run with ` + "`--verbose`" + ` to see each classpath root`,
	}

	scanCancelledIssue = &Issue{
		id: ScanCancelledId,
		mdMsg: `
# Scan cancelled!

The scan was interrupted between two classpath roots. Features found before
the interruption are still reported.`,
	}

	issues = map[Id]*Issue{
		workspaceNotFoundIssue.Id():       workspaceNotFoundIssue,
		projectNotFoundIssue.Id():         projectNotFoundIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		registryInvalidIssue.Id():         registryInvalidIssue,
		javaNotFoundIssue.Id():            javaNotFoundIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		scanFailedIssue.Id():              scanFailedIssue,
		scanCancelledIssue.Id():           scanCancelledIssue,
	}
)

func Values() []*Issue {
	return slices.Collect(maps.Values(issues))
}

func Get(id Id) *Issue {
	return issues[id]
}
