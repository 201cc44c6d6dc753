// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	NotARepositoryId Id = iota + 1
	ModuleNotFoundId
	ModuleUndefinedId
	MissingDependencyId
	NativeModuleExcludedId
	ManifestLoadFailedId
	DependencyCycleId
	IgnoreFileNotFoundId
	ConfigLoadFailedId
	PermissionDeniedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalog entry explaining a failure and how to recover.
	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink  // documentation about the issue
		extLinks []HttpLink  // external links that might be useful for the user
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

// Render renders the issue with the glamour style at stylePath ("dark",
// "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	notARepositoryIssue = &Issue{
		id: NotARepositoryId,
		mdMsg: `
# Not inside a git repository!

Whitelists drive git's sparse checkout, so odooup must run inside the
work tree that holds your module namespaces.

## Things you can try:
- Change to the repository root and retry:
~~~
$ cd /path/to/your/project
$ odooup whitelist <module>
~~~
- Point odooup at the repository with ` + "`--root`" + `.`,
		extLinks: []HttpLink{"https://git-scm.com/docs/git-sparse-checkout"},
	}

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found!

No manifest defines the requested module and no other module depends on it.

## Things you can try:
- Check the spelling: the module name is the name of its directory
- Make sure the namespace holding the module is checked out
- odooup does not read ` + "`__manifest__.py`" + `: convert the module's manifest to
  ` + "`__manifest__.cue`" + ` or ` + "`__manifest__.toml`" + ` next to it
- Run ` + "`odooup check`" + ` to list what odooup can see`,
	}

	moduleUndefinedIssue = &Issue{
		id: ModuleUndefinedId,
		mdMsg: `
# Module is only known as a dependency!

Some manifest depends on this module, but no manifest defines it.

## Things you can try:
- Add the repository that provides the module under its namespace
- If the module was renamed, update the manifests that depend on it`,
	}

	missingDependencyIssue = &Issue{
		id: MissingDependencyId,
		mdMsg: `
# Missing dependencies!

The module requires modules that no manifest defines. Nothing was written:
whitelisting an incomplete closure would produce a broken checkout.

## Things you can try:
- Add the repositories that provide the listed modules
- Check the ` + "`depends`" + ` list of the manifests involved
- Run ` + "`odooup check`" + ` to see every undefined dependency`,
	}

	nativeModuleExcludedIssue = &Issue{
		id: NativeModuleExcludedId,
		mdMsg: `
# Native modules are excluded!

The module belongs to the native namespace, which is skipped while
` + "`--skip-native`" + ` is in effect.

## Things you can try:
- Run again with ` + "`--skip-native=false`" + `
- Set ` + "`skip_native: false`" + ` in your configuration`,
	}

	manifestLoadFailedIssue = &Issue{
		id: ManifestLoadFailedId,
		mdMsg: `
# Failed to load module manifests!

## Things you can try:
- Check that every ` + "`__manifest__.cue`" + ` is valid CUE
- Check that every ` + "`__manifest__.toml`" + ` is valid TOML
- ` + "`manifest_names`" + ` may only list .cue and .toml names; ` + "`__manifest__.py`" + ` is never evaluated
- Run with ` + "`--verbose`" + ` to see which manifests were skipped`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

Modules depend on each other in a loop, so no closure can be computed.

## Things you can try:
- Follow the modules listed in the error and break the loop in their ` + "`depends`" + ` lists`,
	}

	ignoreFileNotFoundIssue = &Issue{
		id: IgnoreFileNotFoundId,
		mdMsg: `
# Ignore file not found!

odooup regenerates the part of the ignore file after the marker line, but
never creates the file itself.

## Things you can try:
- Create the file with the marker line:
~~~
$ echo "# Autogenerated file content from here ... DO NOT MODIFY" > .dockerignore
~~~
- Point ` + "`ignore_file`" + ` in your configuration at the right file`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the syntax of your config file
- Print the effective configuration:
~~~
$ odooup config show
~~~
- Reset it to defaults:
~~~
$ odooup config init --force
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

odooup could not write a whitelist, the ignore file or the git configuration.

## Things you can try:
- Check the ownership of the repository and of its ` + "`.git`" + ` directory
- Avoid running odooup as a different user than the one owning the checkout`,
	}

	issues = map[Id]*Issue{
		notARepositoryIssue.Id():       notARepositoryIssue,
		moduleNotFoundIssue.Id():       moduleNotFoundIssue,
		moduleUndefinedIssue.Id():      moduleUndefinedIssue,
		missingDependencyIssue.Id():    missingDependencyIssue,
		nativeModuleExcludedIssue.Id(): nativeModuleExcludedIssue,
		manifestLoadFailedIssue.Id():   manifestLoadFailedIssue,
		dependencyCycleIssue.Id():      dependencyCycleIssue,
		ignoreFileNotFoundIssue.Id():   ignoreFileNotFoundIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
	}
)

// Values returns every catalog entry, ordered by Id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
