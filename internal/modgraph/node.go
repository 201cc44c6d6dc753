// SPDX-License-Identifier: MPL-2.0

package modgraph

type (
	// Node is a module graph node: either *Known (backed by a manifest) or
	// Unknown (referenced by a dependency edge but defined nowhere).
	Node interface {
		// ID returns the globally unique module identifier.
		ID() string
		isNode()
	}

	// Known is a module defined by a manifest found on disk.
	Known struct {
		// Name is the module identifier (the manifest's directory name).
		Name string
		// Namespace is the slash-separated directory, relative to the
		// repository root, that contains the module directory.
		Namespace string
		// Depends lists the declared dependencies in manifest order.
		Depends []string
		// AutoInstall marks modules that are whitelisted automatically once
		// every dependency is whitelisted.
		AutoInstall bool
		// ManifestPath is the manifest file the module was read from.
		ManifestPath string
	}

	// Unknown is a module referenced by some dependency but never defined.
	Unknown struct {
		Name string
	}
)

// ID implements Node.
func (k *Known) ID() string { return k.Name }

func (*Known) isNode() {}

// ID implements Node.
func (u Unknown) ID() string { return u.Name }

func (Unknown) isNode() {}
