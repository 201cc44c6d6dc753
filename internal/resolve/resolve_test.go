// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/odooup/odooup/internal/modgraph"
)

const (
	nsNative = "vendor/odoo/addons"
	nsOCA    = "vendor/oca/sale"
	nsCustom = "custom"
)

func buildGraph(t *testing.T, mods ...modgraph.Known) *modgraph.Graph {
	t.Helper()
	b := modgraph.NewBuilder()
	for _, m := range mods {
		b.Add(m)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func sampleGraph(t *testing.T) *modgraph.Graph {
	t.Helper()
	return buildGraph(t,
		modgraph.Known{Name: "base", Namespace: nsNative},
		modgraph.Known{Name: "sale", Namespace: nsNative, Depends: []string{"base"}},
		modgraph.Known{Name: "sale_margin_extra", Namespace: nsOCA, Depends: []string{"sale"}},
		modgraph.Known{Name: "sale_tier", Namespace: nsOCA, Depends: []string{"sale"}},
		modgraph.Known{Name: "my_sale", Namespace: nsCustom, Depends: []string{"sale_margin_extra", "base"}},
		modgraph.Known{Name: "broken", Namespace: nsCustom, Depends: []string{"ghost", "my_sale", "phantom"}},
	)
}

func TestResolve_Closure(t *testing.T) {
	t.Parallel()

	res, err := Resolve(sampleGraph(t), "my_sale", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := []string{"base", "sale", "sale_margin_extra"}; !slices.Equal(res.Closure, want) {
		t.Errorf("Closure = %v, want %v", res.Closure, want)
	}
	if res.Err() != nil {
		t.Errorf("Err() = %v, want nil", res.Err())
	}

	want := map[string][]string{
		nsNative: {"base", "sale"},
		nsOCA:    {"sale_margin_extra"},
		nsCustom: {"my_sale"},
	}
	if got := res.Namespaces(); !slices.Equal(got, []string{nsCustom, nsOCA, nsNative}) {
		t.Errorf("Namespaces() = %v", got)
	}
	for ns, mods := range want {
		if got := res.PerNamespace[ns].Sorted(); !slices.Equal(got, mods) {
			t.Errorf("PerNamespace[%s] = %v, want %v", ns, got, mods)
		}
	}
	// sale_tier is a sibling, never a requirement.
	if res.PerNamespace[nsOCA].Has("sale_tier") {
		t.Error("sale_tier must not be part of the closure")
	}
}

func TestResolve_ExcludePrefix(t *testing.T) {
	t.Parallel()

	g := sampleGraph(t)
	res, err := Resolve(g, "my_sale", Options{ExcludePrefix: "vendor/odoo"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := res.PerNamespace[nsNative]; ok {
		t.Errorf("excluded namespace present: %v", res.PerNamespace[nsNative])
	}
	if want := []string{"base", "sale", "sale_margin_extra"}; !slices.Equal(res.Closure, want) {
		t.Errorf("Closure = %v, want %v", res.Closure, want)
	}

	_, err = Resolve(g, "sale", Options{ExcludePrefix: "vendor/odoo"})
	var nativeErr *NativeModuleExcludedError
	if !errors.As(err, &nativeErr) || !errors.Is(err, ErrNativeModuleExcluded) {
		t.Fatalf("expected NativeModuleExcludedError, got %v", err)
	}
	if nativeErr.Namespace != nsNative {
		t.Errorf("Namespace = %q", nativeErr.Namespace)
	}
}

func TestResolve_TargetErrors(t *testing.T) {
	t.Parallel()

	g := sampleGraph(t)

	_, err := Resolve(g, "nope", Options{})
	var unknownErr *UnknownTargetError
	if !errors.As(err, &unknownErr) || !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("expected UnknownTargetError, got %v", err)
	}

	_, err = Resolve(g, "ghost", Options{})
	var undefinedErr *UndefinedTargetError
	if !errors.As(err, &undefinedErr) || !errors.Is(err, ErrUndefinedTarget) {
		t.Errorf("expected UndefinedTargetError, got %v", err)
	}
}

func TestResolve_MissingCollected(t *testing.T) {
	t.Parallel()

	res, err := Resolve(sampleGraph(t), "broken", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := []string{"ghost", "phantom"}; !slices.Equal(res.Missing, want) {
		t.Errorf("Missing = %v, want %v", res.Missing, want)
	}

	var missingErr *MissingDependencyError
	if err := res.Err(); !errors.As(err, &missingErr) || !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("Err() = %v, want MissingDependencyError", err)
	}
	if !slices.Equal(missingErr.Missing, res.Missing) {
		t.Errorf("error Missing = %v", missingErr.Missing)
	}
}

func TestResolve_LongestPath(t *testing.T) {
	t.Parallel()

	chain := func(n int) *modgraph.Graph {
		mods := []modgraph.Known{{Name: "m0", Namespace: nsCustom}}
		for i := 1; i <= n; i++ {
			mods = append(mods, modgraph.Known{
				Name:      fmt.Sprintf("m%d", i),
				Namespace: nsCustom,
				Depends:   []string{fmt.Sprintf("m%d", i-1)},
			})
		}
		return buildGraph(t, mods...)
	}

	// Six modules below the target form five edges: at the threshold, no warning.
	res, err := Resolve(chain(6), "m6", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.LongestPath != nil {
		t.Errorf("LongestPath = %v, want nil", res.LongestPath)
	}

	res, err = Resolve(chain(7), "m7", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := []string{"m0", "m1", "m2", "m3", "m4", "m5", "m6"}; !slices.Equal(res.LongestPath, want) {
		t.Errorf("LongestPath = %v, want %v", res.LongestPath, want)
	}

	res, err = Resolve(chain(7), "m7", Options{ChainThreshold: 10})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.LongestPath != nil {
		t.Errorf("LongestPath with threshold 10 = %v, want nil", res.LongestPath)
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		namespace string
		prefix    string
		mode      MatchMode
		want      bool
	}{
		{"vendor/odoo/addons", "vendor/odoo", MatchSegment, true},
		{"vendor/odoo", "vendor/odoo", MatchSegment, true},
		{"vendor/odoo", "vendor/odoo/", MatchSegment, true},
		{"vendor/odoo_ext/addons", "vendor/odoo", MatchSegment, false},
		{"custom/vendor/odoo", "vendor/odoo", MatchSegment, false},
		{"vendor/odoo_ext/addons", "vendor/odoo", MatchSubstring, true},
		{"custom/vendor/odoo", "vendor/odoo", MatchSubstring, true},
		{"vendor/oca", "vendor/odoo", MatchSubstring, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s_%s", tt.mode, tt.namespace, tt.prefix), func(t *testing.T) {
			t.Parallel()
			if got := Matches(tt.namespace, tt.prefix, tt.mode); got != tt.want {
				t.Errorf("Matches(%q, %q, %s) = %v, want %v", tt.namespace, tt.prefix, tt.mode, got, tt.want)
			}
		})
	}
}
