// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTarget is returned when the target is not a graph node.
	ErrUnknownTarget = errors.New("unknown target module")
	// ErrUndefinedTarget is returned when the target is referenced but has no manifest.
	ErrUndefinedTarget = errors.New("undefined target module")
	// ErrNativeModuleExcluded is returned when the target belongs to the excluded namespace prefix.
	ErrNativeModuleExcluded = errors.New("target module is a native module")
	// ErrMissingDependency is returned when the closure references undefined modules.
	ErrMissingDependency = errors.New("missing dependency")
)

type (
	// UnknownTargetError reports a target that no manifest defines or references.
	UnknownTargetError struct {
		Target string
	}

	// UndefinedTargetError reports a target only known as someone's dependency.
	UndefinedTargetError struct {
		Target string
	}

	// NativeModuleExcludedError reports a target inside the excluded namespace.
	NativeModuleExcludedError struct {
		Target    string
		Namespace string
		Prefix    string
	}

	// MissingDependencyError lists every undefined module of a target's closure.
	MissingDependencyError struct {
		Target  string
		Missing []string
	}
)

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("module %q not found", e.Target)
}

func (e *UnknownTargetError) Unwrap() error { return ErrUnknownTarget }

func (e *UndefinedTargetError) Error() string {
	return fmt.Sprintf("module %q is referenced as a dependency but defined nowhere", e.Target)
}

func (e *UndefinedTargetError) Unwrap() error { return ErrUndefinedTarget }

func (e *NativeModuleExcludedError) Error() string {
	return fmt.Sprintf("module %q lives in %s, which matches the excluded prefix %q", e.Target, e.Namespace, e.Prefix)
}

func (e *NativeModuleExcludedError) Unwrap() error { return ErrNativeModuleExcluded }

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("module %q requires modules defined nowhere: %s", e.Target, strings.Join(e.Missing, ", "))
}

func (e *MissingDependencyError) Unwrap() error { return ErrMissingDependency }
