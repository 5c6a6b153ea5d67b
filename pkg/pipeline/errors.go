/*
Copyright 2024 The Taibai Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pipeline

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ErrRegistryFrozen is returned by registration attempts after the builder
// has been sealed. Hitting it indicates a wiring defect, not a user error.
var ErrRegistryFrozen = errors.New("registry is sealed")

// DuplicateRegistrationError is returned when an identity or a hub is
// registered twice.
type DuplicateRegistrationError struct {
	GVK schema.GroupVersionKind
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("duplicate registration for %s", FormatIdentity(e.GVK))
}

// UnknownResourceError is returned by lookups of an identity that was never
// registered.
type UnknownResourceError struct {
	GVK schema.GroupVersionKind
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("no resource registered for %s", FormatIdentity(e.GVK))
}

// NoHubDefinedError is returned when no hub representation exists for a kind
// family.
type NoHubDefinedError struct {
	GroupKind schema.GroupKind
}

func (e *NoHubDefinedError) Error() string {
	return fmt.Sprintf("no hub defined for kind family %s", e.GroupKind)
}

// DecodeError reports a malformed input envelope. It is fatal for the
// invocation that produced it and is never retried.
type DecodeError struct {
	GVK schema.GroupVersionKind
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", FormatIdentity(e.GVK), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ConversionError reports a value that cannot be represented in the target
// schema. It is recoverable from the engine's point of view: it aborts the
// current invocation and is surfaced whole to the caller.
type ConversionError struct {
	Path   *field.Path
	Value  interface{}
	Reason string
}

// NewConversionError constructs a ConversionError for the given field path.
func NewConversionError(path *field.Path, value interface{}, reason string) *ConversionError {
	return &ConversionError{Path: path, Value: value, Reason: reason}
}

func (e *ConversionError) Error() string {
	if e.Path == nil {
		return fmt.Sprintf("cannot convert value %v: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("cannot convert %s: value %v: %s", e.Path.String(), e.Value, e.Reason)
}

// IsConversionError reports whether err carries a *ConversionError.
func IsConversionError(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce)
}
