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
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ValidationContext carries the update-time inputs of a validation run. The
// zero value describes a create.
type ValidationContext struct {
	// IsUpdate is true when the document replaces an existing object.
	IsUpdate bool
	// Old is the hub representation of the existing object. It must be set
	// when IsUpdate is true for kinds that register update validation.
	Old interface{}
}

// objectKind is satisfied by any type embedding metav1.TypeMeta.
type objectKind interface {
	GetObjectKind() schema.ObjectKind
}

// Descriptor binds one externally-versioned identity to its registered
// behaviors. Descriptors are created during registry construction and are
// read-only afterwards.
type Descriptor struct {
	gvk schema.GroupVersionKind
	hub schema.GroupVersion

	decode   func(data []byte) (interface{}, error)
	encode   func(obj interface{}) ([]byte, error)
	newHub   func() interface{}
	defaults func(obj interface{}) error
	toHub    func(obj interface{}) (interface{}, error)
	fromHub  func(hub interface{}) (interface{}, error)
	validate func(hub interface{}, ctx ValidationContext) (field.ErrorList, error)
}

// GroupVersionKind returns the identity this descriptor is registered under.
func (d *Descriptor) GroupVersionKind() schema.GroupVersionKind { return d.gvk }

// Hub returns the hub identity of this descriptor's kind family.
func (d *Descriptor) Hub() schema.GroupVersion { return d.hub }

// HasDefaulter reports whether a defaulting function was registered.
func (d *Descriptor) HasDefaulter() bool { return d.defaults != nil }

// HasValidator reports whether a validation function was registered.
func (d *Descriptor) HasValidator() bool { return d.validate != nil }

// KindFuncs holds the per-kind behaviors registered for one external version
// V of a kind family with hub representation H. Every field is optional:
// a nil Defaults makes the defaulting stage a no-op, nil ToHub/FromHub leave
// conversion purely structural, and nil validators mark the kind as
// validating nowhere (or only on create, respectively).
type KindFuncs[V any, H any] struct {
	// Defaults mutates the versioned document in place. It must be
	// idempotent and must depend only on the document's own fields.
	Defaults func(*V)

	// ToHub runs after the structural copy from *V into *H and is the only
	// place allowed to perform non-trivial transformation on the way in.
	ToHub func(*V, *H) error

	// FromHub runs after the structural copy from *H into *V on the way out.
	FromHub func(*H, *V) error

	// Validate checks the hub representation and reports every violation.
	Validate func(*H) field.ErrorList

	// ValidateUpdate additionally checks an update against the old hub
	// representation, e.g. for immutable fields.
	ValidateUpdate func(obj, old *H) field.ErrorList
}

// Builder accumulates registrations and produces an immutable Registry. It is
// not safe for concurrent use; sealing must happen before the registry is
// shared.
type Builder struct {
	sealed      bool
	hubs        map[schema.GroupKind]schema.GroupVersion
	descriptors map[schema.GroupVersionKind]*Descriptor
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		hubs:        map[schema.GroupKind]schema.GroupVersion{},
		descriptors: map[schema.GroupVersionKind]*Descriptor{},
	}
}

// RegisterHub declares the hub representation of a kind family. Registering a
// kind implies its hub, so calling this is only required for families that
// validate exclusively in hub form and register no external version.
func (b *Builder) RegisterHub(gk schema.GroupKind) error {
	if b.sealed {
		return ErrRegistryFrozen
	}
	if _, ok := b.hubs[gk]; ok {
		return &DuplicateRegistrationError{GVK: gk.WithVersion(runtime.APIVersionInternal)}
	}
	b.hubs[gk] = schema.GroupVersion{Group: gk.Group, Version: runtime.APIVersionInternal}
	return nil
}

func (b *Builder) ensureHub(gk schema.GroupKind) {
	if _, ok := b.hubs[gk]; !ok {
		b.hubs[gk] = schema.GroupVersion{Group: gk.Group, Version: runtime.APIVersionInternal}
	}
}

func (b *Builder) add(d *Descriptor) error {
	if b.sealed {
		return ErrRegistryFrozen
	}
	if _, ok := b.descriptors[d.gvk]; ok {
		return &DuplicateRegistrationError{GVK: d.gvk}
	}
	b.descriptors[d.gvk] = d
	return nil
}

// Seal freezes the builder and publishes the registry. Registration attempts
// after sealing fail with ErrRegistryFrozen. Seal may be called once.
func (b *Builder) Seal() (*Registry, error) {
	if b.sealed {
		return nil, ErrRegistryFrozen
	}
	b.sealed = true
	return &Registry{hubs: b.hubs, descriptors: b.descriptors}, nil
}

// RegisterKind registers the external version gvk of a kind family, wiring
// its defaulter, its hub converter pair and its validator into the builder.
// The versioned type V must embed metav1.TypeMeta so the engine can stamp and
// verify the document envelope.
func RegisterKind[V any, H any](b *Builder, gvk schema.GroupVersionKind, fns KindFuncs[V, H]) error {
	if gvk.Version == runtime.APIVersionInternal {
		return fmt.Errorf("register %s: the hub version cannot be registered as an external version", FormatIdentity(gvk))
	}
	if _, ok := interface{}(new(V)).(objectKind); !ok {
		return fmt.Errorf("register %s: %T must embed metav1.TypeMeta", FormatIdentity(gvk), new(V))
	}

	d := &Descriptor{
		gvk: gvk,
		hub: schema.GroupVersion{Group: gvk.Group, Version: runtime.APIVersionInternal},

		decode: func(data []byte) (interface{}, error) {
			obj := new(V)
			if err := json.Unmarshal(data, obj); err != nil {
				return nil, err
			}
			return obj, nil
		},

		encode: func(obj interface{}) ([]byte, error) {
			v, ok := obj.(*V)
			if !ok {
				return nil, fmt.Errorf("encode %s: expected %T, got %T", FormatIdentity(gvk), new(V), obj)
			}
			interface{}(v).(objectKind).GetObjectKind().SetGroupVersionKind(gvk)
			return json.Marshal(v)
		},

		newHub: func() interface{} { return new(H) },

		toHub: func(obj interface{}) (interface{}, error) {
			v, ok := obj.(*V)
			if !ok {
				return nil, fmt.Errorf("convert %s: expected %T, got %T", FormatIdentity(gvk), new(V), obj)
			}
			hub := new(H)
			if err := convertStructural(v, hub); err != nil {
				return nil, err
			}
			if fns.ToHub != nil {
				if err := fns.ToHub(v, hub); err != nil {
					return nil, err
				}
			}
			return hub, nil
		},

		fromHub: func(hub interface{}) (interface{}, error) {
			h, ok := hub.(*H)
			if !ok {
				return nil, fmt.Errorf("convert %s: expected hub %T, got %T", FormatIdentity(gvk), new(H), hub)
			}
			v := new(V)
			if err := convertStructural(h, v); err != nil {
				return nil, err
			}
			if fns.FromHub != nil {
				if err := fns.FromHub(h, v); err != nil {
					return nil, err
				}
			}
			return v, nil
		},
	}

	if fns.Defaults != nil {
		defaults := fns.Defaults
		d.defaults = func(obj interface{}) error {
			v, ok := obj.(*V)
			if !ok {
				return fmt.Errorf("default %s: expected %T, got %T", FormatIdentity(gvk), new(V), obj)
			}
			defaults(v)
			return nil
		}
	}

	if fns.Validate != nil || fns.ValidateUpdate != nil {
		validate, validateUpdate := fns.Validate, fns.ValidateUpdate
		d.validate = func(hub interface{}, ctx ValidationContext) (field.ErrorList, error) {
			h, ok := hub.(*H)
			if !ok {
				return nil, fmt.Errorf("validate %s: expected hub %T, got %T", FormatIdentity(gvk), new(H), hub)
			}
			var allErrs field.ErrorList
			if validate != nil {
				allErrs = append(allErrs, validate(h)...)
			}
			if ctx.IsUpdate && validateUpdate != nil {
				old, ok := ctx.Old.(*H)
				if !ok {
					return nil, fmt.Errorf("validate %s: update context carries %T, expected hub %T", FormatIdentity(gvk), ctx.Old, new(H))
				}
				allErrs = append(allErrs, validateUpdate(h, old)...)
			}
			return allErrs, nil
		}
	}

	b.ensureHub(gvk.GroupKind())
	return b.add(d)
}

// Registry resolves resource identities to their registered behaviors. It is
// immutable and safe for concurrent use.
type Registry struct {
	hubs        map[schema.GroupKind]schema.GroupVersion
	descriptors map[schema.GroupVersionKind]*Descriptor
}

// Lookup returns the descriptor registered for gvk.
func (r *Registry) Lookup(gvk schema.GroupVersionKind) (*Descriptor, error) {
	d, ok := r.descriptors[gvk]
	if !ok {
		return nil, &UnknownResourceError{GVK: gvk}
	}
	return d, nil
}

// HubFor returns the hub identity of a kind family.
func (r *Registry) HubFor(gk schema.GroupKind) (schema.GroupVersion, error) {
	hub, ok := r.hubs[gk]
	if !ok {
		return schema.GroupVersion{}, &NoHubDefinedError{GroupKind: gk}
	}
	return hub, nil
}

// Identities returns every registered external identity, sorted by its
// serialized key.
func (r *Registry) Identities() []schema.GroupVersionKind {
	out := make([]schema.GroupVersionKind, 0, len(r.descriptors))
	for gvk := range r.descriptors {
		out = append(out, gvk)
	}
	sort.Slice(out, func(i, j int) bool {
		return FormatIdentity(out[i]) < FormatIdentity(out[j])
	})
	return out
}

// VersionsFor returns the external versions registered for a kind family,
// sorted by version string.
func (r *Registry) VersionsFor(gk schema.GroupKind) []schema.GroupVersion {
	var out []schema.GroupVersion
	for gvk := range r.descriptors {
		if gvk.GroupKind() == gk {
			out = append(out, gvk.GroupVersion())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// Install aggregates registration errors from a set of install functions,
// mirroring how resource-kind packages contribute to one explicit builder.
func Install(b *Builder, fns ...func(*Builder) error) error {
	var err error
	for _, fn := range fns {
		err = multierr.Append(err, fn(b))
	}
	return err
}
