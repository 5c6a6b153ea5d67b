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

	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/klog/v2"
)

// Stage names the last completed step of a pipeline invocation.
type Stage string

const (
	StageDecoded   Stage = "Decoded"
	StageDefaulted Stage = "Defaulted"
	StageConverted Stage = "Converted"
	StageValidated Stage = "Validated"
	StageEncoded   Stage = "Encoded"
)

// StorageVersionSelector picks the storage-facing external version for a kind
// family. The policy is supplied by the caller; the engine only executes it.
type StorageVersionSelector func(gk schema.GroupKind) (schema.GroupVersion, error)

// SoleVersionSelector returns a selector that picks the only registered
// external version of each kind family, and fails when the choice is
// ambiguous.
func SoleVersionSelector(r *Registry) StorageVersionSelector {
	return func(gk schema.GroupKind) (schema.GroupVersion, error) {
		versions := r.VersionsFor(gk)
		switch len(versions) {
		case 1:
			return versions[0], nil
		case 0:
			return schema.GroupVersion{}, &NoHubDefinedError{GroupKind: gk}
		default:
			return schema.GroupVersion{}, fmt.Errorf("kind family %s has %d external versions, storage version selection requires an explicit policy", gk, len(versions))
		}
	}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEncodeInvalid lets Run proceed to the encoding stage even when
// validation produced diagnostics. The default production path stops at
// Validated.
func WithEncodeInvalid() Option {
	return func(p *Pipeline) { p.encodeInvalid = true }
}

// WithDiagnosticsDedup collapses diagnostics that agree on field, type,
// value and detail. Duplicates are preserved by default.
func WithDiagnosticsDedup() Option {
	return func(p *Pipeline) { p.dedupDiagnostics = true }
}

// Pipeline sequences defaulting, hub conversion, validation and storage
// encoding over a shared read-only registry. A Pipeline holds no per-request
// state and may be used from any number of goroutines.
type Pipeline struct {
	registry         *Registry
	selectStorage    StorageVersionSelector
	encodeInvalid    bool
	dedupDiagnostics bool
}

// New builds a Pipeline over a sealed registry. The storage-version policy is
// a required collaborator; use SoleVersionSelector for single-version
// catalogs.
func New(registry *Registry, selector StorageVersionSelector, opts ...Option) *Pipeline {
	p := &Pipeline{registry: registry, selectStorage: selector}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry exposes the registry the pipeline was built over.
func (p *Pipeline) Registry() *Registry { return p.registry }

// Result is the value threaded through one pipeline invocation. Fields are
// populated as stages complete; Diagnostics accumulates and never blocks
// encoding by itself.
type Result struct {
	Identity       schema.GroupVersionKind
	Stage          Stage
	Object         interface{} // versioned document, post defaulting
	Hub            interface{}
	Storage        interface{} // storage-version document
	StorageVersion schema.GroupVersion
	Encoded        []byte
	Diagnostics    field.ErrorList
}

// Valid reports whether validation produced no diagnostics.
func (r *Result) Valid() bool { return len(r.Diagnostics) == 0 }

// envelope is the subset of the document used to cross-check the caller's
// claimed identity.
type envelope struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
}

// Decode parses doc into the versioned representation registered for gvk.
// A document that names a different apiVersion or kind than the claimed
// identity fails with a DecodeError; an absent envelope is stamped.
func (p *Pipeline) Decode(gvk schema.GroupVersionKind, doc []byte) (interface{}, error) {
	d, err := p.registry.Lookup(gvk)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return nil, &DecodeError{GVK: gvk, Err: err}
	}
	if env.APIVersion != "" && env.APIVersion != gvk.GroupVersion().String() {
		return nil, &DecodeError{GVK: gvk, Err: fmt.Errorf("document apiVersion %q does not match %q", env.APIVersion, gvk.GroupVersion().String())}
	}
	if env.Kind != "" && env.Kind != gvk.Kind {
		return nil, &DecodeError{GVK: gvk, Err: fmt.Errorf("document kind %q does not match %q", env.Kind, gvk.Kind)}
	}
	obj, err := d.decode(doc)
	if err != nil {
		return nil, &DecodeError{GVK: gvk, Err: err}
	}
	obj.(objectKind).GetObjectKind().SetGroupVersionKind(gvk)
	return obj, nil
}

// ApplyDefaults runs the registered defaulter over obj in place. Kinds
// without a defaulter are a no-op, not an error.
func (p *Pipeline) ApplyDefaults(gvk schema.GroupVersionKind, obj interface{}) error {
	d, err := p.registry.Lookup(gvk)
	if err != nil {
		return err
	}
	if d.defaults == nil {
		return nil
	}
	return d.defaults(obj)
}

// ToHub converts a versioned document into its kind family's hub
// representation.
func (p *Pipeline) ToHub(gvk schema.GroupVersionKind, obj interface{}) (interface{}, error) {
	d, err := p.registry.Lookup(gvk)
	if err != nil {
		return nil, err
	}
	return d.toHub(obj)
}

// FromHub converts a hub document into the external version named by gvk.
func (p *Pipeline) FromHub(gvk schema.GroupVersionKind, hub interface{}) (interface{}, error) {
	d, err := p.registry.Lookup(gvk)
	if err != nil {
		return nil, err
	}
	return d.fromHub(hub)
}

// Validate runs the registered validator over a hub document. Kinds without
// a validator report no diagnostics. The returned error is reserved for
// engine misuse (wrong hub type in ctx); rule violations are diagnostics,
// never errors.
func (p *Pipeline) Validate(gvk schema.GroupVersionKind, hub interface{}, ctx ValidationContext) (field.ErrorList, error) {
	d, err := p.registry.Lookup(gvk)
	if err != nil {
		return nil, err
	}
	if d.validate == nil {
		return nil, nil
	}
	allErrs, err := d.validate(hub, ctx)
	if err != nil {
		return nil, err
	}
	if p.dedupDiagnostics {
		allErrs = dedup(allErrs)
	}
	return allErrs, nil
}

// Encode serializes a versioned document, stamping its envelope with gvk.
func (p *Pipeline) Encode(gvk schema.GroupVersionKind, obj interface{}) ([]byte, error) {
	d, err := p.registry.Lookup(gvk)
	if err != nil {
		return nil, err
	}
	return d.encode(obj)
}

// Run executes the full sequence
// Decoded -> Defaulted -> Converted(Hub) -> Validated -> Encoded(Storage)
// for one document. Decode, registry and conversion failures abort the
// invocation and are returned alongside the partial result. Validation
// diagnostics are payload: a result with diagnostics and a nil error stopped
// at Validated unless the pipeline was built WithEncodeInvalid.
func (p *Pipeline) Run(gvk schema.GroupVersionKind, doc []byte) (*Result, error) {
	res := &Result{Identity: gvk}

	obj, err := p.Decode(gvk, doc)
	if err != nil {
		return res, err
	}
	res.Object = obj
	res.Stage = StageDecoded

	if err := p.ApplyDefaults(gvk, obj); err != nil {
		return res, err
	}
	res.Stage = StageDefaulted

	hub, err := p.ToHub(gvk, obj)
	if err != nil {
		return res, err
	}
	res.Hub = hub
	res.Stage = StageConverted
	klog.V(5).InfoS("converted to hub", "identity", FormatIdentity(gvk))

	diags, err := p.Validate(gvk, hub, ValidationContext{})
	if err != nil {
		return res, err
	}
	res.Diagnostics = diags
	res.Stage = StageValidated

	if len(diags) > 0 && !p.encodeInvalid {
		klog.V(4).InfoS("stopping at validation", "identity", FormatIdentity(gvk), "diagnostics", len(diags))
		return res, nil
	}

	storageGV, err := p.selectStorage(gvk.GroupKind())
	if err != nil {
		return res, err
	}
	if _, err := p.registry.HubFor(gvk.GroupKind()); err != nil {
		return res, err
	}
	storageGVK := storageGV.WithKind(gvk.Kind)
	stored, err := p.FromHub(storageGVK, hub)
	if err != nil {
		// Distinct from the inbound conversion failure: the hub accepted a
		// state the storage version cannot represent.
		return res, fmt.Errorf("encoding %s to storage version %s: %w", FormatIdentity(gvk), storageGV.String(), err)
	}
	encoded, err := p.Encode(storageGVK, stored)
	if err != nil {
		return res, err
	}
	res.Storage = stored
	res.StorageVersion = storageGV
	res.Encoded = encoded
	res.Stage = StageEncoded
	return res, nil
}

func dedup(list field.ErrorList) field.ErrorList {
	seen := make(map[string]struct{}, len(list))
	out := make(field.ErrorList, 0, len(list))
	for _, err := range list {
		key := fmt.Sprintf("%s\x00%s\x00%v\x00%s", err.Field, err.Type, err.BadValue, err.Detail)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, err)
	}
	return out
}
