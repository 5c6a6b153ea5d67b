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

// Package harness exposes the object pipeline over serialized documents.
// Callers address kinds by their "{group}/{version}/{kind}" identity and
// exchange JSON or YAML; every result is shaped for direct JSON output.
package harness

import (
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"

	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation/field"

	appsinstall "github.com/zhongpeinan/taibai-api/pkg/apis/apps/install"
	batchinstall "github.com/zhongpeinan/taibai-api/pkg/apis/batch/install"
	coreinstall "github.com/zhongpeinan/taibai-api/pkg/apis/core/install"
	"github.com/zhongpeinan/taibai-api/pkg/pipeline"
)

// FieldError is the wire form of one diagnostic.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// fieldErrors converts an ErrorList into wire form. Message carries the
// detail without the leading field path, which already sits in Field.
func fieldErrors(list field.ErrorList) []FieldError {
	if len(list) == 0 {
		return nil
	}
	out := make([]FieldError, 0, len(list))
	for _, err := range list {
		out = append(out, FieldError{
			Field:   err.Field,
			Message: err.ErrorBody(),
			Type:    string(err.Type),
		})
	}
	return out
}

// DefaultResult reports a defaulting run over one document.
type DefaultResult struct {
	GVK             string          `json:"gvk"`
	Result          json.RawMessage `json:"result"`
	DefaultsApplied bool            `json:"defaultsApplied"`
}

// ConversionResult reports a round trip through the hub representation.
// Success is false when the hub document could not be expressed in the
// external version again; Original and Hub are still populated in that case.
type ConversionResult struct {
	GVK       string          `json:"gvk"`
	Original  json.RawMessage `json:"original"`
	Hub       json.RawMessage `json:"hub"`
	Roundtrip json.RawMessage `json:"roundtrip,omitempty"`
	Success   bool            `json:"success"`
}

// ValidationResult reports a validation run over one document.
type ValidationResult struct {
	GVK    string       `json:"gvk"`
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// PipelineResult reports a full pipeline invocation. Stage names the last
// completed step; Success means the document reached storage encoding.
type PipelineResult struct {
	GVK            string          `json:"gvk"`
	Stage          string          `json:"stage"`
	Defaulted      json.RawMessage `json:"defaulted,omitempty"`
	Hub            json.RawMessage `json:"hub,omitempty"`
	Valid          bool            `json:"valid"`
	Errors         []FieldError    `json:"errors,omitempty"`
	Storage        json.RawMessage `json:"storage,omitempty"`
	StorageVersion string          `json:"storageVersion,omitempty"`
	Success        bool            `json:"success"`
}

// UpdateContext carries the optional old object of an update validation.
type UpdateContext struct {
	// IsUpdate marks the document as a replacement for an existing object.
	IsUpdate bool
	// Old is the existing object's document in the same external version.
	Old []byte
}

// Harness binds a pipeline to the full resource catalog.
type Harness struct {
	registry *pipeline.Registry
	pipe     *pipeline.Pipeline
}

// New builds a harness over the complete catalog: the core, apps and batch
// kind families, each in its v1 external version.
func New(opts ...pipeline.Option) (*Harness, error) {
	b := pipeline.NewBuilder()
	if err := pipeline.Install(b, coreinstall.Install, appsinstall.Install, batchinstall.Install); err != nil {
		return nil, fmt.Errorf("installing resource catalog: %w", err)
	}
	registry, err := b.Seal()
	if err != nil {
		return nil, err
	}
	return FromRegistry(registry, opts...), nil
}

// FromRegistry builds a harness over a caller-assembled registry. Each kind
// family's sole external version doubles as its storage version.
func FromRegistry(registry *pipeline.Registry, opts ...pipeline.Option) *Harness {
	return &Harness{
		registry: registry,
		pipe:     pipeline.New(registry, pipeline.SoleVersionSelector(registry), opts...),
	}
}

// Registry exposes the underlying registry.
func (h *Harness) Registry() *pipeline.Registry { return h.registry }

// ListIdentities returns every registered identity as a sorted
// "{group}/{version}/{kind}" key.
func (h *Harness) ListIdentities() []string {
	gvks := h.registry.Identities()
	out := make([]string, 0, len(gvks))
	for _, gvk := range gvks {
		out = append(out, pipeline.FormatIdentity(gvk))
	}
	return out
}

// decode resolves the identity, normalizes the document to JSON and parses
// it into the versioned representation.
func (h *Harness) decode(id string, doc []byte) (schema.GroupVersionKind, interface{}, error) {
	gvk, err := pipeline.ParseIdentity(id)
	if err != nil {
		return schema.GroupVersionKind{}, nil, err
	}
	jsonDoc, err := yaml.YAMLToJSON(doc)
	if err != nil {
		return gvk, nil, fmt.Errorf("normalizing document for %s: %w", id, err)
	}
	obj, err := h.pipe.Decode(gvk, jsonDoc)
	if err != nil {
		return gvk, nil, err
	}
	return gvk, obj, nil
}

// ApplyDefaults decodes the document, runs the registered defaulter and
// returns the defaulted document with its envelope stamped.
func (h *Harness) ApplyDefaults(id string, doc []byte) (*DefaultResult, error) {
	gvk, obj, err := h.decode(id, doc)
	if err != nil {
		return nil, err
	}
	if err := h.pipe.ApplyDefaults(gvk, obj); err != nil {
		return nil, err
	}
	d, err := h.registry.Lookup(gvk)
	if err != nil {
		return nil, err
	}
	encoded, err := h.pipe.Encode(gvk, obj)
	if err != nil {
		return nil, err
	}
	return &DefaultResult{
		GVK:             pipeline.FormatIdentity(gvk),
		Result:          encoded,
		DefaultsApplied: d.HasDefaulter(),
	}, nil
}

// Convert decodes and defaults the document, converts it to the hub
// representation and back. A hub state the external version cannot express
// is reported as Success false rather than an error.
func (h *Harness) Convert(id string, doc []byte) (*ConversionResult, error) {
	gvk, obj, err := h.decode(id, doc)
	if err != nil {
		return nil, err
	}
	if err := h.pipe.ApplyDefaults(gvk, obj); err != nil {
		return nil, err
	}
	original, err := h.pipe.Encode(gvk, obj)
	if err != nil {
		return nil, err
	}

	hub, err := h.pipe.ToHub(gvk, obj)
	if err != nil {
		return nil, err
	}
	hubJSON, err := json.Marshal(hub)
	if err != nil {
		return nil, err
	}

	res := &ConversionResult{
		GVK:      pipeline.FormatIdentity(gvk),
		Original: original,
		Hub:      hubJSON,
	}
	roundtrip, err := h.pipe.FromHub(gvk, hub)
	if err != nil {
		if pipeline.IsConversionError(err) {
			return res, nil
		}
		return nil, err
	}
	encoded, err := h.pipe.Encode(gvk, roundtrip)
	if err != nil {
		return nil, err
	}
	res.Roundtrip = encoded
	res.Success = true
	return res, nil
}

// Validate decodes, defaults and converts the document, then runs the hub
// validators. For updates the old document travels the same path before
// being handed to the update validator.
func (h *Harness) Validate(id string, doc []byte, ctx UpdateContext) (*ValidationResult, error) {
	gvk, obj, err := h.decode(id, doc)
	if err != nil {
		return nil, err
	}
	if err := h.pipe.ApplyDefaults(gvk, obj); err != nil {
		return nil, err
	}
	hub, err := h.pipe.ToHub(gvk, obj)
	if err != nil {
		return nil, err
	}

	vctx := pipeline.ValidationContext{}
	if ctx.IsUpdate {
		if len(ctx.Old) == 0 {
			return nil, fmt.Errorf("update validation for %s requires the old document", id)
		}
		_, oldObj, err := h.decode(id, ctx.Old)
		if err != nil {
			return nil, fmt.Errorf("decoding old document: %w", err)
		}
		if err := h.pipe.ApplyDefaults(gvk, oldObj); err != nil {
			return nil, err
		}
		oldHub, err := h.pipe.ToHub(gvk, oldObj)
		if err != nil {
			return nil, fmt.Errorf("converting old document: %w", err)
		}
		vctx = pipeline.ValidationContext{IsUpdate: true, Old: oldHub}
	}

	diags, err := h.pipe.Validate(gvk, hub, vctx)
	if err != nil {
		return nil, err
	}
	return &ValidationResult{
		GVK:    pipeline.FormatIdentity(gvk),
		Valid:  len(diags) == 0,
		Errors: fieldErrors(diags),
	}, nil
}

// RunPipeline executes the full sequence over one document.
func (h *Harness) RunPipeline(id string, doc []byte) (*PipelineResult, error) {
	gvk, err := pipeline.ParseIdentity(id)
	if err != nil {
		return nil, err
	}
	jsonDoc, err := yaml.YAMLToJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("normalizing document for %s: %w", id, err)
	}

	run, err := h.pipe.Run(gvk, jsonDoc)
	if err != nil {
		return nil, err
	}

	res := &PipelineResult{
		GVK:     pipeline.FormatIdentity(gvk),
		Stage:   string(run.Stage),
		Valid:   run.Valid(),
		Errors:  fieldErrors(run.Diagnostics),
		Success: run.Stage == pipeline.StageEncoded,
	}
	if run.Object != nil {
		if res.Defaulted, err = h.pipe.Encode(gvk, run.Object); err != nil {
			return nil, err
		}
	}
	if run.Hub != nil {
		if res.Hub, err = json.Marshal(run.Hub); err != nil {
			return nil, err
		}
	}
	if run.Encoded != nil {
		res.Storage = run.Encoded
		res.StorageVersion = run.StorageVersion.String()
	}
	return res, nil
}
