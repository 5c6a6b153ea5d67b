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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/utils/ptr"
)

var widgetGVK = schema.GroupVersionKind{Group: "toys", Version: "v1", Kind: "Widget"}

// widgetV1 is the external form of the test kind. Size is optional and
// defaulted; grade "Z" exists only in the hub.
type widgetV1 struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Size  *int32 `json:"size,omitempty"`
	Grade string `json:"grade,omitempty"`
}

type widgetHub struct {
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Size  int32  `json:"size"`
	Grade string `json:"grade,omitempty"`
}

func widgetFuncs() KindFuncs[widgetV1, widgetHub] {
	return KindFuncs[widgetV1, widgetHub]{
		Defaults: func(w *widgetV1) {
			if w.Size == nil {
				w.Size = ptr.To[int32](1)
			}
		},
		FromHub: func(h *widgetHub, _ *widgetV1) error {
			if h.Grade == "Z" {
				return NewConversionError(field.NewPath("grade"), h.Grade, "grade Z has no external spelling")
			}
			return nil
		},
		Validate: func(h *widgetHub) field.ErrorList {
			var allErrs field.ErrorList
			if h.Size > 10 {
				allErrs = append(allErrs, field.Invalid(field.NewPath("size"), h.Size, "must be at most 10"))
				allErrs = append(allErrs, field.Invalid(field.NewPath("size"), h.Size, "must be at most 10"))
			}
			return allErrs
		},
		ValidateUpdate: func(obj, old *widgetHub) field.ErrorList {
			var allErrs field.ErrorList
			if obj.Grade != old.Grade {
				allErrs = append(allErrs, field.Forbidden(field.NewPath("grade"), "field is immutable"))
			}
			return allErrs
		},
	}
}

func newWidgetRegistry(t *testing.T) *Registry {
	t.Helper()
	b := NewBuilder()
	require.NoError(t, RegisterKind(b, widgetGVK, widgetFuncs()))
	r, err := b.Seal()
	require.NoError(t, err)
	return r
}

func newWidgetPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	r := newWidgetRegistry(t)
	return New(r, SoleVersionSelector(r), opts...)
}

func TestRunFullSequence(t *testing.T) {
	p := newWidgetPipeline(t)

	res, err := p.Run(widgetGVK, []byte(`{"metadata":{"name":"w"},"grade":"A"}`))
	require.NoError(t, err)
	require.Equal(t, StageEncoded, res.Stage)
	require.True(t, res.Valid())

	hub := res.Hub.(*widgetHub)
	require.Equal(t, int32(1), hub.Size, "defaults run before conversion")
	require.Equal(t, "A", hub.Grade)

	var stored widgetV1
	require.NoError(t, json.Unmarshal(res.Encoded, &stored))
	require.Equal(t, "toys/v1", stored.APIVersion, "storage envelope is stamped")
	require.Equal(t, "Widget", stored.Kind)
	require.Equal(t, int32(1), *stored.Size)
	require.Equal(t, schema.GroupVersion{Group: "toys", Version: "v1"}, res.StorageVersion)
}

func TestRunStopsAtValidation(t *testing.T) {
	p := newWidgetPipeline(t)

	res, err := p.Run(widgetGVK, []byte(`{"metadata":{"name":"w"},"size":99}`))
	require.NoError(t, err, "rule violations are diagnostics, not errors")
	require.Equal(t, StageValidated, res.Stage)
	require.False(t, res.Valid())
	require.Nil(t, res.Encoded)
}

func TestRunEncodeInvalid(t *testing.T) {
	p := newWidgetPipeline(t, WithEncodeInvalid())

	res, err := p.Run(widgetGVK, []byte(`{"metadata":{"name":"w"},"size":99}`))
	require.NoError(t, err)
	require.Equal(t, StageEncoded, res.Stage)
	require.False(t, res.Valid())
	require.NotNil(t, res.Encoded)
}

func TestRunDiagnosticsDedup(t *testing.T) {
	// The widget validator reports the size violation twice.
	plain := newWidgetPipeline(t)
	res, err := plain.Run(widgetGVK, []byte(`{"size":99}`))
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 2, "duplicates are preserved by default")

	deduped := newWidgetPipeline(t, WithDiagnosticsDedup())
	res, err = deduped.Run(widgetGVK, []byte(`{"size":99}`))
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
}

func TestRunDecodeMismatch(t *testing.T) {
	p := newWidgetPipeline(t)

	tests := []struct {
		name string
		doc  string
	}{
		{name: "wrong apiVersion", doc: `{"apiVersion":"toys/v2","kind":"Widget"}`},
		{name: "wrong kind", doc: `{"apiVersion":"toys/v1","kind":"Gadget"}`},
		{name: "not json", doc: `{{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Run(widgetGVK, []byte(tt.doc))
			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			require.Equal(t, Stage(""), res.Stage)
		})
	}
}

func TestRunMatchingEnvelopeAccepted(t *testing.T) {
	p := newWidgetPipeline(t)
	res, err := p.Run(widgetGVK, []byte(`{"apiVersion":"toys/v1","kind":"Widget","grade":"A"}`))
	require.NoError(t, err)
	require.Equal(t, StageEncoded, res.Stage)
}

func TestRunStorageConversionError(t *testing.T) {
	p := newWidgetPipeline(t)

	// Grade Z passes validation but cannot be expressed in toys/v1 again.
	res, err := p.Run(widgetGVK, []byte(`{"metadata":{"name":"w"},"grade":"Z"}`))
	require.Error(t, err)
	require.True(t, IsConversionError(err))
	require.Equal(t, StageValidated, res.Stage)
}

func TestRunUnknownIdentity(t *testing.T) {
	p := newWidgetPipeline(t)
	_, err := p.Run(schema.GroupVersionKind{Group: "toys", Version: "v1", Kind: "Gadget"}, []byte(`{}`))
	var unknown *UnknownResourceError
	require.ErrorAs(t, err, &unknown)
}

func TestValidateUpdateContext(t *testing.T) {
	p := newWidgetPipeline(t)

	obj := &widgetHub{Size: 1, Grade: "A"}
	old := &widgetHub{Size: 1, Grade: "B"}

	diags, err := p.Validate(widgetGVK, obj, ValidationContext{IsUpdate: true, Old: old})
	require.NoError(t, err)
	require.Len(t, diags, 1)
	require.Equal(t, field.ErrorTypeForbidden, diags[0].Type)
	require.Equal(t, "grade", diags[0].Field)

	// Same value on both sides is fine.
	diags, err = p.Validate(widgetGVK, obj, ValidationContext{IsUpdate: true, Old: &widgetHub{Grade: "A"}})
	require.NoError(t, err)
	require.Empty(t, diags)

	// A wrong old type is engine misuse, not a diagnostic.
	_, err = p.Validate(widgetGVK, obj, ValidationContext{IsUpdate: true, Old: "nonsense"})
	require.Error(t, err)
}

func TestApplyDefaultsIdempotent(t *testing.T) {
	p := newWidgetPipeline(t)

	obj, err := p.Decode(widgetGVK, []byte(`{"size":5}`))
	require.NoError(t, err)
	require.NoError(t, p.ApplyDefaults(widgetGVK, obj))
	require.NoError(t, p.ApplyDefaults(widgetGVK, obj))
	require.Equal(t, int32(5), *obj.(*widgetV1).Size)
}

func TestConversionDoesNotAliasSource(t *testing.T) {
	p := newWidgetPipeline(t)

	obj, err := p.Decode(widgetGVK, []byte(`{"metadata":{"name":"w","labels":{"a":"b"}},"size":5}`))
	require.NoError(t, err)
	hub, err := p.ToHub(widgetGVK, obj)
	require.NoError(t, err)

	obj.(*widgetV1).Labels["a"] = "mutated"
	require.Equal(t, "b", hub.(*widgetHub).Labels["a"])
}

func TestPipelineConcurrentUse(t *testing.T) {
	p := newWidgetPipeline(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				res, err := p.Run(widgetGVK, []byte(`{"metadata":{"name":"w"},"grade":"A"}`))
				if err != nil || res.Stage != StageEncoded {
					t.Errorf("concurrent run failed: stage=%s err=%v", res.Stage, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
