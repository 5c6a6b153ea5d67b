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

package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhongpeinan/taibai-api/pkg/pipeline"
)

func newHarness(t *testing.T, opts ...pipeline.Option) *Harness {
	t.Helper()
	h, err := New(opts...)
	require.NoError(t, err)
	return h
}

func TestListIdentities(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, []string{
		"apps/v1/DaemonSet",
		"apps/v1/Deployment",
		"apps/v1/StatefulSet",
		"batch/v1/CronJob",
		"batch/v1/Job",
		"core/v1/ConfigMap",
		"core/v1/Namespace",
		"core/v1/Pod",
		"core/v1/Secret",
		"core/v1/Service",
	}, h.ListIdentities())
}

func TestApplyDefaultsStampsEnvelope(t *testing.T) {
	h := newHarness(t)

	res, err := h.ApplyDefaults("core/v1/Pod", []byte(`{}`))
	require.NoError(t, err)
	require.True(t, res.DefaultsApplied)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Result, &doc))
	require.Equal(t, "v1", doc["apiVersion"])
	require.Equal(t, "Pod", doc["kind"])

	spec := doc["spec"].(map[string]interface{})
	require.Equal(t, "Always", spec["restartPolicy"])
	require.Equal(t, float64(30), spec["terminationGracePeriodSeconds"])
}

func TestApplyDefaultsNoDefaulterIsNoOp(t *testing.T) {
	h := newHarness(t)

	res, err := h.ApplyDefaults("core/v1/ConfigMap", []byte(`{"metadata":{"name":"settings"},"data":{"k":"v"}}`))
	require.NoError(t, err)
	require.False(t, res.DefaultsApplied)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Result, &doc))
	require.Equal(t, map[string]interface{}{"k": "v"}, doc["data"])
}

func TestValidateMissingContainers(t *testing.T) {
	h := newHarness(t)

	res, err := h.Validate("core/v1/Pod", []byte(`{"metadata":{"name":"x"}}`), UpdateContext{})
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Equal(t, []FieldError{{
		Field:   "spec.containers",
		Message: "Required value",
		Type:    "FieldValueRequired",
	}}, res.Errors)
}

func TestValidateMinimalPodIsValid(t *testing.T) {
	h := newHarness(t)

	doc := []byte(`{"metadata":{"name":"x"},"spec":{"containers":[{"name":"app","image":"nginx:1.25"}]}}`)
	res, err := h.Validate("core/v1/Pod", doc, UpdateContext{})
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Empty(t, res.Errors)
}

func TestValidateAcceptsYAML(t *testing.T) {
	h := newHarness(t)

	doc := []byte("metadata:\n  name: x\nspec:\n  containers:\n  - name: app\n    image: nginx:1.25\n")
	res, err := h.Validate("core/v1/Pod", doc, UpdateContext{})
	require.NoError(t, err)
	require.True(t, res.Valid)
}

func TestValidateUpdateClusterIPImmutable(t *testing.T) {
	h := newHarness(t)

	oldDoc := []byte(`{"metadata":{"name":"web"},"spec":{"clusterIP":"10.0.0.1","ports":[{"port":80}]}}`)
	newDoc := []byte(`{"metadata":{"name":"web"},"spec":{"clusterIP":"10.0.0.2","ports":[{"port":80}]}}`)

	res, err := h.Validate("core/v1/Service", newDoc, UpdateContext{IsUpdate: true, Old: oldDoc})
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Equal(t, "spec.clusterIP", res.Errors[0].Field)
	require.Equal(t, "FieldValueInvalid", res.Errors[0].Type)

	// Same document twice is a clean update.
	res, err = h.Validate("core/v1/Service", oldDoc, UpdateContext{IsUpdate: true, Old: oldDoc})
	require.NoError(t, err)
	require.True(t, res.Valid)
}

func TestValidateUpdateRequiresOldDocument(t *testing.T) {
	h := newHarness(t)
	_, err := h.Validate("core/v1/Pod", []byte(`{}`), UpdateContext{IsUpdate: true})
	require.Error(t, err)
}

func TestConvertSecretMergesStringData(t *testing.T) {
	h := newHarness(t)

	doc := []byte(`{"metadata":{"name":"creds"},"data":{"user":"YWRtaW4="},"stringData":{"password":"hunter2"}}`)
	res, err := h.Convert("core/v1/Secret", doc)
	require.NoError(t, err)
	require.True(t, res.Success)

	var hub struct {
		Data map[string][]byte `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Hub, &hub))
	require.Equal(t, []byte("admin"), hub.Data["user"])
	require.Equal(t, []byte("hunter2"), hub.Data["password"])

	var roundtrip map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Roundtrip, &roundtrip))
	require.NotContains(t, roundtrip, "stringData", "the merge does not reconstruct stringData")
	rtData := roundtrip["data"].(map[string]interface{})
	require.Contains(t, rtData, "password")
}

func TestConvertDeploymentResolvesReplicas(t *testing.T) {
	h := newHarness(t)

	doc := []byte(`{"metadata":{"name":"web"},"spec":{"selector":{"matchLabels":{"app":"web"}},"template":{"metadata":{"labels":{"app":"web"}},"spec":{"containers":[{"name":"app","image":"nginx:1.25"}]}}}}`)
	res, err := h.Convert("apps/v1/Deployment", doc)
	require.NoError(t, err)
	require.True(t, res.Success)

	var hub struct {
		Spec struct {
			Replicas int32 `json:"replicas"`
		} `json:"spec"`
	}
	require.NoError(t, json.Unmarshal(res.Hub, &hub))
	require.Equal(t, int32(1), hub.Spec.Replicas, "defaulting resolves the optional replica count before conversion")
}

func TestRunPipelineDeployment(t *testing.T) {
	h := newHarness(t)

	doc := []byte(`{"metadata":{"name":"web"},"spec":{"selector":{"matchLabels":{"app":"web"}},"template":{"metadata":{"labels":{"app":"web"}},"spec":{"containers":[{"name":"app","image":"nginx:1.25"}]}}}}`)
	res, err := h.RunPipeline("apps/v1/Deployment", doc)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "Encoded", res.Stage)
	require.True(t, res.Valid)
	require.Equal(t, "apps/v1", res.StorageVersion)

	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Storage, &stored))
	require.Equal(t, "apps/v1", stored["apiVersion"])
	require.Equal(t, "Deployment", stored["kind"])
}

func TestRunPipelineStopsOnInvalid(t *testing.T) {
	h := newHarness(t)

	res, err := h.RunPipeline("batch/v1/CronJob", []byte(`{"metadata":{"name":"nightly"},"spec":{"schedule":"every tuesday","jobTemplate":{"spec":{"template":{"spec":{"restartPolicy":"Never","containers":[{"name":"w","image":"w:v1"}]}}}}}}`))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "Validated", res.Stage)
	require.False(t, res.Valid)

	found := false
	for _, e := range res.Errors {
		if e.Field == "spec.schedule" && e.Type == "FieldValueInvalid" {
			found = true
		}
	}
	require.True(t, found, "expected a schedule diagnostic, got %v", res.Errors)
	require.Nil(t, res.Storage)
}

func TestRunPipelineEncodeInvalid(t *testing.T) {
	h := newHarness(t, pipeline.WithEncodeInvalid())

	res, err := h.RunPipeline("core/v1/Pod", []byte(`{"metadata":{"name":"x"}}`))
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Equal(t, "Encoded", res.Stage)
	require.NotNil(t, res.Storage)
}

func TestRunPipelineJobRestartPolicy(t *testing.T) {
	h := newHarness(t)

	// Defaulting fills restartPolicy with Always, which jobs reject.
	res, err := h.RunPipeline("batch/v1/Job", []byte(`{"metadata":{"name":"import"},"spec":{"template":{"spec":{"containers":[{"name":"w","image":"w:v1"}]}}}}`))
	require.NoError(t, err)
	require.False(t, res.Valid)

	res, err = h.RunPipeline("batch/v1/Job", []byte(`{"metadata":{"name":"import"},"spec":{"template":{"spec":{"restartPolicy":"Never","containers":[{"name":"w","image":"w:v1"}]}}}}`))
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.True(t, res.Success)
}

func TestUnknownIdentity(t *testing.T) {
	h := newHarness(t)

	_, err := h.RunPipeline("core/v2/Pod", []byte(`{}`))
	var unknown *pipeline.UnknownResourceError
	require.ErrorAs(t, err, &unknown)

	_, err = h.Validate("widgets/v1/Widget", []byte(`{}`), UpdateContext{})
	require.ErrorAs(t, err, &unknown)
}

func TestMalformedIdentity(t *testing.T) {
	h := newHarness(t)
	_, err := h.RunPipeline("Pod", []byte(`{}`))
	require.Error(t, err)
}

func TestEnvelopeMismatch(t *testing.T) {
	h := newHarness(t)

	_, err := h.RunPipeline("core/v1/Pod", []byte(`{"apiVersion":"v1","kind":"Service"}`))
	var decodeErr *pipeline.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}
