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

package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/utils/ptr"

	"github.com/zhongpeinan/taibai-api/pkg/apis/apps"
	"github.com/zhongpeinan/taibai-api/pkg/apis/core"
)

func podTemplate(labels map[string]string) core.PodTemplateSpec {
	return core.PodTemplateSpec{
		ObjectMeta: metav1.ObjectMeta{Labels: labels},
		Spec: core.PodSpec{
			Containers: []core.Container{
				{
					Name:                     "app",
					Image:                    "nginx:1.25",
					ImagePullPolicy:          core.PullIfNotPresent,
					TerminationMessagePath:   core.TerminationMessagePathDefault,
					TerminationMessagePolicy: core.TerminationMessageReadFile,
				},
			},
			RestartPolicy:                 core.RestartPolicyAlways,
			DNSPolicy:                     core.DNSClusterFirst,
			TerminationGracePeriodSeconds: ptr.To[int64](30),
		},
	}
}

func validDeployment() *apps.Deployment {
	labels := map[string]string{"app": "web"}
	return &apps.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "web"},
		Spec: apps.DeploymentSpec{
			Replicas: 1,
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: podTemplate(labels),
			Strategy: apps.DeploymentStrategy{Type: apps.RollingUpdateDeploymentStrategyType},
		},
	}
}

func hasError(t *testing.T, list field.ErrorList, errType field.ErrorType, fieldPath string) {
	t.Helper()
	for _, err := range list {
		if err.Type == errType && err.Field == fieldPath {
			return
		}
	}
	t.Errorf("expected %s at %q, got: %v", errType, fieldPath, list)
}

func TestValidateDeployment(t *testing.T) {
	tests := []struct {
		name     string
		tweak    func(*apps.Deployment)
		errType  field.ErrorType
		errField string
	}{
		{
			name:  "valid",
			tweak: func(*apps.Deployment) {},
		},
		{
			name:     "missing selector",
			tweak:    func(d *apps.Deployment) { d.Spec.Selector = nil },
			errType:  field.ErrorTypeRequired,
			errField: "spec.selector",
		},
		{
			name: "selector does not match template labels",
			tweak: func(d *apps.Deployment) {
				d.Spec.Selector = &metav1.LabelSelector{MatchLabels: map[string]string{"app": "other"}}
			},
			errType:  field.ErrorTypeInvalid,
			errField: "spec.template.metadata.labels",
		},
		{
			name:     "negative replicas",
			tweak:    func(d *apps.Deployment) { d.Spec.Replicas = -1 },
			errType:  field.ErrorTypeInvalid,
			errField: "spec.replicas",
		},
		{
			name: "template restart policy must be Always",
			tweak: func(d *apps.Deployment) {
				d.Spec.Template.Spec.RestartPolicy = core.RestartPolicyOnFailure
			},
			errType:  field.ErrorTypeNotSupported,
			errField: "spec.template.spec.restartPolicy",
		},
		{
			name: "rollingUpdate forbidden for Recreate",
			tweak: func(d *apps.Deployment) {
				d.Spec.Strategy = apps.DeploymentStrategy{
					Type:          apps.RecreateDeploymentStrategyType,
					RollingUpdate: &apps.RollingUpdateDeployment{},
				}
			},
			errType:  field.ErrorTypeForbidden,
			errField: "spec.strategy.rollingUpdate",
		},
		{
			name:     "unsupported strategy",
			tweak:    func(d *apps.Deployment) { d.Spec.Strategy.Type = "BigBang" },
			errType:  field.ErrorTypeNotSupported,
			errField: "spec.strategy.type",
		},
		{
			name: "template containers required",
			tweak: func(d *apps.Deployment) {
				d.Spec.Template.Spec.Containers = nil
			},
			errType:  field.ErrorTypeRequired,
			errField: "spec.template.spec.containers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDeployment()
			tt.tweak(d)
			errs := ValidateDeployment(d)
			if tt.errField == "" {
				require.Empty(t, errs)
				return
			}
			hasError(t, errs, tt.errType, tt.errField)
		})
	}
}

func TestValidateDeploymentUpdateSelectorImmutable(t *testing.T) {
	oldD := validDeployment()
	newD := validDeployment()
	newD.Spec.Selector = &metav1.LabelSelector{MatchLabels: map[string]string{"app": "renamed"}}
	newD.Spec.Template = podTemplate(map[string]string{"app": "renamed"})

	errs := ValidateDeploymentUpdate(newD, oldD)
	hasError(t, errs, field.ErrorTypeInvalid, "spec.selector")

	require.Empty(t, ValidateDeploymentUpdate(validDeployment(), oldD))
}

func validDaemonSet() *apps.DaemonSet {
	labels := map[string]string{"app": "agent"}
	return &apps.DaemonSet{
		ObjectMeta: metav1.ObjectMeta{Name: "agent"},
		Spec: apps.DaemonSetSpec{
			Selector:       &metav1.LabelSelector{MatchLabels: labels},
			Template:       podTemplate(labels),
			UpdateStrategy: apps.DaemonSetUpdateStrategy{Type: apps.RollingUpdateDaemonSetStrategyType},
		},
	}
}

func TestValidateDaemonSet(t *testing.T) {
	require.Empty(t, ValidateDaemonSet(validDaemonSet()))

	ds := validDaemonSet()
	ds.Spec.UpdateStrategy = apps.DaemonSetUpdateStrategy{
		Type:          apps.OnDeleteDaemonSetStrategyType,
		RollingUpdate: &apps.RollingUpdateDaemonSet{},
	}
	errs := ValidateDaemonSet(ds)
	hasError(t, errs, field.ErrorTypeForbidden, "spec.updateStrategy.rollingUpdate")

	ds = validDaemonSet()
	ds.Spec.Selector = nil
	errs = ValidateDaemonSet(ds)
	hasError(t, errs, field.ErrorTypeRequired, "spec.selector")
}

func validStatefulSet() *apps.StatefulSet {
	labels := map[string]string{"app": "db"}
	return &apps.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "db"},
		Spec: apps.StatefulSetSpec{
			Replicas:            1,
			Selector:            &metav1.LabelSelector{MatchLabels: labels},
			Template:            podTemplate(labels),
			ServiceName:         "db-headless",
			PodManagementPolicy: apps.OrderedReadyPodManagement,
			UpdateStrategy: apps.StatefulSetUpdateStrategy{
				Type:          apps.RollingUpdateStatefulSetStrategyType,
				RollingUpdate: &apps.RollingUpdateStatefulSetStrategy{Partition: 0},
			},
		},
	}
}

func TestValidateStatefulSet(t *testing.T) {
	tests := []struct {
		name     string
		tweak    func(*apps.StatefulSet)
		errType  field.ErrorType
		errField string
	}{
		{
			name:  "valid",
			tweak: func(*apps.StatefulSet) {},
		},
		{
			name:     "missing service name",
			tweak:    func(s *apps.StatefulSet) { s.Spec.ServiceName = "" },
			errType:  field.ErrorTypeRequired,
			errField: "spec.serviceName",
		},
		{
			name:     "bad service name",
			tweak:    func(s *apps.StatefulSet) { s.Spec.ServiceName = "Not_A_Label" },
			errType:  field.ErrorTypeInvalid,
			errField: "spec.serviceName",
		},
		{
			name:     "unsupported pod management policy",
			tweak:    func(s *apps.StatefulSet) { s.Spec.PodManagementPolicy = "Chaotic" },
			errType:  field.ErrorTypeNotSupported,
			errField: "spec.podManagementPolicy",
		},
		{
			name: "negative partition",
			tweak: func(s *apps.StatefulSet) {
				s.Spec.UpdateStrategy.RollingUpdate = &apps.RollingUpdateStatefulSetStrategy{Partition: -1}
			},
			errType:  field.ErrorTypeInvalid,
			errField: "spec.updateStrategy.rollingUpdate.partition",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStatefulSet()
			tt.tweak(s)
			errs := ValidateStatefulSet(s)
			if tt.errField == "" {
				require.Empty(t, errs)
				return
			}
			hasError(t, errs, tt.errType, tt.errField)
		})
	}
}

func TestValidateStatefulSetUpdateImmutableFields(t *testing.T) {
	oldSet := validStatefulSet()

	renamed := validStatefulSet()
	renamed.Spec.ServiceName = "other"
	errs := ValidateStatefulSetUpdate(renamed, oldSet)
	hasError(t, errs, field.ErrorTypeInvalid, "spec.serviceName")

	reordered := validStatefulSet()
	reordered.Spec.PodManagementPolicy = apps.ParallelPodManagement
	errs = ValidateStatefulSetUpdate(reordered, oldSet)
	hasError(t, errs, field.ErrorTypeInvalid, "spec.podManagementPolicy")

	require.Empty(t, ValidateStatefulSetUpdate(validStatefulSet(), oldSet))
}
