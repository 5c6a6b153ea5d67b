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

// Package validation contains the semantic validation rules for the hub
// representation of the workload kind families.
package validation

import (
	apimachineryvalidation "k8s.io/apimachinery/pkg/api/validation"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	v1validation "k8s.io/apimachinery/pkg/apis/meta/v1/validation"
	"k8s.io/apimachinery/pkg/labels"
	utilvalidation "k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/zhongpeinan/taibai-api/pkg/apis/apps"
	"github.com/zhongpeinan/taibai-api/pkg/apis/core"
	corevalidation "github.com/zhongpeinan/taibai-api/pkg/apis/core/validation"
)

// validateWorkloadSelector checks that the selector is present, well formed
// and actually selects the embedded pod template.
func validateWorkloadSelector(selector *metav1.LabelSelector, template *core.PodTemplateSpec, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	if selector == nil {
		return append(allErrs, field.Required(fldPath.Child("selector"), ""))
	}
	allErrs = append(allErrs, v1validation.ValidateLabelSelector(selector, v1validation.LabelSelectorValidationOptions{}, fldPath.Child("selector"))...)
	if len(selector.MatchLabels)+len(selector.MatchExpressions) == 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("selector"), selector, "empty selector is invalid for workload"))
		return allErrs
	}
	sel, err := metav1.LabelSelectorAsSelector(selector)
	if err != nil {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("selector"), selector, err.Error()))
		return allErrs
	}
	if !sel.Matches(labels.Set(template.Labels)) {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("template", "metadata", "labels"), template.Labels, "`selector` does not match template `labels`"))
	}
	return allErrs
}

// validateWorkloadTemplate validates the embedded pod template and restricts
// its restart policy to the values the workload supports.
func validateWorkloadTemplate(template *core.PodTemplateSpec, restartPolicies []core.RestartPolicy, fldPath *field.Path) field.ErrorList {
	allErrs := corevalidation.ValidatePodTemplateSpec(template, fldPath)
	allowed := false
	for _, policy := range restartPolicies {
		if template.Spec.RestartPolicy == policy {
			allowed = true
			break
		}
	}
	if !allowed {
		supported := make([]string, 0, len(restartPolicies))
		for _, policy := range restartPolicies {
			supported = append(supported, string(policy))
		}
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("spec", "restartPolicy"), template.Spec.RestartPolicy, supported))
	}
	return allErrs
}

var alwaysRestart = []core.RestartPolicy{core.RestartPolicyAlways}

var supportedDeploymentStrategies = []string{
	string(apps.RecreateDeploymentStrategyType),
	string(apps.RollingUpdateDeploymentStrategyType),
}

// ValidateDeployment validates a Deployment.
func ValidateDeployment(deployment *apps.Deployment) field.ErrorList {
	allErrs := corevalidation.ValidateObjectMeta(&deployment.ObjectMeta, true, apimachineryvalidation.NameIsDNSSubdomain, field.NewPath("metadata"))
	specPath := field.NewPath("spec")
	spec := &deployment.Spec

	allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(spec.Replicas), specPath.Child("replicas"))...)
	allErrs = append(allErrs, validateWorkloadSelector(spec.Selector, &spec.Template, specPath)...)
	allErrs = append(allErrs, validateWorkloadTemplate(&spec.Template, alwaysRestart, specPath.Child("template"))...)

	switch spec.Strategy.Type {
	case apps.RecreateDeploymentStrategyType:
		if spec.Strategy.RollingUpdate != nil {
			allErrs = append(allErrs, field.Forbidden(specPath.Child("strategy", "rollingUpdate"), "may not be specified when strategy `type` is 'Recreate'"))
		}
	case apps.RollingUpdateDeploymentStrategyType:
	case "":
		allErrs = append(allErrs, field.Required(specPath.Child("strategy", "type"), ""))
	default:
		allErrs = append(allErrs, field.NotSupported(specPath.Child("strategy", "type"), spec.Strategy.Type, supportedDeploymentStrategies))
	}

	if spec.RevisionHistoryLimit != nil {
		allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(*spec.RevisionHistoryLimit), specPath.Child("revisionHistoryLimit"))...)
	}
	if spec.ProgressDeadlineSeconds != nil && *spec.ProgressDeadlineSeconds <= spec.MinReadySeconds {
		allErrs = append(allErrs, field.Invalid(specPath.Child("progressDeadlineSeconds"), *spec.ProgressDeadlineSeconds, "must be greater than minReadySeconds"))
	}
	return allErrs
}

// ValidateDeploymentUpdate enforces Deployment update rules: the selector is
// immutable.
func ValidateDeploymentUpdate(deployment, oldDeployment *apps.Deployment) field.ErrorList {
	allErrs := corevalidation.ValidateObjectMetaUpdate(&deployment.ObjectMeta, &oldDeployment.ObjectMeta, field.NewPath("metadata"))
	allErrs = append(allErrs, apimachineryvalidation.ValidateImmutableField(deployment.Spec.Selector, oldDeployment.Spec.Selector, field.NewPath("spec", "selector"))...)
	return allErrs
}

var supportedDaemonSetStrategies = []string{
	string(apps.RollingUpdateDaemonSetStrategyType),
	string(apps.OnDeleteDaemonSetStrategyType),
}

// ValidateDaemonSet validates a DaemonSet.
func ValidateDaemonSet(ds *apps.DaemonSet) field.ErrorList {
	allErrs := corevalidation.ValidateObjectMeta(&ds.ObjectMeta, true, apimachineryvalidation.NameIsDNSSubdomain, field.NewPath("metadata"))
	specPath := field.NewPath("spec")
	spec := &ds.Spec

	allErrs = append(allErrs, validateWorkloadSelector(spec.Selector, &spec.Template, specPath)...)
	allErrs = append(allErrs, validateWorkloadTemplate(&spec.Template, alwaysRestart, specPath.Child("template"))...)

	switch spec.UpdateStrategy.Type {
	case apps.RollingUpdateDaemonSetStrategyType, apps.OnDeleteDaemonSetStrategyType:
	case "":
		allErrs = append(allErrs, field.Required(specPath.Child("updateStrategy", "type"), ""))
	default:
		allErrs = append(allErrs, field.NotSupported(specPath.Child("updateStrategy", "type"), spec.UpdateStrategy.Type, supportedDaemonSetStrategies))
	}
	if spec.UpdateStrategy.Type == apps.OnDeleteDaemonSetStrategyType && spec.UpdateStrategy.RollingUpdate != nil {
		allErrs = append(allErrs, field.Forbidden(specPath.Child("updateStrategy", "rollingUpdate"), "may not be specified when strategy `type` is 'OnDelete'"))
	}
	if spec.RevisionHistoryLimit != nil {
		allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(*spec.RevisionHistoryLimit), specPath.Child("revisionHistoryLimit"))...)
	}
	return allErrs
}

// ValidateDaemonSetUpdate enforces DaemonSet update rules: the selector is
// immutable.
func ValidateDaemonSetUpdate(ds, oldDS *apps.DaemonSet) field.ErrorList {
	allErrs := corevalidation.ValidateObjectMetaUpdate(&ds.ObjectMeta, &oldDS.ObjectMeta, field.NewPath("metadata"))
	allErrs = append(allErrs, apimachineryvalidation.ValidateImmutableField(ds.Spec.Selector, oldDS.Spec.Selector, field.NewPath("spec", "selector"))...)
	return allErrs
}

var supportedPodManagementPolicies = []string{
	string(apps.OrderedReadyPodManagement),
	string(apps.ParallelPodManagement),
}

var supportedStatefulSetStrategies = []string{
	string(apps.RollingUpdateStatefulSetStrategyType),
	string(apps.OnDeleteStatefulSetStrategyType),
}

// ValidateStatefulSet validates a StatefulSet.
func ValidateStatefulSet(set *apps.StatefulSet) field.ErrorList {
	allErrs := corevalidation.ValidateObjectMeta(&set.ObjectMeta, true, apimachineryvalidation.NameIsDNSSubdomain, field.NewPath("metadata"))
	specPath := field.NewPath("spec")
	spec := &set.Spec

	allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(spec.Replicas), specPath.Child("replicas"))...)
	allErrs = append(allErrs, validateWorkloadSelector(spec.Selector, &spec.Template, specPath)...)
	allErrs = append(allErrs, validateWorkloadTemplate(&spec.Template, alwaysRestart, specPath.Child("template"))...)

	if spec.ServiceName == "" {
		allErrs = append(allErrs, field.Required(specPath.Child("serviceName"), ""))
	} else {
		for _, msg := range utilvalidation.IsDNS1123Label(spec.ServiceName) {
			allErrs = append(allErrs, field.Invalid(specPath.Child("serviceName"), spec.ServiceName, msg))
		}
	}

	switch spec.PodManagementPolicy {
	case apps.OrderedReadyPodManagement, apps.ParallelPodManagement:
	case "":
		allErrs = append(allErrs, field.Required(specPath.Child("podManagementPolicy"), ""))
	default:
		allErrs = append(allErrs, field.NotSupported(specPath.Child("podManagementPolicy"), spec.PodManagementPolicy, supportedPodManagementPolicies))
	}

	switch spec.UpdateStrategy.Type {
	case apps.RollingUpdateStatefulSetStrategyType:
		if spec.UpdateStrategy.RollingUpdate != nil {
			allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(spec.UpdateStrategy.RollingUpdate.Partition), specPath.Child("updateStrategy", "rollingUpdate", "partition"))...)
		}
	case apps.OnDeleteStatefulSetStrategyType:
		if spec.UpdateStrategy.RollingUpdate != nil {
			allErrs = append(allErrs, field.Forbidden(specPath.Child("updateStrategy", "rollingUpdate"), "may not be specified when strategy `type` is 'OnDelete'"))
		}
	case "":
		allErrs = append(allErrs, field.Required(specPath.Child("updateStrategy", "type"), ""))
	default:
		allErrs = append(allErrs, field.NotSupported(specPath.Child("updateStrategy", "type"), spec.UpdateStrategy.Type, supportedStatefulSetStrategies))
	}

	if spec.RevisionHistoryLimit != nil {
		allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(*spec.RevisionHistoryLimit), specPath.Child("revisionHistoryLimit"))...)
	}
	return allErrs
}

// ValidateStatefulSetUpdate enforces StatefulSet update rules: the selector,
// the governing service name and the pod management policy are immutable.
func ValidateStatefulSetUpdate(set, oldSet *apps.StatefulSet) field.ErrorList {
	allErrs := corevalidation.ValidateObjectMetaUpdate(&set.ObjectMeta, &oldSet.ObjectMeta, field.NewPath("metadata"))
	allErrs = append(allErrs, apimachineryvalidation.ValidateImmutableField(set.Spec.Selector, oldSet.Spec.Selector, field.NewPath("spec", "selector"))...)
	allErrs = append(allErrs, apimachineryvalidation.ValidateImmutableField(set.Spec.ServiceName, oldSet.Spec.ServiceName, field.NewPath("spec", "serviceName"))...)
	allErrs = append(allErrs, apimachineryvalidation.ValidateImmutableField(set.Spec.PodManagementPolicy, oldSet.Spec.PodManagementPolicy, field.NewPath("spec", "podManagementPolicy"))...)
	return allErrs
}
