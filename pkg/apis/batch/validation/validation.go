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
// representation of the batch kind families.
package validation

import (
	"time"

	"github.com/robfig/cron/v3"

	apimachineryvalidation "k8s.io/apimachinery/pkg/api/validation"
	v1validation "k8s.io/apimachinery/pkg/apis/meta/v1/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/zhongpeinan/taibai-api/pkg/apis/batch"
	"github.com/zhongpeinan/taibai-api/pkg/apis/core"
	corevalidation "github.com/zhongpeinan/taibai-api/pkg/apis/core/validation"
)

var jobRestartPolicies = []string{
	string(core.RestartPolicyOnFailure),
	string(core.RestartPolicyNever),
}

var supportedCompletionModes = []string{
	string(batch.NonIndexedCompletion),
	string(batch.IndexedCompletion),
}

var supportedConcurrencyPolicies = []string{
	string(batch.AllowConcurrent),
	string(batch.ForbidConcurrent),
	string(batch.ReplaceConcurrent),
}

func validateJobSpec(spec *batch.JobSpec, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}

	allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(spec.Parallelism), fldPath.Child("parallelism"))...)
	allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(spec.Completions), fldPath.Child("completions"))...)
	allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(spec.BackoffLimit), fldPath.Child("backoffLimit"))...)
	if spec.ActiveDeadlineSeconds != nil && *spec.ActiveDeadlineSeconds <= 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("activeDeadlineSeconds"), *spec.ActiveDeadlineSeconds, "must be greater than 0"))
	}
	if spec.TTLSecondsAfterFinished != nil {
		allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(*spec.TTLSecondsAfterFinished), fldPath.Child("ttlSecondsAfterFinished"))...)
	}

	switch spec.CompletionMode {
	case batch.NonIndexedCompletion, batch.IndexedCompletion:
	case "":
		allErrs = append(allErrs, field.Required(fldPath.Child("completionMode"), ""))
	default:
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("completionMode"), spec.CompletionMode, supportedCompletionModes))
	}

	if spec.Selector != nil {
		allErrs = append(allErrs, v1validation.ValidateLabelSelector(spec.Selector, v1validation.LabelSelectorValidationOptions{}, fldPath.Child("selector"))...)
		if spec.ManualSelector == nil || !*spec.ManualSelector {
			allErrs = append(allErrs, field.Forbidden(fldPath.Child("selector"), "may not be specified without `manualSelector`"))
		}
	}

	allErrs = append(allErrs, corevalidation.ValidatePodTemplateSpec(&spec.Template, fldPath.Child("template"))...)
	switch spec.Template.Spec.RestartPolicy {
	case core.RestartPolicyOnFailure, core.RestartPolicyNever:
	default:
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("template", "spec", "restartPolicy"), spec.Template.Spec.RestartPolicy, jobRestartPolicies))
	}
	return allErrs
}

// ValidateJob validates a Job.
func ValidateJob(job *batch.Job) field.ErrorList {
	allErrs := corevalidation.ValidateObjectMeta(&job.ObjectMeta, true, apimachineryvalidation.NameIsDNSSubdomain, field.NewPath("metadata"))
	allErrs = append(allErrs, validateJobSpec(&job.Spec, field.NewPath("spec"))...)
	return allErrs
}

// ValidateJobUpdate enforces Job update rules: the selector and the
// completion mode are immutable.
func ValidateJobUpdate(job, oldJob *batch.Job) field.ErrorList {
	allErrs := corevalidation.ValidateObjectMetaUpdate(&job.ObjectMeta, &oldJob.ObjectMeta, field.NewPath("metadata"))
	allErrs = append(allErrs, apimachineryvalidation.ValidateImmutableField(job.Spec.Selector, oldJob.Spec.Selector, field.NewPath("spec", "selector"))...)
	allErrs = append(allErrs, apimachineryvalidation.ValidateImmutableField(job.Spec.CompletionMode, oldJob.Spec.CompletionMode, field.NewPath("spec", "completionMode"))...)
	return allErrs
}

// ValidateCronJob validates a CronJob.
func ValidateCronJob(cronJob *batch.CronJob) field.ErrorList {
	allErrs := corevalidation.ValidateObjectMeta(&cronJob.ObjectMeta, true, apimachineryvalidation.NameIsDNSSubdomain, field.NewPath("metadata"))
	specPath := field.NewPath("spec")
	spec := &cronJob.Spec

	if spec.Schedule == "" {
		allErrs = append(allErrs, field.Required(specPath.Child("schedule"), ""))
	} else if _, err := cron.ParseStandard(spec.Schedule); err != nil {
		allErrs = append(allErrs, field.Invalid(specPath.Child("schedule"), spec.Schedule, err.Error()))
	}

	if spec.TimeZone != nil {
		if *spec.TimeZone == "" {
			allErrs = append(allErrs, field.Invalid(specPath.Child("timeZone"), *spec.TimeZone, "timeZone must be nil or non-empty string"))
		} else if _, err := time.LoadLocation(*spec.TimeZone); err != nil {
			allErrs = append(allErrs, field.Invalid(specPath.Child("timeZone"), *spec.TimeZone, err.Error()))
		}
	}

	switch spec.ConcurrencyPolicy {
	case batch.AllowConcurrent, batch.ForbidConcurrent, batch.ReplaceConcurrent:
	case "":
		allErrs = append(allErrs, field.Required(specPath.Child("concurrencyPolicy"), ""))
	default:
		allErrs = append(allErrs, field.NotSupported(specPath.Child("concurrencyPolicy"), spec.ConcurrencyPolicy, supportedConcurrencyPolicies))
	}

	if spec.StartingDeadlineSeconds != nil {
		allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(*spec.StartingDeadlineSeconds), specPath.Child("startingDeadlineSeconds"))...)
	}
	allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(spec.SuccessfulJobsHistoryLimit), specPath.Child("successfulJobsHistoryLimit"))...)
	allErrs = append(allErrs, apimachineryvalidation.ValidateNonnegativeField(int64(spec.FailedJobsHistoryLimit), specPath.Child("failedJobsHistoryLimit"))...)

	allErrs = append(allErrs, validateJobSpec(&spec.JobTemplate.Spec, specPath.Child("jobTemplate", "spec"))...)
	return allErrs
}

// ValidateCronJobUpdate enforces CronJob update rules.
func ValidateCronJobUpdate(cronJob, oldCronJob *batch.CronJob) field.ErrorList {
	return corevalidation.ValidateObjectMetaUpdate(&cronJob.ObjectMeta, &oldCronJob.ObjectMeta, field.NewPath("metadata"))
}
