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

	"github.com/zhongpeinan/taibai-api/pkg/apis/batch"
	"github.com/zhongpeinan/taibai-api/pkg/apis/core"
)

func jobPodTemplate() core.PodTemplateSpec {
	return core.PodTemplateSpec{
		Spec: core.PodSpec{
			Containers: []core.Container{
				{
					Name:                     "worker",
					Image:                    "worker:v3",
					ImagePullPolicy:          core.PullIfNotPresent,
					TerminationMessagePath:   core.TerminationMessagePathDefault,
					TerminationMessagePolicy: core.TerminationMessageReadFile,
				},
			},
			RestartPolicy:                 core.RestartPolicyOnFailure,
			DNSPolicy:                     core.DNSClusterFirst,
			TerminationGracePeriodSeconds: ptr.To[int64](30),
		},
	}
}

func validJobSpec() batch.JobSpec {
	return batch.JobSpec{
		Parallelism:    1,
		Completions:    1,
		BackoffLimit:   6,
		CompletionMode: batch.NonIndexedCompletion,
		Template:       jobPodTemplate(),
	}
}

func validJob() *batch.Job {
	return &batch.Job{
		ObjectMeta: metav1.ObjectMeta{Name: "import"},
		Spec:       validJobSpec(),
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

func TestValidateJob(t *testing.T) {
	tests := []struct {
		name     string
		tweak    func(*batch.Job)
		errType  field.ErrorType
		errField string
	}{
		{
			name:  "valid",
			tweak: func(*batch.Job) {},
		},
		{
			name:     "negative parallelism",
			tweak:    func(j *batch.Job) { j.Spec.Parallelism = -1 },
			errType:  field.ErrorTypeInvalid,
			errField: "spec.parallelism",
		},
		{
			name:     "negative backoff limit",
			tweak:    func(j *batch.Job) { j.Spec.BackoffLimit = -1 },
			errType:  field.ErrorTypeInvalid,
			errField: "spec.backoffLimit",
		},
		{
			name: "restart policy Always rejected",
			tweak: func(j *batch.Job) {
				j.Spec.Template.Spec.RestartPolicy = core.RestartPolicyAlways
			},
			errType:  field.ErrorTypeNotSupported,
			errField: "spec.template.spec.restartPolicy",
		},
		{
			name:  "restart policy Never accepted",
			tweak: func(j *batch.Job) { j.Spec.Template.Spec.RestartPolicy = core.RestartPolicyNever },
		},
		{
			name:     "unsupported completion mode",
			tweak:    func(j *batch.Job) { j.Spec.CompletionMode = "Sorted" },
			errType:  field.ErrorTypeNotSupported,
			errField: "spec.completionMode",
		},
		{
			name: "selector without manualSelector",
			tweak: func(j *batch.Job) {
				j.Spec.Selector = &metav1.LabelSelector{MatchLabels: map[string]string{"job": "import"}}
			},
			errType:  field.ErrorTypeForbidden,
			errField: "spec.selector",
		},
		{
			name: "selector with manualSelector",
			tweak: func(j *batch.Job) {
				j.Spec.Selector = &metav1.LabelSelector{MatchLabels: map[string]string{"job": "import"}}
				j.Spec.ManualSelector = ptr.To(true)
			},
		},
		{
			name:     "zero active deadline",
			tweak:    func(j *batch.Job) { j.Spec.ActiveDeadlineSeconds = ptr.To[int64](0) },
			errType:  field.ErrorTypeInvalid,
			errField: "spec.activeDeadlineSeconds",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := validJob()
			tt.tweak(j)
			errs := ValidateJob(j)
			if tt.errField == "" {
				require.Empty(t, errs)
				return
			}
			hasError(t, errs, tt.errType, tt.errField)
		})
	}
}

func TestValidateJobUpdateImmutableFields(t *testing.T) {
	oldJob := validJob()

	changed := validJob()
	changed.Spec.CompletionMode = batch.IndexedCompletion
	errs := ValidateJobUpdate(changed, oldJob)
	hasError(t, errs, field.ErrorTypeInvalid, "spec.completionMode")

	require.Empty(t, ValidateJobUpdate(validJob(), oldJob))
}

func validCronJob() *batch.CronJob {
	return &batch.CronJob{
		ObjectMeta: metav1.ObjectMeta{Name: "nightly"},
		Spec: batch.CronJobSpec{
			Schedule:                   "0 2 * * *",
			ConcurrencyPolicy:          batch.AllowConcurrent,
			SuccessfulJobsHistoryLimit: 3,
			FailedJobsHistoryLimit:     1,
			JobTemplate: batch.JobTemplateSpec{
				Spec: validJobSpec(),
			},
		},
	}
}

func TestValidateCronJob(t *testing.T) {
	tests := []struct {
		name     string
		tweak    func(*batch.CronJob)
		errType  field.ErrorType
		errField string
	}{
		{
			name:  "valid",
			tweak: func(*batch.CronJob) {},
		},
		{
			name:     "missing schedule",
			tweak:    func(c *batch.CronJob) { c.Spec.Schedule = "" },
			errType:  field.ErrorTypeRequired,
			errField: "spec.schedule",
		},
		{
			name:     "malformed schedule",
			tweak:    func(c *batch.CronJob) { c.Spec.Schedule = "every tuesday" },
			errType:  field.ErrorTypeInvalid,
			errField: "spec.schedule",
		},
		{
			name:  "macro schedule",
			tweak: func(c *batch.CronJob) { c.Spec.Schedule = "@daily" },
		},
		{
			name:     "unsupported concurrency policy",
			tweak:    func(c *batch.CronJob) { c.Spec.ConcurrencyPolicy = "Queue" },
			errType:  field.ErrorTypeNotSupported,
			errField: "spec.concurrencyPolicy",
		},
		{
			name:     "unknown time zone",
			tweak:    func(c *batch.CronJob) { c.Spec.TimeZone = ptr.To("Mars/Olympus_Mons") },
			errType:  field.ErrorTypeInvalid,
			errField: "spec.timeZone",
		},
		{
			name:     "empty time zone",
			tweak:    func(c *batch.CronJob) { c.Spec.TimeZone = ptr.To("") },
			errType:  field.ErrorTypeInvalid,
			errField: "spec.timeZone",
		},
		{
			name:  "valid time zone",
			tweak: func(c *batch.CronJob) { c.Spec.TimeZone = ptr.To("Asia/Shanghai") },
		},
		{
			name:     "negative history limit",
			tweak:    func(c *batch.CronJob) { c.Spec.FailedJobsHistoryLimit = -1 },
			errType:  field.ErrorTypeInvalid,
			errField: "spec.failedJobsHistoryLimit",
		},
		{
			name: "invalid job template surfaces under jobTemplate",
			tweak: func(c *batch.CronJob) {
				c.Spec.JobTemplate.Spec.Template.Spec.Containers = nil
			},
			errType:  field.ErrorTypeRequired,
			errField: "spec.jobTemplate.spec.template.spec.containers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCronJob()
			tt.tweak(c)
			errs := ValidateCronJob(c)
			if tt.errField == "" {
				require.Empty(t, errs)
				return
			}
			hasError(t, errs, tt.errType, tt.errField)
		})
	}
}
