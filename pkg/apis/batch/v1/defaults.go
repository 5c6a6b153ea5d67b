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

package v1

import (
	"k8s.io/utils/ptr"

	corev1 "github.com/zhongpeinan/taibai-api/pkg/apis/core/v1"
)

// SetDefaults_Job sets the job-level defaults and then defaults the embedded
// pod template.
func SetDefaults_Job(obj *Job) {
	SetDefaults_JobSpec(&obj.Spec)
}

// SetDefaults_JobSpec is shared with the cron job's embedded job template.
func SetDefaults_JobSpec(spec *JobSpec) {
	if spec.Parallelism == nil {
		spec.Parallelism = ptr.To[int32](1)
	}
	if spec.Completions == nil {
		spec.Completions = ptr.To[int32](1)
	}
	if spec.BackoffLimit == nil {
		spec.BackoffLimit = ptr.To[int32](6)
	}
	if spec.CompletionMode == nil {
		spec.CompletionMode = ptr.To(NonIndexedCompletion)
	}
	if spec.Suspend == nil {
		spec.Suspend = ptr.To(false)
	}
	corev1.SetDefaults_PodSpec(&spec.Template.Spec)
}

// SetDefaults_CronJob sets the cron-job-level defaults. The embedded job
// template is defaulted through SetDefaults_JobSpec so both entry points
// agree.
func SetDefaults_CronJob(obj *CronJob) {
	if obj.Spec.ConcurrencyPolicy == "" {
		obj.Spec.ConcurrencyPolicy = AllowConcurrent
	}
	if obj.Spec.Suspend == nil {
		obj.Spec.Suspend = ptr.To(false)
	}
	if obj.Spec.SuccessfulJobsHistoryLimit == nil {
		obj.Spec.SuccessfulJobsHistoryLimit = ptr.To[int32](3)
	}
	if obj.Spec.FailedJobsHistoryLimit == nil {
		obj.Spec.FailedJobsHistoryLimit = ptr.To[int32](1)
	}
	SetDefaults_JobSpec(&obj.Spec.JobTemplate.Spec)
}
