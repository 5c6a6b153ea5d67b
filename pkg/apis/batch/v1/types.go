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

// Package v1 contains the batch/v1 wire representation of the batch kinds.
package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	corev1 "github.com/zhongpeinan/taibai-api/pkg/apis/core/v1"
)

// CompletionMode specifies how pod completions of a job are tracked.
type CompletionMode string

const (
	NonIndexedCompletion CompletionMode = "NonIndexed"
	IndexedCompletion    CompletionMode = "Indexed"
)

// JobSpec describes how a job execution will look like.
type JobSpec struct {
	// Parallelism is the maximum number of pods running at any instant.
	// Defaults to 1.
	Parallelism *int32 `json:"parallelism,omitempty"`

	// Completions is the number of successfully finished pods the job is
	// run for. Defaults to 1.
	Completions *int32 `json:"completions,omitempty"`

	ActiveDeadlineSeconds *int64 `json:"activeDeadlineSeconds,omitempty"`

	// BackoffLimit is the number of retries before marking the job failed.
	// Defaults to 6.
	BackoffLimit *int32 `json:"backoffLimit,omitempty"`

	Selector *metav1.LabelSelector `json:"selector,omitempty"`

	ManualSelector *bool `json:"manualSelector,omitempty"`

	Template corev1.PodTemplateSpec `json:"template"`

	TTLSecondsAfterFinished *int32 `json:"ttlSecondsAfterFinished,omitempty"`

	// CompletionMode defaults to NonIndexed.
	CompletionMode *CompletionMode `json:"completionMode,omitempty"`

	// Suspend defaults to false.
	Suspend *bool `json:"suspend,omitempty"`
}

// JobStatus represents the current state of a job.
type JobStatus struct {
	StartTime      *metav1.Time `json:"startTime,omitempty"`
	CompletionTime *metav1.Time `json:"completionTime,omitempty"`
	Active         int32        `json:"active,omitempty"`
	Succeeded      int32        `json:"succeeded,omitempty"`
	Failed         int32        `json:"failed,omitempty"`
}

// Job represents the configuration of a single job.
type Job struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   JobSpec   `json:"spec,omitempty"`
	Status JobStatus `json:"status,omitempty"`
}

// ConcurrencyPolicy describes how concurrently running job executions are
// treated.
type ConcurrencyPolicy string

const (
	AllowConcurrent   ConcurrencyPolicy = "Allow"
	ForbidConcurrent  ConcurrencyPolicy = "Forbid"
	ReplaceConcurrent ConcurrencyPolicy = "Replace"
)

// JobTemplateSpec describes the job that will be created from a cron job
// schedule.
type JobTemplateSpec struct {
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec              JobSpec `json:"spec,omitempty"`
}

// CronJobSpec describes how job executions will be created from a schedule.
type CronJobSpec struct {
	// Schedule holds the cron expression.
	Schedule string `json:"schedule"`

	// TimeZone names the IANA time zone the schedule is evaluated in.
	TimeZone *string `json:"timeZone,omitempty"`

	StartingDeadlineSeconds *int64 `json:"startingDeadlineSeconds,omitempty"`

	// ConcurrencyPolicy defaults to Allow.
	ConcurrencyPolicy ConcurrencyPolicy `json:"concurrencyPolicy,omitempty"`

	// Suspend defaults to false.
	Suspend *bool `json:"suspend,omitempty"`

	JobTemplate JobTemplateSpec `json:"jobTemplate"`

	// SuccessfulJobsHistoryLimit defaults to 3.
	SuccessfulJobsHistoryLimit *int32 `json:"successfulJobsHistoryLimit,omitempty"`

	// FailedJobsHistoryLimit defaults to 1.
	FailedJobsHistoryLimit *int32 `json:"failedJobsHistoryLimit,omitempty"`
}

// CronJobStatus represents the current state of a cron job.
type CronJobStatus struct {
	LastScheduleTime   *metav1.Time `json:"lastScheduleTime,omitempty"`
	LastSuccessfulTime *metav1.Time `json:"lastSuccessfulTime,omitempty"`
}

// CronJob represents the configuration of a single cron job.
type CronJob struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   CronJobSpec   `json:"spec,omitempty"`
	Status CronJobStatus `json:"status,omitempty"`
}
