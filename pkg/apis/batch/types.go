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

// Package batch holds the hub representation of the batch kind families.
// Counters that the wire version leaves optional are resolved to concrete
// values here by the time defaulting and conversion have run.
package batch

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/zhongpeinan/taibai-api/pkg/apis/core"
)

// CompletionMode specifies how pod completions of a job are tracked.
type CompletionMode string

const (
	// NonIndexedCompletion tracks completions as a plain count.
	NonIndexedCompletion CompletionMode = "NonIndexed"
	// IndexedCompletion gives every pod an associated completion index.
	IndexedCompletion CompletionMode = "Indexed"
)

// JobSpec describes how a job execution will look like.
type JobSpec struct {
	// Parallelism is the maximum number of pods running at any instant. In
	// the hub form it is always resolved to a concrete value.
	Parallelism int32 `json:"parallelism"`

	// Completions is the number of successfully finished pods the job is
	// run for.
	Completions int32 `json:"completions"`

	ActiveDeadlineSeconds *int64 `json:"activeDeadlineSeconds,omitempty"`

	// BackoffLimit is the number of retries before marking the job failed.
	BackoffLimit int32 `json:"backoffLimit"`

	Selector *metav1.LabelSelector `json:"selector,omitempty"`

	// ManualSelector opts out of the auto-generated pod selector.
	ManualSelector *bool `json:"manualSelector,omitempty"`

	Template core.PodTemplateSpec `json:"template"`

	TTLSecondsAfterFinished *int32 `json:"ttlSecondsAfterFinished,omitempty"`

	CompletionMode CompletionMode `json:"completionMode,omitempty"`

	// Suspend pauses pod creation when true.
	Suspend bool `json:"suspend"`
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
	// AllowConcurrent allows jobs to run concurrently.
	AllowConcurrent ConcurrencyPolicy = "Allow"
	// ForbidConcurrent skips the next run if the previous has not finished.
	ForbidConcurrent ConcurrencyPolicy = "Forbid"
	// ReplaceConcurrent cancels the running job and replaces it.
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
	// When nil the schedule is relative to the local time zone.
	TimeZone *string `json:"timeZone,omitempty"`

	StartingDeadlineSeconds *int64 `json:"startingDeadlineSeconds,omitempty"`

	ConcurrencyPolicy ConcurrencyPolicy `json:"concurrencyPolicy"`

	// Suspend pauses subsequent executions when true.
	Suspend bool `json:"suspend"`

	JobTemplate JobTemplateSpec `json:"jobTemplate"`

	// SuccessfulJobsHistoryLimit is the number of finished jobs to retain.
	SuccessfulJobsHistoryLimit int32 `json:"successfulJobsHistoryLimit"`

	// FailedJobsHistoryLimit is the number of failed jobs to retain.
	FailedJobsHistoryLimit int32 `json:"failedJobsHistoryLimit"`
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
