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
	"testing"

	"github.com/stretchr/testify/require"

	"k8s.io/utils/ptr"
)

func TestSetDefaultsJob(t *testing.T) {
	job := &Job{}
	SetDefaults_Job(job)

	require.Equal(t, int32(1), *job.Spec.Parallelism)
	require.Equal(t, int32(1), *job.Spec.Completions)
	require.Equal(t, int32(6), *job.Spec.BackoffLimit)
	require.Equal(t, NonIndexedCompletion, *job.Spec.CompletionMode)
	require.False(t, *job.Spec.Suspend)
}

func TestSetDefaultsJobDoesNotOverride(t *testing.T) {
	job := &Job{Spec: JobSpec{
		Parallelism:    ptr.To[int32](4),
		CompletionMode: ptr.To(IndexedCompletion),
		Suspend:        ptr.To(true),
	}}
	SetDefaults_Job(job)

	require.Equal(t, int32(4), *job.Spec.Parallelism)
	require.Equal(t, IndexedCompletion, *job.Spec.CompletionMode)
	require.True(t, *job.Spec.Suspend)
}

func TestSetDefaultsCronJob(t *testing.T) {
	cj := &CronJob{}
	SetDefaults_CronJob(cj)

	require.Equal(t, AllowConcurrent, cj.Spec.ConcurrencyPolicy)
	require.False(t, *cj.Spec.Suspend)
	require.Equal(t, int32(3), *cj.Spec.SuccessfulJobsHistoryLimit)
	require.Equal(t, int32(1), *cj.Spec.FailedJobsHistoryLimit)
	require.Equal(t, int32(1), *cj.Spec.JobTemplate.Spec.Parallelism, "embedded job template is defaulted")
}
