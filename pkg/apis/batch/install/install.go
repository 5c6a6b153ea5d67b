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

// Package install registers the batch kind families with a pipeline builder.
package install

import (
	"go.uber.org/multierr"

	"github.com/zhongpeinan/taibai-api/pkg/apis/batch"
	"github.com/zhongpeinan/taibai-api/pkg/apis/batch/validation"
	batchv1 "github.com/zhongpeinan/taibai-api/pkg/apis/batch/v1"
	"github.com/zhongpeinan/taibai-api/pkg/pipeline"
)

// Install registers every batch kind and its v1 external version.
func Install(b *pipeline.Builder) error {
	return multierr.Combine(
		pipeline.RegisterKind(b, batchv1.Kind("Job"), pipeline.KindFuncs[batchv1.Job, batch.Job]{
			Defaults:       batchv1.SetDefaults_Job,
			Validate:       validation.ValidateJob,
			ValidateUpdate: validation.ValidateJobUpdate,
		}),
		pipeline.RegisterKind(b, batchv1.Kind("CronJob"), pipeline.KindFuncs[batchv1.CronJob, batch.CronJob]{
			Defaults:       batchv1.SetDefaults_CronJob,
			FromHub:        batchv1.Convert_batch_CronJob_To_v1_CronJob,
			Validate:       validation.ValidateCronJob,
			ValidateUpdate: validation.ValidateCronJobUpdate,
		}),
	)
}
