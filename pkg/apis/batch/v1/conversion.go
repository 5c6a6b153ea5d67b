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
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/zhongpeinan/taibai-api/pkg/apis/batch"
	"github.com/zhongpeinan/taibai-api/pkg/pipeline"
)

// Convert_batch_CronJob_To_v1_CronJob guards the hub-to-wire direction: a
// hub document can carry a concurrency policy this version has no spelling
// for, and such a value must fail conversion rather than round-trip as an
// unknown string.
func Convert_batch_CronJob_To_v1_CronJob(in *batch.CronJob, out *CronJob) error {
	switch in.Spec.ConcurrencyPolicy {
	case batch.AllowConcurrent, batch.ForbidConcurrent, batch.ReplaceConcurrent, "":
		return nil
	default:
		return pipeline.NewConversionError(
			field.NewPath("spec", "concurrencyPolicy"),
			string(in.Spec.ConcurrencyPolicy),
			"no equivalent concurrency policy in batch/v1",
		)
	}
}
