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

	"github.com/zhongpeinan/taibai-api/pkg/apis/batch"
	"github.com/zhongpeinan/taibai-api/pkg/pipeline"
)

func TestConvertCronJobConcurrencyPolicyGuard(t *testing.T) {
	tests := []struct {
		name    string
		policy  batch.ConcurrencyPolicy
		wantErr bool
	}{
		{name: "allow", policy: batch.AllowConcurrent},
		{name: "forbid", policy: batch.ForbidConcurrent},
		{name: "replace", policy: batch.ReplaceConcurrent},
		{name: "empty passes through", policy: ""},
		{name: "unknown enumerant fails", policy: "Coalesce", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &batch.CronJob{}
			in.Spec.ConcurrencyPolicy = tt.policy
			err := Convert_batch_CronJob_To_v1_CronJob(in, &CronJob{})
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, pipeline.IsConversionError(err))
			var convErr *pipeline.ConversionError
			require.ErrorAs(t, err, &convErr)
			require.Equal(t, "spec.concurrencyPolicy", convErr.Path.String())
		})
	}
}
