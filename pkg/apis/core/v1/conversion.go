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
	"github.com/zhongpeinan/taibai-api/pkg/apis/core"
)

// The structural conversion layer covers the core kinds almost entirely;
// the functions here are the semantic residue that a field copy cannot
// express.

// Convert_v1_Secret_To_core_Secret merges the write-only stringData field
// into the hub's data map. Keys present in both maps take their value from
// stringData. The merge is one way: nothing reconstructs stringData on the
// way back out.
func Convert_v1_Secret_To_core_Secret(in *Secret, out *core.Secret) error {
	if len(in.StringData) == 0 {
		return nil
	}
	if out.Data == nil {
		out.Data = make(map[string][]byte, len(in.StringData))
	}
	for k, v := range in.StringData {
		out.Data[k] = []byte(v)
	}
	return nil
}
