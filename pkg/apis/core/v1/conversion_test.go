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

	"github.com/zhongpeinan/taibai-api/pkg/apis/core"
)

func TestConvertSecretStringDataMerge(t *testing.T) {
	tests := []struct {
		name string
		in   Secret
		data map[string][]byte
		want map[string][]byte
	}{
		{
			name: "no stringData leaves data alone",
			in:   Secret{},
			data: map[string][]byte{"a": []byte("1")},
			want: map[string][]byte{"a": []byte("1")},
		},
		{
			name: "stringData merges into data",
			in:   Secret{StringData: map[string]string{"b": "2"}},
			data: map[string][]byte{"a": []byte("1")},
			want: map[string][]byte{"a": []byte("1"), "b": []byte("2")},
		},
		{
			name: "stringData wins on overlap",
			in:   Secret{StringData: map[string]string{"a": "override"}},
			data: map[string][]byte{"a": []byte("1")},
			want: map[string][]byte{"a": []byte("override")},
		},
		{
			name: "stringData into empty data",
			in:   Secret{StringData: map[string]string{"a": "1"}},
			want: map[string][]byte{"a": []byte("1")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := core.Secret{Data: tt.data}
			require.NoError(t, Convert_v1_Secret_To_core_Secret(&tt.in, &out))
			require.Equal(t, tt.want, out.Data)
		})
	}
}
