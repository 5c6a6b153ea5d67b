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

package pipeline

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// CoreGroupKeyword substitutes for the empty API group in serialized identity
// keys, which cannot represent an empty segment.
const CoreGroupKeyword = "core"

// FormatIdentity renders a resource identity as "{group}/{version}/{kind}",
// mapping the empty group to "core". This is the stable key format external
// tooling diffs against.
func FormatIdentity(gvk schema.GroupVersionKind) string {
	group := gvk.Group
	if group == "" {
		group = CoreGroupKeyword
	}
	return group + "/" + gvk.Version + "/" + gvk.Kind
}

// ParseIdentity parses a "{group}/{version}/{kind}" key produced by
// FormatIdentity back into a GroupVersionKind.
func ParseIdentity(s string) (schema.GroupVersionKind, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return schema.GroupVersionKind{}, fmt.Errorf("invalid identity %q: expected {group}/{version}/{kind}", s)
	}
	group := parts[0]
	if group == CoreGroupKeyword {
		group = ""
	}
	return schema.GroupVersionKind{Group: group, Version: parts[1], Kind: parts[2]}, nil
}
