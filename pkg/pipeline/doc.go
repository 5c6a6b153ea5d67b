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

// Package pipeline implements the cross-version object-processing engine:
// a registry mapping a (group, version, kind) identity to the defaulting,
// hub-conversion and validation behavior registered for it, and the
// orchestration that sequences those stages over a decoded document.
//
// Every external version of a kind converts only to and from the kind
// family's single internal hub representation (a star topology). Conversion
// is layered: a structural pass copies fields whose name and shape match in
// both schemas, then a hand-written semantic pass handles everything that
// changed shape or meaning between versions.
//
// The registry is built once through a Builder, sealed, and is read-only
// afterwards, which makes it safe to share across concurrent pipeline
// invocations without locking. The engine itself spawns no goroutines and
// performs no I/O.
package pipeline
