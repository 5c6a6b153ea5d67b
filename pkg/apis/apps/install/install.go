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

// Package install registers the apps kind families with a pipeline builder.
package install

import (
	"go.uber.org/multierr"

	"github.com/zhongpeinan/taibai-api/pkg/apis/apps"
	"github.com/zhongpeinan/taibai-api/pkg/apis/apps/validation"
	appsv1 "github.com/zhongpeinan/taibai-api/pkg/apis/apps/v1"
	"github.com/zhongpeinan/taibai-api/pkg/pipeline"
)

// Install registers every apps kind and its v1 external version. The apps
// conversions are purely structural: the optional wire counters and the hub
// values are reconciled by the field copier, with defaulting having resolved
// every pointer before conversion runs.
func Install(b *pipeline.Builder) error {
	return multierr.Combine(
		pipeline.RegisterKind(b, appsv1.Kind("Deployment"), pipeline.KindFuncs[appsv1.Deployment, apps.Deployment]{
			Defaults:       appsv1.SetDefaults_Deployment,
			Validate:       validation.ValidateDeployment,
			ValidateUpdate: validation.ValidateDeploymentUpdate,
		}),
		pipeline.RegisterKind(b, appsv1.Kind("DaemonSet"), pipeline.KindFuncs[appsv1.DaemonSet, apps.DaemonSet]{
			Defaults:       appsv1.SetDefaults_DaemonSet,
			Validate:       validation.ValidateDaemonSet,
			ValidateUpdate: validation.ValidateDaemonSetUpdate,
		}),
		pipeline.RegisterKind(b, appsv1.Kind("StatefulSet"), pipeline.KindFuncs[appsv1.StatefulSet, apps.StatefulSet]{
			Defaults:       appsv1.SetDefaults_StatefulSet,
			Validate:       validation.ValidateStatefulSet,
			ValidateUpdate: validation.ValidateStatefulSetUpdate,
		}),
	)
}
