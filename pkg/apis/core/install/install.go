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

// Package install registers the core kind families with a pipeline builder.
package install

import (
	"go.uber.org/multierr"

	"github.com/zhongpeinan/taibai-api/pkg/apis/core"
	"github.com/zhongpeinan/taibai-api/pkg/apis/core/validation"
	corev1 "github.com/zhongpeinan/taibai-api/pkg/apis/core/v1"
	"github.com/zhongpeinan/taibai-api/pkg/pipeline"
)

// Install registers every core kind and its v1 external version.
func Install(b *pipeline.Builder) error {
	return multierr.Combine(
		pipeline.RegisterKind(b, corev1.Kind("Pod"), pipeline.KindFuncs[corev1.Pod, core.Pod]{
			Defaults: corev1.SetDefaults_Pod,
			Validate: validation.ValidatePod,
		}),
		pipeline.RegisterKind(b, corev1.Kind("Service"), pipeline.KindFuncs[corev1.Service, core.Service]{
			Defaults:       corev1.SetDefaults_Service,
			Validate:       validation.ValidateService,
			ValidateUpdate: validation.ValidateServiceUpdate,
		}),
		// ConfigMap has no defaulter: a decoded document passes the
		// defaulting stage unchanged.
		pipeline.RegisterKind(b, corev1.Kind("ConfigMap"), pipeline.KindFuncs[corev1.ConfigMap, core.ConfigMap]{
			Validate:       validation.ValidateConfigMap,
			ValidateUpdate: validation.ValidateConfigMapUpdate,
		}),
		pipeline.RegisterKind(b, corev1.Kind("Secret"), pipeline.KindFuncs[corev1.Secret, core.Secret]{
			Defaults:       corev1.SetDefaults_Secret,
			ToHub:          corev1.Convert_v1_Secret_To_core_Secret,
			Validate:       validation.ValidateSecret,
			ValidateUpdate: validation.ValidateSecretUpdate,
		}),
		pipeline.RegisterKind(b, corev1.Kind("Namespace"), pipeline.KindFuncs[corev1.Namespace, core.Namespace]{
			Defaults:       corev1.SetDefaults_Namespace,
			Validate:       validation.ValidateNamespace,
			ValidateUpdate: validation.ValidateNamespaceUpdate,
		}),
	)
}
