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

// Package validation contains the semantic validation rules for the hub
// representation of the core kind families. Every function is pure: same
// document in, same diagnostics out, and every violation is reported rather
// than failing fast.
package validation

import (
	"net"
	"strings"

	apiequality "k8s.io/apimachinery/pkg/api/equality"
	apimachineryvalidation "k8s.io/apimachinery/pkg/api/validation"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	v1validation "k8s.io/apimachinery/pkg/apis/meta/v1/validation"
	utilvalidation "k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/zhongpeinan/taibai-api/pkg/apis/core"
)

// ValidateObjectMeta validates object metadata. Unlike a full API server the
// pipeline has no request context that could default the namespace, so a
// namespaced object without one is accepted; a namespace set on a
// cluster-scoped object is not.
func ValidateObjectMeta(meta *metav1.ObjectMeta, namespaced bool, nameFn apimachineryvalidation.ValidateNameFunc, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	if meta.Name == "" {
		if meta.GenerateName == "" {
			allErrs = append(allErrs, field.Required(fldPath.Child("name"), "name or generateName is required"))
		}
	} else {
		for _, msg := range nameFn(meta.Name, false) {
			allErrs = append(allErrs, field.Invalid(fldPath.Child("name"), meta.Name, msg))
		}
	}
	if meta.Namespace != "" {
		if !namespaced {
			allErrs = append(allErrs, field.Forbidden(fldPath.Child("namespace"), "not allowed on this type"))
		} else {
			for _, msg := range apimachineryvalidation.ValidateNamespaceName(meta.Namespace, false) {
				allErrs = append(allErrs, field.Invalid(fldPath.Child("namespace"), meta.Namespace, msg))
			}
		}
	}
	allErrs = append(allErrs, v1validation.ValidateLabels(meta.Labels, fldPath.Child("labels"))...)
	allErrs = append(allErrs, apimachineryvalidation.ValidateAnnotations(meta.Annotations, fldPath.Child("annotations"))...)
	return allErrs
}

// ValidateObjectMetaUpdate enforces metadata immutability across an update.
func ValidateObjectMetaUpdate(newMeta, oldMeta *metav1.ObjectMeta, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	allErrs = append(allErrs, apimachineryvalidation.ValidateImmutableField(newMeta.Name, oldMeta.Name, fldPath.Child("name"))...)
	allErrs = append(allErrs, apimachineryvalidation.ValidateImmutableField(newMeta.Namespace, oldMeta.Namespace, fldPath.Child("namespace"))...)
	return allErrs
}

var supportedPortProtocols = []core.Protocol{core.ProtocolTCP, core.ProtocolUDP, core.ProtocolSCTP}

func validateContainerPorts(ports []core.ContainerPort, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	allNames := map[string]bool{}
	for i, port := range ports {
		idxPath := fldPath.Index(i)
		if port.Name != "" {
			for _, msg := range utilvalidation.IsValidPortName(port.Name) {
				allErrs = append(allErrs, field.Invalid(idxPath.Child("name"), port.Name, msg))
			}
			if allNames[port.Name] {
				allErrs = append(allErrs, field.Duplicate(idxPath.Child("name"), port.Name))
			}
			allNames[port.Name] = true
		}
		if port.ContainerPort == 0 {
			allErrs = append(allErrs, field.Required(idxPath.Child("containerPort"), ""))
		} else {
			for _, msg := range utilvalidation.IsValidPortNum(int(port.ContainerPort)) {
				allErrs = append(allErrs, field.Invalid(idxPath.Child("containerPort"), port.ContainerPort, msg))
			}
		}
		if port.HostPort != 0 {
			for _, msg := range utilvalidation.IsValidPortNum(int(port.HostPort)) {
				allErrs = append(allErrs, field.Invalid(idxPath.Child("hostPort"), port.HostPort, msg))
			}
		}
		if port.Protocol == "" {
			allErrs = append(allErrs, field.Required(idxPath.Child("protocol"), ""))
		} else if !protocolSupported(port.Protocol) {
			allErrs = append(allErrs, field.NotSupported(idxPath.Child("protocol"), port.Protocol, protocolStrings()))
		}
	}
	return allErrs
}

func protocolSupported(p core.Protocol) bool {
	for _, s := range supportedPortProtocols {
		if p == s {
			return true
		}
	}
	return false
}

func protocolStrings() []string {
	out := make([]string, 0, len(supportedPortProtocols))
	for _, p := range supportedPortProtocols {
		out = append(out, string(p))
	}
	return out
}

func validateEnv(env []core.EnvVar, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	for i, ev := range env {
		idxPath := fldPath.Index(i)
		if ev.Name == "" {
			allErrs = append(allErrs, field.Required(idxPath.Child("name"), ""))
		} else {
			for _, msg := range utilvalidation.IsEnvVarName(ev.Name) {
				allErrs = append(allErrs, field.Invalid(idxPath.Child("name"), ev.Name, msg))
			}
		}
	}
	return allErrs
}

// ValidateResourceRequirements checks that every quantity is non-negative
// and that requests never exceed the matching limit.
func ValidateResourceRequirements(requirements *core.ResourceRequirements, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	limPath := fldPath.Child("limits")
	reqPath := fldPath.Child("requests")
	for name, quantity := range requirements.Limits {
		if quantity.Sign() < 0 {
			allErrs = append(allErrs, field.Invalid(limPath.Key(string(name)), quantity.String(), "must be greater than or equal to 0"))
		}
	}
	for name, quantity := range requirements.Requests {
		if quantity.Sign() < 0 {
			allErrs = append(allErrs, field.Invalid(reqPath.Key(string(name)), quantity.String(), "must be greater than or equal to 0"))
			continue
		}
		if limit, ok := requirements.Limits[name]; ok && quantity.Cmp(limit) > 0 {
			allErrs = append(allErrs, field.Invalid(reqPath.Key(string(name)), quantity.String(), "must be less than or equal to "+string(name)+" limit"))
		}
	}
	return allErrs
}

var supportedTerminationMessagePolicies = []string{
	string(core.TerminationMessageReadFile),
	string(core.TerminationMessageFallbackToLogsOnError),
}

var supportedPullPolicies = []string{
	string(core.PullAlways),
	string(core.PullNever),
	string(core.PullIfNotPresent),
}

func validateContainers(containers []core.Container, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	if len(containers) == 0 {
		return append(allErrs, field.Required(fldPath, ""))
	}
	allNames := map[string]bool{}
	for i, ctr := range containers {
		idxPath := fldPath.Index(i)
		if ctr.Name == "" {
			allErrs = append(allErrs, field.Required(idxPath.Child("name"), ""))
		} else {
			for _, msg := range utilvalidation.IsDNS1123Label(ctr.Name) {
				allErrs = append(allErrs, field.Invalid(idxPath.Child("name"), ctr.Name, msg))
			}
			if allNames[ctr.Name] {
				allErrs = append(allErrs, field.Duplicate(idxPath.Child("name"), ctr.Name))
			}
			allNames[ctr.Name] = true
		}
		if ctr.Image == "" {
			allErrs = append(allErrs, field.Required(idxPath.Child("image"), ""))
		}
		switch ctr.ImagePullPolicy {
		case core.PullAlways, core.PullNever, core.PullIfNotPresent:
		case "":
			allErrs = append(allErrs, field.Required(idxPath.Child("imagePullPolicy"), ""))
		default:
			allErrs = append(allErrs, field.NotSupported(idxPath.Child("imagePullPolicy"), ctr.ImagePullPolicy, supportedPullPolicies))
		}
		switch ctr.TerminationMessagePolicy {
		case core.TerminationMessageReadFile, core.TerminationMessageFallbackToLogsOnError:
		case "":
			allErrs = append(allErrs, field.Required(idxPath.Child("terminationMessagePolicy"), ""))
		default:
			allErrs = append(allErrs, field.NotSupported(idxPath.Child("terminationMessagePolicy"), ctr.TerminationMessagePolicy, supportedTerminationMessagePolicies))
		}
		allErrs = append(allErrs, validateContainerPorts(ctr.Ports, idxPath.Child("ports"))...)
		allErrs = append(allErrs, validateEnv(ctr.Env, idxPath.Child("env"))...)
		allErrs = append(allErrs, ValidateResourceRequirements(&ctr.Resources, idxPath.Child("resources"))...)
	}
	return allErrs
}

var supportedRestartPolicies = []string{
	string(core.RestartPolicyAlways),
	string(core.RestartPolicyOnFailure),
	string(core.RestartPolicyNever),
}

var supportedDNSPolicies = []string{
	string(core.DNSClusterFirstWithHostNet),
	string(core.DNSClusterFirst),
	string(core.DNSDefault),
	string(core.DNSNone),
}

// ValidatePodSpec validates a PodSpec. It is shared by every
// pod-template-bearing kind family.
func ValidatePodSpec(spec *core.PodSpec, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	allErrs = append(allErrs, validateContainers(spec.Containers, fldPath.Child("containers"))...)

	switch spec.RestartPolicy {
	case core.RestartPolicyAlways, core.RestartPolicyOnFailure, core.RestartPolicyNever:
	case "":
		allErrs = append(allErrs, field.Required(fldPath.Child("restartPolicy"), ""))
	default:
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("restartPolicy"), spec.RestartPolicy, supportedRestartPolicies))
	}

	switch spec.DNSPolicy {
	case core.DNSClusterFirstWithHostNet, core.DNSClusterFirst, core.DNSDefault, core.DNSNone:
	case "":
		allErrs = append(allErrs, field.Required(fldPath.Child("dnsPolicy"), ""))
	default:
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("dnsPolicy"), spec.DNSPolicy, supportedDNSPolicies))
	}

	if spec.TerminationGracePeriodSeconds == nil {
		allErrs = append(allErrs, field.Required(fldPath.Child("terminationGracePeriodSeconds"), "terminationGracePeriodSeconds is required"))
	} else if *spec.TerminationGracePeriodSeconds < 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("terminationGracePeriodSeconds"), *spec.TerminationGracePeriodSeconds, "must be greater than or equal to 0"))
	}

	if spec.ActiveDeadlineSeconds != nil && *spec.ActiveDeadlineSeconds <= 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("activeDeadlineSeconds"), *spec.ActiveDeadlineSeconds, "must be greater than 0"))
	}

	allErrs = append(allErrs, validateNodeSelector(spec.NodeSelector, fldPath.Child("nodeSelector"))...)

	if spec.ServiceAccountName != "" {
		for _, msg := range apimachineryvalidation.NameIsDNSSubdomain(spec.ServiceAccountName, false) {
			allErrs = append(allErrs, field.Invalid(fldPath.Child("serviceAccountName"), spec.ServiceAccountName, msg))
		}
	}

	return allErrs
}

func validateNodeSelector(selector map[string]string, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	for k, v := range selector {
		for _, msg := range utilvalidation.IsQualifiedName(k) {
			allErrs = append(allErrs, field.Invalid(fldPath, k, msg))
		}
		for _, msg := range utilvalidation.IsValidLabelValue(v) {
			allErrs = append(allErrs, field.Invalid(fldPath, v, msg))
		}
	}
	return allErrs
}

// ValidatePodTemplateSpec validates metadata and spec of an embedded pod
// template.
func ValidatePodTemplateSpec(template *core.PodTemplateSpec, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	allErrs = append(allErrs, v1validation.ValidateLabels(template.Labels, fldPath.Child("metadata", "labels"))...)
	allErrs = append(allErrs, ValidatePodSpec(&template.Spec, fldPath.Child("spec"))...)
	return allErrs
}

// ValidatePod validates a Pod.
func ValidatePod(pod *core.Pod) field.ErrorList {
	allErrs := ValidateObjectMeta(&pod.ObjectMeta, true, apimachineryvalidation.NameIsDNSSubdomain, field.NewPath("metadata"))
	allErrs = append(allErrs, ValidatePodSpec(&pod.Spec, field.NewPath("spec"))...)
	return allErrs
}

var supportedServiceTypes = []string{
	string(core.ServiceTypeClusterIP),
	string(core.ServiceTypeNodePort),
	string(core.ServiceTypeLoadBalancer),
	string(core.ServiceTypeExternalName),
}

var supportedSessionAffinities = []string{
	string(core.ServiceAffinityClientIP),
	string(core.ServiceAffinityNone),
}

var supportedInternalTrafficPolicies = []string{
	string(core.ServiceInternalTrafficPolicyCluster),
	string(core.ServiceInternalTrafficPolicyLocal),
}

// ValidateService validates a Service.
func ValidateService(service *core.Service) field.ErrorList {
	allErrs := ValidateObjectMeta(&service.ObjectMeta, true, apimachineryvalidation.NameIsDNSLabel, field.NewPath("metadata"))
	specPath := field.NewPath("spec")
	spec := &service.Spec

	switch spec.Type {
	case core.ServiceTypeClusterIP, core.ServiceTypeNodePort, core.ServiceTypeLoadBalancer:
		if len(spec.Ports) == 0 {
			allErrs = append(allErrs, field.Required(specPath.Child("ports"), ""))
		}
	case core.ServiceTypeExternalName:
		if spec.ExternalName == "" {
			allErrs = append(allErrs, field.Required(specPath.Child("externalName"), ""))
		} else {
			for _, msg := range utilvalidation.IsDNS1123Subdomain(spec.ExternalName) {
				allErrs = append(allErrs, field.Invalid(specPath.Child("externalName"), spec.ExternalName, msg))
			}
		}
	case "":
		allErrs = append(allErrs, field.Required(specPath.Child("type"), ""))
	default:
		allErrs = append(allErrs, field.NotSupported(specPath.Child("type"), spec.Type, supportedServiceTypes))
	}

	portsPath := specPath.Child("ports")
	portNames := map[string]bool{}
	requireName := len(spec.Ports) > 1
	for i, port := range spec.Ports {
		idxPath := portsPath.Index(i)
		if port.Name == "" {
			if requireName {
				allErrs = append(allErrs, field.Required(idxPath.Child("name"), ""))
			}
		} else {
			for _, msg := range utilvalidation.IsValidPortName(port.Name) {
				allErrs = append(allErrs, field.Invalid(idxPath.Child("name"), port.Name, msg))
			}
			if portNames[port.Name] {
				allErrs = append(allErrs, field.Duplicate(idxPath.Child("name"), port.Name))
			}
			portNames[port.Name] = true
		}
		if port.Port == 0 {
			allErrs = append(allErrs, field.Required(idxPath.Child("port"), ""))
		} else {
			for _, msg := range utilvalidation.IsValidPortNum(int(port.Port)) {
				allErrs = append(allErrs, field.Invalid(idxPath.Child("port"), port.Port, msg))
			}
		}
		if port.Protocol == "" {
			allErrs = append(allErrs, field.Required(idxPath.Child("protocol"), ""))
		} else if !protocolSupported(port.Protocol) {
			allErrs = append(allErrs, field.NotSupported(idxPath.Child("protocol"), port.Protocol, protocolStrings()))
		}
		if port.NodePort != 0 && spec.Type == core.ServiceTypeClusterIP {
			allErrs = append(allErrs, field.Forbidden(idxPath.Child("nodePort"), "may not be used when `type` is 'ClusterIP'"))
		}
	}

	if spec.ClusterIP != "" && spec.ClusterIP != core.ClusterIPNone {
		if net.ParseIP(spec.ClusterIP) == nil {
			allErrs = append(allErrs, field.Invalid(specPath.Child("clusterIP"), spec.ClusterIP, "must be empty, 'None', or a valid IP address"))
		}
	}

	switch spec.SessionAffinity {
	case core.ServiceAffinityClientIP, core.ServiceAffinityNone:
	case "":
		allErrs = append(allErrs, field.Required(specPath.Child("sessionAffinity"), ""))
	default:
		allErrs = append(allErrs, field.NotSupported(specPath.Child("sessionAffinity"), spec.SessionAffinity, supportedSessionAffinities))
	}

	if spec.InternalTrafficPolicy != nil {
		switch *spec.InternalTrafficPolicy {
		case core.ServiceInternalTrafficPolicyCluster, core.ServiceInternalTrafficPolicyLocal:
		default:
			allErrs = append(allErrs, field.NotSupported(specPath.Child("internalTrafficPolicy"), *spec.InternalTrafficPolicy, supportedInternalTrafficPolicies))
		}
	}

	allErrs = append(allErrs, v1validation.ValidateLabels(spec.Selector, specPath.Child("selector"))...)
	return allErrs
}

// ValidateServiceUpdate enforces Service update rules: the allocated
// clusterIP is immutable once set.
func ValidateServiceUpdate(service, oldService *core.Service) field.ErrorList {
	allErrs := ValidateObjectMetaUpdate(&service.ObjectMeta, &oldService.ObjectMeta, field.NewPath("metadata"))
	if oldService.Spec.ClusterIP != "" {
		allErrs = append(allErrs, apimachineryvalidation.ValidateImmutableField(service.Spec.ClusterIP, oldService.Spec.ClusterIP, field.NewPath("spec", "clusterIP"))...)
	}
	return allErrs
}

func validateDataKeys(keys map[string]bool, key string, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	for _, msg := range utilvalidation.IsConfigMapKey(key) {
		allErrs = append(allErrs, field.Invalid(fldPath.Key(key), key, msg))
	}
	if keys[key] {
		allErrs = append(allErrs, field.Duplicate(fldPath.Key(key), key))
	}
	keys[key] = true
	return allErrs
}

// ValidateConfigMap validates a ConfigMap.
func ValidateConfigMap(cfg *core.ConfigMap) field.ErrorList {
	allErrs := ValidateObjectMeta(&cfg.ObjectMeta, true, apimachineryvalidation.NameIsDNSSubdomain, field.NewPath("metadata"))

	totalSize := 0
	keys := map[string]bool{}
	for key, value := range cfg.Data {
		allErrs = append(allErrs, validateDataKeys(keys, key, field.NewPath("data"))...)
		totalSize += len(value)
	}
	for key, value := range cfg.BinaryData {
		allErrs = append(allErrs, validateDataKeys(keys, key, field.NewPath("binaryData"))...)
		totalSize += len(value)
	}
	if totalSize > core.MaxSecretSize {
		allErrs = append(allErrs, field.TooLong(field.NewPath("data"), "", core.MaxSecretSize))
	}
	return allErrs
}

// ValidateConfigMapUpdate enforces the immutable-flag semantics: once a
// ConfigMap is marked immutable its payload is frozen and the flag cannot be
// cleared.
func ValidateConfigMapUpdate(cfg, oldCfg *core.ConfigMap) field.ErrorList {
	allErrs := ValidateObjectMetaUpdate(&cfg.ObjectMeta, &oldCfg.ObjectMeta, field.NewPath("metadata"))
	if oldCfg.Immutable != nil && *oldCfg.Immutable {
		if cfg.Immutable == nil || !*cfg.Immutable {
			allErrs = append(allErrs, field.Forbidden(field.NewPath("immutable"), "field is immutable when `immutable` is set"))
		}
		if !apiequality.Semantic.DeepEqual(cfg.Data, oldCfg.Data) {
			allErrs = append(allErrs, field.Forbidden(field.NewPath("data"), "field is immutable when `immutable` is set"))
		}
		if !apiequality.Semantic.DeepEqual(cfg.BinaryData, oldCfg.BinaryData) {
			allErrs = append(allErrs, field.Forbidden(field.NewPath("binaryData"), "field is immutable when `immutable` is set"))
		}
	}
	return allErrs
}

// ValidateSecret validates a Secret.
func ValidateSecret(secret *core.Secret) field.ErrorList {
	allErrs := ValidateObjectMeta(&secret.ObjectMeta, true, apimachineryvalidation.NameIsDNSSubdomain, field.NewPath("metadata"))

	dataPath := field.NewPath("data")
	totalSize := 0
	for key, value := range secret.Data {
		for _, msg := range utilvalidation.IsConfigMapKey(key) {
			allErrs = append(allErrs, field.Invalid(dataPath.Key(key), key, msg))
		}
		totalSize += len(value)
	}
	if totalSize > core.MaxSecretSize {
		allErrs = append(allErrs, field.TooLong(dataPath, "", core.MaxSecretSize))
	}
	if secret.Type == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("type"), ""))
	}
	return allErrs
}

// ValidateSecretUpdate enforces Secret update rules: the type is immutable,
// and an immutable secret's payload is frozen.
func ValidateSecretUpdate(secret, oldSecret *core.Secret) field.ErrorList {
	allErrs := ValidateObjectMetaUpdate(&secret.ObjectMeta, &oldSecret.ObjectMeta, field.NewPath("metadata"))
	allErrs = append(allErrs, apimachineryvalidation.ValidateImmutableField(secret.Type, oldSecret.Type, field.NewPath("type"))...)
	if oldSecret.Immutable != nil && *oldSecret.Immutable {
		if secret.Immutable == nil || !*secret.Immutable {
			allErrs = append(allErrs, field.Forbidden(field.NewPath("immutable"), "field is immutable when `immutable` is set"))
		}
		if !apiequality.Semantic.DeepEqual(secret.Data, oldSecret.Data) {
			allErrs = append(allErrs, field.Forbidden(field.NewPath("data"), "field is immutable when `immutable` is set"))
		}
	}
	return allErrs
}

// ValidateNamespace validates a Namespace.
func ValidateNamespace(namespace *core.Namespace) field.ErrorList {
	allErrs := ValidateObjectMeta(&namespace.ObjectMeta, false, apimachineryvalidation.ValidateNamespaceName, field.NewPath("metadata"))
	for i, finalizer := range namespace.Spec.Finalizers {
		allErrs = append(allErrs, validateFinalizerName(string(finalizer), field.NewPath("spec", "finalizers").Index(i))...)
	}
	return allErrs
}

func validateFinalizerName(name string, fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}
	if name == "" {
		return append(allErrs, field.Required(fldPath, ""))
	}
	// Qualified finalizers are fine as-is; bare names are reserved for the
	// well-known kubernetes finalizer.
	if strings.Contains(name, "/") || name == string(core.FinalizerKubernetes) {
		for _, msg := range utilvalidation.IsQualifiedName(name) {
			allErrs = append(allErrs, field.Invalid(fldPath, name, msg))
		}
		return allErrs
	}
	return append(allErrs, field.Invalid(fldPath, name, "name is neither a standard finalizer name nor is it fully qualified"))
}

// ValidateNamespaceUpdate enforces Namespace update rules.
func ValidateNamespaceUpdate(namespace, oldNamespace *core.Namespace) field.ErrorList {
	return ValidateObjectMetaUpdate(&namespace.ObjectMeta, &oldNamespace.ObjectMeta, field.NewPath("metadata"))
}
