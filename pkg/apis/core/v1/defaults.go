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
	"strings"

	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"
)

// DefaultTerminationGracePeriodSeconds is the grace period applied to pods
// that do not request one.
const DefaultTerminationGracePeriodSeconds int64 = 30

// SetDefaults_Pod sets default values for Pod. All defaults are a pure
// function of the document's own fields and are idempotent.
func SetDefaults_Pod(obj *Pod) {
	SetDefaults_PodSpec(&obj.Spec)
}

// SetDefaults_PodSpec sets default values for PodSpec. It is shared by every
// pod-template-bearing kind.
func SetDefaults_PodSpec(spec *PodSpec) {
	if spec.RestartPolicy == "" {
		spec.RestartPolicy = RestartPolicyAlways
	}
	if spec.DNSPolicy == "" {
		spec.DNSPolicy = DNSClusterFirst
	}
	if spec.TerminationGracePeriodSeconds == nil {
		spec.TerminationGracePeriodSeconds = ptr.To(DefaultTerminationGracePeriodSeconds)
	}
	for i := range spec.Containers {
		SetDefaults_Container(&spec.Containers[i])
	}
}

// SetDefaults_Container sets default values for a single container.
func SetDefaults_Container(c *Container) {
	if c.ImagePullPolicy == "" {
		// :latest images are re-pulled on every start, everything else is
		// pulled once.
		if tagIsLatest(c.Image) {
			c.ImagePullPolicy = PullAlways
		} else {
			c.ImagePullPolicy = PullIfNotPresent
		}
	}
	if c.TerminationMessagePath == "" {
		c.TerminationMessagePath = TerminationMessagePathDefault
	}
	if c.TerminationMessagePolicy == "" {
		c.TerminationMessagePolicy = TerminationMessageReadFile
	}
	for i := range c.Ports {
		if c.Ports[i].Protocol == "" {
			c.Ports[i].Protocol = ProtocolTCP
		}
	}
}

func tagIsLatest(image string) bool {
	if image == "" {
		return false
	}
	// The tag is whatever follows the last colon after the last slash;
	// a missing tag means latest.
	rest := image
	if i := strings.LastIndex(rest, "/"); i >= 0 {
		rest = rest[i+1:]
	}
	i := strings.LastIndex(rest, ":")
	if i < 0 {
		return true
	}
	return rest[i+1:] == "latest"
}

// SetDefaults_Service sets default values for Service.
func SetDefaults_Service(obj *Service) {
	spec := &obj.Spec
	if spec.Type == "" {
		spec.Type = ServiceTypeClusterIP
	}
	if spec.SessionAffinity == "" {
		spec.SessionAffinity = ServiceAffinityNone
	}
	for i := range spec.Ports {
		port := &spec.Ports[i]
		if port.Protocol == "" {
			port.Protocol = ProtocolTCP
		}
		if port.TargetPort == (intstr.IntOrString{}) {
			port.TargetPort = intstr.FromInt32(port.Port)
		}
	}
	if spec.InternalTrafficPolicy == nil && spec.Type != ServiceTypeExternalName {
		spec.InternalTrafficPolicy = ptr.To(ServiceInternalTrafficPolicyCluster)
	}
}

// SetDefaults_Secret sets default values for Secret.
func SetDefaults_Secret(obj *Secret) {
	if obj.Type == "" {
		obj.Type = SecretTypeOpaque
	}
}

// SetDefaults_Namespace sets default values for Namespace.
func SetDefaults_Namespace(obj *Namespace) {
	if obj.Status.Phase == "" {
		obj.Status.Phase = NamespaceActive
	}
}
