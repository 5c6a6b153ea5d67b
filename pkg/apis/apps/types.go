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

// Package apps holds the hub representation of the workload kind families.
// Replica counts and rolling-update partitions are plain values here; the
// wire versions carry them as optional pointers that defaulting fills in
// before conversion.
package apps

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/zhongpeinan/taibai-api/pkg/apis/core"
)

// DeploymentStrategyType names the strategies for replacing existing pods
// with new ones.
type DeploymentStrategyType string

const (
	RecreateDeploymentStrategyType      DeploymentStrategyType = "Recreate"
	RollingUpdateDeploymentStrategyType DeploymentStrategyType = "RollingUpdate"
)

// RollingUpdateDeployment controls the desired behavior of a rolling update.
type RollingUpdateDeployment struct {
	MaxUnavailable intstr.IntOrString `json:"maxUnavailable,omitempty"`
	MaxSurge       intstr.IntOrString `json:"maxSurge,omitempty"`
}

// DeploymentStrategy describes how to replace existing pods with new ones.
type DeploymentStrategy struct {
	Type          DeploymentStrategyType   `json:"type,omitempty"`
	RollingUpdate *RollingUpdateDeployment `json:"rollingUpdate,omitempty"`
}

// DeploymentSpec is the specification of the desired behavior of a
// Deployment.
type DeploymentSpec struct {
	// Replicas is the desired number of pods. In the hub form it is always
	// resolved to a concrete value.
	Replicas int32 `json:"replicas"`

	Selector *metav1.LabelSelector `json:"selector,omitempty"`

	Template core.PodTemplateSpec `json:"template"`

	Strategy DeploymentStrategy `json:"strategy,omitempty"`

	MinReadySeconds int32 `json:"minReadySeconds,omitempty"`

	RevisionHistoryLimit *int32 `json:"revisionHistoryLimit,omitempty"`

	Paused bool `json:"paused,omitempty"`

	ProgressDeadlineSeconds *int32 `json:"progressDeadlineSeconds,omitempty"`
}

// DeploymentStatus is the most recently observed status of a Deployment.
type DeploymentStatus struct {
	ObservedGeneration  int64 `json:"observedGeneration,omitempty"`
	Replicas            int32 `json:"replicas,omitempty"`
	UpdatedReplicas     int32 `json:"updatedReplicas,omitempty"`
	ReadyReplicas       int32 `json:"readyReplicas,omitempty"`
	AvailableReplicas   int32 `json:"availableReplicas,omitempty"`
	UnavailableReplicas int32 `json:"unavailableReplicas,omitempty"`
}

// Deployment provides declarative updates for pods.
type Deployment struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DeploymentSpec   `json:"spec,omitempty"`
	Status DeploymentStatus `json:"status,omitempty"`
}

// DaemonSetUpdateStrategyType names the strategies for replacing existing
// daemon pods with new ones.
type DaemonSetUpdateStrategyType string

const (
	RollingUpdateDaemonSetStrategyType DaemonSetUpdateStrategyType = "RollingUpdate"
	OnDeleteDaemonSetStrategyType      DaemonSetUpdateStrategyType = "OnDelete"
)

// RollingUpdateDaemonSet controls the desired behavior of a daemon set
// rolling update.
type RollingUpdateDaemonSet struct {
	MaxUnavailable intstr.IntOrString `json:"maxUnavailable,omitempty"`
	MaxSurge       intstr.IntOrString `json:"maxSurge,omitempty"`
}

// DaemonSetUpdateStrategy describes how to replace existing daemon pods with
// new ones.
type DaemonSetUpdateStrategy struct {
	Type          DaemonSetUpdateStrategyType `json:"type,omitempty"`
	RollingUpdate *RollingUpdateDaemonSet     `json:"rollingUpdate,omitempty"`
}

// DaemonSetSpec is the specification of a daemon set.
type DaemonSetSpec struct {
	Selector *metav1.LabelSelector `json:"selector,omitempty"`

	Template core.PodTemplateSpec `json:"template"`

	UpdateStrategy DaemonSetUpdateStrategy `json:"updateStrategy,omitempty"`

	MinReadySeconds int32 `json:"minReadySeconds,omitempty"`

	RevisionHistoryLimit *int32 `json:"revisionHistoryLimit,omitempty"`
}

// DaemonSetStatus represents the current status of a daemon set.
type DaemonSetStatus struct {
	CurrentNumberScheduled int32 `json:"currentNumberScheduled,omitempty"`
	NumberMisscheduled     int32 `json:"numberMisscheduled,omitempty"`
	DesiredNumberScheduled int32 `json:"desiredNumberScheduled,omitempty"`
	NumberReady            int32 `json:"numberReady,omitempty"`
	ObservedGeneration     int64 `json:"observedGeneration,omitempty"`
}

// DaemonSet represents the configuration of a daemon set.
type DaemonSet struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DaemonSetSpec   `json:"spec,omitempty"`
	Status DaemonSetStatus `json:"status,omitempty"`
}

// PodManagementPolicyType defines the policy for creating pods under a
// stateful set.
type PodManagementPolicyType string

const (
	OrderedReadyPodManagement PodManagementPolicyType = "OrderedReady"
	ParallelPodManagement     PodManagementPolicyType = "Parallel"
)

// StatefulSetUpdateStrategyType names the strategies for updating stateful
// set pods.
type StatefulSetUpdateStrategyType string

const (
	RollingUpdateStatefulSetStrategyType StatefulSetUpdateStrategyType = "RollingUpdate"
	OnDeleteStatefulSetStrategyType      StatefulSetUpdateStrategyType = "OnDelete"
)

// RollingUpdateStatefulSetStrategy is used to communicate parameters for
// RollingUpdateStatefulSetStrategyType.
type RollingUpdateStatefulSetStrategy struct {
	// Partition indicates the ordinal at which the set should be
	// partitioned for updates. In the hub form it is always resolved to a
	// concrete value.
	Partition int32 `json:"partition"`
}

// StatefulSetUpdateStrategy indicates the strategy that a stateful set
// controller will use to perform updates.
type StatefulSetUpdateStrategy struct {
	Type          StatefulSetUpdateStrategyType     `json:"type,omitempty"`
	RollingUpdate *RollingUpdateStatefulSetStrategy `json:"rollingUpdate,omitempty"`
}

// StatefulSetSpec is the specification of a stateful set.
type StatefulSetSpec struct {
	// Replicas is the desired number of pods. In the hub form it is always
	// resolved to a concrete value.
	Replicas int32 `json:"replicas"`

	Selector *metav1.LabelSelector `json:"selector,omitempty"`

	Template core.PodTemplateSpec `json:"template"`

	// ServiceName is the name of the headless service governing this set.
	ServiceName string `json:"serviceName"`

	PodManagementPolicy PodManagementPolicyType `json:"podManagementPolicy,omitempty"`

	UpdateStrategy StatefulSetUpdateStrategy `json:"updateStrategy,omitempty"`

	RevisionHistoryLimit *int32 `json:"revisionHistoryLimit,omitempty"`

	MinReadySeconds int32 `json:"minReadySeconds,omitempty"`
}

// StatefulSetStatus represents the current state of a stateful set.
type StatefulSetStatus struct {
	ObservedGeneration int64  `json:"observedGeneration,omitempty"`
	Replicas           int32  `json:"replicas,omitempty"`
	ReadyReplicas      int32  `json:"readyReplicas,omitempty"`
	CurrentReplicas    int32  `json:"currentReplicas,omitempty"`
	UpdatedReplicas    int32  `json:"updatedReplicas,omitempty"`
	CurrentRevision    string `json:"currentRevision,omitempty"`
	UpdateRevision     string `json:"updateRevision,omitempty"`
}

// StatefulSet represents a set of pods with consistent identities.
type StatefulSet struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   StatefulSetSpec   `json:"spec,omitempty"`
	Status StatefulSetStatus `json:"status,omitempty"`
}
