/*
Copyright 2020 The Crossplane Authors.

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

package v1beta1

import (
	"encoding/json"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	xpv1 "github.com/crossplane/crossplane-runtime/apis/common/v1"
)

// Mode controls whether a PlaybookPlan applies once or on a recurring basis.
// +kubebuilder:validation:Enum=OneShot;Recurring
type Mode string

// Supported execution modes.
const (
	ModeOneShot   Mode = "OneShot"
	ModeRecurring Mode = "Recurring"
)

// Phase summarizes the reconciler's last decision for a PlaybookPlan.
// +kubebuilder:validation:Enum=Pending;Delayed;Applying;Scheduled;Finished
type Phase string

// Phases a PlaybookPlan can be observed in.
const (
	PhasePending   Phase = "Pending"
	PhaseDelayed   Phase = "Delayed"
	PhaseApplying  Phase = "Applying"
	PhaseScheduled Phase = "Scheduled"
	PhaseFinished  Phase = "Finished"
)

// Condition types set on a PlaybookPlan.
const (
	TypeReady   xpv1.ConditionType = "Ready"
	TypeRunning xpv1.ConditionType = "Running"
)

// Condition reasons used by the status evaluator.
const (
	ReasonJobsRunning         xpv1.ConditionReason = "JobsRunning"
	ReasonAllJobsSucceeded    xpv1.ConditionReason = "AllJobsSucceeded"
	ReasonSomeOrAllJobsFailed xpv1.ConditionReason = "SomeOrAllJobsFailed"
	ReasonAwaitingJobResults  xpv1.ConditionReason = "AwaitingJobResults"
)

// GenericMap is an arbitrary, schemaless block of YAML/JSON-shaped data, used
// for inline playbook variables. It round-trips through JSON untouched.
// +kubebuilder:pruning:PreserveUnknownFields
// +kubebuilder:validation:Type=object
type GenericMap map[string]interface{}

// DeepCopy returns a deep copy of the map.
func (in GenericMap) DeepCopy() GenericMap {
	if in == nil {
		return nil
	}
	out := make(GenericMap, len(in))
	for k, v := range in {
		out[k] = deepCopyJSONValue(v)
	}
	return out
}

func deepCopyJSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, vv := range val {
			out[k] = deepCopyJSONValue(vv)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, vv := range val {
			out[i] = deepCopyJSONValue(vv)
		}
		return out
	default:
		return val
	}
}

// SecretReference points at a Secret in the PlaybookPlan's own namespace.
type SecretReference struct {
	Name string `json:"name"`
}

// NodeSelectorTerm matches cluster nodes by their labels. An empty selector
// matches every node.
type NodeSelectorTerm struct {
	MatchLabels map[string]string `json:"matchLabels,omitempty"`
}

// HostsSource is an untagged union: exactly one of FromList or FromNodes
// should be set. Deserialization is the plain Go struct-tag behavior rather
// than a discriminated decode, so a malformed document with both fields
// present is accepted with FromList taking priority at resolve time — see
// internal/inventory.
type HostsSource struct {
	// FromList is a verbatim, ordered list of hostnames.
	FromList []string `json:"fromList,omitempty"`

	// FromNodes resolves to every cluster node whose labels satisfy the
	// selector.
	FromNodes *NodeSelectorTerm `json:"fromNodes,omitempty"`
}

// InventoryGroup names a group of hosts available to the rendered playbook.
type InventoryGroup struct {
	Name  string      `json:"name"`
	Hosts HostsSource `json:"hosts"`
}

// SSHConnection configures Ansible to reach a host over SSH.
type SSHConnection struct {
	User      string          `json:"user"`
	SecretRef SecretReference `json:"secretRef"`
}

// ChrootConnection configures Ansible to apply a playbook to the node the
// pod is scheduled on via a chroot into its root filesystem.
type ChrootConnection struct{}

// ConnectionStrategy is an untagged union of SSH or chroot connection
// parameters. Exactly one should be set; SSH takes priority if both are.
type ConnectionStrategy struct {
	SSH    *SSHConnection    `json:"ssh,omitempty"`
	Chroot *ChrootConnection `json:"chroot,omitempty"`
}

// PlaybookVariableSource is an untagged union: inline variables or a
// reference to a Secret holding a `variables.yaml` key.
type PlaybookVariableSource struct {
	Inline    GenericMap       `json:"inline,omitempty"`
	SecretRef *SecretReference `json:"secretRef,omitempty"`
}

// FileSource names an additional pod volume made available to the playbook.
// A Secret-backed file source is recognized by SecretRef; anything else is
// passed through to the Job builder verbatim via Extra, with Name injected,
// and validated by decoding it as a corev1.Volume.
type FileSource struct {
	Name      string
	SecretRef *SecretReference
	Extra     map[string]interface{}
}

// MarshalJSON flattens Extra alongside name/secretRef, mirroring the
// original untagged-enum-with-flatten shape.
func (f FileSource) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(f.Extra)+2)
	for k, v := range f.Extra {
		out[k] = v
	}
	out["name"] = f.Name
	if f.SecretRef != nil {
		out["secretRef"] = f.SecretRef
	}
	return json.Marshal(out)
}

// UnmarshalJSON pulls out the well-known keys and keeps everything else in
// Extra, so arbitrary volume shapes survive untouched.
func (f *FileSource) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if nameRaw, ok := raw["name"]; ok {
		if err := json.Unmarshal(nameRaw, &f.Name); err != nil {
			return err
		}
		delete(raw, "name")
	}

	if refRaw, ok := raw["secretRef"]; ok {
		var ref SecretReference
		if err := json.Unmarshal(refRaw, &ref); err != nil {
			return err
		}
		f.SecretRef = &ref
		delete(raw, "secretRef")
	}

	if len(raw) == 0 {
		f.Extra = nil
		return nil
	}

	extra := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		var decoded interface{}
		if err := json.Unmarshal(v, &decoded); err != nil {
			return err
		}
		extra[k] = decoded
	}
	f.Extra = extra
	return nil
}

// PlaybookTemplate is the playbook body plus its inputs.
type PlaybookTemplate struct {
	// Playbook is the raw YAML text of the play(s) to run. The renderer
	// parses and re-emits it unchanged in content.
	Playbook string `json:"playbook"`

	// Variables: inline sources are rendered into the workspace as
	// static-variables-<i>.yml in spec order; SecretRef sources are mounted
	// from their secret. All inline sources are passed to ansible-playbook
	// before all SecretRef sources.
	Variables []PlaybookVariableSource `json:"variables,omitempty"`

	// Files become additional pod volumes mounted under
	// /run/ansible-operator/files/<name>.
	Files []FileSource `json:"files,omitempty"`

	// Requirements, when set, is an Ansible requirements.yml installed by
	// an init container before the main playbook run.
	Requirements *string `json:"requirements,omitempty"`
}

// PlaybookPlanSpec is the desired state of a PlaybookPlan.
type PlaybookPlanSpec struct {
	// Image is an OCI reference for the Ansible runner used by every job.
	Image string `json:"image"`

	// Mode controls whether the playbook runs once or on a schedule.
	Mode Mode `json:"mode"`

	// Schedule is a 5-field cron expression. Required when Mode is
	// Recurring; also used with OneShot to delay the first application.
	Schedule *string `json:"schedule,omitempty"`

	// TimeZone is an IANA zone name the schedule is evaluated in. Defaults
	// to UTC.
	TimeZone string `json:"timeZone,omitempty"`

	// Inventory is a non-empty, ordered list of host groups.
	Inventory []InventoryGroup `json:"inventory"`

	// ConnectionStrategy picks the Ansible connection plugin used for
	// every per-host job.
	ConnectionStrategy ConnectionStrategy `json:"connectionStrategy"`

	// Template holds the playbook body and its variables/files.
	Template PlaybookTemplate `json:"template"`
}

// HostStatus records the last fingerprint successfully applied to a host.
type HostStatus struct {
	LastAppliedHash string `json:"lastAppliedHash"`
}

// PlaybookPlanStatus is the observed state of a PlaybookPlan.
type PlaybookPlanStatus struct {
	xpv1.ConditionedStatus `json:",inline"`

	// EligibleHosts maps inventory name to the hosts resolved for it.
	EligibleHosts map[string][]string `json:"eligibleHosts,omitempty"`

	// EligibleHostsCount is the deduplicated cardinality of EligibleHosts.
	EligibleHostsCount int `json:"eligibleHostsCount,omitempty"`

	// LastRenderedGeneration is the spec generation whose workspace has
	// been materialized.
	LastRenderedGeneration int64 `json:"lastRenderedGeneration,omitempty"`

	// CurrentHash is the fingerprint computed during the last pass.
	CurrentHash string `json:"currentHash,omitempty"`

	// HostsStatus maps host to the fingerprint last successfully applied.
	HostsStatus map[string]HostStatus `json:"hostsStatus,omitempty"`

	// Phase is the reconciler's last decision.
	Phase Phase `json:"phase,omitempty"`

	// NextRun is set when a future firing is expected.
	NextRun *RFC3339Time `json:"nextRun,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Hosts",type="integer",JSONPath=".status.eligibleHostsCount"
// +kubebuilder:printcolumn:name="Mode",type="string",JSONPath=".spec.mode"
// +kubebuilder:printcolumn:name="Schedule",type="string",JSONPath=".spec.schedule"
// +kubebuilder:printcolumn:name="Next run",type="string",JSONPath=".status.nextRun"
// +kubebuilder:printcolumn:name="Current hash",type="string",JSONPath=".status.currentHash",priority=1
// +kubebuilder:printcolumn:name="Ready",type="string",JSONPath=`.status.conditions[?(@.type=="Ready")].status`
// +kubebuilder:printcolumn:name="Running",type="string",JSONPath=`.status.conditions[?(@.type=="Running")].status`
// +kubebuilder:printcolumn:name="Phase",type="string",JSONPath=".status.phase"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// A PlaybookPlan applies an Ansible playbook to a set of hosts under
// declarative, schedule-gated control.
type PlaybookPlan struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   PlaybookPlanSpec   `json:"spec"`
	Status PlaybookPlanStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// PlaybookPlanList is a collection of PlaybookPlan.
type PlaybookPlanList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []PlaybookPlan `json:"items"`
}
