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

// Package status evaluates the Jobs belonging to a PlaybookPlan and derives
// its Ready/Running conditions and per-host rollforward record.
package status

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	batchv1 "k8s.io/api/batch/v1"

	xpv1 "github.com/crossplane/crossplane-runtime/apis/common/v1"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
	"github.com/cloudbending/ansible-operator/internal/fingerprint"
)

// jobConditionSuccessCriteriaMet is the Job condition type that marks a
// successful run. It postdates the batch/v1 constants shipped in this
// module's pinned k8s.io/api version, so it is declared here.
const jobConditionSuccessCriteriaMet = batchv1.JobConditionType("SuccessCriteriaMet")

// JobOutcome summarizes one host's job for the current fingerprint.
type JobOutcome struct {
	Host      string
	Succeeded bool
	Failed    bool
}

// Tally counts, from the jobs currently owned by a PlaybookPlan for the
// fingerprint under evaluation, how many succeeded, failed, or finished
// neither way yet.
type Tally struct {
	Succeeded int
	Failed    int
	Running   int
	Total     int
}

// Evaluate classifies jobs (already filtered to the ones stamped with the
// hash currently being evaluated) into a Tally and the per-host outcomes
// used to update HostsStatus.
func Evaluate(jobs []batchv1.Job) (Tally, []JobOutcome) {
	tally := Tally{Total: len(jobs)}
	outcomes := make([]JobOutcome, 0, len(jobs))

	for _, job := range jobs {
		host, ok := job.Labels[v1beta1.LabelHost]
		outcome := JobOutcome{Host: host}

		switch {
		case jobConditionTrue(job, jobConditionSuccessCriteriaMet):
			outcome.Succeeded = true
			tally.Succeeded++
		case jobConditionTrue(job, batchv1.JobFailed):
			outcome.Failed = true
			tally.Failed++
		default:
			tally.Running++
		}

		if ok {
			outcomes = append(outcomes, outcome)
		}
	}

	return tally, outcomes
}

func jobConditionTrue(job batchv1.Job, t batchv1.JobConditionType) bool {
	for _, c := range job.Status.Conditions {
		if c.Type == t && c.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

// ApplyOutcomes rolls forward status.HostsStatus: every host that succeeded
// for hash has its LastAppliedHash unconditionally set to hash, regardless
// of what (if anything) was recorded before. Failed jobs never roll state
// forward.
func ApplyOutcomes(status *v1beta1.PlaybookPlanStatus, hash fingerprint.Hash, outcomes []JobOutcome) {
	for _, outcome := range outcomes {
		if !outcome.Succeeded {
			continue
		}
		if status.HostsStatus == nil {
			status.HostsStatus = make(map[string]v1beta1.HostStatus)
		}
		status.HostsStatus[outcome.Host] = v1beta1.HostStatus{LastAppliedHash: hash.String()}
	}
}

// SetConditions derives and upserts the Ready and Running conditions from
// tally. A condition is replaced only when its Status or Reason changed;
// an unchanged condition keeps its transition timestamp and only has its
// message refreshed, so reconciles that observe the same job population
// never churn LastTransitionTime.
func SetConditions(status *v1beta1.PlaybookPlanStatus, tally Tally) {
	now := metav1.Now()
	finished := tally.Succeeded + tally.Failed
	running := tally.Total - finished

	switch {
	case running > 0:
		upsert(status, xpv1.Condition{
			Type:               v1beta1.TypeRunning,
			Status:             corev1.ConditionTrue,
			Reason:             v1beta1.ReasonJobsRunning,
			Message:            fmt.Sprintf("%d jobs are currently running", running),
			LastTransitionTime: now,
		})
	default:
		upsert(status, xpv1.Condition{
			Type:               v1beta1.TypeRunning,
			Status:             corev1.ConditionFalse,
			LastTransitionTime: now,
		})
	}

	switch {
	case tally.Succeeded == tally.Total && tally.Total > 0:
		upsert(status, xpv1.Condition{
			Type:               v1beta1.TypeReady,
			Status:             corev1.ConditionTrue,
			Reason:             v1beta1.ReasonAllJobsSucceeded,
			LastTransitionTime: now,
		})
	case tally.Failed > 0:
		upsert(status, xpv1.Condition{
			Type:               v1beta1.TypeReady,
			Status:             corev1.ConditionFalse,
			Reason:             v1beta1.ReasonSomeOrAllJobsFailed,
			LastTransitionTime: now,
		})
	default:
		upsert(status, xpv1.Condition{
			Type:               v1beta1.TypeReady,
			Status:             corev1.ConditionFalse,
			Reason:             v1beta1.ReasonAwaitingJobResults,
			LastTransitionTime: now,
		})
	}
}

func upsert(status *v1beta1.PlaybookPlanStatus, c xpv1.Condition) {
	for i, existing := range status.Conditions {
		if existing.Type != c.Type {
			continue
		}
		if existing.Status == c.Status && existing.Reason == c.Reason {
			status.Conditions[i].Message = c.Message
			return
		}
		status.Conditions[i] = c
		return
	}
	status.Conditions = append(status.Conditions, c)
}
