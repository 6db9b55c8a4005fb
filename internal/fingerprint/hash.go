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

// Package fingerprint computes the execution hash a PlaybookPlan's hosts are
// compared against, and decides which hosts are out of date with respect to
// it.
package fingerprint

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
)

// Hash is the 64-bit execution fingerprint. It is a cache/dispatch key, not
// a security token, so a fast non-cryptographic hash is the right tool.
type Hash uint64

// String renders the hash the way it is compared against
// PlaybookPlanStatus.HostsStatus[host].LastAppliedHash and stamped into the
// playbookplan.hash job label: lowercase hex, as named explicitly for both
// uses. The original implementation's `hash.to_string()` rendered decimal
// instead; since the value is only ever compared against itself within this
// module, the choice is cosmetic, and hex is what's actually specified.
func (h Hash) String() string {
	return strconv.FormatUint(uint64(h), 16)
}

// Calculate returns the execution hash of playbook together with the
// referenced secrets. Secrets are hashed independently and folded with XOR,
// so the result does not depend on the order secrets are supplied in; within
// a single secret, its keys are hashed in sorted order so the per-secret
// hash is itself deterministic.
func Calculate(playbook string, secrets []map[string][]byte) Hash {
	acc := xxhash.Sum64String(playbook)

	for _, secret := range secrets {
		acc ^= hashSecret(secret)
	}

	return Hash(acc)
}

func hashSecret(secret map[string][]byte) uint64 {
	keys := make([]string, 0, len(secret))
	for k := range secret {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	digest := xxhash.New()
	for _, k := range keys {
		_, _ = digest.WriteString(k)
		_, _ = digest.Write(secret[k])
	}
	return digest.Sum64()
}

// Outdated returns every host whose last applied hash differs from current
// (or has none recorded). Groups are visited in sorted group-name order, not
// inventory spec order; hosts within a group keep their stored order. A host
// that appears in more than one inventory group is reported once per
// appearance.
func Outdated(status v1beta1.PlaybookPlanStatus, current Hash) []string {
	if status.EligibleHosts == nil {
		return nil
	}

	groups := make([]string, 0, len(status.EligibleHosts))
	for name := range status.EligibleHosts {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	var outdated []string
	currentStr := current.String()

	for _, name := range groups {
		for _, host := range status.EligibleHosts[name] {
			if status.HostsStatus == nil {
				outdated = append(outdated, host)
				continue
			}
			if hostStatus, ok := status.HostsStatus[host]; !ok || hostStatus.LastAppliedHash != currentStr {
				outdated = append(outdated, host)
			}
		}
	}

	return outdated
}
