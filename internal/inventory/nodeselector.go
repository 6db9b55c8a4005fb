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

// Package inventory resolves a PlaybookPlan's inventory groups into ordered
// host lists.
package inventory

import (
	corev1 "k8s.io/api/core/v1"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
)

// NodeMatches reports whether node satisfies selector. An empty selector
// matches every node; a missing label on the node never matches.
func NodeMatches(node corev1.Node, selector v1beta1.NodeSelectorTerm) bool {
	for key, value := range selector.MatchLabels {
		if nodeValue, ok := node.Labels[key]; !ok || nodeValue != value {
			return false
		}
	}
	return true
}
