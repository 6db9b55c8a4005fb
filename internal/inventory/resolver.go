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

package inventory

import (
	"context"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
)

const errListNodes = "cannot list cluster nodes"

// Resolve expands every inventory group to its concrete, ordered host list.
// Hosts inside a FromStaticList group are returned verbatim; hosts inside a
// FromClusterNodes group follow the order nodes are returned from the API
// server. A malformed group with both sources set resolves to its FromList.
// The map preserves every group present in groups, even empty ones.
func Resolve(ctx context.Context, c client.Client, groups []v1beta1.InventoryGroup) (map[string][]string, error) {
	resolved := make(map[string][]string, len(groups))

	var nodes *corev1.NodeList
	for _, group := range groups {
		if group.Hosts.FromNodes == nil || len(group.Hosts.FromList) > 0 {
			resolved[group.Name] = append([]string{}, group.Hosts.FromList...)
			continue
		}

		if nodes == nil {
			nodes = &corev1.NodeList{}
			if err := c.List(ctx, nodes); err != nil {
				return nil, errors.Wrap(err, errListNodes)
			}
		}

		hosts := make([]string, 0, len(nodes.Items))
		for _, node := range nodes.Items {
			if NodeMatches(node, *group.Hosts.FromNodes) {
				hosts = append(hosts, node.Name)
			}
		}
		resolved[group.Name] = hosts
	}

	return resolved, nil
}

// Count returns the number of distinct hosts across every group in resolved.
func Count(resolved map[string][]string) int {
	seen := make(map[string]struct{})
	for _, hosts := range resolved {
		for _, host := range hosts {
			seen[host] = struct{}{}
		}
	}
	return len(seen)
}
