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

// Package workspace renders the self-contained content set a PlaybookPlan's
// per-host jobs mount and execute against.
package workspace

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
)

const (
	errInvalidPlaybook  = "playbook is not valid YAML"
	errRenderInventory  = "cannot render inventory.yml"
	errRenderVariables  = "cannot render inline variables"
	keyPlaybook         = "playbook.yml"
	keyInventory        = "inventory.yml"
	keyRequirements     = "requirements.yml"
	staticVariablesStem = "static-variables-"
)

// IsOutdated reports whether the workspace for object needs to be
// (re)rendered: either it has never been rendered, or it was rendered for an
// older generation of the spec.
func IsOutdated(generation int64, lastRendered int64) bool {
	return lastRendered < generation
}

// Render produces the opaque content map for a PlaybookPlan's workspace
// secret. inventories is the resolver's output, keyed by inventory group
// name.
func Render(spec v1beta1.PlaybookPlanSpec, inventories map[string][]string) (map[string]string, error) {
	playbook, err := renderPlaybook(spec.Template.Playbook)
	if err != nil {
		return nil, errors.Wrap(err, errInvalidPlaybook)
	}

	renderedInventory, err := renderInventory(spec.Inventory, inventories)
	if err != nil {
		return nil, errors.Wrap(err, errRenderInventory)
	}

	content := map[string]string{
		keyPlaybook:  playbook,
		keyInventory: renderedInventory,
	}

	if spec.Template.Requirements != nil {
		content[keyRequirements] = *spec.Template.Requirements
	}

	index := 0
	for _, v := range spec.Template.Variables {
		if v.SecretRef != nil {
			continue
		}
		rendered, err := yaml.Marshal(v.Inline)
		if err != nil {
			return nil, errors.Wrap(err, errRenderVariables)
		}
		content[fmt.Sprintf("%s%d.yml", staticVariablesStem, index)] = string(rendered)
		index++
	}

	return content, nil
}

// renderPlaybook normalizes the playbook text by parsing it as a YAML
// sequence and re-emitting it, so downstream consumers always see a
// canonical serialization regardless of the user's original formatting.
func renderPlaybook(playbook string) (string, error) {
	var sequence []interface{}
	if err := yaml.Unmarshal([]byte(playbook), &sequence); err != nil {
		return "", err
	}

	rendered, err := yaml.Marshal(sequence)
	if err != nil {
		return "", err
	}

	return string(rendered), nil
}

// renderInventory produces the `{group: {hosts: {host: {}}}}` mapping, with
// groups listed in the order they appear in the spec and hosts within a
// group listed in resolver order. yaml.v3 sorts native Go maps when
// marshaling them, so the document is built directly out of yaml.Node
// mapping nodes to keep that order intact.
func renderInventory(groups []v1beta1.InventoryGroup, resolved map[string][]string) (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, group := range groups {
		hostsNode := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, host := range resolved[group.Name] {
			hostsNode.Content = append(hostsNode.Content,
				scalarNode(host),
				&yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"},
			)
		}

		groupNode := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		groupNode.Content = append(groupNode.Content, scalarNode("hosts"), hostsNode)

		root.Content = append(root.Content, scalarNode(group.Name), groupNode)
	}

	rendered, err := yaml.Marshal(root)
	if err != nil {
		return "", err
	}

	return string(rendered), nil
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
