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

// Package jobs builds the per-host batch Job that actually runs Ansible.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/cloudbending/ansible-operator/apis/v1beta1"
	"github.com/cloudbending/ansible-operator/internal/fingerprint"
)

const (
	errMarshalFileVolume   = "cannot marshal arbitrary volume entry"
	errUnmarshalFileVolume = "arbitrary volume entry failed validation"

	workspaceMountPath    = "/run/ansible-operator"
	collectionsMountPath  = "/etc/ansible/collections"
	sshVolumeName         = "ssh"
	sshMountPath          = "/ssh"
	chrootVolumeName      = "rootfs"
	chrootMountPath       = "/mnt/rootfs"
	nodeHostnameLabel     = "kubernetes.io/hostname"
	playbookVolumeName    = "playbook"
	collectionsVolumeName = "collections"

	idSuffixLength = 5
	idSuffixRadix  = 36
)

// BuildForHost produces the Job that applies plan on host for the given
// execution hash. start, when non-nil, is folded into the job's name so
// recurring firings at different times get distinct, still-deterministic
// names; a nil start always hashes to 1, matching a one-shot application.
func BuildForHost(plan v1beta1.PlaybookPlan, host string, hash fingerprint.Hash, start *time.Time) (*batchv1.Job, error) {
	job, err := skeleton(plan, host)
	if err != nil {
		return nil, err
	}

	switch {
	case plan.Spec.ConnectionStrategy.SSH != nil:
		configureSSH(job, *plan.Spec.ConnectionStrategy.SSH)
	default:
		configureChroot(job, host)
	}

	job.Namespace = plan.Namespace
	job.OwnerReferences = []metav1.OwnerReference{
		*metav1.NewControllerRef(&plan, v1beta1.SchemeGroupVersion.WithKind("PlaybookPlan")),
	}
	job.Name = jobName(plan.Name, host, hash, start)
	job.Labels = map[string]string{
		v1beta1.LabelPlaybookPlanName: plan.Name,
		v1beta1.LabelExecutionHash:    hash.String(),
		v1beta1.LabelHost:             host,
	}

	return job, nil
}

func jobName(planName, host string, hash fingerprint.Hash, start *time.Time) string {
	startHash := uint64(1)
	if start != nil {
		startHash = xxhash.Sum64String(start.Format(time.RFC3339Nano))
	}
	return fmt.Sprintf("apply-%s-%s-on-%s", planName, generateID(uint64(hash)^startHash), host)
}

// generateID renders a base-36 suffix of idSuffixLength characters, padded
// on the left with zeroes if the value is small.
func generateID(value uint64) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	buf := make([]byte, idSuffixLength)
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = alphabet[value%idSuffixRadix]
		value /= idSuffixRadix
	}
	return string(buf)
}

// skeleton builds a Job with everything needed for basic Ansible execution
// but no connection-strategy-specific configuration.
func skeleton(plan v1beta1.PlaybookPlan, host string) (*batchv1.Job, error) {
	variableSecrets := secretNamesForVariables(plan)

	volumes := []corev1.Volume{{
		Name: playbookVolumeName,
		VolumeSource: corev1.VolumeSource{
			Secret: &corev1.SecretVolumeSource{SecretName: plan.Name},
		},
	}}
	volumeMounts := []corev1.VolumeMount{{
		Name:      playbookVolumeName,
		MountPath: workspaceMountPath,
	}}

	for _, secretName := range variableSecrets {
		mode := int32(0o400)
		volumes = append(volumes, corev1.Volume{
			Name: secretName,
			VolumeSource: corev1.VolumeSource{
				Secret: &corev1.SecretVolumeSource{
					SecretName:  secretName,
					DefaultMode: &mode,
					Items:       []corev1.KeyToPath{{Key: "variables.yaml", Path: "variables.yaml"}},
				},
			},
		})
		volumeMounts = append(volumeMounts, corev1.VolumeMount{
			Name:      secretName,
			MountPath: fmt.Sprintf("%s/vars/%s", workspaceMountPath, secretName),
		})
	}

	fileVolumes, err := fileVolumes(plan)
	if err != nil {
		return nil, err
	}
	for _, v := range fileVolumes {
		volumes = append(volumes, v)
		volumeMounts = append(volumeMounts, corev1.VolumeMount{
			Name:      v.Name,
			MountPath: fmt.Sprintf("%s/files/%s", workspaceMountPath, v.Name),
		})
	}

	var initContainers []corev1.Container
	withRequirements := plan.Spec.Template.Requirements != nil
	if withRequirements {
		volumes = append(volumes, corev1.Volume{
			Name:         collectionsVolumeName,
			VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}},
		})
		volumeMounts = append(volumeMounts, corev1.VolumeMount{
			Name:      collectionsVolumeName,
			MountPath: collectionsMountPath,
		})

		initContainers = append(initContainers, corev1.Container{
			Name:         "download-collections",
			Image:        plan.Spec.Image,
			WorkingDir:   workspaceMountPath,
			VolumeMounts: append([]corev1.VolumeMount{}, volumeMounts...),
			Command:      []string{"ansible-galaxy", "install", "-r", "requirements.yml"},
		})
	}

	mainContainer := corev1.Container{
		Name:         "ansible-playbook",
		Image:        plan.Spec.Image,
		WorkingDir:   workspaceMountPath,
		VolumeMounts: volumeMounts,
		Command:      renderCommand(plan, host, variableSecrets),
	}

	backoffLimit := int32(0)

	return &batchv1.Job{
		Spec: batchv1.JobSpec{
			BackoffLimit: &backoffLimit,
			Template: corev1.PodTemplateSpec{
				Spec: corev1.PodSpec{
					RestartPolicy:  corev1.RestartPolicyNever,
					Volumes:        volumes,
					InitContainers: initContainers,
					Containers:     []corev1.Container{mainContainer},
				},
			},
		},
	}, nil
}

func configureSSH(job *batchv1.Job, ssh v1beta1.SSHConnection) {
	mode := int32(0o400)
	spec := &job.Spec.Template.Spec

	spec.Volumes = append(spec.Volumes, corev1.Volume{
		Name: sshVolumeName,
		VolumeSource: corev1.VolumeSource{
			Secret: &corev1.SecretVolumeSource{
				SecretName:  ssh.SecretRef.Name,
				DefaultMode: &mode,
			},
		},
	})

	spec.Containers[0].VolumeMounts = append(spec.Containers[0].VolumeMounts, corev1.VolumeMount{
		Name:      sshVolumeName,
		MountPath: sshMountPath,
	})
}

func configureChroot(job *batchv1.Job, node string) {
	spec := &job.Spec.Template.Spec
	hostPathType := corev1.HostPathDirectory

	spec.Volumes = append(spec.Volumes, corev1.Volume{
		Name: chrootVolumeName,
		VolumeSource: corev1.VolumeSource{
			HostPath: &corev1.HostPathVolumeSource{Path: "/", Type: &hostPathType},
		},
	})

	spec.Containers[0].VolumeMounts = append(spec.Containers[0].VolumeMounts, corev1.VolumeMount{
		Name:      chrootVolumeName,
		MountPath: chrootMountPath,
	})

	truth := true
	spec.HostIPC = true
	spec.HostNetwork = true
	spec.HostPID = true
	// HostUsers isn't exposed on k8s.io/api v0.24's PodSpec; privileged mode
	// covers the same requirement on this cluster version.

	spec.Containers[0].SecurityContext = &corev1.SecurityContext{Privileged: &truth}
	spec.NodeSelector = map[string]string{nodeHostnameLabel: node}
}

func secretNamesForVariables(plan v1beta1.PlaybookPlan) []string {
	var names []string
	for _, v := range plan.Spec.Template.Variables {
		if v.SecretRef != nil {
			names = append(names, v.SecretRef.Name)
		}
	}
	return names
}

// fileVolumes turns the schemaless "arbitrary" file sources into proper
// corev1.Volume values by round-tripping the user-supplied object through
// JSON with the volume name injected, validating it against the cluster
// API's own volume schema in the process.
func fileVolumes(plan v1beta1.PlaybookPlan) ([]corev1.Volume, error) {
	var volumes []corev1.Volume

	for _, f := range plan.Spec.Template.Files {
		if f.SecretRef != nil {
			volumes = append(volumes, corev1.Volume{
				Name: f.Name,
				VolumeSource: corev1.VolumeSource{
					Secret: &corev1.SecretVolumeSource{SecretName: f.SecretRef.Name},
				},
			})
			continue
		}

		merged := make(map[string]interface{}, len(f.Extra)+1)
		for k, v := range f.Extra {
			merged[k] = v
		}
		merged["name"] = f.Name

		raw, err := json.Marshal(merged)
		if err != nil {
			return nil, errors.Wrap(err, errMarshalFileVolume)
		}

		var volume corev1.Volume
		if err := json.Unmarshal(raw, &volume); err != nil {
			return nil, errors.Wrapf(err, "%s: %s", errUnmarshalFileVolume, f.Name)
		}

		volumes = append(volumes, volume)
	}

	return volumes, nil
}

func renderCommand(plan v1beta1.PlaybookPlan, host string, variableSecrets []string) []string {
	var command []string
	command = append(command, "ansible-playbook")

	index := 0
	for _, v := range plan.Spec.Template.Variables {
		if v.SecretRef != nil {
			continue
		}
		command = append(command, "--extra-vars", fmt.Sprintf("@static-variables-%d.yml", index))
		index++
	}

	for _, secretName := range variableSecrets {
		command = append(command, "--extra-vars", fmt.Sprintf("@%s/vars/%s/variables.yaml", workspaceMountPath, secretName))
	}

	switch {
	case plan.Spec.ConnectionStrategy.SSH != nil:
		ssh := plan.Spec.ConnectionStrategy.SSH
		command = append(command,
			"--ssh-common-args='-o UserKnownHostsFile=/ssh/known_hosts'",
			"--private-key", "/ssh/id_rsa",
			"--user", ssh.User,
			"-i", "inventory.yml",
			"-l", host+",",
		)
	default:
		command = append(command,
			"-c", "community.general.chroot",
			"-i", chrootMountPath+",",
		)
	}

	command = append(command, "playbook.yml")
	return command
}
