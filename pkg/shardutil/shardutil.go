// Package shardutil partitions reconciles for a resource kind across a fixed
// number of operator replicas using a consistent hash of the resource name,
// so each replica only watches and reconciles its own slice of the objects.
package shardutil

import (
	"hash/fnv"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
)

// IsResourceForShard returns a predicate that accepts an event only when its
// object's name hashes to targetShard, one of totalShards buckets. Passing
// totalShards == 1 accepts everything.
func IsResourceForShard(targetShard, totalShards uint32) predicate.Predicate {
	belongs := func(obj client.Object) bool {
		return totalShards == 1 || shardOf(obj.GetName(), totalShards) == targetShard
	}

	return predicate.Funcs{
		CreateFunc:  func(e event.CreateEvent) bool { return belongs(e.Object) },
		UpdateFunc:  func(e event.UpdateEvent) bool { return belongs(e.ObjectNew) },
		DeleteFunc:  func(e event.DeleteEvent) bool { return belongs(e.Object) },
		GenericFunc: func(e event.GenericEvent) bool { return belongs(e.Object) },
	}
}

// shardOf maps name onto [0, totalShards) via FNV-1a. It is not
// cryptographic and is only required to distribute names roughly evenly and
// reproducibly across replicas.
func shardOf(name string, totalShards uint32) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return h.Sum32() % totalShards
}
