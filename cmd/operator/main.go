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

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"gopkg.in/alecthomas/kingpin.v2"
	"sigs.k8s.io/yaml"

	// Load all client auth plugins so user kubeconfigs that rely on cloud
	// provider or OIDC credentials keep working.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/cloudbending/ansible-operator/apis"
	"github.com/cloudbending/ansible-operator/apis/v1beta1"
	"github.com/cloudbending/ansible-operator/internal/controller/playbookplan"
)

func main() {
	var (
		app              = kingpin.New(filepath.Base(os.Args[0]), "Applies Ansible playbooks to hosts under declarative, schedule-gated control.")
		printCRD         = app.Flag("crd", "Print the PlaybookPlan CustomResourceDefinition YAML and exit.").Bool()
		debug            = app.Flag("debug", "Run with debug logging.").Short('d').Bool()
		syncPeriod       = app.Flag("sync", "Controller manager sync period such as 300ms, 1.5h, or 2h45m").Short('s').Default("1h").Duration()
		leaderElection   = app.Flag("leader-election", "Use leader election for the controller manager.").Short('l').Default("false").OverrideDefaultFromEnvar("LEADER_ELECTION").Bool()
		maxReconcileRate = app.Flag("max-reconcile-rate", "The maximum number of concurrent reconciliation operations.").Default("1").Int()
		replicas         = app.Flag("replicas", "Total number of operator replicas. When greater than 1, reconciles are sharded across them.").Default("1").Uint32()
		shard            = app.Flag("shard", "This replica's index in [0, replicas). Ignored when replicas is 1.").Default("0").Uint32()
	)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if *printCRD {
		crd, err := yaml.Marshal(v1beta1.CustomResourceDefinition())
		kingpin.FatalIfError(err, "Cannot marshal PlaybookPlan CRD")
		os.Stdout.Write(crd) //nolint:errcheck // best-effort write to stdout
		os.Exit(0)
	}

	verbose := *debug || isDebugLogLevel(os.Getenv("ANSIBLE_OPERATOR_LOG_LEVEL"))

	zl := zap.New(zap.UseDevMode(verbose))
	log := logging.NewLogrLogger(zl.WithName("ansible-operator"))
	if verbose {
		// The controller-runtime runs with a no-op logger by default. It is
		// *very* verbose even at info level, so we only provide it a real
		// logger when we're running in debug mode.
		ctrl.SetLogger(zl)
	}

	log.Debug("Starting", "sync-period", syncPeriod.String(), "replicas", *replicas, "shard", *shard)

	cfg, err := ctrl.GetConfig()
	kingpin.FatalIfError(err, "Cannot get API server rest config")

	mgr, err := ctrl.NewManager(cfg, ctrl.Options{
		LeaderElection:   *leaderElection,
		LeaderElectionID: "ansible-operator-leader-election",
		SyncPeriod:       syncPeriod,
	})
	kingpin.FatalIfError(err, "Cannot create controller manager")

	kingpin.FatalIfError(apis.AddToScheme(mgr.GetScheme()), "Cannot add Ansible APIs to scheme")

	kingpin.FatalIfError(playbookplan.Setup(mgr, playbookplan.Options{
		Logger:                  log,
		TotalShards:             *replicas,
		TargetShard:             *shard,
		MaxConcurrentReconciles: *maxReconcileRate,
	}), "Cannot setup PlaybookPlan controller")

	kingpin.FatalIfError(mgr.Start(ctrl.SetupSignalHandler()), "Cannot start controller manager")
}

// isDebugLogLevel mirrors a RUST_LOG-style env var without committing to
// tracing's full directive grammar: any of the conventional "verbose"
// spellings turns debug logging on, everything else (including unset)
// leaves it off.
func isDebugLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return true
	default:
		return false
	}
}
