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

// Package schedule decides whether a PlaybookPlan's cron schedule fires now
// or later.
package schedule

import (
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

const errParseCron = "cannot parse cron expression"

// Timing is the outcome of evaluating a schedule against a point in time.
type Timing struct {
	// Now is true when the firing in At should happen immediately.
	Now bool
	At  time.Time
}

// parser accepts a 6-field expression (seconds minutes hours day-of-month
// month day-of-week), matching the "0 "-prefixed expressions ForecastNextRun
// builds.
var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ForecastNextRun treats cronExpr as a 5-field cron expression with an
// implicit zero seconds field, and returns the first firing strictly after
// now-lookback.
func ForecastNextRun(cronExpr string, now time.Time, lookback time.Duration) (time.Time, error) {
	schedule, err := parser.Parse("0 " + cronExpr)
	if err != nil {
		return time.Time{}, errors.Wrap(err, errParseCron)
	}

	return schedule.Next(now.Add(-lookback)), nil
}

// Evaluate returns Timing{Now: true} when cronExpr is nil (every reconcile
// fires immediately), or compares the next scheduled firing against the
// acceptance window around now. The firing is accepted as "now" when it
// falls within window of now; otherwise it is reported as the (future)
// Delayed firing time.
func Evaluate(cronExpr *string, now time.Time, window time.Duration) (Timing, error) {
	if cronExpr == nil {
		return Timing{Now: true, At: now}, nil
	}

	next, err := ForecastNextRun(*cronExpr, now, window)
	if err != nil {
		return Timing{}, err
	}

	offsetNow := now.Add(-window)
	if next.Sub(offsetNow) <= window {
		return Timing{Now: true, At: next}, nil
	}

	return Timing{Now: false, At: next}, nil
}
