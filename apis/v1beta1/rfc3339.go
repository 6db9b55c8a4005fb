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
	"time"
)

// RFC3339Time serializes a time.Time with second precision and its original
// offset preserved, rather than normalizing to UTC the way metav1.Time does.
// nextRun needs this because it is meaningful relative to the plan's
// timeZone.
type RFC3339Time struct {
	time.Time
}

// NewRFC3339Time wraps t for serialization.
func NewRFC3339Time(t time.Time) *RFC3339Time {
	return &RFC3339Time{Time: t.Truncate(time.Second)}
}

// MarshalJSON renders the timestamp as RFC3339 with seconds precision.
func (t RFC3339Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Truncate(time.Second).Format(time.RFC3339))
}

// UnmarshalJSON parses an RFC3339 timestamp.
func (t *RFC3339Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// DeepCopy returns a deep copy of t.
func (t *RFC3339Time) DeepCopy() *RFC3339Time {
	if t == nil {
		return nil
	}
	out := new(RFC3339Time)
	*out = *t
	return out
}
