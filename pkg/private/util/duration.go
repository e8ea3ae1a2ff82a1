// Copyright 2017 ETH Zurich
// Copyright 2026 The fwnet Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"regexp"
	"strconv"
	"time"

	"github.com/sdrfw/fwnet/pkg/private/serrors"
)

var durationRegex = regexp.MustCompile(`^(-?[0-9]+)(y|w|d|h|m|s|ms|us|µs|ns)$`)

var units = []struct {
	suffix string
	d      time.Duration
}{
	{"y", 365 * 24 * time.Hour},
	{"w", 7 * 24 * time.Hour},
	{"d", 24 * time.Hour},
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
	{"ms", time.Millisecond},
	{"us", time.Microsecond},
	{"ns", time.Nanosecond},
}

// ParseDuration parses a duration with a single unit, e.g. "60s" or "7d".
// Compound durations such as "1h30m" are rejected.
func ParseDuration(s string) (time.Duration, error) {
	m := durationRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, serrors.New("invalid duration", "value", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, serrors.Wrap("invalid duration", err, "value", s)
	}
	unit := m[2]
	if unit == "µs" {
		unit = "us"
	}
	for _, u := range units {
		if u.suffix == unit {
			return time.Duration(n) * u.d, nil
		}
	}
	return 0, serrors.New("invalid duration unit", "value", s)
}

// FmtDuration formats d with the largest unit that represents it exactly.
func FmtDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	for _, u := range units {
		if d%u.d == 0 {
			return strconv.FormatInt(int64(d/u.d), 10) + u.suffix
		}
	}
	return d.String()
}
