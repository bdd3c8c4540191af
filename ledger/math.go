// Copyright 2025 OpenRelay Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"errors"
	"math"
)

// ErrOverflow is returned when checked arithmetic would wrap. Callers
// must fail the whole operation rather than saturate
var ErrOverflow = errors.New("arithmetic overflow")

// CheckedAdd returns a+b or ErrOverflow
func CheckedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// CheckedSub returns a-b or ErrOverflow if b > a
func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrOverflow
	}
	return a - b, nil
}

// CheckedAdd8 returns a+b or ErrOverflow for 8-bit tallies
func CheckedAdd8(a, b uint8) (uint8, error) {
	if a > math.MaxUint8-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// CheckedAdd32 returns a+b or ErrOverflow for 32-bit counters
func CheckedAdd32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// CheckedMul returns a*b or ErrOverflow
func CheckedMul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxUint64/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}
