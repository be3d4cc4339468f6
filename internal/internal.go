// Copyright Cedar Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package internal holds sentinel errors and other support code shared
// across the module's public packages but not meant for external use.
package internal

import "errors"

var (
	// ErrDatetime is wrapped by all datetime parsing errors.
	ErrDatetime = errors.New("error parsing datetime value")
	// ErrDuration is wrapped by all duration parsing errors.
	ErrDuration = errors.New("error parsing duration value")
	// ErrDecimal is wrapped by all decimal parsing errors.
	ErrDecimal = errors.New("error parsing decimal value")
	// ErrIPAddr is wrapped by all IP address parsing errors.
	ErrIPAddr = errors.New("error parsing ip address value")
)
