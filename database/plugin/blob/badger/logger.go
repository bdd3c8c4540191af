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

package badger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerLogger adapts badger's printf-style logger to slog
type BadgerLogger struct {
	logger *slog.Logger
}

func NewBadgerLogger(logger *slog.Logger) *BadgerLogger {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &BadgerLogger{
		logger: logger.With("component", "database"),
	}
}

func (b *BadgerLogger) logf(
	logFunc func(string, ...any),
	msg string,
	args ...any,
) {
	logFunc(
		strings.TrimSuffix(fmt.Sprintf(msg, args...), "\n"),
	)
}

func (b *BadgerLogger) Errorf(msg string, args ...any) {
	b.logf(b.logger.Error, msg, args...)
}

func (b *BadgerLogger) Warningf(msg string, args ...any) {
	b.logf(b.logger.Warn, msg, args...)
}

func (b *BadgerLogger) Infof(msg string, args ...any) {
	b.logf(b.logger.Info, msg, args...)
}

func (b *BadgerLogger) Debugf(msg string, args ...any) {
	b.logf(b.logger.Debug, msg, args...)
}

var _ badger.Logger = (*BadgerLogger)(nil)
