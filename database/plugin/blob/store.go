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

package blob

import (
	"fmt"
	"log/slog"

	"github.com/openrelay-io/arbiter/database/plugin"
	badgerplugin "github.com/openrelay-io/arbiter/database/plugin/blob/badger"
	"github.com/openrelay-io/arbiter/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

type BlobStore interface {
	Close() error
	NewTransaction(bool) types.Txn
	Get(types.Txn, []byte) ([]byte, error)
	Set(types.Txn, []byte, []byte) error
	Delete(types.Txn, []byte) error
	NewIterator(types.Txn, types.BlobIteratorOptions) types.BlobIterator

	// Commit timestamp tracking for cross-store consistency
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
}

// New returns the started blob plugin selected by name
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (BlobStore, error) {
	// For now, badger is the only blob plugin, so runtime configuration
	// goes straight to it. Plugins are instantiated from their registered
	// options, so these must be set before StartPlugin
	badgerplugin.ConfigureRuntime(logger, promRegistry)
	if err := plugin.SetPluginOption(
		plugin.PluginTypeBlob,
		pluginName,
		"data-dir",
		dataDir,
	); err != nil {
		return nil, err
	}
	if dataDir == "" {
		// In-memory stores have no value log to collect
		if err := plugin.SetPluginOption(
			plugin.PluginTypeBlob,
			pluginName,
			"gc",
			false,
		); err != nil {
			return nil, err
		}
	}

	// Get and start the plugin
	p, err := plugin.StartPlugin(plugin.PluginTypeBlob, pluginName)
	if err != nil {
		return nil, err
	}

	// Type assert to BlobStore interface
	blobStore, ok := p.(BlobStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement BlobStore interface",
			pluginName,
		)
	}

	return blobStore, nil
}
