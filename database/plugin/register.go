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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota
	PluginTypeMetadata
)

// PluginTypeName returns the human-readable name for a plugin type
func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	Dest         any
	DefaultValue any
	Name         string
	Description  string
	Type         PluginOptionType
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var pluginEntries []PluginEntry

// Register adds a plugin entry to the registry. It's expected to be called
// from a plugin package's init()
func Register(entry PluginEntry) {
	pluginEntries = append(pluginEntries, entry)
}

// GetPlugin instantiates the named plugin of the given type using its
// registered options, or returns nil if not found
func GetPlugin(pluginType PluginType, name string) Plugin {
	for _, entry := range pluginEntries {
		if entry.Type == pluginType && entry.Name == name {
			return entry.NewFromOptionsFunc()
		}
	}
	return nil
}

// GetPlugins returns the registered plugin entries for the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	var ret []PluginEntry
	for _, entry := range pluginEntries {
		if entry.Type == pluginType {
			ret = append(ret, entry)
		}
	}
	return ret
}

// optionFlagName builds the command-line flag name for a plugin option
func optionFlagName(entry PluginEntry, opt PluginOption) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(entry.Type),
		entry.Name,
		opt.Name,
	)
}

// optionEnvVarName builds the environment variable name for a plugin option
func optionEnvVarName(entry PluginEntry, opt PluginOption) string {
	return strings.ToUpper(
		strings.ReplaceAll(
			"ARBITER_"+optionFlagName(entry, opt),
			"-",
			"_",
		),
	)
}

// PopulateCmdlineOptions adds flags for all registered plugin options to
// the provided flag set
func PopulateCmdlineOptions(fs *flag.FlagSet) error {
	for _, entry := range pluginEntries {
		for _, opt := range entry.Options {
			flagName := optionFlagName(entry, opt)
			switch opt.Type {
			case PluginOptionTypeString:
				dest, ok := opt.Dest.(*string)
				if !ok {
					return fmt.Errorf(
						"option %s: expected *string destination",
						flagName,
					)
				}
				defVal, _ := opt.DefaultValue.(string)
				fs.StringVar(dest, flagName, defVal, opt.Description)
			case PluginOptionTypeBool:
				dest, ok := opt.Dest.(*bool)
				if !ok {
					return fmt.Errorf(
						"option %s: expected *bool destination",
						flagName,
					)
				}
				defVal, _ := opt.DefaultValue.(bool)
				fs.BoolVar(dest, flagName, defVal, opt.Description)
			case PluginOptionTypeUint:
				dest, ok := opt.Dest.(*uint64)
				if !ok {
					return fmt.Errorf(
						"option %s: expected *uint64 destination",
						flagName,
					)
				}
				defVal, _ := opt.DefaultValue.(uint64)
				fs.Uint64Var(dest, flagName, defVal, opt.Description)
			default:
				return fmt.Errorf(
					"option %s: unsupported option type %d",
					flagName,
					opt.Type,
				)
			}
		}
	}
	return nil
}

// ProcessEnvVars overrides plugin options from environment variables
func ProcessEnvVars() error {
	for _, entry := range pluginEntries {
		for _, opt := range entry.Options {
			envVal, ok := os.LookupEnv(optionEnvVarName(entry, opt))
			if !ok {
				continue
			}
			switch opt.Type {
			case PluginOptionTypeString:
				if err := SetPluginOption(entry.Type, entry.Name, opt.Name, envVal); err != nil {
					return err
				}
			case PluginOptionTypeBool:
				boolVal, err := strconv.ParseBool(envVal)
				if err != nil {
					return fmt.Errorf(
						"invalid bool value for %s: %w",
						optionEnvVarName(entry, opt),
						err,
					)
				}
				if err := SetPluginOption(entry.Type, entry.Name, opt.Name, boolVal); err != nil {
					return err
				}
			case PluginOptionTypeUint:
				uintVal, err := strconv.ParseUint(envVal, 10, 64)
				if err != nil {
					return fmt.Errorf(
						"invalid uint value for %s: %w",
						optionEnvVarName(entry, opt),
						err,
					)
				}
				if err := SetPluginOption(entry.Type, entry.Name, opt.Name, uintVal); err != nil {
					return err
				}
			default:
				return fmt.Errorf(
					"unsupported option type %d for %s",
					opt.Type,
					opt.Name,
				)
			}
		}
	}
	return nil
}

// ProcessConfig overrides plugin options from a parsed config file section.
// The outer map key is the plugin type name, the middle key is the plugin
// name, and the inner map holds option name/value pairs
func ProcessConfig(cfg map[string]map[string]map[string]any) error {
	for typeName, plugins := range cfg {
		var pluginType PluginType
		switch typeName {
		case "blob":
			pluginType = PluginTypeBlob
		case "metadata":
			pluginType = PluginTypeMetadata
		default:
			return fmt.Errorf("unknown plugin type in config: %s", typeName)
		}
		for pluginName, opts := range plugins {
			for optName, optVal := range opts {
				if err := SetPluginOption(pluginType, pluginName, optName, optVal); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
