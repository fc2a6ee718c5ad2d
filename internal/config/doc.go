// Package config provides the RuleSet document that configures a mapping
// engine, and its loading.
//
// This package defines the document model, YAML loading with environment
// variable substitution, rule file includes, environment overrides for
// engine and logging settings, validation, and file watching for hot-reload
// support.
//
// # Features
//
//   - YAML document loading (JSON documents are valid YAML)
//   - Environment variable substitution with ${VAR:-default} syntax
//   - Rule file includes, cycle-checked and bounded
//   - AVAMAP_ environment overrides for settings
//   - Validation with detailed error reporting
//   - File watching for hot-reload
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("orders.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # File Watching
//
//	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
//	    // Rebuild the engine from cfg
//	}, config.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = watcher.Start(ctx)
package config
