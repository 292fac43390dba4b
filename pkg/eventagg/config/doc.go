// Package config loads event aggregator settings from YAML or JSON.
//
// # Format
//
//	ownership: weak            # weak | strong
//	message_inheritance: false
//	marshaller: inline         # inline | goroutine | limited
//	async_marshaller: inline
//	max_concurrency: 8         # used by "limited"
//	metrics: true
//	tracing: false
//	dead_letter:
//	  driver: sqlite           # memory | sqlite, empty disables
//	  path: ./deadletter.db
//	  max_entries: 10000
//
// Missing keys fall back to Default. Values of the wrong type are ignored
// rather than rejected; unknown enum values fail Validate.
//
// # Usage
//
//	s, err := config.FromFile("eventagg.yaml")
//	if err != nil {
//	    return err
//	}
//	cfg, err := eventagg.ConfigFromSettings(s)
package config
