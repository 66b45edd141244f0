// Package config holds the tool configuration, read from an HCL file.
//
// Example:
//
//	log {
//	  level = "debug"
//	  json  = true
//	}
//
//	parser {
//	  strict = true
//	}
//
//	output {
//	  format = "yaml"
//	}
//
//	metrics {
//	  textfile = "/var/lib/node_exporter/fwtranslate.prom"
//	}
//
// Every block and attribute is optional.
package config
