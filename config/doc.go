// Package config builds JSON formatters from configuration files.
//
// A file holds shared constructor arguments under defaults and one
// section per formatter instance under formatters:
//
//	defaults:
//	  datefmt: "%Y-%m-%dT%H:%M:%S"
//	  mix_extra: true
//	formatters:
//	  access:
//	    format:
//	      - {key: time, value: asctime}
//	      - {key: level, value: levelname}
//	      - {key: msg, value: message}
//	    attributes:
//	      - {name: request_id, rule: uuid}
//	      - {name: severity, expr: 'levelno >= 40 ? "page" : "ticket"'}
//	  audit:
//	    format: '{"who":"user","msg":"message"}'
//	    mix_extra_position: head
//
// Format is a JSON object string or an ordered list of key/value pairs;
// YAML mappings cannot be used because their key order is not kept.
//
// Values are layered from lowest to highest precedence: WithDefaults,
// the file's defaults, WithSectionDefaults, the formatter's own section
// and finally environment variables named
// JSONLOG_FORMATTERS_<NAME>_<KEY>, e.g. JSONLOG_FORMATTERS_ACCESS_STYLE.
package config
