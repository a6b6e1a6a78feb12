// Package schemafile reads envschema schemas from declarative documents.
//
// A document lists variables under a top-level "variables" key:
//
//	variables:
//	  PORT:
//	    type: number
//	    default: 3000
//	    min: 1000
//	    max: 65535
//	  API_URL:
//	    type: string
//	    required: true
//	    pattern: "^https?://"
//	  FEATURES:
//	    type: array
//	    oneOf: [search, export]
//
// YAML, JSON and TOML documents are supported. Constraint keys (min, max,
// minLength, maxLength, oneOf, pattern) become predicates on the
// descriptor's Validate field.
package schemafile
