// Package io reads and writes layout collections as JSON or YAML.
//
// # Format
//
// A collection is either a bare array of layouts or an object wrapping it:
//
//	[{"id": 1, "title": "Melee", "width": 8, "height": 8, "items": [{"x": 0, "y": 0, "id": 3, "quantity": 1}]}]
//
//	{"layouts": [ ... ]}
//
// YAML files use the same field names. Both wrappings are accepted on read;
// [WriteJSON] and [WriteYAML] always write the object form so the file can
// grow other top-level keys later.
//
// # Validation
//
// Input is checked against [Schema] before it is decoded, then every layout
// is normalized (width, minimum height, quantities, default thumbnail) and
// run through [grid.Layout.Validate]. Duplicate layout ids are rejected.
// Failures carry the INVALID_FORMAT or INVALID_INPUT code from [errors].
//
// [grid.Layout.Validate]: github.com/matzehuels/banktags/pkg/grid.Layout.Validate
// [errors]: github.com/matzehuels/banktags/pkg/errors
package io
