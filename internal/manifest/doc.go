// Package manifest parses and validates apm.yml package manifests and
// collection manifests.
package manifest
