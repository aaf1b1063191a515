package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/KilimcininKorOglu/obaschema/internal/ingest"
	"github.com/KilimcininKorOglu/obaschema/internal/schema"
)

// definitions holds canonical descriptions ready for output.
type definitions struct {
	Syntaxes       []string `json:"ldapSyntaxes,omitempty"`
	MatchingRules  []string `json:"matchingRules,omitempty"`
	AttributeTypes []string `json:"attributeTypes,omitempty"`
	ObjectClasses  []string `json:"objectClasses,omitempty"`
}

// collect gathers the definitions of s selected by kind. OIDs in skip are
// left out.
func collect(s *ingest.Schema, kind string, skip map[string]bool) (*definitions, error) {
	var defs definitions
	all := kind == "" || kind == "all"
	switch kind {
	case "", "all", "attributetypes", "objectclasses":
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}

	if all {
		for _, syn := range s.Catalog.Syntaxes() {
			if !skip[syn.OID] {
				defs.Syntaxes = append(defs.Syntaxes, syn.String())
			}
		}
		for _, mr := range s.Catalog.MatchingRules() {
			if !skip[mr.OID] {
				defs.MatchingRules = append(defs.MatchingRules, mr.String())
			}
		}
	}
	if all || kind == "attributetypes" {
		for _, at := range s.Registry.AttributeTypes() {
			if !skip[at.OID] {
				defs.AttributeTypes = append(defs.AttributeTypes, at.String())
			}
		}
	}
	if all || kind == "objectclasses" {
		for _, oc := range s.Registry.ObjectClasses() {
			if !skip[oc.OID] {
				defs.ObjectClasses = append(defs.ObjectClasses, oc.String())
			}
		}
	}
	return &defs, nil
}

// builtinOIDs returns the OIDs every default registry starts with.
func builtinOIDs() (map[string]bool, error) {
	reg, catalog, err := schema.NewDefaultRegistry(schema.DefaultPolicy())
	if err != nil {
		return nil, err
	}
	oids := make(map[string]bool)
	for _, syn := range catalog.Syntaxes() {
		oids[syn.OID] = true
	}
	for _, mr := range catalog.MatchingRules() {
		oids[mr.OID] = true
	}
	for _, at := range reg.AttributeTypes() {
		oids[at.OID] = true
	}
	for _, oc := range reg.ObjectClasses() {
		oids[oc.OID] = true
	}
	return oids, nil
}

// writeDefinitions prints defs as a slapd schema file, a subschema LDIF
// entry or JSON.
func writeDefinitions(w io.Writer, defs *definitions, format string) error {
	switch format {
	case "", "schema":
		// slapd.conf has no directive for syntaxes or matching rules.
		for _, d := range defs.AttributeTypes {
			fmt.Fprintf(w, "attributetype %s\n\n", d)
		}
		for _, d := range defs.ObjectClasses {
			fmt.Fprintf(w, "objectclass %s\n\n", d)
		}
	case "ldif":
		fmt.Fprint(w, "dn: cn=schema\nobjectClass: top\nobjectClass: subschema\ncn: schema\n")
		writeLDIFValues(w, "ldapSyntaxes", defs.Syntaxes)
		writeLDIFValues(w, "matchingRules", defs.MatchingRules)
		writeLDIFValues(w, "attributeTypes", defs.AttributeTypes)
		writeLDIFValues(w, "objectClasses", defs.ObjectClasses)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(defs)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

func writeLDIFValues(w io.Writer, attr string, values []string) {
	for _, v := range values {
		fmt.Fprintf(w, "%s: %s\n", attr, v)
	}
}
