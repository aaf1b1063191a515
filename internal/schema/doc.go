// Package schema provides the LDAP schema registry and the pipeline that
// turns RFC 4512 description text into registry entries.
//
// # Pipeline
//
// A definition passes through four stages:
//
//   - IsValidDescriptor checks short names
//   - ResolveOID expands object identifier macros ("myOrg:1.2")
//   - ParseObjectClass and ParseAttributeType read the description
//   - Registry.InsertObjectClass and Registry.InsertAttributeType check
//     references against what is already stored and commit
//
// Every failure is an *Error carrying a Code:
//
//	macros := schema.NewMacroTable()
//	_ = macros.Define("myOrg", "1.3.6.1.4.1.9999")
//
//	at, err := schema.ParseAttributeType(
//	    `( myOrg:1.1 NAME 'badgeNumber' SUP name )`,
//	    schema.ParseOptions{Macros: macros},
//	)
//	if err != nil {
//	    fmt.Println(schema.CodeOf(err)) // e.g. "OID could not be expanded"
//	}
//
//	reg, _, err := schema.NewDefaultRegistry(schema.DefaultPolicy())
//	err = reg.InsertAttributeType(at)
//	if errors.Is(err, schema.ErrDuplicateAttributeType) {
//	    // OID or name already taken
//	}
//
// # Registry
//
// Inserts are all-or-nothing. A stored attribute type carries the matching
// rules and syntax inherited from its superior; a stored object class
// carries its effective MUST and MAY sets as attribute type OIDs. After
// Seal the registry is read-only and safe for any number of readers.
//
// # Entry Validation
//
//	v := schema.NewValidator(reg)
//
//	entry := schema.NewEntry("uid=alice,ou=users,dc=example,dc=com")
//	entry.SetStringAttribute("objectClass", "person")
//	entry.SetStringAttribute("cn", "Alice Smith")
//	entry.SetStringAttribute("sn", "Smith")
//
//	if err := v.ValidateEntry(entry); err != nil {
//	    // Entry violates schema
//	}
package schema
