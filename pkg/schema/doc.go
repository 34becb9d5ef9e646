// Package schema defines the declarative form description each record wizard
// publishes. A FormSchema is an ordered list of sections; a section is either
// informational (static content, no fields) or input-bearing (fields, no
// content). Fields carry their input type, defaults and type-specific
// constraints, plus an optional VisibleWhen rule that consuming renderers use
// to show or hide the field. The wizard engines never enforce visibility
// themselves; they only declare it.
package schema
