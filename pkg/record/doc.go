// Package record holds the value types exchanged with the wizard engines:
// the caller-supplied FormData, the generated Record, the ancillary Meta of a
// stored record, and the ValidationResult returned by validation.
package record
