// Package testutil provides test helpers for entdecode tests.
//
//   - assert.go: assertion helpers (MustNoErr, AssertValidUTF8, etc.)
//   - fs_helpers.go: temp file helpers (WriteFile)
//   - encoding.go: legacy-charset byte samples
//   - email/: raw RFC 5322 message construction
package testutil
