// Package credentials persists the Telldus Live API credentials of the local user.
//
// The credential file is a small YAML document with four fields:
//
//	public_key: ...
//	private_key: ...
//	access_token: ...         # optional
//	access_token_secret: ...  # optional
//
// Absent optional fields are omitted rather than written as empty values.
//
// SECURITY: the file holds the consumer secret and the access token secret.
//   - Files are written with 0600 permissions, the directory with 0700
//   - Saves go through a temporary file that is renamed over the target, so a
//     failed write never leaves a truncated credential file behind
//   - Field values are never logged, only field names and the file path
package credentials
