// Package common contains shared constants and sentinel errors used across
// VoiceTasker components.
package common

// AccessTokenHeaderName is the HTTP header used to carry the admin access
// token on outbound requests.
const AccessTokenHeaderName = "Authorization"

// AdminCredentialName is the fixed, well-known name of the single admin
// credential record. The application only ever reads this record.
const AdminCredentialName = "defaultAdmin"

// GuestSentinelID is returned by the identity provider when no usable local
// storage scope exists. It must never be used as a log owner key; the server
// rejects writes under it.
const GuestSentinelID = "no-storage-guest"

// AudioDataURIPrefix is the required marker for transcription payloads.
// Payloads are data URIs of the form "data:<mime>;base64,<data>" and the
// MIME type must be an audio type.
const AudioDataURIPrefix = "data:audio"
