package auth

// Package auth provides password verification for htpasswd secrets and the
// HS256 session tokens issued by the HTTP layer.
//
// Verification is stateless; scheme selection happens by inspecting the
// stored secret, never by configuration.
