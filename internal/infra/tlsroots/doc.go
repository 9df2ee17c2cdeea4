// Package tlsroots builds the trust store used by the API client.
//
// By default the system roots are used. Setting api.ca_file points the
// client at an extra PEM bundle or a directory of .pem/.crt/.cer files,
// e.g. for a staging API behind a private CA.
package tlsroots
