// Package commands defines the sigdh CLI.
//
// Commands
//
//   - handshake  Run both roles in process and dump the exchanged packets
//   - serve      Accept QUIC connections as the responder
//   - dial       Connect as the initiator and send a message or a file
//   - bench      Run many independent handshakes concurrently
//   - params     Print group and identity parameters
//   - keygen     Generate fresh RSA identities into a config file
//
// The root command loads the configuration (built-in constants unless
// --config is given) and sets up logging before any subcommand runs.
package commands
