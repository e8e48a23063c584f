// Package mcpserver exposes a Dradis Pro instance as a Model Context
// Protocol (MCP) server, enabling AI assistants (Claude, VS Code Copilot,
// Cursor, etc.) to manage projects, vulnerabilities, content blocks and
// document properties through natural conversation.
//
// # Architecture
//
// The server is built on the official MCP Go SDK. Tool handlers validate
// arguments at the boundary, then delegate to the session orchestrator,
// which enforces the "a project must be selected first" precondition and
// calls the Dradis API client. Results come back as pretty-printed JSON
// text content.
//
// # Session state
//
// The server holds exactly one piece of state: the current project id,
// owned by the orchestrator. set_project and create_project establish it;
// every other tool requires it. MCP hosts process one tool call at a time
// per session, which is what makes the unlocked cell safe.
//
// # Transports
//
//   - stdio:  stdin/stdout (default). Used by IDE integrations.
//   - HTTP:   streamable HTTP with SSE. Used for remote deployments.
//
// # Usage
//
//	srv := mcpserver.New(&mcpserver.Config{
//		Orchestrator:        orch,
//		VulnerabilityFields: cfg.VulnerabilityFields,
//	})
//	err := srv.RunStdio(ctx)
package mcpserver
