// Package component defines the lifecycle contract for long-running
// services such as the fake posts API, and a Registry that starts them in
// order and stops them in reverse.
//
// # Interfaces
//
//   - Component: Start, Stop and Health
//   - Describable: startup summary description
//   - RouteProvider: registered HTTP routes for the startup summary
package component
