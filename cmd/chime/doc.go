// Command chime is the ntfy publisher/subscriber CLI: publish notifications,
// stream topics, generate topic names, run commands with completion
// notifications, and inspect the message archive written by chimed.
package main
