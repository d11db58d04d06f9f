// Package log provides structured logging for AavionDB using zerolog.
//
// A single global Logger is configured once via Init; subsystems get a
// component-scoped child logger via WithComponent so every line they
// emit carries a "component" field without repeating it at each call
// site.
package log
