// Package routes attaches the /-/ diagnostics and control endpoints to a
// server.App.
package routes
