// Package main hosts the flixlist CLI.
//
// "flixlist run" performs one catalog refresh and writes the full and recent
// views. "show" renders a written view or the exclusion log as a table,
// "check" runs the preflight checks, and "config" scaffolds and validates the
// configuration file.
package main
