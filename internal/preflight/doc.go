// Package preflight checks that a run can succeed before it starts.
//
// Checks cover the credentials each enabled stage needs, write access to the
// output directory, and reachability of the upstream services. The CLI
// "flixlist check" command renders the results; the pipeline does not call
// these checks itself.
package preflight
