// Package catalog defines the records that flow through the pipeline: raw
// candidates from the catalog source, the published records written to the
// output files, and the reason tags attached to rejected titles.
package catalog
