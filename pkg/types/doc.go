// Package types defines the values shared by every installer component:
// the immutable InstallationPlan, the detected SourceLayout and the FS seam
// through which all filesystem access flows.
package types
