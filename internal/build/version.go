// Package build contains the build-time information of retrace.
package build

// Version contains the current semantic version of retrace.
const Version = "0.1.0"
