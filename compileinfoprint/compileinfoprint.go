// Package compileinfoprint is imported by the ccleprep binaries for the side
// effect of writing their build stamp to stderr at startup.
package compileinfoprint

import "github.com/carbocation/ccleprep/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
