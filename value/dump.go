package value

import "github.com/davecgh/go-spew/spew"

// dumpConfig matches the teacher's convention of a package-local spew
// config (pointer addresses and capacities suppressed, map keys sorted)
// so dumps stay stable across runs for golden-output tests.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders v's full interior graph for debugging and test failure
// output — the value-graph analogue of eventloop's debug dump helpers.
func Dump(v *Value) string {
	return dumpConfig.Sdump(v)
}
