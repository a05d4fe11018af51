package llm

import (
	"encoding/json"
	"strings"
)

// RepairArguments fixes the missing comma between pretty-printed argument
// fields that some models emit. Arguments that already parse, or that still
// fail after the fix, are returned unchanged.
func RepairArguments(args string) string {
	if args == "" || json.Valid([]byte(args)) {
		return args
	}
	repaired := strings.ReplaceAll(args, "\"\n  \"", "\",\n  \"")
	if json.Valid([]byte(repaired)) {
		return repaired
	}
	return args
}
