package debug

import (
	"fmt"
	"strings"
)

// format joins args the way log.Println does. The console only accepts
// values js.ValueOf understands, so everything is turned into one string
// first.
func format(args ...interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}
