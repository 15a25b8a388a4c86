package version

import (
	"fmt"
	"runtime"
	"strings"
)

// UserAgent contains a string suitable as a user-agent.
var UserAgent = getUserAgent()

func getUserAgent() string {
	tokens := []string{strings.ToUpper(runtime.GOOS[:1]) + runtime.GOOS[1:], runtime.GOARCH}
	tokens = append(tokens, getPlatformVersionStrings()...)

	return fmt.Sprintf("multipass-lxd/%s (%s)", Version, strings.Join(tokens, "; "))
}
