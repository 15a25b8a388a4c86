//go:build linux

package version

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

func getPlatformVersionStrings() []string {
	versions := []string{}

	// Add kernel version
	uname := unix.Utsname{}
	err := unix.Uname(&uname)
	if err != nil {
		return versions
	}

	versions = append(versions, strings.Split(unix.ByteSliceToString(uname.Release[:]), "-")[0])

	// Add distribution info
	osRelease := readOSRelease("/etc/os-release")
	for _, key := range []string{"NAME", "VERSION_ID"} {
		value, ok := osRelease[key]
		if ok {
			versions = append(versions, value)
		}
	}

	return versions
}

// readOSRelease parses the KEY=value lines of an os-release file.
func readOSRelease(path string) map[string]string {
	values := map[string]string{}

	f, err := os.Open(path)
	if err != nil {
		return values
	}

	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok || strings.HasPrefix(key, "#") {
			continue
		}

		values[key] = strings.Trim(value, `"'`)
	}

	return values
}
