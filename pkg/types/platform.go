package types

import (
	"fmt"
	"runtime"
)

var archNames = map[string]string{
	"amd64":   "x86_64",
	"386":     "i686",
	"arm64":   "aarch64",
	"arm":     "armv7",
	"riscv64": "riscv64gc",
	"ppc64le": "powerpc64le",
	"s390x":   "s390x",
	"wasm":    "wasm32",
}

// HostTriple returns the target triple of the platform running the resolver
func HostTriple() string {
	return Triple(runtime.GOOS, runtime.GOARCH)
}

// Triple maps a Go GOOS/GOARCH pair to a target triple
func Triple(goos, goarch string) string {
	arch, ok := archNames[goarch]
	if !ok {
		arch = goarch
	}

	switch goos {
	case "linux":
		if goarch == "arm" {
			return arch + "-unknown-linux-gnueabihf"
		}
		return arch + "-unknown-linux-gnu"
	case "darwin":
		return arch + "-apple-darwin"
	case "windows":
		return arch + "-pc-windows-msvc"
	case "freebsd", "netbsd", "openbsd":
		return arch + "-unknown-" + goos
	case "android":
		return arch + "-linux-android"
	case "ios":
		return arch + "-apple-ios"
	case "js", "wasip1":
		return "wasm32-unknown-unknown"
	default:
		return fmt.Sprintf("%s-unknown-%s", arch, goos)
	}
}
