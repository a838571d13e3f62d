// Package flags normalizes compiler flags between GCC/Clang's Unix-style
// spelling and MSVC's slash-style spelling. It is a direct port of muuk's
// flags.cpp normalization table: normalization only ever changes spelling,
// never semantics, and is total (unknown flags pass through unchanged) and
// idempotent (normalizing an already-normalized flag is a no-op).
package flags

import (
	"regexp"
	"strings"

	"github.com/oarkflow/muuk/internal/compiler"
)

// msvcToGCC and gccToMSVC are inverse-ish translation tables; entries that
// have no 1:1 back-translation (e.g. /W2 -> "-Wall -Wextra", a multi-flag
// expansion) only appear in one direction, matching the original table.
var msvcToGCC = map[string]string{
	"/I": "-I", "/Fe": "-o", "/Fo": "-o", "/c": "-c",
	"/W0": "-w", "/W1": "-Wall", "/W2": "-Wall -Wextra",
	"/W3": "-Wall -Wextra -Wpedantic",
	"/W4": "-Wall -Wextra -Wpedantic -Wconversion",
	"/EHsc": "-fexceptions", "/Zi": "-g",
	"/O2": "-O2", "/O3": "-O3", "/GL": "-flto",
	"/link": "-Wl,", "/utf-8": "-finput-charset=UTF-8", "/D": "-D",
	"/FS": "", "/Od": "-O0",
	"/RTC1": "-fstack-protector", "/RTCc": "-ftrapv",
	"/Ob0": "-fno-inline", "/Ob1": "-finline-functions",
	"/Ob2": "-finline-functions -finline-small-functions",
	"/LTCG": "-flto",
	"/MT":   "-static-libgcc -static-libstdc++",
	"/MP":   "-pipe",
	"/GR":   "-frtti", "/GR-": "-fno-rtti",
	"/fp:fast": "-ffast-math", "/fp:precise": "-fexcess-precision=standard",
	"/arch:AVX": "-mavx", "/arch:AVX2": "-mavx2",
	"/arch:SSE2": "-msse2", "/arch:SSE3": "-msse3",
	"/LD":             "-shared",
	"/INCREMENTAL:NO": "-Wl,--no-incremental",
	"/OPT:REF":        "-Wl,--gc-sections",
	"/OPT:ICF":        "-Wl,--icf=safe",
	"/SUBSYSTEM:CONSOLE": "-Wl,-subsystem,console",
	"/SUBSYSTEM:WINDOWS": "-Wl,-subsystem,windows",
	"/GS":  "-fstack-protector-strong",
	"/sdl": "-D_FORTIFY_SOURCE=2",
}

var gccToMSVC = map[string]string{
	"-I": "/I", "-o": "/Fe", "-c": "/c",
	"-w": "/W0", "-Wall": "/W3", "-Wextra": "/W4",
	"-Wpedantic": "/W4", "-Wconversion": "/W4",
	"-fexceptions": "/EHsc", "-g": "/Zi",
	"-O2": "/O2", "-O3": "/O3", "-flto": "/GL",
	"-Wl,": "/link", "-finput-charset=UTF-8": "/utf-8",
	"-D": "/D", "-O0": "/Od",
}

var stdPattern = regexp.MustCompile(`^(?:/std:c\+\+|-std=c\+\+)(\d+)$`)

// Normalize rewrites flag into target's spelling. It never allocates a new
// flag semantically; it only changes the prefix/spelling.
func Normalize(flag string, target compiler.Compiler) string {
	if strings.HasPrefix(flag, "/D") || strings.HasPrefix(flag, "-D") {
		prefix := "-D"
		if target == compiler.MSVC {
			prefix = "/D"
		}
		return prefix + flag[2:]
	}

	normalized := flag
	if len(flag) > 0 && flag[0] != '/' && flag[0] != '-' {
		if target == compiler.MSVC {
			normalized = "/" + flag
		} else {
			normalized = "-" + flag
		}
	}

	if target == compiler.MSVC {
		if v, ok := gccToMSVC[normalized]; ok {
			return v
		}
	} else {
		if v, ok := msvcToGCC[normalized]; ok {
			return v
		}
	}

	if m := stdPattern.FindStringSubmatch(flag); m != nil {
		edition := m[1]
		if target == compiler.MSVC {
			return "/std:c++" + edition
		}
		return "-std=c++" + edition
	}

	return normalized
}

// NormalizeList maps Normalize element-wise.
func NormalizeList(flagsIn []string, target compiler.Compiler) []string {
	out := make([]string, len(flagsIn))
	for i, f := range flagsIn {
		out[i] = Normalize(f, target)
	}
	return out
}
