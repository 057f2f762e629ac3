package x11

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	runCommandOutputFn        = runCommandOutput
	readFileFn                = os.ReadFile
	readDirFn                 = os.ReadDir
	detectSessionX11EnvFn     = detectSessionX11Env
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

// DisplayEnv is the X display and authority file to connect with.
type DisplayEnv struct {
	Display    string
	XAuthority string
}

// ResolveDisplayEnv picks DISPLAY and XAUTHORITY from env first, then the
// configured values, then the logind session, then the X socket directory.
// XAUTHORITY falls back to ~/.Xauthority when it exists.
func ResolveDisplayEnv(env []string, display, xauthority string) (DisplayEnv, error) {
	resolvedDisplay := strings.TrimSpace(envLookup(env, "DISPLAY"))
	resolvedXAuth := strings.TrimSpace(envLookup(env, "XAUTHORITY"))

	if resolvedDisplay == "" {
		resolvedDisplay = strings.TrimSpace(display)
	}
	if resolvedXAuth == "" {
		resolvedXAuth = strings.TrimSpace(xauthority)
	}

	if resolvedDisplay == "" || resolvedXAuth == "" {
		detectedDisplay, detectedXAuthority := detectSessionX11EnvFn()
		if resolvedDisplay == "" {
			resolvedDisplay = strings.TrimSpace(detectedDisplay)
		}
		if resolvedXAuth == "" {
			resolvedXAuth = strings.TrimSpace(detectedXAuthority)
		}
	}

	if resolvedDisplay == "" {
		resolvedDisplay = detectDisplayFromSocketFn("/tmp/.X11-unix")
	}
	if resolvedDisplay == "" {
		return DisplayEnv{}, fmt.Errorf("no X display found; set display in config (e.g. display: \":1\") or export DISPLAY")
	}

	if resolvedXAuth == "" {
		home := strings.TrimSpace(envLookup(env, "HOME"))
		if home == "" {
			if detectedHome, err := os.UserHomeDir(); err == nil {
				home = detectedHome
			}
		}
		if home != "" {
			candidate := filepath.Join(home, ".Xauthority")
			if _, err := os.Stat(candidate); err == nil {
				resolvedXAuth = candidate
			}
		}
	}

	return DisplayEnv{Display: resolvedDisplay, XAuthority: resolvedXAuth}, nil
}

func runCommandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func detectSessionX11Env() (display string, xauthority string) {
	uid := strconv.Itoa(os.Getuid())
	out, err := runCommandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return "", ""
	}
	for _, sessionID := range parseLoginctlSessions(out, uid) {
		d := strings.TrimSpace(loginctlShowSessionProp(sessionID, "Display"))
		if d == "" || strings.EqualFold(d, "n/a") {
			continue
		}

		xauth := ""
		leader := strings.TrimSpace(loginctlShowSessionProp(sessionID, "Leader"))
		if leader != "" && leader != "0" {
			if envMap, err := readProcEnviron(leader); err == nil {
				if ed := strings.TrimSpace(envMap["DISPLAY"]); ed != "" {
					d = ed
				}
				xauth = strings.TrimSpace(envMap["XAUTHORITY"])
			}
		}
		return d, xauth
	}
	return "", ""
}

func parseLoginctlSessions(output string, uid string) []string {
	var sessions []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 {
			continue
		}
		if fields[1] == uid {
			sessions = append(sessions, fields[0])
		}
	}
	return sessions
}

func loginctlShowSessionProp(sessionID string, prop string) string {
	out, err := runCommandOutputFn("loginctl", "show-session", sessionID, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func readProcEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	for _, part := range strings.Split(string(data), "\x00") {
		key, value, ok := strings.Cut(part, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env, nil
}

func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil {
			continue
		}
		displays = append(displays, n)
	}

	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}

func envLookup(env []string, key string) string {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return strings.TrimPrefix(e, prefix)
		}
	}
	return ""
}
