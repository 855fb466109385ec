package pkgng

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ScriptMapping maps a lifecycle script file name to the pkgng script key it
// is stored under.
type ScriptMapping struct {
	Source string
	Target string
}

// DefaultScriptMap lists the recognised script names. Order matters: when two
// sources map to the same target, the later one wins, so native pkgng names
// override the generic ones.
var DefaultScriptMap = []ScriptMapping{
	{Source: "preinst", Target: "pre-install"},
	{Source: "postinst", Target: "post-install"},
	{Source: "prerm", Target: "pre-deinstall"},
	{Source: "postrm", Target: "post-deinstall"},

	{Source: "preinstall", Target: "pre-install"},
	{Source: "postinstall", Target: "post-install"},
	{Source: "install", Target: "install"},
	{Source: "predeinstall", Target: "pre-deinstall"},
	{Source: "deinstall", Target: "deinstall"},
	{Source: "preupgrade", Target: "pre-upgrade"},
	{Source: "postupgrade", Target: "post-upgrade"},
	{Source: "upgrade", Target: "upgrade"},
}

// InjectScripts reads every script in scriptMap that exists in scriptsDir and
// stores its contents in manifest.Scripts under the target name. Missing
// scripts, or a missing directory, are not an error.
func InjectScripts(manifest *Manifest, scriptsDir string, scriptMap []ScriptMapping) error {
	scripts := map[string]string{}

	for _, mapping := range scriptMap {
		path := filepath.Join(scriptsDir, mapping.Source)

		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat script %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read script %s: %w", path, err)
		}
		scripts[mapping.Target] = string(content)
	}

	manifest.Scripts = scripts
	return nil
}
