package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// presetFile lets a deployment pin echoMode/cngMode/msInSndCardBuf per
// acoustic environment (e.g. "handset", "speakerphone") in a small YAML
// file instead of threading flags through a launcher script.
type presetFile struct {
	Presets map[string]preset `yaml:"presets"`
}

type preset struct {
	EchoMode       int  `yaml:"echoMode"`
	CngMode        bool `yaml:"cngMode"`
	MsInSndCardBuf int  `yaml:"msInSndCardBuf"`
}

func loadPreset(path, name string) (preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return preset{}, err
	}
	var pf presetFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return preset{}, err
	}
	p, ok := pf.Presets[name]
	if !ok {
		return preset{}, os.ErrNotExist
	}
	return p, nil
}
