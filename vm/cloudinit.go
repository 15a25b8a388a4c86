package vm

import (
	"gopkg.in/yaml.v2"
)

// EmitCloudConfig renders a cloud-init document as a #cloud-config file.
func EmitCloudConfig(doc any) (string, error) {
	content, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}

	return "#cloud-config\n" + string(content) + "\n", nil
}

// LoadCloudConfig parses a YAML cloud-init document.
func LoadCloudConfig(content []byte) (any, error) {
	var doc yaml.MapSlice
	err := yaml.Unmarshal(content, &doc)
	if err != nil {
		return nil, err
	}

	return doc, nil
}
