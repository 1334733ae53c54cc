package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk rule file layout:
//
//	rules:
//	  - name: good_night
//	    phrases: ["good night", "gn"]
//	    reply: "Soja lwle {{.Name}}!"
//	    owner_only: false
type File struct {
	Rules []Rule `yaml:"rules"`
}

// LoadFile reads and compiles a YAML rule file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Table, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("parse rules: no rules defined")
	}
	return Compile(f.Rules)
}

// Marshal renders rules in the file layout, e.g. to bootstrap a custom file.
func Marshal(rules []Rule) ([]byte, error) {
	return yaml.Marshal(File{Rules: rules})
}
