package testutil

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hdl21/elaborate/internal/ir"
)

// SignalFixture describes one scalar signal inside an interface fixture.
type SignalFixture struct {
	Name  string `yaml:"name"`
	Width int    `yaml:"width"`
	Src   string `yaml:"src,omitempty"`
	Dest  string `yaml:"dest,omitempty"`
}

// FieldFixture names a nested interface field by the name of another
// InterfaceFixture declared in the same document.
type FieldFixture struct {
	Name string `yaml:"name"`
	Of   string `yaml:"of"`
}

// InterfaceFixture describes one bundle type.
type InterfaceFixture struct {
	Name    string          `yaml:"name"`
	Signals []SignalFixture `yaml:"signals"`
	Fields  []FieldFixture  `yaml:"fields"`
}

// BundleInstanceFixture describes one InterfaceInstance declared on the
// fixture's Module.
type BundleInstanceFixture struct {
	Name string `yaml:"name"`
	Of   string `yaml:"of"`
	Port bool   `yaml:"port"`
	Role string `yaml:"role,omitempty"`
}

// ModuleFixture describes the Module under test.
type ModuleFixture struct {
	Name    string                  `yaml:"name"`
	Bundles []BundleInstanceFixture `yaml:"bundles"`
}

// FixtureSet is the top-level YAML document shape accepted by LoadFixture:
// a set of named interface types followed by one Module that uses them.
// Tests use it to describe IR shapes declaratively instead of as long
// chains of constructor calls.
type FixtureSet struct {
	Interfaces []InterfaceFixture `yaml:"interfaces"`
	Module     ModuleFixture      `yaml:"module"`
}

// LoadFixture parses a YAML fixture document into a constructed IR Module
// wired up with its InterfaceInstances.
func LoadFixture(data []byte) (*ir.Module, error) {
	var set FixtureSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	byName := make(map[string]*ir.Interface, len(set.Interfaces))
	for _, ifc := range set.Interfaces {
		byName[ifc.Name] = ir.NewInterface(ifc.Name)
	}
	for _, ifc := range set.Interfaces {
		target := byName[ifc.Name]
		for _, sig := range ifc.Signals {
			target.AddSignal(&ir.InterfaceSignal{Name: sig.Name, Width: sig.Width, Src: sig.Src, Dest: sig.Dest})
		}
		for _, field := range ifc.Fields {
			of, ok := byName[field.Of]
			if !ok {
				return nil, fmt.Errorf("interface %q: field %q references undefined interface %q", ifc.Name, field.Name, field.Of)
			}
			target.AddField(field.Name, of)
		}
	}

	mod := ir.NewModule(set.Module.Name)
	for _, b := range set.Module.Bundles {
		of, ok := byName[b.Of]
		if !ok {
			return nil, fmt.Errorf("module %q: bundle %q references undefined interface %q", set.Module.Name, b.Name, b.Of)
		}
		var role *string
		if b.Role != "" {
			role = &b.Role
		}
		ii := ir.NewInterfaceInstance(b.Name, of, b.Port, role)
		if err := mod.AddInterface(ii); err != nil {
			return nil, err
		}
	}
	return mod, nil
}
