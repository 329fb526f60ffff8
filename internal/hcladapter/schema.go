package hcladapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Templates []*templateBlock `hcl:"template,block"`
	Shaders   []*shaderBlock   `hcl:"shader,block"`
	Nodes     []*nodeBlock     `hcl:"node,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type templateBlock struct {
	Name string `hcl:"name,label"`
	GUID string `hcl:"guid,optional"`
	Path string `hcl:"path"`
	SRP  bool   `hcl:"srp,optional"`
}

type shaderBlock struct {
	Name     string         `hcl:"name,label"`
	Template string         `hcl:"template"`
	LOD      hcl.Expression `hcl:"lod,optional"`
	Passes   []*passBlock   `hcl:"pass,block"`
}

type passBlock struct {
	Name    string            `hcl:"name,label"`
	Ports   map[string]string `hcl:"ports,optional"`
	Modules []*moduleBlock    `hcl:"module,block"`
}

type moduleBlock struct {
	Level string   `hcl:"level,label"`
	Name  string   `hcl:"name,label"`
	Body  hcl.Body `hcl:",remain"`
}

// nodeBlock keeps its body raw: apart from inputs, its attributes belong
// to the unit and are decoded later by the Converter.
type nodeBlock struct {
	Kind string   `hcl:"kind,label"`
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}
