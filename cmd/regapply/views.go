package main

import (
	"github.com/joshuapare/regapply/internal/coerce"
	"github.com/joshuapare/regapply/pkg/types"
)

// Serialisable views of documents and store dumps, shared by the json and
// yaml output modes.

type directiveView struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	Raw  string `json:"raw" yaml:"raw"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
}

type groupView struct {
	Path       string          `json:"path" yaml:"path"`
	Line       int             `json:"line,omitempty" yaml:"line,omitempty"`
	Directives []directiveView `json:"directives" yaml:"directives"`
}

type documentView struct {
	File    string      `json:"file,omitempty" yaml:"file,omitempty"`
	Dialect string      `json:"dialect" yaml:"dialect"`
	Groups  []groupView `json:"groups" yaml:"groups"`
	Errors  []string    `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func viewDocument(file string, doc *types.Document) documentView {
	v := documentView{File: file, Dialect: string(doc.Dialect), Groups: []groupView{}}
	for _, g := range doc.Groups {
		gv := groupView{Path: g.Path.String(), Line: g.Line, Directives: []directiveView{}}
		for _, d := range g.Directives {
			gv.Directives = append(gv.Directives, directiveView{Name: d.Name, Kind: d.Kind.String(), Raw: d.Raw, Line: d.Line})
		}
		v.Groups = append(v.Groups, gv)
	}
	return v
}

type valueView struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Value string `json:"value" yaml:"value"`
}

type keyView struct {
	Path   string      `json:"path" yaml:"path"`
	Values []valueView `json:"values" yaml:"values"`
}

func viewDump(keys []types.KeyDump) []keyView {
	out := make([]keyView, 0, len(keys))
	for _, k := range keys {
		kv := keyView{Path: k.Path.String(), Values: []valueView{}}
		for _, v := range k.Values {
			kv.Values = append(kv.Values, valueView{Name: v.Name, Kind: v.Kind.String(), Value: coerce.Render(v.Value)})
		}
		out = append(out, kv)
	}
	return out
}
