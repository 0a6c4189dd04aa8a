package transform

import (
	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
)

// Default rule sentinels.
const (
	DefaultBooleanAttr      = "lazy-load"
	DefaultPlaceholderAttr  = "placeholder"
	DefaultPlaceholderName  = "aria-placeholder"
	DefaultPlaceholderValue = "placeholder"
	DefaultLegacyIdent      = "legacyRender"
	DefaultRenderIdent      = "render"
)

// AttrRename renames attribute From to To and overwrites its value with Value.
type AttrRename struct {
	From  string `json:"from"  mapstructure:"from"`
	To    string `json:"to"    mapstructure:"to"`
	Value string `json:"value" mapstructure:"value"`
}

func (r AttrRename) enabled() bool {
	return r.From != "" && r.To != "" && r.From != r.To
}

// IdentRename renames a bare identifier From to To.
type IdentRename struct {
	From string `json:"from" mapstructure:"from"`
	To   string `json:"to"   mapstructure:"to"`
}

func (r IdentRename) enabled() bool {
	return r.From != "" && r.To != "" && r.From != r.To
}

// Rules holds the sentinels of the global rewrites. A rule whose names are
// empty, or whose From equals its To, is disabled.
type Rules struct {
	// BooleanAttr is normalized from the string "false" to "true".
	BooleanAttr string      `json:"booleanAttr" mapstructure:"boolean_attr"`
	Attr        AttrRename  `json:"attr"        mapstructure:"attr"`
	Call        IdentRename `json:"call"        mapstructure:"call"`
	Function    IdentRename `json:"function"    mapstructure:"function"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		BooleanAttr: DefaultBooleanAttr,
		Attr: AttrRename{
			From:  DefaultPlaceholderAttr,
			To:    DefaultPlaceholderName,
			Value: DefaultPlaceholderValue,
		},
		Call:     IdentRename{From: DefaultLegacyIdent, To: DefaultRenderIdent},
		Function: IdentRename{From: DefaultLegacyIdent, To: DefaultRenderIdent},
	}
}

// normalizeBoolean rewrites a "false" string value of the boolean attribute.
func (r Rules) normalizeBoolean(attr *node.Node) bool {
	if r.BooleanAttr == "" || attr.AttrName() != r.BooleanAttr {
		return false
	}

	value := attr.AttrValue()
	if value == nil || value.Type != node.TypeStringLiteral || value.Token != "false" {
		return false
	}

	value.Token = "true"
	value.Touch()

	return true
}

// renameAttr applies the attribute rename and overwrites the value.
func (r Rules) renameAttr(attr *node.Node) bool {
	if !r.Attr.enabled() || attr.AttrName() != r.Attr.From {
		return false
	}

	name := attr.ChildByRole(node.RoleName)
	name.Token = r.Attr.To
	name.Touch()

	value := attr.AttrValue()
	if value == nil {
		attr.AddChild(node.WithRole(node.NewStringLiteral(r.Attr.Value), node.RoleValue))

		return true
	}

	if value.Type != node.TypeStringLiteral {
		value.Type = node.TypeStringLiteral
		value.Children = nil
		value.Props = nil
	}

	value.Token = r.Attr.Value
	value.Touch()

	return true
}

// renameCallee renames a bare identifier callee.
func (r Rules) renameCallee(call *node.Node) bool {
	if !r.Call.enabled() {
		return false
	}

	return renameIdent(call.ChildByRole(node.RoleCallee), r.Call)
}

// renameFunction renames a function declaration's own identifier.
func (r Rules) renameFunction(decl *node.Node) bool {
	if !r.Function.enabled() {
		return false
	}

	return renameIdent(decl.ChildByRole(node.RoleName), r.Function)
}

func renameIdent(ident *node.Node, rename IdentRename) bool {
	if ident == nil || ident.Type != node.TypeIdentifier || ident.Token != rename.From {
		return false
	}

	ident.Token = rename.To
	ident.Touch()

	return true
}
