package entries

import (
	"strings"

	"git.home.luguber.info/inful/apigen/internal/apimodel"
	"git.home.luguber.info/inful/apigen/internal/docstring"
)

// Expander expands inventory objects into documentation entries.
type Expander struct {
	inv    *apimodel.Inventory
	policy Policy
}

// NewExpander creates an Expander over one inventory.
func NewExpander(inv *apimodel.Inventory, policy Policy) *Expander {
	return &Expander{inv: inv, policy: policy}
}

// Overloads parses the object's docstring into per-overload entries for the
// object itself (not its members).
func (x *Expander) Overloads(obj *apimodel.Object) ([]Entry, error) {
	parsed, err := docstring.Parse(obj.Doc)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(parsed))
	for _, overload := range parsed {
		entries = append(entries, x.newEntry(obj, obj.Name, obj.FullName, overload))
	}
	return entries, nil
}

// Members returns the sequence of member entries to document for a parent
// object, including inherited members for classes. Inherited members are
// deduplicated against direct ones by TOC title and marked IsInherited.
func (x *Expander) Members(parent *apimodel.Object) ([]Entry, error) {
	seen := make(map[string]struct{})
	var out []Entry

	direct, err := x.directMembers(parent)
	if err != nil {
		return nil, err
	}
	for _, e := range direct {
		if _, dup := seen[e.TOCTitle()]; dup {
			continue
		}
		seen[e.TOCTitle()] = struct{}{}
		out = append(out, e)
	}

	if parent.ObjType != apimodel.ObjTypeClass {
		return out, nil
	}

	for _, base := range x.linearizedBases(parent) {
		inherited, err := x.directMembers(base)
		if err != nil {
			return nil, err
		}
		for _, e := range inherited {
			if _, dup := seen[e.TOCTitle()]; dup {
				continue
			}
			seen[e.TOCTitle()] = struct{}{}
			e.IsInherited = true
			out = append(out, e)
		}
	}
	return out, nil
}

// linearizedBases walks the base classes depth-first in declaration order,
// visiting each class once. Bases not present in the inventory are skipped.
func (x *Expander) linearizedBases(cls *apimodel.Object) []*apimodel.Object {
	var out []*apimodel.Object
	visited := map[string]struct{}{cls.FullName: {}}

	var walk func(obj *apimodel.Object)
	walk = func(obj *apimodel.Object) {
		for _, baseName := range obj.Bases {
			if _, ok := visited[baseName]; ok {
				continue
			}
			visited[baseName] = struct{}{}
			base, ok := x.inv.Lookup(baseName)
			if !ok {
				continue
			}
			out = append(out, base)
			walk(base)
		}
	}
	walk(cls)
	return out
}

func (x *Expander) directMembers(parent *apimodel.Object) ([]Entry, error) {
	var out []Entry
	for i := range parent.Members {
		member := &parent.Members[i]
		if !includeMember(member) {
			continue
		}
		transformed, err := x.transformMember(member)
		if err != nil {
			return nil, err
		}
		out = append(out, transformed...)
	}
	return out, nil
}

// includeMember filters members that are never worth documenting.
func includeMember(member *apimodel.Object) bool {
	if _, excluded := excludedSpecialMembers[member.Name]; excluded {
		return false
	}
	if member.Name == "__init__" && member.Doc != nil &&
		strings.HasPrefix(*member.Doc, "Initialize self. ") {
		// Default object.__init__ docstring, nothing useful to show.
		return false
	}
	return true
}

// transformMember converts one member into its documentation entries,
// expanding overloads and rewriting subscript-method properties into their
// __getitem__/__setitem__ pair.
func (x *Expander) transformMember(member *apimodel.Object) ([]Entry, error) {
	if member.Name == "__class_getitem__" {
		return x.memberOverloads(member, member.Name, member.FullName, true)
	}

	if target := x.subscriptMethodTarget(member); target != nil {
		var out []Entry
		for _, suffix := range []string{"__getitem__", "__setitem__"} {
			method := findMember(target, suffix)
			if method == nil {
				continue
			}
			name := member.Name
			fullName := member.FullName
			subscript := true
			if suffix == "__setitem__" {
				name = member.Name + "." + suffix
				fullName = member.FullName + "." + suffix
				subscript = false
			}
			expanded, err := x.memberOverloads(method, name, fullName, subscript)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		}
		return out, nil
	}

	return x.memberOverloads(member, member.Name, member.FullName, false)
}

// subscriptMethodTarget resolves the class implementing a subscript-method
// property, or nil when the member is not one.
func (x *Expander) subscriptMethodTarget(member *apimodel.Object) *apimodel.Object {
	if member.ObjType != apimodel.ObjTypeProperty {
		return nil
	}
	if x.policy.SubscriptMethodTypes == nil || member.ReturnAnnotation == "" {
		return nil
	}
	if !x.policy.SubscriptMethodTypes.MatchString(member.ReturnAnnotation) {
		return nil
	}
	target, ok := x.inv.Lookup(member.ReturnAnnotation)
	if !ok || target.ObjType != apimodel.ObjTypeClass {
		return nil
	}
	if findMember(target, "__getitem__") == nil {
		return nil
	}
	return target
}

func findMember(obj *apimodel.Object, name string) *apimodel.Object {
	for i := range obj.Members {
		if obj.Members[i].Name == name {
			return &obj.Members[i]
		}
	}
	return nil
}

// memberOverloads expands one member into per-overload entries. Special
// members outside the unconditional set are documented only when the
// overload carries a docstring.
func (x *Expander) memberOverloads(member *apimodel.Object, name, fullName string, subscript bool) ([]Entry, error) {
	parsed, err := docstring.Parse(member.Doc)
	if err != nil {
		return nil, err
	}

	conditional := isConditionallyDocumented(name)
	var out []Entry
	for _, overload := range parsed {
		if conditional && (overload.Doc == nil || strings.TrimSpace(*overload.Doc) == "") {
			continue
		}
		e := x.newEntry(member, name, fullName, overload)
		e.Subscript = subscript
		out = append(out, e)
	}
	return out, nil
}

func isConditionallyDocumented(name string) bool {
	if _, ok := unconditionallyDocumented[name]; ok {
		return false
	}
	return specialMemberRe.MatchString(name)
}

// newEntry builds an Entry, extracting the explicit Group: field from the
// overload docstring.
func (x *Expander) newEntry(obj *apimodel.Object, name, fullName string, overload docstring.ParsedOverload) Entry {
	var group string
	if overload.Doc != nil {
		stripped, g := docstring.ExtractField(*overload.Doc, "Group")
		if g != "" {
			overload.Doc = &stripped
			group = g
		}
	}
	return Entry{
		Object:     obj,
		Name:       name,
		FullName:   fullName,
		ImportName: obj.EffectiveImportName(),
		Overload:   overload,
		Group:      group,
		IsAttr:     obj.IsAttr,
		policy:     x.policy,
	}
}
