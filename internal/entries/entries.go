// Package entries expands inventory objects into documentation entries, one
// per overload, with stable page names, cross-reference targets, and group
// assignment.
package entries

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/apigen/internal/apimodel"
	"git.home.luguber.info/inful/apigen/internal/docstring"
)

// Policy controls page naming and subscript detection.
type Policy struct {
	// CaseInsensitiveFS appends a "-class" suffix to class page names so
	// that a class and a method differing only in case cannot collide on
	// case-insensitive filesystems.
	CaseInsensitiveFS bool

	// SubscriptMethodTypes matches property return annotations that denote
	// subscript methods (properties invoked with [] instead of ()). The
	// pattern must be anchored: only annotations it matches in full are
	// treated as subscript-method classes.
	SubscriptMethodTypes *regexp.Regexp
}

// Entry is one documentation entry: an object together with a single parsed
// overload of its docstring.
type Entry struct {
	Object *apimodel.Object

	// Name is the member name within the parent, e.g. "update".
	Name string

	// FullName is the name under which the entry is documented.
	FullName string

	// ImportName is the name to import to access the member.
	ImportName string

	Overload docstring.ParsedOverload

	// Group is the explicit "Group:" docstring field, already stripped from
	// Overload.Doc. Empty when the default grouping applies.
	Group string

	IsAttr      bool
	IsInherited bool

	// Subscript marks a method displayed with [] instead of ().
	Subscript bool

	policy Policy
}

const (
	initSuffix         = ".__init__"
	newSuffix          = ".__new__"
	classGetitemSuffix = ".__class_getitem__"
)

// Special members documented even without a docstring.
var unconditionallyDocumented = map[string]struct{}{
	"__init__":          {},
	"__class_getitem__": {},
	"__call__":          {},
	"__getitem__":       {},
	"__setitem__":       {},
}

// Special members never documented.
var excludedSpecialMembers = map[string]struct{}{
	"__module__":          {},
	"__abstractmethods__": {},
	"__dict__":            {},
	"__weakref__":         {},
	"__class__":           {},
	"__base__":            {},
	// Pickling members are never documented.
	"__getstate__": {},
	"__setstate__": {},
}

var (
	specialMemberRe = regexp.MustCompile(`^__\w+__$`)
	numericIDRe     = regexp.MustCompile(`^[0-9]+$`)
)

// memberGroupNames assigns default groups to well-known special members.
var memberGroupNames = map[string]string{
	"__init__":          "Constructors",
	"__new__":           "Constructors",
	"__class_getitem__": "Constructors",
	"__eq__":            "Comparison operators",
	"__str__":           "String representation",
	"__repr__":          "String representation",
}

// PageName is the output document name (without extension) for this entry.
func (e Entry) PageName() string {
	page := e.FullName
	if e.Overload.OverloadID != "" {
		page += "-" + e.Overload.OverloadID
	}
	if e.Object.ObjType == apimodel.ObjTypeClass && e.policy.CaseInsensitiveFS {
		page += "-class"
	}
	return page
}

// ObjectName is the cross-reference target for this entry,
// e.g. "demo.Spec.update(label)".
func (e Entry) ObjectName() string {
	name := e.FullName
	if e.Overload.OverloadID != "" {
		name += "(" + e.Overload.OverloadID + ")"
	}
	return name
}

// TOCTitle is the entry's title in the table of contents sidebar.
func (e Entry) TOCTitle() string {
	name := e.Name
	if e.Overload.OverloadID != "" {
		name += "(" + e.Overload.OverloadID + ")"
	}
	return name
}

// GroupName returns the group the entry is summarized under: the explicit
// Group: field if present, otherwise a default derived from the member name
// and object type.
func (e Entry) GroupName() string {
	if e.Group != "" {
		return e.Group
	}
	if group, ok := memberGroupNames[e.Name]; ok {
		return group
	}
	if e.Object.ObjType == apimodel.ObjTypeClass {
		return "Classes"
	}
	return "Public members"
}

// HasNumericOverloadID reports whether the overload id looks like a
// positional fallback. An explicit numeric id chosen by the author is
// indistinguishable from the fallback; both trigger the unspecified-id
// warning.
func (e Entry) HasNumericOverloadID() bool {
	return e.Overload.OverloadID != "" && numericIDRe.MatchString(e.Overload.OverloadID)
}

// DisplayName returns the name shown in the entry's signature line on its
// own page. Constructor-like members are shown under the class name, and
// the module name is always part of the qualified name, since each object
// is documented on a separate page without surrounding module context.
func (e Entry) DisplayName(moduleName string) string {
	fullName := e.FullName
	for _, suffix := range []string{initSuffix, newSuffix, classGetitemSuffix} {
		if strings.HasSuffix(fullName, suffix) {
			fullName = fullName[:len(fullName)-len(suffix)]
			break
		}
	}
	if moduleName != "" && fullName != moduleName && !strings.HasPrefix(fullName, moduleName+".") {
		return moduleName + "." + fullName
	}
	return fullName
}

// IsConstructorLike reports whether the entry's signature needs the
// __init__/__new__ cleanup (self parameter and return annotation removed).
func (e Entry) IsConstructorLike() bool {
	return strings.HasSuffix(e.FullName, initSuffix) || strings.HasSuffix(e.FullName, newSuffix)
}

// IsClassGetitem reports whether the entry is a __class_getitem__
// subscript constructor.
func (e Entry) IsClassGetitem() bool {
	return strings.HasSuffix(e.FullName, classGetitemSuffix)
}
