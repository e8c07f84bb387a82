package entries

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apigen/internal/apimodel"
	"git.home.luguber.info/inful/apigen/internal/docstring"
)

func strptr(s string) *string { return &s }

func testInventory(t *testing.T) *apimodel.Inventory {
	t.Helper()

	overloadedDoc := "resolve(*args, **kwargs)\n" +
		"Overloaded function.\n" +
		"\n" +
		"1. resolve(self, label: str) -> Spec\n" +
		"\n" +
		"Resolves by label.\n" +
		"\n" +
		"Overload:\n" +
		"  label\n" +
		"\n" +
		"2. resolve(self, index: int) -> Spec\n" +
		"\n" +
		"Resolves by index.\n" +
		"\n" +
		"Overload:\n" +
		"  index\n"

	inv := &apimodel.Inventory{
		Module: "demo",
		Objects: []apimodel.Object{
			{
				Name:     "demo",
				FullName: "demo",
				ObjType:  apimodel.ObjTypeModule,
				Members: []apimodel.Object{
					{
						Name:     "Base",
						FullName: "demo.Base",
						ObjType:  apimodel.ObjTypeClass,
						Doc:      strptr("Base()\n\nBase class.\n"),
						Members: []apimodel.Object{
							{Name: "close", FullName: "demo.Base.close", ObjType: apimodel.ObjTypeMethod,
								Doc: strptr("close(self)\n\nCloses.\n")},
							{Name: "update", FullName: "demo.Base.update", ObjType: apimodel.ObjTypeMethod,
								Doc: strptr("update(self)\n\nBase update.\n")},
						},
					},
					{
						Name:     "Spec",
						FullName: "demo.Spec",
						ObjType:  apimodel.ObjTypeClass,
						Doc:      strptr("Spec()\n\nA spec.\n"),
						Bases:    []string{"demo.Base"},
						Members: []apimodel.Object{
							{Name: "__init__", FullName: "demo.Spec.__init__", ObjType: apimodel.ObjTypeMethod,
								Doc: strptr("__init__(self, label: str) -> None\n\nCreates a spec.\n")},
							{Name: "resolve", FullName: "demo.Spec.resolve", ObjType: apimodel.ObjTypeMethod,
								Doc: strptr(overloadedDoc)},
							{Name: "update", FullName: "demo.Spec.update", ObjType: apimodel.ObjTypeMethod,
								Doc: strptr("update(self)\n\nSpec update.\n\nGroup:\n  Mutators\n")},
							{Name: "__repr__", FullName: "demo.Spec.__repr__", ObjType: apimodel.ObjTypeMethod,
								Doc: strptr("__repr__(self) -> str\n\nRepr.\n")},
							{Name: "__lt__", FullName: "demo.Spec.__lt__", ObjType: apimodel.ObjTypeMethod, Doc: nil},
							{Name: "__dict__", FullName: "demo.Spec.__dict__", ObjType: apimodel.ObjTypeAttribute, Doc: nil},
							{Name: "vindex", FullName: "demo.Spec.vindex", ObjType: apimodel.ObjTypeProperty,
								ReturnAnnotation: "demo._Vindex",
								Doc:              strptr("Vectorized indexing helper.\n")},
						},
					},
					{
						Name:     "_Vindex",
						FullName: "demo._Vindex",
						ObjType:  apimodel.ObjTypeClass,
						Doc:      strptr("_Vindex()\n\nHelper.\n"),
						Members: []apimodel.Object{
							{Name: "__getitem__", FullName: "demo._Vindex.__getitem__", ObjType: apimodel.ObjTypeMethod,
								Doc: strptr("__getitem__(self, indices) -> Array\n\nIndexes.\n")},
							{Name: "__setitem__", FullName: "demo._Vindex.__setitem__", ObjType: apimodel.ObjTypeMethod,
								Doc: strptr("__setitem__(self, indices, value) -> None\n\nAssigns.\n")},
						},
					},
				},
			},
		},
	}
	require.NoError(t, inv.Validate())
	return inv
}

func testPolicy() Policy {
	return Policy{SubscriptMethodTypes: regexp.MustCompile(`^(?:.*\._[^.]*)$`)}
}

func findEntry(entries []Entry, fullName, overloadID string) (Entry, bool) {
	for _, e := range entries {
		if e.FullName == fullName && e.Overload.OverloadID == overloadID {
			return e, true
		}
	}
	return Entry{}, false
}

func TestMembers_OverloadedMethod_YieldsOneEntryPerOverload(t *testing.T) {
	inv := testInventory(t)
	x := NewExpander(inv, testPolicy())
	spec, _ := inv.Lookup("demo.Spec")

	members, err := x.Members(spec)
	require.NoError(t, err)

	label, ok := findEntry(members, "demo.Spec.resolve", "label")
	require.True(t, ok)
	index, ok := findEntry(members, "demo.Spec.resolve", "index")
	require.True(t, ok)

	require.Equal(t, "demo.Spec.resolve-label", label.PageName())
	require.Equal(t, "demo.Spec.resolve(label)", label.ObjectName())
	require.Equal(t, "resolve(label)", label.TOCTitle())
	require.Equal(t, "demo.Spec.resolve(index)", index.ObjectName())
}

func TestMembers_ExcludedAndUndocumentedSpecialMembers_AreSkipped(t *testing.T) {
	inv := testInventory(t)
	x := NewExpander(inv, testPolicy())
	spec, _ := inv.Lookup("demo.Spec")

	members, err := x.Members(spec)
	require.NoError(t, err)

	_, hasDict := findEntry(members, "demo.Spec.__dict__", "")
	require.False(t, hasDict)

	// __lt__ has no docstring and is only conditionally documented.
	_, hasLt := findEntry(members, "demo.Spec.__lt__", "")
	require.False(t, hasLt)

	// __repr__ has a docstring, so it is kept.
	_, hasRepr := findEntry(members, "demo.Spec.__repr__", "")
	require.True(t, hasRepr)
}

func TestMembers_InheritedMembers_DedupedByTOCTitle(t *testing.T) {
	inv := testInventory(t)
	x := NewExpander(inv, testPolicy())
	spec, _ := inv.Lookup("demo.Spec")

	members, err := x.Members(spec)
	require.NoError(t, err)

	// update is defined on both Spec and Base; the direct definition wins.
	var updates []Entry
	for _, e := range members {
		if e.Name == "update" {
			updates = append(updates, e)
		}
	}
	require.Len(t, updates, 1)
	require.Equal(t, "demo.Spec.update", updates[0].FullName)
	require.False(t, updates[0].IsInherited)

	// close only exists on Base and is inherited.
	closeEntry, ok := findEntry(members, "demo.Base.close", "")
	require.True(t, ok)
	require.True(t, closeEntry.IsInherited)
}

func TestMembers_SubscriptProperty_RewritesToGetitemAndSetitem(t *testing.T) {
	inv := testInventory(t)
	x := NewExpander(inv, testPolicy())
	spec, _ := inv.Lookup("demo.Spec")

	members, err := x.Members(spec)
	require.NoError(t, err)

	vindex, ok := findEntry(members, "demo.Spec.vindex", "")
	require.True(t, ok)
	require.True(t, vindex.Subscript)
	require.Equal(t, "demo._Vindex.__getitem__", vindex.Object.FullName)

	setter, ok := findEntry(members, "demo.Spec.vindex.__setitem__", "")
	require.True(t, ok)
	require.False(t, setter.Subscript)
}

func TestMembers_SubscriptProperty_AlternationPatternMatchesInFull(t *testing.T) {
	inv := testInventory(t)
	// With an unanchored alternation, leftmost matching would pick the
	// "demo\._V" branch for "demo._Vindex" and reject the annotation.
	policy := Policy{SubscriptMethodTypes: regexp.MustCompile(`^(?:demo\._V|demo\._Vindex)$`)}
	x := NewExpander(inv, policy)
	spec, _ := inv.Lookup("demo.Spec")

	members, err := x.Members(spec)
	require.NoError(t, err)

	vindex, ok := findEntry(members, "demo.Spec.vindex", "")
	require.True(t, ok)
	require.True(t, vindex.Subscript)
}

func TestGroupName_DefaultsAndExplicitField(t *testing.T) {
	inv := testInventory(t)
	x := NewExpander(inv, testPolicy())
	spec, _ := inv.Lookup("demo.Spec")

	members, err := x.Members(spec)
	require.NoError(t, err)

	init, ok := findEntry(members, "demo.Spec.__init__", "")
	require.True(t, ok)
	require.Equal(t, "Constructors", init.GroupName())

	repr, ok := findEntry(members, "demo.Spec.__repr__", "")
	require.True(t, ok)
	require.Equal(t, "String representation", repr.GroupName())

	update, ok := findEntry(members, "demo.Spec.update", "")
	require.True(t, ok)
	require.Equal(t, "Mutators", update.GroupName())
	require.NotContains(t, *update.Overload.Doc, "Group:")

	closeEntry, ok := findEntry(members, "demo.Base.close", "")
	require.True(t, ok)
	require.Equal(t, "Public members", closeEntry.GroupName())
}

func TestOverloads_ClassUnderCaseInsensitiveFS_GetsClassSuffix(t *testing.T) {
	inv := testInventory(t)
	policy := testPolicy()
	policy.CaseInsensitiveFS = true
	x := NewExpander(inv, policy)

	spec, _ := inv.Lookup("demo.Spec")
	overloads, err := x.Overloads(spec)
	require.NoError(t, err)
	require.Len(t, overloads, 1)
	require.Equal(t, "demo.Spec-class", overloads[0].PageName())
	require.Equal(t, "demo.Spec", overloads[0].ObjectName())
}

func TestEntry_DisplayName_QualifiesWithModule(t *testing.T) {
	e := Entry{FullName: "demo.Spec.__init__", Object: &apimodel.Object{ObjType: apimodel.ObjTypeMethod}}
	require.Equal(t, "demo.Spec", e.DisplayName("demo"))
	require.True(t, e.IsConstructorLike())

	e = Entry{FullName: "demo.Spec.resolve", Object: &apimodel.Object{ObjType: apimodel.ObjTypeMethod}}
	require.Equal(t, "demo.Spec.resolve", e.DisplayName("demo"))
	require.False(t, e.IsConstructorLike())

	// Names documented without the module prefix gain it.
	e = Entry{FullName: "Spec.resolve", Object: &apimodel.Object{ObjType: apimodel.ObjTypeMethod}}
	require.Equal(t, "demo.Spec.resolve", e.DisplayName("demo"))

	// The module object itself is not doubled.
	e = Entry{FullName: "demo", Object: &apimodel.Object{ObjType: apimodel.ObjTypeModule}}
	require.Equal(t, "demo", e.DisplayName("demo"))
}

func TestEntry_HasNumericOverloadID(t *testing.T) {
	e := Entry{Overload: docstring.ParsedOverload{OverloadID: "2"}}
	require.True(t, e.HasNumericOverloadID())

	e.Overload.OverloadID = "label"
	require.False(t, e.HasNumericOverloadID())

	e.Overload.OverloadID = ""
	require.False(t, e.HasNumericOverloadID())
}
