// Package apimodel defines the stub inventory model: the JSON dump of
// objects and docstrings that the binding generator extracts from a compiled
// extension module.
package apimodel

import (
	"encoding/json"
	"os"
	"strings"

	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
)

// ObjType classifies a documented object.
type ObjType string

const (
	ObjTypeModule       ObjType = "module"
	ObjTypeClass        ObjType = "class"
	ObjTypeFunction     ObjType = "function"
	ObjTypeMethod       ObjType = "method"
	ObjTypeClassMethod  ObjType = "classmethod"
	ObjTypeStaticMethod ObjType = "staticmethod"
	ObjTypeProperty     ObjType = "property"
	ObjTypeAttribute    ObjType = "attribute"
	ObjTypeData         ObjType = "data"
)

var knownObjTypes = map[ObjType]struct{}{
	ObjTypeModule:       {},
	ObjTypeClass:        {},
	ObjTypeFunction:     {},
	ObjTypeMethod:       {},
	ObjTypeClassMethod:  {},
	ObjTypeStaticMethod: {},
	ObjTypeProperty:     {},
	ObjTypeAttribute:    {},
	ObjTypeData:         {},
}

// Object is a single documented object and its members.
type Object struct {
	// Name is the member name within the parent scope, e.g. "resolve".
	Name string `json:"name"`

	// FullName is the name under which the object is documented,
	// e.g. "mymodule.MyClass.resolve".
	FullName string `json:"full_name"`

	// ImportName, when different from FullName, is the name to import to
	// access the object.
	ImportName string `json:"import_name,omitempty"`

	ObjType ObjType `json:"objtype"`

	// Doc is the raw docstring. Nil when the object has none.
	Doc *string `json:"doc"`

	// ReturnAnnotation is the property return type, used for subscript
	// method detection.
	ReturnAnnotation string `json:"return_annotation,omitempty"`

	Members []Object `json:"members,omitempty"`

	// Bases lists full names of base classes, in method resolution order.
	Bases []string `json:"bases,omitempty"`

	IsAttr bool `json:"is_attr,omitempty"`
}

// Inventory is the top-level stub dump for one extension module.
type Inventory struct {
	Module  string   `json:"module"`
	Objects []Object `json:"objects"`

	byFullName map[string]*Object
}

// Load reads and validates a stub inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apierrors.InventoryLoadError(path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates inventory JSON. The path is used only for
// error context.
func Parse(data []byte, path string) (*Inventory, error) {
	var inv Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, apierrors.InventoryLoadError(path, err)
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	inv.buildIndex()
	return &inv, nil
}

// Validate checks structural requirements before generation starts.
func (inv *Inventory) Validate() error {
	if inv.Module == "" {
		return apierrors.ValidationFailed("module", "module name is required")
	}
	var walk func(obj *Object) error
	walk = func(obj *Object) error {
		if obj.Name == "" && obj.ObjType != ObjTypeModule {
			return apierrors.ValidationFailed("name", "object name is required").
				WithContext("full_name", obj.FullName)
		}
		if obj.FullName == "" {
			return apierrors.ValidationFailed("full_name", "object full name is required").
				WithContext("name", obj.Name)
		}
		if _, ok := knownObjTypes[obj.ObjType]; !ok {
			return apierrors.ValidationFailed("objtype", "unknown object type").
				WithContext("full_name", obj.FullName).
				WithContext("objtype", string(obj.ObjType))
		}
		for i := range obj.Members {
			if err := walk(&obj.Members[i]); err != nil {
				return err
			}
		}
		return nil
	}
	for i := range inv.Objects {
		if err := walk(&inv.Objects[i]); err != nil {
			return err
		}
	}
	return nil
}

func (inv *Inventory) buildIndex() {
	inv.byFullName = make(map[string]*Object)
	var walk func(obj *Object)
	walk = func(obj *Object) {
		inv.byFullName[obj.FullName] = obj
		for i := range obj.Members {
			walk(&obj.Members[i])
		}
	}
	for i := range inv.Objects {
		walk(&inv.Objects[i])
	}
}

// Lookup returns the object documented under fullName, if present.
func (inv *Inventory) Lookup(fullName string) (*Object, bool) {
	if inv.byFullName == nil {
		inv.buildIndex()
	}
	obj, ok := inv.byFullName[fullName]
	return obj, ok
}

// EffectiveImportName returns the name to import to access the object.
func (o *Object) EffectiveImportName() string {
	if o.ImportName != "" {
		return o.ImportName
	}
	return o.FullName
}

// IsCallable reports whether the object type takes a signature line.
func (t ObjType) IsCallable() bool {
	switch t {
	case ObjTypeFunction, ObjTypeMethod, ObjTypeClassMethod, ObjTypeStaticMethod:
		return true
	}
	return false
}

// Domain returns the descriptor domain key for options lookup, e.g. "py:method".
func (t ObjType) Domain() string {
	return "py:" + string(t)
}

// ParentName returns the full name of the enclosing scope, or "" for
// top-level objects.
func (o *Object) ParentName() string {
	idx := strings.LastIndex(o.FullName, ".")
	if idx < 0 {
		return ""
	}
	return o.FullName[:idx]
}
