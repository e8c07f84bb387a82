package descopt

// defaultOverlays assigns TOC icons per object type. The icon text is a
// single letter rendered inside a colored badge; the class picks the badge
// color.
var defaultOverlays = []Overlay{
	{Pattern: "py:module", Options: map[string]any{"toc_icon_class": "data", "toc_icon_text": "r"}},
	{Pattern: "py:class", Options: map[string]any{"toc_icon_class": "data", "toc_icon_text": "C"}},
	{Pattern: "py:function", Options: map[string]any{"toc_icon_class": "procedure", "toc_icon_text": "F"}},
	{Pattern: "py:method", Options: map[string]any{"toc_icon_class": "procedure", "toc_icon_text": "M"}},
	{Pattern: "py:classmethod", Options: map[string]any{"toc_icon_class": "procedure", "toc_icon_text": "M"}},
	{Pattern: "py:staticmethod", Options: map[string]any{"toc_icon_class": "procedure", "toc_icon_text": "M"}},
	{Pattern: "py:property", Options: map[string]any{"toc_icon_class": "alias", "toc_icon_text": "P"}},
	{Pattern: "py:attribute", Options: map[string]any{"toc_icon_class": "alias", "toc_icon_text": "A"}},
	{Pattern: "py:data", Options: map[string]any{"toc_icon_class": "alias", "toc_icon_text": "V"}},
	{Pattern: "py:parameter", Options: map[string]any{
		"toc_icon_class":    "sub-data",
		"toc_icon_text":     "p",
		"generate_synopses": SynopsisFirstSentence,
	}},
}

// ObjTypeDisplayNames maps object types to the human-readable type name used
// in cross-reference tooltips.
var ObjTypeDisplayNames = map[string]string{
	"module":       "module",
	"class":        "class",
	"function":     "function",
	"method":       "method",
	"classmethod":  "class method",
	"staticmethod": "static method",
	"property":     "property",
	"attribute":    "attribute",
	"data":         "data",
}

// FormatTooltip builds the xref tooltip text: the object name, optionally
// followed by its type, optionally followed by the synopsis.
func FormatTooltip(opts Options, baseTitle, synopsis string) string {
	title := baseTitle

	if opts.Bool("include_object_type_in_xref_tooltip") {
		if typeName, ok := ObjTypeDisplayNames[opts.ObjectType()]; ok {
			title += " (" + typeName + ")"
		}
	}

	if synopsis != "" {
		title += " — " + synopsis
	}

	return title
}
