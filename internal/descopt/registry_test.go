package descopt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup_Defaults_AreApplied(t *testing.T) {
	r := NewRegistry()

	opts := r.Lookup("py", "function")
	require.True(t, opts.Bool("wrap_signatures_with_css"))
	require.Equal(t, 68, opts.Int("wrap_signatures_column_limit"))
	require.Equal(t, "F", opts.String("toc_icon_text"))
	require.Equal(t, "procedure", opts.String("toc_icon_class"))
	require.Equal(t, "py", opts.Domain())
	require.Equal(t, "function", opts.ObjectType())
}

func TestLookup_UserOverlay_WinsOverDefaults(t *testing.T) {
	r := NewRegistry()
	r.AddOverlay(Overlay{Pattern: "py:function", Options: map[string]any{
		"wrap_signatures_column_limit": 100,
	}})

	opts := r.Lookup("py", "function")
	require.Equal(t, 100, opts.Int("wrap_signatures_column_limit"))
	// Untouched options keep their defaults.
	require.Equal(t, "F", opts.String("toc_icon_text"))
}

func TestLookup_RegexpOverlay_MatchesMultipleKeys(t *testing.T) {
	r := NewRegistry()
	r.AddOverlay(Overlay{Pattern: `py:.*method`, Options: map[string]any{
		"generate_synopses": SynopsisFirstSentence,
	}})

	require.Equal(t, SynopsisFirstSentence, r.Lookup("py", "method").String("generate_synopses"))
	require.Equal(t, SynopsisFirstSentence, r.Lookup("py", "classmethod").String("generate_synopses"))
	require.Equal(t, SynopsisFirstParagraph, r.Lookup("py", "class").String("generate_synopses"))
}

func TestLookup_LaterOverlay_WinsOverEarlier(t *testing.T) {
	r := NewRegistry()
	r.AddOverlay(Overlay{Pattern: `py:.*`, Options: map[string]any{"toc_icon_text": "x"}})
	r.AddOverlay(Overlay{Pattern: "py:class", Options: map[string]any{"toc_icon_text": "K"}})

	require.Equal(t, "K", r.Lookup("py", "class").String("toc_icon_text"))
	require.Equal(t, "x", r.Lookup("py", "function").String("toc_icon_text"))
}

func TestAddOverlay_UnknownOption_IsIgnored(t *testing.T) {
	r := NewRegistry()
	r.AddOverlay(Overlay{Pattern: "py:class", Options: map[string]any{
		"no_such_option": true,
		"include_in_toc": false,
	}})

	opts := r.Lookup("py", "class")
	_, present := opts["no_such_option"]
	require.False(t, present)
	require.False(t, opts.Bool("include_in_toc"))
}

func TestAddOverlay_TypeMismatch_IsIgnored(t *testing.T) {
	r := NewRegistry()
	r.AddOverlay(Overlay{Pattern: "py:class", Options: map[string]any{
		"wrap_signatures_column_limit": "wide",
	}})

	require.Equal(t, 68, r.Lookup("py", "class").Int("wrap_signatures_column_limit"))
}

func TestLookup_ResultIsCached(t *testing.T) {
	r := NewRegistry()
	first := r.Lookup("py", "method")
	second := r.Lookup("py", "method")
	require.Equal(t, first, second)
	// Overlays added after a lookup do not invalidate cached keys; resolve
	// overlays before generation starts.
}

func TestFormatTooltip_IncludesTypeAndSynopsis(t *testing.T) {
	r := NewRegistry()
	opts := r.Lookup("py", "method")

	tooltip := FormatTooltip(opts, "demo.Spec.update", "Updates the spec.")
	require.Equal(t, "demo.Spec.update (method) — Updates the spec.", tooltip)
}

func TestFormatTooltip_TypeSuppressed(t *testing.T) {
	r := NewRegistry()
	r.AddOverlay(Overlay{Pattern: "py:method", Options: map[string]any{
		"include_object_type_in_xref_tooltip": false,
	}})
	opts := r.Lookup("py", "method")

	require.Equal(t, "demo.Spec.update", FormatTooltip(opts, "demo.Spec.update", ""))
}
