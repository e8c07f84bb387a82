package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_FullSignature_SplitsNameParamsReturn(t *testing.T) {
	sig, ok := Parse("resolve(self: Spec, label: Optional[str] = None) -> Spec")
	require.True(t, ok)
	require.Equal(t, "resolve", sig.Name)
	require.Equal(t, "Spec", sig.Return)
	require.Len(t, sig.Params, 2)
	require.Equal(t, Param{Name: "self", Annotation: "Spec"}, sig.Params[0])
	require.Equal(t, Param{Name: "label", Annotation: "Optional[str]", Default: "None"}, sig.Params[1])
}

func TestParse_NestedBracketsInAnnotations_SplitsOnTopLevelCommasOnly(t *testing.T) {
	sig, ok := Parse("f(a: Dict[str, Tuple[int, int]], b: int = 0)")
	require.True(t, ok)
	require.Len(t, sig.Params, 2)
	require.Equal(t, "Dict[str, Tuple[int, int]]", sig.Params[0].Annotation)
}

func TestParse_StarMarkersAndKwargs_ArePreserved(t *testing.T) {
	sig, ok := Parse("f(a: int, *, b: bool = True, **kwargs)")
	require.True(t, ok)
	require.Len(t, sig.Params, 4)
	require.Equal(t, "*", sig.Params[1].Name)
	require.Equal(t, "**kwargs", sig.Params[3].Name)
	require.Equal(t, "f(a: int, *, b: bool = True, **kwargs)", sig.Render())
}

func TestParse_NonSignatureLines_AreRejected(t *testing.T) {
	_, ok := Parse("Returns the resolved spec.")
	require.False(t, ok)

	_, ok = Parse("(no name)")
	require.False(t, ok)
}

func TestParse_StaticPrefix_IsCaptured(t *testing.T) {
	sig, ok := Parse("static __class_getitem__(item) -> Spec")
	require.True(t, ok)
	require.Equal(t, "static", sig.Prefix)

	sig.CleanClassGetitem()
	require.Equal(t, "__class_getitem__(item) -> Spec", sig.Render())
}

func TestCleanInit_DropsSelfAndReturn(t *testing.T) {
	sig, ok := Parse("__init__(self: Dim, label: str) -> None")
	require.True(t, ok)

	sig.CleanInit()
	require.Equal(t, "__init__(label: str)", sig.Render())
}

func TestRenderSubscript_UsesSquareBrackets(t *testing.T) {
	sig, ok := Parse("vindex(indices) -> Array")
	require.True(t, ok)
	require.Equal(t, "vindex[indices] -> Array", sig.RenderSubscript())
}

func TestSummarize_UnderLimit_OnlyDropsSelf(t *testing.T) {
	sig, ok := Parse("update(self: Spec, label: str) -> None")
	require.True(t, ok)

	sig.Summarize(80)
	require.Equal(t, "update(label: str) -> None", sig.Render())
}

func TestSummarize_OverLimit_StripsAnnotationBeforeEliding(t *testing.T) {
	sig, ok := Parse("f(alpha: VeryLongAnnotationName, beta: AnotherLongAnnotation) -> None")
	require.True(t, ok)

	sig.Summarize(50)
	// The last parameter loses its annotation first.
	require.Equal(t, "f(alpha: VeryLongAnnotationName, beta) -> None", sig.Render())
}

func TestSummarize_FarOverLimit_ElidesParamsWithEllipsis(t *testing.T) {
	sig, ok := Parse("f(alpha: VeryLongAnnotationName, beta: AnotherLongAnnotation, gamma: YetAnother) -> None")
	require.True(t, ok)

	sig.Summarize(20)
	require.True(t, sig.Ellipsis)
	require.Equal(t, "f(...) -> None", sig.Render())
}

func TestSummarize_ParamWithDefault_KeepsAnnotation(t *testing.T) {
	sig, ok := Parse("f(alpha: int, beta: Optional[str] = None)")
	require.True(t, ok)

	sig.Summarize(30)
	// beta has a default, so its annotation is never stripped; the parameter
	// is elided outright instead.
	require.Equal(t, "f(alpha: int, ...)", sig.Render())
}

func TestNeedsWrap(t *testing.T) {
	require.False(t, NeedsWrap("f(x)", 68))
	require.True(t, NeedsWrap("f("+strings.Repeat("x", 70)+")", 68))
}
