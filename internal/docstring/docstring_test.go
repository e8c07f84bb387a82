package docstring

import (
	"testing"

	"github.com/stretchr/testify/require"

	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
)

func strptr(s string) *string { return &s }

func TestParse_NilDocstring_ReturnsSingleNilEntry(t *testing.T) {
	overloads, err := Parse(nil)
	require.NoError(t, err)
	require.Len(t, overloads, 1)
	require.Nil(t, overloads[0].Doc)
	require.Empty(t, overloads[0].OverloadID)
}

func TestParse_PlainDocstring_ReturnsUnchangedText(t *testing.T) {
	doc := "f(x: int) -> int\n\nComputes something.\n"

	overloads, err := Parse(strptr(doc))
	require.NoError(t, err)
	require.Len(t, overloads, 1)
	require.NotNil(t, overloads[0].Doc)
	require.Equal(t, doc, *overloads[0].Doc)
	require.Empty(t, overloads[0].OverloadID)
}

func TestParse_PlainDocstringWithOverloadField_StripsFieldAndReturnsID(t *testing.T) {
	doc := "f(x: int) -> int\n\nComputes something.\n\nOverload:\n  foo\n\nMore text.\n"

	overloads, err := Parse(strptr(doc))
	require.NoError(t, err)
	require.Len(t, overloads, 1)
	require.Equal(t, "foo", overloads[0].OverloadID)
	require.NotContains(t, *overloads[0].Doc, "Overload:")
	require.Contains(t, *overloads[0].Doc, "Computes something.")
	require.Contains(t, *overloads[0].Doc, "More text.")
}

func TestParse_TwoOverloadsWithExplicitIDs_SplitsInOrder(t *testing.T) {
	doc := "resolve(*args, **kwargs)\n" +
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

	overloads, err := Parse(strptr(doc))
	require.NoError(t, err)
	require.Len(t, overloads, 2)

	require.Equal(t, "label", overloads[0].OverloadID)
	require.Equal(t, "index", overloads[1].OverloadID)

	for _, o := range overloads {
		require.NotNil(t, o.Doc)
		require.True(t, len(*o.Doc) > 0)
		require.Contains(t, *o.Doc, "resolve(self,")
		require.NotContains(t, *o.Doc, "Overload:")
	}
	require.Equal(t, "resolve(self, label: str) -> Spec", firstLine(*overloads[0].Doc))
	require.Equal(t, "resolve(self, index: int) -> Spec", firstLine(*overloads[1].Doc))
	require.Contains(t, *overloads[0].Doc, "Resolves by label.")
	require.Contains(t, *overloads[1].Doc, "Resolves by index.")
}

func TestParse_TwoOverloadsWithoutIDs_FallsBackToPositions(t *testing.T) {
	doc := "f(*args, **kwargs)\n" +
		"Overloaded function.\n" +
		"\n" +
		"1. f(x: int) -> int\n" +
		"\n" +
		"First.\n" +
		"\n" +
		"2. f(x: str) -> str\n" +
		"\n" +
		"Second.\n"

	overloads, err := Parse(strptr(doc))
	require.NoError(t, err)
	require.Len(t, overloads, 2)
	require.Equal(t, "1", overloads[0].OverloadID)
	require.Equal(t, "2", overloads[1].OverloadID)
}

func TestParse_MissingExpectedMarker_ReturnsFormatError(t *testing.T) {
	doc := "f(*args, **kwargs)\n" +
		"Overloaded function.\n" +
		"\n" +
		"2. f(x: str) -> str\n" +
		"\n" +
		"Wrong start index.\n"

	// The enumeration must begin with "1. f("; text remains but the expected
	// marker is absent.
	_, err := Parse(strptr(doc))
	require.Error(t, err)
	require.True(t, apierrors.IsCategory(err, apierrors.CategoryParse))
}

func TestParse_MarkerGapAfterFirstOverload_AbsorbsRemainingText(t *testing.T) {
	doc := "f(*args, **kwargs)\n" +
		"Overloaded function.\n" +
		"\n" +
		"1. f(x: int) -> int\n" +
		"\n" +
		"First.\n" +
		"\n" +
		"3. f(x: str) -> str\n" +
		"\n" +
		"Out of order.\n"

	// A gap in the enumeration is not detected: everything after the last
	// recognized marker belongs to that overload.
	overloads, err := Parse(strptr(doc))
	require.NoError(t, err)
	require.Len(t, overloads, 1)
	require.Equal(t, "1", overloads[0].OverloadID)
	require.Contains(t, *overloads[0].Doc, "Out of order.")
}

func TestParse_RealisticPybindInitDocstring_ExtractsOverloadID(t *testing.T) {
	doc := "__init__(*args, **kwargs)\n" +
		"Overloaded function.\n" +
		"\n" +
		"1. __init__(self: Dim, label: Optional[str] = None, *, implicit_lower: bool = True) -> None\n" +
		"\n" +
		"\n" +
		"Constructs an unbounded interval.\n" +
		"\n" +
		"Overload:\n" +
		"  unbounded\n" +
		"\n" +
		"2. __init__(self: Dim, size: Optional[int] = None) -> None\n" +
		"\n" +
		"\n" +
		"Constructs a sized interval.\n" +
		"\n" +
		"Overload:\n" +
		"  size\n"

	overloads, err := Parse(strptr(doc))
	require.NoError(t, err)
	require.Len(t, overloads, 2)
	require.Equal(t, "unbounded", overloads[0].OverloadID)
	require.Equal(t, "size", overloads[1].OverloadID)
	require.Equal(t, "__init__(self: Dim, label: Optional[str] = None, *, implicit_lower: bool = True) -> None",
		firstLine(*overloads[0].Doc))
}

func TestExtractField_AbsentField_ReturnsDocUnchanged(t *testing.T) {
	doc := "f(x)\n\nBody.\n"
	remaining, value := ExtractField(doc, "Group")
	require.Equal(t, doc, remaining)
	require.Empty(t, value)
}

func TestExtractField_PresentField_StripsFirstMatchOnly(t *testing.T) {
	doc := "f(x)\n\nGroup:\n  Accessors\n\nBody.\n\nGroup:\n  Other\n"
	remaining, value := ExtractField(doc, "Group")
	require.Equal(t, "Accessors", value)
	require.Contains(t, remaining, "Group:\n  Other")
	require.NotContains(t, remaining, "Accessors")
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
