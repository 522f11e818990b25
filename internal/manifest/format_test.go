package manifest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, s string) *File {
	t.Helper()
	f, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}
	return f
}

func TestFormat_Canonicalizes(t *testing.T) {
	in := "numpy == 1.26.4   \n\n\n\nscipy==1.13.0\t\n"
	want := "numpy==1.26.4\n\nscipy==1.13.0\n"

	got := Format(mustParse(t, in), FormatOptions{})
	if got != want {
		t.Errorf("Format() mismatch:\n%s", cmp.Diff(want, got))
	}
}

func TestFormat_DropsEdgeBlanks(t *testing.T) {
	in := "\n\nnumpy==1.26.4\n\n\n"
	want := "numpy==1.26.4\n"

	if got := Format(mustParse(t, in), FormatOptions{}); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormat_PreservesInlineComments(t *testing.T) {
	in := "requests==2.31.0   #  HTTP for humans\n"
	want := "requests==2.31.0  # HTTP for humans\n"

	if got := Format(mustParse(t, in), FormatOptions{}); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormat_Idempotent(t *testing.T) {
	in := "# Plotting\nmatplotlib == 3.8.4  # pinned\n\n\npandas==2.2.2\n"

	once := Format(mustParse(t, in), FormatOptions{Sort: true})
	twice := Format(mustParse(t, once), FormatOptions{Sort: true})
	if once != twice {
		t.Errorf("Format is not idempotent:\n%s", cmp.Diff(once, twice))
	}
}

func TestFormat_Sort(t *testing.T) {
	in := "scipy==1.13.0\nnumpy==1.26.4\npandas==2.2.2\n"
	want := "numpy==1.26.4\npandas==2.2.2\nscipy==1.13.0\n"

	if got := Format(mustParse(t, in), FormatOptions{Sort: true}); got != want {
		t.Errorf("Format(sort) mismatch:\n%s", cmp.Diff(want, got))
	}
}

func TestFormat_SortKeepsAttachedComments(t *testing.T) {
	in := "# stats\nscipy==1.13.0\n# arrays\nnumpy==1.26.4\n"
	want := "# arrays\nnumpy==1.26.4\n# stats\nscipy==1.13.0\n"

	if got := Format(mustParse(t, in), FormatOptions{Sort: true}); got != want {
		t.Errorf("Format(sort) mismatch:\n%s", cmp.Diff(want, got))
	}
}

func TestFormat_SortRespectsSections(t *testing.T) {
	in := "scipy==1.13.0\nnumpy==1.26.4\n\nblack==24.4.2\nisort==5.13.2\n"
	want := "numpy==1.26.4\nscipy==1.13.0\n\nblack==24.4.2\nisort==5.13.2\n"

	if got := Format(mustParse(t, in), FormatOptions{Sort: true}); got != want {
		t.Errorf("Format(sort) mismatch:\n%s", cmp.Diff(want, got))
	}
}

func TestFormat_SortNormalizesNameOrder(t *testing.T) {
	// Sorting compares normalized names, so Sphinx sorts under "s".
	in := "pymap3d==3.1.0\nSphinx==7.3.7\ncdflib==1.2.6\n"
	want := "cdflib==1.2.6\npymap3d==3.1.0\nSphinx==7.3.7\n"

	if got := Format(mustParse(t, in), FormatOptions{Sort: true}); got != want {
		t.Errorf("Format(sort) mismatch:\n%s", cmp.Diff(want, got))
	}
}

func TestFormat_SortLeavesInvalidSectionsAlone(t *testing.T) {
	in := "scipy==1.13.0\n-r base.txt\nnumpy==1.26.4\n"

	if got := Format(mustParse(t, in), FormatOptions{Sort: true}); got != in {
		t.Errorf("section with invalid line was reordered:\n%s", cmp.Diff(in, got))
	}
}

func TestFormat_Empty(t *testing.T) {
	if got := Format(mustParse(t, ""), FormatOptions{Sort: true}); got != "" {
		t.Errorf("Format(empty) = %q, want empty", got)
	}
}
