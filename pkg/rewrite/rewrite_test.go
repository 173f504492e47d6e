package rewrite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		rules []Rule
		want  string
	}{
		{
			name:  "replaces every occurrence",
			doc:   "a=TOKEN\nb=TOKEN\nc=TOKENTOKEN\n",
			rules: []Rule{{Token: "TOKEN", Value: "v"}},
			want:  "a=v\nb=v\nc=vv\n",
		},
		{
			name:  "absent token is a no-op",
			doc:   "region=us-east-1\n",
			rules: []Rule{{Token: "AWS_REGION", Value: "eu-west-1"}},
			want:  "region=us-east-1\n",
		},
		{
			name:  "no rules",
			doc:   "unchanged",
			rules: nil,
			want:  "unchanged",
		},
		{
			name:  "value is not rescanned by its own rule",
			doc:   "x=AB",
			rules: []Rule{{Token: "AB", Value: "ABAB"}},
			want:  "x=ABAB",
		},
		{
			name:  "non-overlapping left to right",
			doc:   "aaa",
			rules: []Rule{{Token: "aa", Value: "b"}},
			want:  "ba",
		},
		{
			name:  "empty value deletes token",
			doc:   "k=SECRET;",
			rules: []Rule{{Token: "SECRET", Value: ""}},
			want:  "k=;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.doc, tt.rules))
		})
	}
}

// TestApply_OrderSensitivity 前一条规则引入的文本对后续规则可见，反之不可见
func TestApply_OrderSensitivity(t *testing.T) {
	doc := "name=A"
	ruleA := Rule{Token: "A", Value: "prefix-B"}
	ruleB := Rule{Token: "B", Value: "orders"}

	assert.Equal(t, "name=prefix-orders", Apply(doc, []Rule{ruleA, ruleB}), "A then B should substitute introduced B")
	assert.Equal(t, "name=prefix-B", Apply(doc, []Rule{ruleB, ruleA}), "B then A should leave introduced B")
}

func TestApply_Completeness(t *testing.T) {
	doc := "AWS_REGION STREAM_NAME APPLICATION_NAME AWS_REGION\nSTREAM_NAME"
	rules := []Rule{
		{Token: "AWS_REGION", Value: "us-west-2"},
		{Token: "STREAM_NAME", Value: "orders"},
		{Token: "APPLICATION_NAME", Value: "consumer"},
	}

	out := Apply(doc, rules)
	for _, r := range rules {
		assert.NotContains(t, out, r.Token)
	}
}

func TestApply_IdempotentOnDisjointVocabulary(t *testing.T) {
	rules := []Rule{
		{Token: "AWS_REGION", Value: "us-west-2"},
		{Token: "STREAM_NAME", Value: "orders"},
	}

	once := Apply("region=AWS_REGION\nstream=STREAM_NAME\n", rules)
	twice := Apply(once, rules)
	assert.Equal(t, once, twice)
}

func TestApplyCount(t *testing.T) {
	out, counts := ApplyCount("A A B", []Rule{
		{Token: "A", Value: "x"},
		{Token: "C", Value: "y"},
		{Token: "B", Value: "z"},
	})

	assert.Equal(t, "x x z", out)
	assert.Equal(t, []int{2, 0, 1}, counts)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate([]Rule{{Token: "A"}}))

	err := Validate([]Rule{{Token: "A"}, {Token: "", Value: "x"}})
	require.ErrorIs(t, err, ErrEmptyToken)
	assert.Contains(t, err.Error(), "rule 1")
}

// =============================================================================
// File 测试
// =============================================================================

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFile_EndToEnd(t *testing.T) {
	src := writeTemp(t, "record_processor.properties",
		"region=AWS_REGION\nstream=STREAM_NAME\napp=APPLICATION_NAME\n")

	res, err := File(src, "", []Rule{
		{Token: "AWS_REGION", Value: "us-west-2"},
		{Token: "STREAM_NAME", Value: "orders"},
		{Token: "APPLICATION_NAME", Value: "orders-consumer"},
	})
	require.NoError(t, err)

	assert.Equal(t, "region=us-west-2\nstream=orders\napp=orders-consumer\n", readFile(t, src))
	assert.Equal(t, src, res.Dest, "empty dest should rewrite in place")
	assert.Equal(t, []int{1, 1, 1}, res.Replaced)
	assert.Equal(t, 3, res.Total())
}

func TestFile_SeparateDest(t *testing.T) {
	src := writeTemp(t, "in.properties", "region=AWS_REGION\n")
	dest := filepath.Join(t.TempDir(), "out.properties")
	require.NoError(t, os.WriteFile(dest, []byte("old content that is longer than the result\n"), 0o640))

	_, err := File(src, dest, []Rule{{Token: "AWS_REGION", Value: "eu-west-1"}})
	require.NoError(t, err)

	assert.Equal(t, "region=AWS_REGION\n", readFile(t, src), "source should be untouched")
	assert.Equal(t, "region=eu-west-1\n", readFile(t, dest), "dest should be overwritten")

	fi, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm(), "existing dest should keep its mode")
}

func TestFile_NonAtomic(t *testing.T) {
	src := writeTemp(t, "in.properties", "stream=STREAM_NAME")

	_, err := File(src, "", []Rule{{Token: "STREAM_NAME", Value: "s"}}, WithAtomic(false))
	require.NoError(t, err)
	assert.Equal(t, "stream=s", readFile(t, src))
}

func TestFile_AtomicLeavesNoTempFiles(t *testing.T) {
	src := writeTemp(t, "in.properties", "stream=STREAM_NAME")

	_, err := File(src, "", []Rule{{Token: "STREAM_NAME", Value: "s"}})
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(src))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "in.properties", entries[0].Name())
}

func TestFile_AtomicFollowsSymlink(t *testing.T) {
	src := writeTemp(t, "in.properties", "stream=STREAM_NAME")
	target := writeTemp(t, "record_processor.properties", "old")
	link := filepath.Join(t.TempDir(), "link.properties")
	require.NoError(t, os.Symlink(target, link))

	_, err := File(src, link, []Rule{{Token: "STREAM_NAME", Value: "s"}})
	require.NoError(t, err)

	fi, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode()&os.ModeSymlink, "link should stay a symlink")
	assert.Equal(t, "stream=s", readFile(t, target))
}

func TestFile_MissingInput(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.properties")

	_, err := File(filepath.Join(dir, "absent.properties"), dest, []Rule{{Token: "A", Value: "b"}})
	require.ErrorIs(t, err, ErrMissingInput)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "dest should not be created")
}

func TestFile_WriteFailure(t *testing.T) {
	src := writeTemp(t, "in.properties", "A")
	dest := filepath.Join(t.TempDir(), "missing-dir", "out.properties")

	for _, atomic := range []bool{true, false} {
		_, err := File(src, dest, []Rule{{Token: "A", Value: "b"}}, WithAtomic(atomic))
		require.ErrorIs(t, err, ErrWrite, "atomic=%v", atomic)
		assert.NotErrorIs(t, err, ErrMissingInput)
	}
}

func TestFile_EmptyTokenRejected(t *testing.T) {
	src := writeTemp(t, "in.properties", "unchanged")

	_, err := File(src, "", []Rule{{Token: "", Value: "x"}})
	require.ErrorIs(t, err, ErrEmptyToken)
	assert.Equal(t, "unchanged", readFile(t, src))
}

func TestRender(t *testing.T) {
	src := writeTemp(t, "in.properties", "app=APPLICATION_NAME\n")

	out, res, err := Render(src, []Rule{{Token: "APPLICATION_NAME", Value: "c"}})
	require.NoError(t, err)

	assert.Equal(t, "app=c\n", out)
	assert.Equal(t, len(out), res.Bytes)
	assert.Empty(t, res.Dest)
	assert.True(t, strings.HasSuffix(readFile(t, src), "APPLICATION_NAME\n"), "render should not write")
}
