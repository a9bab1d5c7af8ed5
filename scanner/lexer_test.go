package scanner

import (
	"reflect"
	"strings"
	"testing"
	"unicode"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

func lexSource(src string) ([]rawLiteral, []strex.ResourceRef) {
	lx := newLexer(src, lexConfig{
		logCalls:       []string{"Log.d", "Log.w", "Log.i", "Log.e", "Log.v", "println", "print"},
		resourcePrefix: "ResStrings.",
		nativeRanges:   []*unicode.RangeTable{unicode.Han},
	})
	return lx.run()
}

func texts(lits []rawLiteral) []string {
	out := make([]string, len(lits))
	for i, l := range lits {
		out[i] = l.text
	}
	return out
}

func TestLexer_BasicExtraction(t *testing.T) {
	src := `package com.example

fun greet(ctx: Context) {
    toast("你好")
    val plain = "no chinese here"
    Text("欢迎回来")
}
`
	lits, _ := lexSource(src)
	if got := texts(lits); !reflect.DeepEqual(got, []string{"你好", "欢迎回来"}) {
		t.Fatalf("texts = %v", got)
	}
	if lits[0].callContext != "toast" || lits[1].callContext != "Text" {
		t.Errorf("call contexts = %q, %q", lits[0].callContext, lits[1].callContext)
	}
	if lits[0].line != 4 {
		t.Errorf("line = %d, want 4", lits[0].line)
	}
	if lits[0].raw != `"你好"` {
		t.Errorf("raw = %q", lits[0].raw)
	}
	if src[lits[0].offset:lits[0].offset+len(lits[0].raw)] != lits[0].raw {
		t.Errorf("offset does not point at the raw slice")
	}
}

func TestLexer_LogCallsExcluded(t *testing.T) {
	src := `
fun f() {
    Log.d("TAG", "调试信息")
    Log.e("TAG", "错误信息")
    println("打印中文")
    print("也是中文")
    android.util.Log.w("TAG", "包限定的日志")
    toast("保留这条")
}
`
	lits, _ := lexSource(src)
	if got := texts(lits); !reflect.DeepEqual(got, []string{"保留这条"}) {
		t.Fatalf("texts = %v, want only the toast literal", got)
	}
}

func TestLexer_ResourceRefsRecordedNotExtracted(t *testing.T) {
	src := `
fun f() {
    Text(ResStrings.hello)
    toast(ResStrings.login_success.format(name = user))
    toast("新字符串")
}
`
	lits, refs := lexSource(src)
	if got := texts(lits); !reflect.DeepEqual(got, []string{"新字符串"}) {
		t.Fatalf("texts = %v", got)
	}
	var names []string
	for _, r := range refs {
		names = append(names, r.Name)
	}
	if !reflect.DeepEqual(names, []string{"hello", "login_success"}) {
		t.Errorf("refs = %v", names)
	}
}

func TestLexer_CommentsAndCharLiterals(t *testing.T) {
	src := `
// toast("注释里的中文")
/* 块注释 "也不算" /* 嵌套 "同样不算" */ 还在注释里 */
fun f() {
    val c = '中'
    toast("只有这条")
}
`
	lits, _ := lexSource(src)
	if got := texts(lits); !reflect.DeepEqual(got, []string{"只有这条"}) {
		t.Fatalf("texts = %v", got)
	}
}

func TestLexer_EscapesDecoded(t *testing.T) {
	src := `val s = "第一行\n\"引用\"中"`
	lits, _ := lexSource(src)
	if len(lits) != 1 {
		t.Fatalf("literals = %d, want 1", len(lits))
	}
	want := "第一行\n\"引用\"中"
	if lits[0].text != want {
		t.Errorf("text = %q, want %q", lits[0].text, want)
	}
	if !strings.HasPrefix(lits[0].raw, `"第一行`) {
		t.Errorf("raw must be the undecoded source slice, got %q", lits[0].raw)
	}
}

func TestLexer_RawStrings(t *testing.T) {
	src := "val s = \"\"\"多行\n原始字符串\"\"\"\n"
	lits, _ := lexSource(src)
	if len(lits) != 1 {
		t.Fatalf("literals = %d, want 1", len(lits))
	}
	if lits[0].text != "多行\n原始字符串" {
		t.Errorf("text = %q", lits[0].text)
	}
}

func TestLexer_FormatCallNamedParams(t *testing.T) {
	src := `val msg = "共有{count}条消息，{user}".format(count = list.size, user = session.name)`
	lits, _ := lexSource(src)
	if len(lits) != 1 {
		t.Fatalf("literals = %d, want 1", len(lits))
	}
	want := []strex.Param{
		{Name: "count", Value: "list.size"},
		{Name: "user", Value: "session.name"},
	}
	if !reflect.DeepEqual(lits[0].params, want) {
		t.Errorf("params = %v, want %v", lits[0].params, want)
	}
	if !strings.HasSuffix(lits[0].raw, "session.name)") {
		t.Errorf("raw must span the format call, got %q", lits[0].raw)
	}
}

func TestLexer_FormatCallPositionalParams(t *testing.T) {
	src := `val msg = "欢迎{user}".format(userName)`
	lits, _ := lexSource(src)
	if len(lits) != 1 {
		t.Fatalf("literals = %d, want 1", len(lits))
	}
	want := []strex.Param{{Name: "user", Value: "userName"}}
	if !reflect.DeepEqual(lits[0].params, want) {
		t.Errorf("params = %v, want %v", lits[0].params, want)
	}
}

func TestLexer_FormatCallNestedArgs(t *testing.T) {
	src := `val msg = "结果{a}和{b}".format(a = f(x, y), b = list[0] == other)`
	lits, _ := lexSource(src)
	if len(lits) != 1 {
		t.Fatalf("literals = %d, want 1", len(lits))
	}
	want := []strex.Param{
		{Name: "a", Value: "f(x, y)"},
		{Name: "b", Value: "list[0] == other"},
	}
	if !reflect.DeepEqual(lits[0].params, want) {
		t.Errorf("params = %v, want %v", lits[0].params, want)
	}
}

func TestLexer_PlaceholderWithoutFormatCall(t *testing.T) {
	src := `val tmpl = "共有{count}条"`
	lits, _ := lexSource(src)
	if len(lits) != 1 {
		t.Fatalf("literals = %d, want 1", len(lits))
	}
	want := []strex.Param{{Name: "count", Value: ""}}
	if !reflect.DeepEqual(lits[0].params, want) {
		t.Errorf("unbound placeholder must keep an empty value, got %v", lits[0].params)
	}
	if lits[0].raw != `"共有{count}条"` {
		t.Errorf("raw = %q", lits[0].raw)
	}
}

func TestLexer_LinesAfterMultilineFormatCall(t *testing.T) {
	src := `val a = "第{n}个".format(
    n = index,
)
toast("后面的")
`
	lits, _ := lexSource(src)
	if len(lits) != 2 {
		t.Fatalf("literals = %d, want 2", len(lits))
	}
	if lits[1].line != 4 {
		t.Errorf("line after multi-line format call = %d, want 4", lits[1].line)
	}
}

func TestLexer_InterpolationCopiedVerbatim(t *testing.T) {
	src := `val s = "你好，${user.name}"`
	lits, _ := lexSource(src)
	if len(lits) != 1 {
		t.Fatalf("literals = %d, want 1", len(lits))
	}
	if lits[0].text != "你好，${user.name}" {
		t.Errorf("text = %q", lits[0].text)
	}
}

func TestBindParams_Deduplication(t *testing.T) {
	params := bindParams([]string{"n", "n"}, []string{"n = count"})
	want := []strex.Param{{Name: "n", Value: "count"}}
	if !reflect.DeepEqual(params, want) {
		t.Errorf("params = %v, want %v", params, want)
	}
}

func TestSplitNamedArg(t *testing.T) {
	tests := []struct {
		arg      string
		wantName string
		wantOK   bool
	}{
		{"count = list.size", "count", true},
		{"a == b", "", false},
		{"a != b", "", false},
		{"a <= b", "", false},
		{"f(x) = y", "", false},
		{"= y", "", false},
	}
	for _, tt := range tests {
		name, _, ok := splitNamedArg(tt.arg)
		if ok != tt.wantOK || name != tt.wantName {
			t.Errorf("splitNamedArg(%q) = %q, %v; want %q, %v",
				tt.arg, name, ok, tt.wantName, tt.wantOK)
		}
	}
}
