package internal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaobogaga/minijava/mjam"
)

func runProgram(t *testing.T, content string) (string, error) {
	reporter := NewErrorReporter(nil)
	result, err := Compile(strings.NewReader(content), reporter, Options{})
	require.Nil(t, err, "%s: %v", content, reporter.Messages())
	var out bytes.Buffer
	err = mjam.NewInterpreter(result.Code.Code, nil, &out).Run()
	return out.String(), err
}

func TestCompile_Run(t *testing.T) {
	testData := []struct {
		Name    string
		Content string
		Output  string
	}{
		{Name: "static field", Output: "5\n", Content: `class Main {
	static int x;
	public static void main(String[] args) { x = 5; System.out.println(get()); }
	static int get() { return x; }
}`},
		{Name: "recursion", Output: "272\n", Content: `class Main {
	public static void main(String[] args) { System.out.println(fib(6) * fib(9)); }
	static int fib(int n) {
		if (n < 2) return n;
		return fib(n - 1) + fib(n - 2);
	}
}`},
		{Name: "arithmetic", Output: "-3\n5\n14\n-2147483648\n1\n0\n", Content: mainProgram(`
		System.out.println(-7 / 2);
		System.out.println(10 - 2 - 3);
		System.out.println(2 + 3 * 4);
		System.out.println(2147483647 + 1);
		if (3 <= 3 && 4 >= 5 == false) System.out.println(1);
		if (1 != 1 || !(2 == 2)) System.out.println(9); else System.out.println(0);`)},
		{Name: "arrays", Output: "3\n6\n9\n12\n15\n10\n", Content: `class Main {
	public static void main(String[] args) {
		int[] a = new int[5];
		int i = 0;
		while (i < a.length) { a[i] = (5 - i) * 3; i = i + 1; }
		Sorter s = new Sorter();
		s.sort(a);
		i = 0;
		while (i < a.length) { System.out.println(a[i]); i = i + 1; }
		System.out.println(s.swaps);
	}
}

class Sorter {
	int swaps;
	void sort(int[] a) {
		int i = 0;
		while (i < a.length) {
			int j = 0;
			while (j < a.length - 1 - i) {
				if (a[j] > a[j + 1]) {
					int t = a[j];
					a[j] = a[j + 1];
					a[j + 1] = t;
					swaps = swaps + 1;
				}
				j = j + 1;
			}
			i = i + 1;
		}
	}
}`},
		{Name: "objects", Output: "30\n4\n", Content: `class Main {
	public static void main(String[] args) {
		List l = new List();
		int i = 1;
		while (i <= 4) { l.push(i * i); i = i + 1; }
		System.out.println(l.sum());
		System.out.println(l.size);
	}
}

class List {
	Node head;
	int size;
	void push(int v) {
		Node n = new Node();
		n.value = v;
		n.next = this.head;
		head = n;
		size = size + 1;
	}
	int sum() {
		int s = 0;
		Node n = head;
		while (n != null) { s = s + n.value; n = n.next; }
		return s;
	}
}

class Node {
	int value;
	Node next;
}`},
		{Name: "instance methods", Output: "10\n120\n", Content: `class Main {
	public static void main(String[] args) {
		Counter c = new Counter();
		c.step = 2;
		System.out.println(c.count(5));
		System.out.println(c.fact(5));
	}
}

class Counter {
	int step;
	int count(int n) {
		int total = 0;
		while (n > 0) { total = total + step; n = n - 1; }
		return total;
	}
	int fact(int n) {
		if (n <= 1) return 1;
		return n * this.fact(n - 1);
	}
}`},
		{Name: "short circuit", Output: "2\n3\n0\n5\n", Content: `class Main {
	static int calls;
	public static void main(String[] args) {
		Main m = null;
		if (m != null && m.check()) System.out.println(1); else System.out.println(2);
		if (true || fail()) System.out.println(3);
		if (false && fail()) System.out.println(4);
		System.out.println(calls);
		boolean b = !(1 > 2) && (3 >= 3 || fail());
		if (b) System.out.println(5);
	}
	boolean check() { return true; }
	static boolean fail() { calls = calls + 1; return false; }
}`},
		{Name: "nested blocks", Output: "6\n1\n", Content: mainProgram(`
		int x = 1;
		{
			int y = 2;
			{ int z = 3; x = x + y + z; }
			int w = x;
			System.out.println(w);
		}
		int v = 1;
		System.out.println(v);`)},
	}
	for _, data := range testData {
		out, err := runProgram(t, data.Content)
		assert.Nil(t, err, data.Name)
		assert.Equal(t, data.Output, out, data.Name)
	}
}

func TestCompile_RuntimeErrors(t *testing.T) {
	testData := []struct {
		Content string
		Msg     string
	}{
		{Content: mainProgram("int[] a = null; System.out.println(a[0]);"), Msg: "null pointer dereference"},
		{Content: mainProgram("int[] a = new int[2]; a[2] = 1;"), Msg: "index 2 out of range"},
		{Content: mainProgram("int z = 0; System.out.println(1 / z);"), Msg: "division by zero"},
		{Content: mainProgram("int[] a = new int[-1];"), Msg: "negative allocation size"},
		{Content: `class Main {
	int v;
	public static void main(String[] args) { Main m = null; m.v = 1; }
}`, Msg: "null pointer dereference"},
	}
	for _, data := range testData {
		_, err := runProgram(t, data.Content)
		var runtimeError *mjam.RuntimeError
		require.True(t, errors.As(err, &runtimeError), data.Content)
		assert.Contains(t, runtimeError.Msg, data.Msg, data.Content)
	}
}

func TestCompile_InvalidPrograms(t *testing.T) {
	testData := []struct {
		Content string
		Msg     string
	}{
		{Content: "class A { int x = 1; }", Msg: "Parse error"},
		{Content: "class A { int x; # }", Msg: "Scan error"},
		{Content: mainProgram("x = 1;"), Msg: "Identification error"},
		{Content: mainProgram("int x = true;"), Msg: "Type error"},
		{Content: "class A { }", Msg: "Type error"},
	}
	for _, data := range testData {
		var diagnostics bytes.Buffer
		reporter := NewErrorReporter(&diagnostics)
		result, err := Compile(strings.NewReader(data.Content), reporter, Options{})
		assert.Equal(t, ErrInvalidProgram, err, data.Content)
		assert.Nil(t, result, data.Content)
		assert.True(t, reporter.HasErrors(), data.Content)
		assert.Contains(t, diagnostics.String(), data.Msg, data.Content)
	}
}

func TestCompile_TraceAndDump(t *testing.T) {
	var trace, dump bytes.Buffer
	reporter := NewErrorReporter(nil)
	result, err := Compile(strings.NewReader(mainProgram("int x = 1;")), reporter,
		Options{Trace: &trace, DumpAST: &dump})
	require.Nil(t, err)
	assert.NotNil(t, result.Package)
	for _, line := range []string{"compiler: start parser", "compiler: start identification",
		"compiler: start type checker", "compiler: start generate codes"} {
		assert.Contains(t, trace.String(), line)
	}
	assert.Contains(t, dump.String(), "ClassDecl")
	assert.Contains(t, dump.String(), `"Main"`)
}

func TestCompile_ObjectFileRoundTrip(t *testing.T) {
	reporter := NewErrorReporter(nil)
	result, err := Compile(strings.NewReader(`class Main {
	public static void main(String[] args) { System.out.println(twice(21)); }
	static int twice(int n) { return n * 2; }
}`), reporter, Options{})
	require.Nil(t, err)
	var file bytes.Buffer
	require.Nil(t, mjam.WriteObjectFile(&file, result.Code.Code))
	code, err := mjam.ReadObjectFile(&file)
	require.Nil(t, err)
	assert.Equal(t, result.Code.Code, code)
	var out bytes.Buffer
	require.Nil(t, mjam.NewInterpreter(code, nil, &out).Run())
	assert.Equal(t, "42\n", out.String())
}
